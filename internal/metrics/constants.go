package metrics

// Metric names
const (
	MetricNameRoutinesProcessed    = "progression_routines_processed_total"
	MetricNameXPAwarded            = "progression_xp_awarded_total"
	MetricNameLevelUps             = "progression_level_ups_total"
	MetricNameFlexSavesApplied     = "progression_flex_saves_applied_total"
	MetricNameChallengesClaimed    = "progression_challenges_claimed_total"
	MetricNameAchievementsUnlocked = "progression_achievements_unlocked_total"
	MetricNameRewardsUnlocked      = "progression_rewards_unlocked_total"
	MetricNameEventsPublished      = "progression_events_published_total"
	MetricNameEventHandlerErrors   = "progression_event_handler_errors_total"
	MetricNameStorageOpDuration    = "progression_storage_op_duration_seconds"
	MetricNameConcurrentRejections = "progression_concurrent_rejections_total"
)

// Help texts
const (
	HelpTextRoutinesProcessed    = "Total number of routine completions processed"
	HelpTextXPAwarded            = "Total XP awarded across all users"
	HelpTextLevelUps             = "Total number of level-ups"
	HelpTextFlexSavesApplied     = "Total number of flex saves applied"
	HelpTextChallengesClaimed    = "Total number of challenge rewards claimed"
	HelpTextAchievementsUnlocked = "Total number of achievements unlocked"
	HelpTextRewardsUnlocked      = "Total number of rewards unlocked"
	HelpTextEventsPublished      = "Total number of events published"
	HelpTextEventHandlerErrors   = "Total number of event handler errors"
	HelpTextStorageOpDuration    = "Duration of storage operations in seconds"
	HelpTextConcurrentRejections = "Total number of mutating calls rejected by the in-flight guard"
)

// Label names
const (
	LabelType      = "type"
	LabelOperation = "operation"
	LabelSource    = "source"
)

// StorageLatencyBuckets are the histogram buckets for storage operation latency
var StorageLatencyBuckets = []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5}
