package domain

// Event type string constants shared between the engine and subscribers.
// Subscribers must be idempotent to repeated delivery and must not assume
// delivery ordering relative to storage completion.
const (
	EventTypeLevelUp             = "progression.level_up"
	EventTypeRewardUnlocked      = "progression.reward_unlocked"
	EventTypeAchievementUnlocked = "progression.achievement_unlocked"
	EventTypeStreakSaved         = "streak.saved"
	EventTypeStreakBroken        = "streak.broken"
	EventTypeChallengeCompleted  = "challenge.completed"
	EventTypeChallengeClaimed    = "challenge.claimed"
	EventTypeBoostActivated      = "xp_boost.activated"
)
