package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Engine Metrics
var (
	RoutinesProcessed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameRoutinesProcessed,
			Help: HelpTextRoutinesProcessed,
		},
	)

	XPAwarded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameXPAwarded,
			Help: HelpTextXPAwarded,
		},
		[]string{LabelSource},
	)

	LevelUps = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameLevelUps,
			Help: HelpTextLevelUps,
		},
	)

	FlexSavesApplied = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameFlexSavesApplied,
			Help: HelpTextFlexSavesApplied,
		},
	)

	ChallengesClaimed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameChallengesClaimed,
			Help: HelpTextChallengesClaimed,
		},
	)

	AchievementsUnlocked = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameAchievementsUnlocked,
			Help: HelpTextAchievementsUnlocked,
		},
	)

	RewardsUnlocked = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameRewardsUnlocked,
			Help: HelpTextRewardsUnlocked,
		},
	)

	ConcurrentRejections = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameConcurrentRejections,
			Help: HelpTextConcurrentRejections,
		},
	)
)

// Event Metrics
var (
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameEventsPublished,
			Help: HelpTextEventsPublished,
		},
		[]string{LabelType},
	)

	EventHandlerErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameEventHandlerErrors,
			Help: HelpTextEventHandlerErrors,
		},
		[]string{LabelType},
	)
)

// Storage Metrics
var (
	StorageOpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    MetricNameStorageOpDuration,
			Help:    HelpTextStorageOpDuration,
			Buckets: StorageLatencyBuckets,
		},
		[]string{LabelOperation},
	)
)
