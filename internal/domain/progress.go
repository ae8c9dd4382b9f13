package domain

import "time"

// DateKeyFormat is the calendar-date key used for activity ledgers.
// Dates are local calendar days, not timestamps, so multiple routines
// on the same day collapse to one entry.
const DateKeyFormat = "2006-01-02"

// MonthTagFormat is the month tag used for flex-save refill bookkeeping.
const MonthTagFormat = "2006-01"

// ProgressSchemaVersion is the current persisted document version.
// Documents with older versions are upgraded at load time.
const ProgressSchemaVersion = 2

// UserProgress is the single persisted aggregate for one user.
// It is always read-modify-written as one unit through the orchestrator.
type UserProgress struct {
	SchemaVersion int    `json:"schema_version" validate:"gte=1"`
	UserID        string `json:"user_id" validate:"required"`

	TotalXP int `json:"total_xp" validate:"gte=0"`
	Level   int `json:"level" validate:"gte=1"`

	Streak StreakState `json:"streak"`

	// Rewards is keyed by stable reward IDs (e.g. "flex_saves", "custom_routines")
	// shared with external feature-gating code. Unlocked is one-way.
	Rewards map[string]RewardState `json:"rewards"`

	Achievements map[string]AchievementState `json:"achievements"`

	Challenges []Challenge `json:"challenges"`

	XPBoost *XPBoost `json:"xp_boost,omitempty"`

	// Cumulative statistics feeding achievement predicates.
	TotalRoutines       int        `json:"total_routines" validate:"gte=0"`
	TotalStretchSeconds int        `json:"total_stretch_seconds" validate:"gte=0"`
	FirstRoutineAt      *time.Time `json:"first_routine_at,omitempty"`

	// RoutineHistory is the bounded recent-routine ledger challenges recompute
	// progress from. Entries older than the widest challenge window are pruned.
	RoutineHistory []RoutineRecord `json:"routine_history"`

	UpdatedAt time.Time `json:"updated_at"`
}

// StreakState is the day-indexed activity ledger plus the flex-save counter.
type StreakState struct {
	CurrentStreak int `json:"current_streak" validate:"gte=0"`
	LongestStreak int `json:"longest_streak" validate:"gte=0"`

	// RoutineDates and FlexSaveDates are append-only sets of calendar-date
	// strings in DateKeyFormat.
	RoutineDates  []string `json:"routine_dates"`
	FlexSaveDates []string `json:"flex_save_dates"`

	FlexSavesAvailable      int    `json:"flex_saves_available" validate:"gte=0,lte=2"`
	FlexSaveLastRefillMonth string `json:"flex_save_last_refill_month,omitempty"`
}

// RewardState is a one-way unlock flag: Unlocked transitions false->true only.
type RewardState struct {
	Unlocked      bool `json:"unlocked"`
	LevelRequired int  `json:"level_required" validate:"gte=1"`
}

// AchievementState records a one-way achievement unlock.
type AchievementState struct {
	Unlocked     bool       `json:"unlocked"`
	UnlockedDate *time.Time `json:"unlocked_date,omitempty"`
}

// XPBoost is a time-limited multiplier applied to all positive XP line items.
type XPBoost struct {
	Active     bool      `json:"active"`
	Multiplier float64   `json:"multiplier"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// IsActive reports whether the boost applies at the given time.
func (b *XPBoost) IsActive(now time.Time) bool {
	return b != nil && b.Active && b.Multiplier > 1 && now.Before(b.ExpiresAt)
}

// RoutineRecord is one completed routine in the bounded history ledger.
type RoutineRecord struct {
	Date               string    `json:"date"`
	Area               string    `json:"area,omitempty"`
	DurationSeconds    int       `json:"duration_seconds"`
	StretchCount       int       `json:"stretch_count"`
	HasAdvancedStretch bool      `json:"has_advanced_stretch"`
	CompletedAt        time.Time `json:"completed_at"`
}

// RoutineCompleted is the inbound event produced by the routine-playback UI.
type RoutineCompleted struct {
	Area               string    `json:"area"`
	DurationSeconds    int       `json:"duration_seconds" validate:"gte=0"`
	StretchCount       int       `json:"stretch_count" validate:"gte=0"`
	HasAdvancedStretch bool      `json:"has_advanced_stretch"`
	CompletedAt        time.Time `json:"completed_at" validate:"required"`
}

// XPLineItem is one entry in a routine's XP breakdown. When a boost applied,
// Amount is the boosted value, BaseAmount the pre-boost value and Note the
// boost annotation. floor(Amount/multiplier) reconstructs BaseAmount for
// round-number bases; BaseAmount stays the accounting-grade value.
type XPLineItem struct {
	Label      string `json:"label"`
	Amount     int    `json:"amount"`
	BaseAmount int    `json:"base_amount"`
	Note       string `json:"note,omitempty"`
}

// StreakStatus is the pure, non-mutating streak report the UI polls.
type StreakStatus struct {
	CurrentStreak          int  `json:"current_streak"`
	StreakBroken           bool `json:"streak_broken"`
	CanSaveYesterdayStreak bool `json:"can_save_yesterday_streak"`
	MaintainedToday        bool `json:"maintained_today"`
}

// UserStats is the cumulative snapshot achievement predicates evaluate against.
type UserStats struct {
	TotalRoutines       int
	TotalStretchSeconds int
	CurrentStreak       int
	LongestStreak       int
	Level               int
	TotalXP             int
	FlexSavesUsed       int
}

// ProcessingResult is returned by the orchestrator after a routine completion.
type ProcessingResult struct {
	XPEarned             int          `json:"xp_earned"`
	Breakdown            []XPLineItem `json:"breakdown"`
	OldLevel             int          `json:"old_level"`
	NewLevel             int          `json:"new_level"`
	LeveledUp            bool         `json:"leveled_up"`
	CurrentStreak        int          `json:"current_streak"`
	UnlockedAchievements []string     `json:"unlocked_achievements"`
	UnlockedRewards      []string     `json:"unlocked_rewards"`
	CompletedChallenges  []string     `json:"completed_challenges"`
}

// LevelProgress reports progress toward the next level for display.
type LevelProgress struct {
	Level       int `json:"level"`
	TotalXP     int `json:"total_xp"`
	XPIntoLevel int `json:"xp_into_level"`
	XPForLevel  int `json:"xp_for_level"` // 0 at max level
}

// NewUserProgress creates the aggregate with first-launch defaults.
func NewUserProgress(userID string, now time.Time) *UserProgress {
	return &UserProgress{
		SchemaVersion: ProgressSchemaVersion,
		UserID:        userID,
		TotalXP:       0,
		Level:         1,
		Streak: StreakState{
			FlexSavesAvailable:      FlexSaveCap,
			FlexSaveLastRefillMonth: now.Format(MonthTagFormat),
		},
		Rewards:      make(map[string]RewardState),
		Achievements: make(map[string]AchievementState),
		UpdatedAt:    now,
	}
}

// FlexSaveCap is the maximum flex-save balance, refilled at most once per
// calendar month.
const FlexSaveCap = 2
