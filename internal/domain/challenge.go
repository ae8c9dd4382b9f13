package domain

import "time"

// Challenge is one time-boxed goal instance with an exactly-once-claimable
// XP payout. Progress is recomputed from the routine history on every update,
// never incremented, so replayed or out-of-order updates are harmless.
type Challenge struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	Requirement int       `json:"requirement" validate:"gt=0"`
	Progress    int       `json:"progress" validate:"gte=0"`
	Category    string    `json:"category"` // "daily" or "weekly"
	Completed   bool      `json:"completed"`
	Claimed     bool      `json:"claimed"`
	RewardXP    int       `json:"reward_xp" validate:"gte=0"`
	StartsAt    time.Time `json:"starts_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Expired reports whether the challenge window has closed.
func (c Challenge) Expired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}

// ChallengeTemplate is one entry in the challenge pool config.
type ChallengeTemplate struct {
	Key         string `json:"key"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Requirement int    `json:"requirement"`
	RewardXP    int    `json:"reward_xp"`
}

// ChallengePoolConfig is the challenge pool configuration document.
type ChallengePoolConfig struct {
	Version       string              `json:"version"`
	ChallengePool []ChallengeTemplate `json:"challenge_pool"`
}

// Challenge type constants
const (
	ChallengeTypeCompleteRoutines  = "complete_routines"  // Complete X routines in the window
	ChallengeTypeStretchMinutes    = "stretch_minutes"    // Accumulate X minutes of stretching
	ChallengeTypeAdvancedStretches = "advanced_stretches" // Complete X routines with an advanced stretch
	ChallengeTypeMaintainStreak    = "maintain_streak"    // Hold a streak of at least X days
)

// Challenge category constants
const (
	ChallengeCategoryDaily  = "daily"
	ChallengeCategoryWeekly = "weekly"
)
