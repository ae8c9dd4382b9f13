package domain

// Reward IDs are stable strings referenced by both the reward engine and
// external feature-gating code. Do not rename persisted keys.
const (
	RewardDarkTheme         = "dark_theme"
	RewardFlexSaves         = "flex_saves"
	RewardStatsDashboard    = "stats_dashboard"
	RewardCustomRoutines    = "custom_routines"
	RewardAdvancedStretches = "advanced_stretches"
	RewardXPBoost           = "xp_boost"
)

// Reward is a level-gated, one-way-unlockable feature flag.
type Reward struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	LevelRequired int    `json:"level_required"`
}
