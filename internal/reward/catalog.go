package reward

import "github.com/stretchkit/progression/internal/domain"

// Catalog is the static level-gated reward catalog. IDs are stable persisted
// keys shared with external feature-gating code.
var Catalog = []domain.Reward{
	{ID: domain.RewardDarkTheme, Name: "Dark Theme", LevelRequired: 2},
	{ID: domain.RewardFlexSaves, Name: "Flex Saves", LevelRequired: 3},
	{ID: domain.RewardStatsDashboard, Name: "Stats Dashboard", LevelRequired: 4},
	{ID: domain.RewardCustomRoutines, Name: "Custom Routines", LevelRequired: 5},
	{ID: domain.RewardAdvancedStretches, Name: "Advanced Stretches", LevelRequired: 6},
	{ID: domain.RewardXPBoost, Name: "XP Boost", LevelRequired: 8},
}

// ByID returns the catalog reward for the given ID.
func ByID(id string) (domain.Reward, bool) {
	for _, r := range Catalog {
		if r.ID == id {
			return r, true
		}
	}
	return domain.Reward{}, false
}
