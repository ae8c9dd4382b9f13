// Package reward maps user level to one-way feature-unlock flags.
package reward

import "github.com/stretchkit/progression/internal/domain"

// IsUnlocked reports whether a reward is available: either the persisted flag
// is set, or the current level meets the requirement. A persisted unlock stays
// unlocked even if level derivation changes later; an unknown ID is locked.
func IsUnlocked(doc *domain.UserProgress, rewardID string) bool {
	if state, ok := doc.Rewards[rewardID]; ok && state.Unlocked {
		return true
	}
	r, ok := ByID(rewardID)
	if !ok {
		return false
	}
	return doc.Level >= r.LevelRequired
}

// MeetsLevelRequirement reports whether the current level alone satisfies the
// reward's gate, ignoring any persisted unlock.
func MeetsLevelRequirement(doc *domain.UserProgress, rewardID string) bool {
	r, ok := ByID(rewardID)
	if !ok {
		return false
	}
	return doc.Level >= r.LevelRequired
}

// RequiredLevel returns the level gate for a reward, or 0 for unknown IDs.
func RequiredLevel(rewardID string) int {
	r, ok := ByID(rewardID)
	if !ok {
		return 0
	}
	return r.LevelRequired
}

// RefreshUnlocks flips the persisted flag for every catalog reward the level
// now satisfies and returns the rewards newly unlocked by this call. Unlocks
// are one-directional and independent per reward ID: a flag already set is
// never cleared, regardless of the level passed in.
func RefreshUnlocks(doc *domain.UserProgress, level int) []domain.Reward {
	if doc.Rewards == nil {
		doc.Rewards = make(map[string]domain.RewardState)
	}

	var newly []domain.Reward
	for _, r := range Catalog {
		state, ok := doc.Rewards[r.ID]
		if !ok {
			state = domain.RewardState{LevelRequired: r.LevelRequired}
		}
		if !state.Unlocked && level >= r.LevelRequired {
			state.Unlocked = true
			newly = append(newly, r)
		}
		doc.Rewards[r.ID] = state
	}
	return newly
}
