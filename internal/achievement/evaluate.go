// Package achievement evaluates unlock predicates against cumulative user
// statistics and reports newly-crossed achievements.
package achievement

import (
	"context"

	"github.com/stretchkit/progression/internal/domain"
	"github.com/stretchkit/progression/internal/logger"
)

// Evaluate returns the achievements newly crossed by the given stats:
// entries whose predicate passes and whose ID is not yet unlocked.
// Re-evaluating with unchanged stats returns an empty slice.
//
// Each predicate runs under its own recover so one broken rule cannot block
// the entire update.
func Evaluate(ctx context.Context, stats domain.UserStats, unlocked map[string]domain.AchievementState) []domain.Achievement {
	var newly []domain.Achievement

	for _, entry := range Catalog {
		if state, ok := unlocked[entry.Achievement.ID]; ok && state.Unlocked {
			continue
		}
		if safeEval(ctx, entry, stats) {
			newly = append(newly, entry.Achievement)
		}
	}

	return newly
}

// safeEval runs a single predicate, converting a panic into "not crossed".
func safeEval(ctx context.Context, entry Entry, stats domain.UserStats) (crossed bool) {
	defer func() {
		if r := recover(); r != nil {
			logger.FromContext(ctx).Error("achievement predicate panicked",
				"achievement_id", entry.Achievement.ID,
				"panic", r)
			crossed = false
		}
	}()
	return entry.Predicate(stats)
}
