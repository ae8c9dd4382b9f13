package achievement

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stretchkit/progression/internal/domain"
)

func TestEvaluate_FirstRoutine(t *testing.T) {
	stats := domain.UserStats{TotalRoutines: 1, Level: 1}

	newly := Evaluate(context.Background(), stats, nil)

	require.Len(t, newly, 1)
	assert.Equal(t, domain.AchievementFirstRoutine, newly[0].ID)
	assert.Equal(t, 50, newly[0].XPBonus)
}

func TestEvaluate_SkipsAlreadyUnlocked(t *testing.T) {
	stats := domain.UserStats{TotalRoutines: 12, Level: 1}
	unlocked := map[string]domain.AchievementState{
		domain.AchievementFirstRoutine: {Unlocked: true},
	}

	newly := Evaluate(context.Background(), stats, unlocked)

	require.Len(t, newly, 1)
	assert.Equal(t, domain.AchievementRoutines10, newly[0].ID)
}

func TestEvaluate_IdempotentWithUnchangedStats(t *testing.T) {
	stats := domain.UserStats{TotalRoutines: 10, LongestStreak: 7, Level: 5}

	first := Evaluate(context.Background(), stats, nil)
	require.NotEmpty(t, first)

	unlocked := make(map[string]domain.AchievementState)
	for _, a := range first {
		unlocked[a.ID] = domain.AchievementState{Unlocked: true}
	}

	second := Evaluate(context.Background(), stats, unlocked)
	assert.Empty(t, second, "re-evaluating with unchanged stats unlocks nothing")
}

func TestEvaluate_MultipleCrossedAtOnce(t *testing.T) {
	// A big catch-up sync can cross several thresholds in a single update.
	stats := domain.UserStats{
		TotalRoutines:       100,
		TotalStretchSeconds: 11 * 3600,
		LongestStreak:       30,
		Level:               10,
	}

	newly := Evaluate(context.Background(), stats, nil)

	assert.Len(t, newly, len(Catalog), "every catalog entry crosses at these stats")
}

func TestEvaluate_PanickingPredicateDoesNotBlockOthers(t *testing.T) {
	entry := Entry{
		Achievement: domain.Achievement{ID: "broken_rule", Name: "Broken"},
		Predicate:   func(domain.UserStats) bool { panic("boom") },
	}
	assert.NotPanics(t, func() {
		crossed := safeEval(context.Background(), entry, domain.UserStats{})
		assert.False(t, crossed, "a panicking predicate counts as not crossed")
	})
}

func TestByID(t *testing.T) {
	a, ok := ByID(domain.AchievementStreak7)
	require.True(t, ok)
	assert.Equal(t, "One Week Strong", a.Name)

	_, ok = ByID("no_such_achievement")
	assert.False(t, ok)
}
