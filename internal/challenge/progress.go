package challenge

import (
	"time"

	"github.com/stretchkit/progression/internal/domain"
)

// UpdateProgress recomputes a challenge's progress from the authoritative
// routine/streak history rather than incrementing a counter, so replayed or
// out-of-order updates converge on the same value. Completion is one-way:
// once completed a challenge never regresses even if history is pruned.
func UpdateProgress(ch domain.Challenge, history []domain.RoutineRecord, streak domain.StreakState) domain.Challenge {
	if ch.Claimed || ch.Completed {
		// Completion is one-way; a pruned history must not regress it.
		return ch
	}

	progress := 0
	switch ch.Type {
	case domain.ChallengeTypeCompleteRoutines:
		for _, r := range history {
			if inWindow(r.CompletedAt, ch) {
				progress++
			}
		}
	case domain.ChallengeTypeStretchMinutes:
		seconds := 0
		for _, r := range history {
			if inWindow(r.CompletedAt, ch) {
				seconds += r.DurationSeconds
			}
		}
		progress = seconds / 60
	case domain.ChallengeTypeAdvancedStretches:
		for _, r := range history {
			if inWindow(r.CompletedAt, ch) && r.HasAdvancedStretch {
				progress++
			}
		}
	case domain.ChallengeTypeMaintainStreak:
		progress = streak.CurrentStreak
	}

	if progress > ch.Requirement {
		progress = ch.Requirement
	}
	ch.Progress = progress
	if ch.Progress >= ch.Requirement {
		ch.Completed = true
	}
	return ch
}

// Claim marks a completed challenge claimed and returns its fixed XP reward.
// Fails with ErrChallengeAlreadyClaimed or ErrChallengeNotCompleted; claiming
// never double-awards XP.
func Claim(ch *domain.Challenge) (int, error) {
	if ch.Claimed {
		return 0, domain.ErrChallengeAlreadyClaimed
	}
	if !ch.Completed {
		return 0, domain.ErrChallengeNotCompleted
	}
	ch.Claimed = true
	return ch.RewardXP, nil
}

func inWindow(t time.Time, ch domain.Challenge) bool {
	return !t.Before(ch.StartsAt) && t.Before(ch.ExpiresAt)
}
