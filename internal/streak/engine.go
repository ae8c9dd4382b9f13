// Package streak owns the day-indexed activity ledger and the flex-save
// counter. Streak state is evaluated against routineDates ∪ flexSaveDates
// using local calendar dates: a streak survives a day either by a completed
// routine or by flex-save coverage.
package streak

import (
	"fmt"
	"time"

	"github.com/stretchkit/progression/internal/domain"
)

// DateKey formats a timestamp as the local calendar-date key.
func DateKey(t time.Time) string {
	return t.Format(domain.DateKeyFormat)
}

// activitySet builds the union of routine and flex-save dates.
func activitySet(s *domain.StreakState) map[string]struct{} {
	set := make(map[string]struct{}, len(s.RoutineDates)+len(s.FlexSaveDates))
	for _, d := range s.RoutineDates {
		set[d] = struct{}{}
	}
	for _, d := range s.FlexSaveDates {
		set[d] = struct{}{}
	}
	return set
}

func contains(dates []string, key string) bool {
	for _, d := range dates {
		if d == key {
			return true
		}
	}
	return false
}

// Status computes the streak report purely, without mutating state, so the
// UI can poll it safely at any time.
//
// States over the three most recent calendar days:
//   - activity today                         -> Active (maintained today)
//   - activity yesterday only, 1-day gap     -> AtRisk (flex-save eligible)
//   - no activity yesterday or two days ago  -> Broken (flex saves cover only
//     single-day lapses; the streak resets to 0 on the next completed routine)
func Status(s *domain.StreakState, now time.Time) domain.StreakStatus {
	activity := activitySet(s)

	today := DateKey(now)
	yesterday := DateKey(now.AddDate(0, 0, -1))
	twoDaysAgo := DateKey(now.AddDate(0, 0, -2))

	_, didToday := activity[today]
	_, didYesterday := activity[yesterday]
	_, didTwoDaysAgo := activity[twoDaysAgo]

	status := domain.StreakStatus{
		CurrentStreak:   s.CurrentStreak,
		MaintainedToday: didToday,
	}

	switch {
	case didToday:
		// Active
	case didYesterday && !didTwoDaysAgo:
		// AtRisk: exactly a one-day gap, flex-save may be applied
		status.CanSaveYesterdayStreak = s.FlexSavesAvailable > 0 &&
			!contains(s.FlexSaveDates, yesterday)
	case didYesterday:
		// Yesterday covered, streak continues; today simply not done yet.
	default:
		// Broken: a multi-day gap. The counter is reported as-is until the
		// reset lands on the next completed routine.
		status.StreakBroken = s.CurrentStreak > 0
	}

	return status
}

// RecordResult describes what RecordRoutine did to the ledger.
type RecordResult struct {
	NewDay         bool // first activity recorded for this calendar day
	StreakReset    bool // a broken streak was reset before counting today
	PreviousStreak int  // streak value before a reset, 0 otherwise
}

// RecordRoutine appends the routine's calendar date to the ledger and adjusts
// the streak. The streak increments at most once per new day of activity;
// repeat routines on the same day collapse to the existing entry. A broken
// streak (multi-day gap, not flex-saved) resets to 1 counting today.
func RecordRoutine(s *domain.StreakState, completedAt time.Time) RecordResult {
	today := DateKey(completedAt)
	if contains(s.RoutineDates, today) {
		return RecordResult{}
	}

	activity := activitySet(s)
	yesterday := DateKey(completedAt.AddDate(0, 0, -1))
	_, continued := activity[yesterday]

	result := RecordResult{NewDay: true}
	if continued {
		s.CurrentStreak++
	} else {
		if s.CurrentStreak > 0 {
			result.StreakReset = true
			result.PreviousStreak = s.CurrentStreak
		}
		s.CurrentStreak = 1
	}

	s.RoutineDates = append(s.RoutineDates, today)
	if s.CurrentStreak > s.LongestStreak {
		s.LongestStreak = s.CurrentStreak
	}
	return result
}

// ApplyFlexSave spends one flex save to cover yesterday's missed day.
// Allowed only when the streak is AtRisk (exactly a one-day gap), the balance
// is positive and yesterday has not already been saved. The current streak is
// preserved, never reset, by the save.
func ApplyFlexSave(s *domain.StreakState, now time.Time) error {
	status := Status(s, now)

	if status.MaintainedToday || !status.CanSaveYesterdayStreak {
		// Distinguish the failure for the caller.
		yesterday := DateKey(now.AddDate(0, 0, -1))
		if contains(s.FlexSaveDates, yesterday) {
			return domain.ErrFlexSaveAlreadyApplied
		}
		if s.FlexSavesAvailable <= 0 && isAtRisk(s, now) {
			return domain.ErrNoFlexSavesAvailable
		}
		return domain.ErrStreakNotAtRisk
	}

	if s.FlexSavesAvailable <= 0 {
		return domain.ErrNoFlexSavesAvailable
	}

	s.FlexSavesAvailable--
	s.FlexSaveDates = append(s.FlexSaveDates, DateKey(now.AddDate(0, 0, -1)))
	return nil
}

// isAtRisk reports the bare gap classification ignoring the flex-save balance.
func isAtRisk(s *domain.StreakState, now time.Time) bool {
	activity := activitySet(s)
	_, didToday := activity[DateKey(now)]
	_, didYesterday := activity[DateKey(now.AddDate(0, 0, -1))]
	_, didTwoDaysAgo := activity[DateKey(now.AddDate(0, 0, -2))]
	return !didToday && didYesterday && !didTwoDaysAgo
}

// RefillIfNewMonth resets the flex-save balance to the cap on the first
// evaluation in a new calendar month, at most once per month.
func RefillIfNewMonth(s *domain.StreakState, now time.Time) bool {
	month := now.Format(domain.MonthTagFormat)
	if s.FlexSaveLastRefillMonth == month {
		return false
	}
	s.FlexSaveLastRefillMonth = month
	if s.FlexSavesAvailable < domain.FlexSaveCap {
		s.FlexSavesAvailable = domain.FlexSaveCap
		return true
	}
	return false
}

// Validate checks the ledger's internal invariants. Used by document
// upgrade/validation at load time.
func Validate(s *domain.StreakState) error {
	if s.FlexSavesAvailable < 0 || s.FlexSavesAvailable > domain.FlexSaveCap {
		return fmt.Errorf("%w: flex_saves_available=%d out of [0,%d]",
			domain.ErrInvalidDocument, s.FlexSavesAvailable, domain.FlexSaveCap)
	}
	if s.CurrentStreak < 0 || s.LongestStreak < s.CurrentStreak {
		return fmt.Errorf("%w: streak counters inconsistent (current=%d longest=%d)",
			domain.ErrInvalidDocument, s.CurrentStreak, s.LongestStreak)
	}
	return nil
}
