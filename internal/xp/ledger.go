// Package xp converts a routine completion into XP line items and a total.
package xp

import (
	"fmt"
	"math"
	"time"

	"github.com/stretchkit/progression/internal/domain"
)

// Base XP tuning. Base XP is a function of routine duration and stretch count
// and is never affected by the boost's presence (the boost multiplies it).
const (
	BaseRoutineXP      = 25
	XPPerStretch       = 5
	XPPerMinute        = 2
	MaxDurationXP      = 60 // cap on the duration-derived portion
	AdvancedStretchXP  = 20
	FirstEverRoutineXP = 100
)

// Line item labels
const (
	LabelRoutineBase     = "Routine completed"
	LabelStreakBonus     = "Streak bonus"
	LabelFirstEver       = "First routine ever"
	LabelAdvancedStretch = "Advanced stretch"
	LabelAchievement     = "Achievement"
)

// streakBonuses awards a bonus line item when the post-update streak lands
// exactly on a threshold.
var streakBonuses = map[int]int{
	3:   25,
	7:   50,
	14:  75,
	30:  100,
	100: 250,
}

// Result is the outcome of one ledger computation.
type Result struct {
	Total     int
	Breakdown []domain.XPLineItem
}

// ComputeRoutineXP builds the line items for one routine completion.
// streakAfter is the streak value after the streak engine recorded the
// routine, so threshold bonuses see the post-update count. streakAdvanced
// must be true only when this routine moved the streak (first activity of the
// day); repeat routines on a threshold day earn no second bonus. firstEver
// must be true only when no prior routine exists in history.
func ComputeRoutineXP(routine domain.RoutineCompleted, streakAfter int, streakAdvanced, firstEver bool, boost *domain.XPBoost, now time.Time) Result {
	items := []domain.XPLineItem{
		{Label: LabelRoutineBase, Amount: baseXP(routine), BaseAmount: baseXP(routine)},
	}

	if bonus, ok := streakBonuses[streakAfter]; ok && streakAdvanced {
		label := fmt.Sprintf("%s (%d days)", LabelStreakBonus, streakAfter)
		items = append(items, domain.XPLineItem{Label: label, Amount: bonus, BaseAmount: bonus})
	}

	if firstEver {
		items = append(items, domain.XPLineItem{Label: LabelFirstEver, Amount: FirstEverRoutineXP, BaseAmount: FirstEverRoutineXP})
	}

	if routine.HasAdvancedStretch {
		items = append(items, domain.XPLineItem{Label: LabelAdvancedStretch, Amount: AdvancedStretchXP, BaseAmount: AdvancedStretchXP})
	}

	if boost.IsActive(now) {
		applyBoost(items, boost.Multiplier)
	}

	return Result{Total: sum(items), Breakdown: items}
}

// AchievementLineItem builds the bonus line item for a newly unlocked
// achievement, folded into the same ledger update that triggered evaluation.
func AchievementLineItem(a domain.Achievement, boost *domain.XPBoost, now time.Time) domain.XPLineItem {
	item := domain.XPLineItem{
		Label:      fmt.Sprintf("%s: %s", LabelAchievement, a.Name),
		Amount:     a.XPBonus,
		BaseAmount: a.XPBonus,
	}
	if boost.IsActive(now) {
		boosted := []domain.XPLineItem{item}
		applyBoost(boosted, boost.Multiplier)
		item = boosted[0]
	}
	return item
}

// baseXP derives the routine's base award from duration and stretch count.
func baseXP(routine domain.RoutineCompleted) int {
	durationXP := routine.DurationSeconds / 60 * XPPerMinute
	if durationXP > MaxDurationXP {
		durationXP = MaxDurationXP
	}
	return BaseRoutineXP + durationXP + routine.StretchCount*XPPerStretch
}

// applyBoost multiplies every positive line item in place and annotates it.
// BaseAmount keeps the pre-boost value; floor(Amount/multiplier) reconstructs
// it exactly for round-number bases (display-only, see BoostNote).
func applyBoost(items []domain.XPLineItem, multiplier float64) {
	note := BoostNote(multiplier)
	for i := range items {
		if items[i].Amount <= 0 {
			continue
		}
		items[i].Amount = int(math.Floor(float64(items[i].BaseAmount) * multiplier))
		items[i].Note = note
	}
}

// BoostNote renders the boost annotation, e.g. "2x XP Boost Applied".
func BoostNote(multiplier float64) string {
	if multiplier == math.Trunc(multiplier) {
		return fmt.Sprintf("%dx XP Boost Applied", int(multiplier))
	}
	return fmt.Sprintf("%gx XP Boost Applied", multiplier)
}

// ReconstructBase derives the pre-boost amount from a boosted amount.
// Lossy for odd bases with fractional multipliers; prefer BaseAmount.
func ReconstructBase(boosted int, multiplier float64) int {
	if multiplier <= 1 {
		return boosted
	}
	return int(math.Floor(float64(boosted) / multiplier))
}

func sum(items []domain.XPLineItem) int {
	total := 0
	for _, it := range items {
		total += it.Amount
	}
	return total
}
