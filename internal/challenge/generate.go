package challenge

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/stretchkit/progression/internal/domain"
)

// Number of challenge instances generated per window.
const (
	DailyCount  = 1
	WeeklyCount = 2
)

// GenerateDaily produces the daily challenge instances for the day containing
// now. Selection is seeded by the calendar date so regeneration after a
// restart yields the same instances.
func (p *Pool) GenerateDaily(now time.Time) []domain.Challenge {
	start := dayStart(now)
	seed := int64(start.Year()*10000 + int(start.Month())*100 + start.Day())
	picked := pick(p.daily, DailyCount, seed)

	challenges := make([]domain.Challenge, 0, len(picked))
	for _, tpl := range picked {
		challenges = append(challenges, instantiate(tpl, start, start.AddDate(0, 0, 1)))
	}
	return challenges
}

// GenerateWeekly produces the weekly challenge instances for the ISO week
// containing now, seeded by year and week number.
func (p *Pool) GenerateWeekly(now time.Time) []domain.Challenge {
	start := weekStart(now)
	year, week := now.ISOWeek()
	seed := int64(year*100 + week)
	picked := pick(p.weekly, WeeklyCount, seed)

	challenges := make([]domain.Challenge, 0, len(picked))
	for _, tpl := range picked {
		challenges = append(challenges, instantiate(tpl, start, start.AddDate(0, 0, 7)))
	}
	return challenges
}

// Refresh drops expired challenges and generates any missing current-window
// instances. Claimed XP is never revoked by expiry; expired unclaimed
// challenges are simply dropped. Returns the new list and whether it changed.
func (p *Pool) Refresh(current []domain.Challenge, now time.Time) ([]domain.Challenge, bool) {
	changed := false

	kept := current[:0:0]
	for _, ch := range current {
		if ch.Expired(now) {
			changed = true
			continue
		}
		kept = append(kept, ch)
	}

	hasDaily, hasWeekly := false, false
	for _, ch := range kept {
		switch ch.Category {
		case domain.ChallengeCategoryDaily:
			hasDaily = true
		case domain.ChallengeCategoryWeekly:
			hasWeekly = true
		}
	}

	if !hasDaily {
		kept = append(kept, p.GenerateDaily(now)...)
		changed = true
	}
	if !hasWeekly {
		kept = append(kept, p.GenerateWeekly(now)...)
		changed = true
	}

	return kept, changed
}

// instantiate builds a challenge instance with a deterministic ID so
// regenerating the same window cannot mint a second claimable copy.
func instantiate(tpl domain.ChallengeTemplate, start, expires time.Time) domain.Challenge {
	return domain.Challenge{
		ID:          fmt.Sprintf("%s:%s:%s", tpl.Category, start.Format(domain.DateKeyFormat), tpl.Key),
		Type:        tpl.Type,
		Description: tpl.Description,
		Requirement: tpl.Requirement,
		Category:    tpl.Category,
		RewardXP:    tpl.RewardXP,
		StartsAt:    start,
		ExpiresAt:   expires,
	}
}

// pick shuffles a copy of the templates with the given seed and takes n.
func pick(templates []domain.ChallengeTemplate, n int, seed int64) []domain.ChallengeTemplate {
	cp := make([]domain.ChallengeTemplate, len(templates))
	copy(cp, templates)

	rng := rand.New(rand.NewSource(seed)) //nolint:gosec
	rng.Shuffle(len(cp), func(i, j int) {
		cp[i], cp[j] = cp[j], cp[i]
	})

	if n > len(cp) {
		n = len(cp)
	}
	return cp[:n]
}

// dayStart truncates to local midnight.
func dayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// weekStart truncates to the Monday local midnight of t's ISO week.
func weekStart(t time.Time) time.Time {
	d := dayStart(t)
	weekday := int(d.Weekday())
	if weekday == 0 { // Sunday
		weekday = 7
	}
	return d.AddDate(0, 0, -(weekday - 1))
}
