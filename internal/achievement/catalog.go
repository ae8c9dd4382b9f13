package achievement

import "github.com/stretchkit/progression/internal/domain"

// Predicate evaluates an unlock condition against cumulative user statistics.
type Predicate func(stats domain.UserStats) bool

// Entry pairs an achievement with its unlock predicate.
type Entry struct {
	Achievement domain.Achievement
	Predicate   Predicate
}

// Catalog is the static achievement catalog. Predicates are pure; the
// evaluator guards each one so a broken rule cannot block an update.
var Catalog = []Entry{
	{
		Achievement: domain.Achievement{
			ID:          domain.AchievementFirstRoutine,
			Name:        "First Steps",
			Description: "Complete your first routine",
			XPBonus:     50,
		},
		Predicate: func(s domain.UserStats) bool { return s.TotalRoutines >= 1 },
	},
	{
		Achievement: domain.Achievement{
			ID:          domain.AchievementRoutines10,
			Name:        "Getting Limber",
			Description: "Complete 10 routines",
			XPBonus:     100,
		},
		Predicate: func(s domain.UserStats) bool { return s.TotalRoutines >= 10 },
	},
	{
		Achievement: domain.Achievement{
			ID:          domain.AchievementRoutines50,
			Name:        "Dedicated",
			Description: "Complete 50 routines",
			XPBonus:     250,
		},
		Predicate: func(s domain.UserStats) bool { return s.TotalRoutines >= 50 },
	},
	{
		Achievement: domain.Achievement{
			ID:          domain.AchievementRoutines100,
			Name:        "Century Club",
			Description: "Complete 100 routines",
			XPBonus:     500,
		},
		Predicate: func(s domain.UserStats) bool { return s.TotalRoutines >= 100 },
	},
	{
		Achievement: domain.Achievement{
			ID:          domain.AchievementStreak7,
			Name:        "One Week Strong",
			Description: "Reach a 7-day streak",
			XPBonus:     150,
		},
		Predicate: func(s domain.UserStats) bool { return s.LongestStreak >= 7 },
	},
	{
		Achievement: domain.Achievement{
			ID:          domain.AchievementStreak30,
			Name:        "Habit Formed",
			Description: "Reach a 30-day streak",
			XPBonus:     400,
		},
		Predicate: func(s domain.UserStats) bool { return s.LongestStreak >= 30 },
	},
	{
		Achievement: domain.Achievement{
			ID:          domain.AchievementLevel5,
			Name:        "Rising Star",
			Description: "Reach level 5",
			XPBonus:     100,
		},
		Predicate: func(s domain.UserStats) bool { return s.Level >= 5 },
	},
	{
		Achievement: domain.Achievement{
			ID:          domain.AchievementLevel10,
			Name:        "Seasoned Stretcher",
			Description: "Reach level 10",
			XPBonus:     300,
		},
		Predicate: func(s domain.UserStats) bool { return s.Level >= 10 },
	},
	{
		Achievement: domain.Achievement{
			ID:          domain.AchievementStretchHours10,
			Name:        "Ten Hours In",
			Description: "Accumulate 10 hours of stretching",
			XPBonus:     200,
		},
		Predicate: func(s domain.UserStats) bool { return s.TotalStretchSeconds >= 10*3600 },
	},
}

// ByID returns the catalog achievement for the given ID.
func ByID(id string) (domain.Achievement, bool) {
	for _, e := range Catalog {
		if e.Achievement.ID == id {
			return e.Achievement, true
		}
	}
	return domain.Achievement{}, false
}
