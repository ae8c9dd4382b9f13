package domain

// Achievement is a one-way-unlockable milestone with an associated XP bonus.
type Achievement struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	XPBonus     int    `json:"xp_bonus"`
}

// Achievement IDs
const (
	AchievementFirstRoutine   = "first_routine"
	AchievementRoutines10     = "routines_10"
	AchievementRoutines50     = "routines_50"
	AchievementRoutines100    = "routines_100"
	AchievementStreak7        = "streak_7"
	AchievementStreak30       = "streak_30"
	AchievementLevel5         = "level_5"
	AchievementLevel10        = "level_10"
	AchievementStretchHours10 = "stretch_hours_10"
)
