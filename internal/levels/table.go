// Package levels maps cumulative XP to user levels via a static table.
// All functions are pure so the UI can call them repeatedly for display.
package levels

// xpRequired holds the cumulative XP needed to reach each level.
// Index i is level i+1; level 1 starts at 0 XP.
var xpRequired = []int{
	0,     // 1
	100,   // 2
	250,   // 3
	450,   // 4
	700,   // 5
	1000,  // 6
	1400,  // 7
	1900,  // 8
	2500,  // 9
	3200,  // 10
	4000,  // 11
	5000,  // 12
	6200,  // 13
	7600,  // 14
	9200,  // 15
	11000, // 16
	13000, // 17
	15500, // 18
	18500, // 19
	22000, // 20
}

// MaxLevel is the highest attainable level.
var MaxLevel = len(xpRequired)

// Compute returns the level for the given total XP: the largest level whose
// cumulative requirement is <= totalXP. Monotonic non-decreasing in totalXP,
// idempotent and side-effect-free.
func Compute(totalXP int) int {
	if totalXP < 0 {
		return 1
	}
	level := 1
	for i, req := range xpRequired {
		if totalXP >= req {
			level = i + 1
		} else {
			break
		}
	}
	return level
}

// XPForLevel returns the cumulative XP required to reach the given level.
// Levels below 1 map to 0; levels above MaxLevel map to the max requirement.
func XPForLevel(level int) int {
	if level <= 1 {
		return 0
	}
	if level > MaxLevel {
		level = MaxLevel
	}
	return xpRequired[level-1]
}

// ProgressToNext reports XP progress within the current level. span is 0 at
// max level.
func ProgressToNext(totalXP int) (level, into, span int) {
	level = Compute(totalXP)
	floor := XPForLevel(level)
	if level >= MaxLevel {
		return level, totalXP - floor, 0
	}
	next := XPForLevel(level + 1)
	return level, totalXP - floor, next - floor
}
