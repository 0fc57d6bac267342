package schedule

import (
	"sort"
	"time"
)

// Level groups tasks for display styling. It is derived separately from the
// score and never used for ordering.
type Level string

const (
	LevelHigh   Level = "high"
	LevelMedium Level = "medium"
	LevelLow    Level = "low"
)

const (
	pinnedScore  = 1_000_000
	overdueBase  = 100_000
	upcomingBase = 10_000
)

// Score ranks a task for list ordering; higher sorts first. Pinned tasks
// score above everything else unconditionally. Among unpinned tasks, overdue
// ones outrank all upcoming ones and grow with how overdue they are; upcoming
// tasks rank by proximity to their due date, with a small frequency bonus so
// a daily task edges out a weekly one due at a comparable time.
func Score(freq Frequency, nextDue time.Time, isPinned bool, now time.Time) float64 {
	if isPinned {
		return pinnedScore
	}

	diffHours := nextDue.Sub(now).Hours()
	if diffHours < 0 {
		return overdueBase - diffHours
	}

	score := upcomingBase - diffHours
	switch freq {
	case Daily:
		score += 100
	case Weekly:
		score += 50
	case Monthly:
		// no bonus
	default:
		panic("schedule: unknown frequency " + string(freq))
	}
	return score
}

// Level buckets a task by how close it is to due, with thresholds scaled to
// its frequency. Overdue is always high.
func (f Frequency) Level(nextDue, now time.Time) Level {
	diffHours := nextDue.Sub(now).Hours()
	if diffHours < 0 {
		return LevelHigh
	}

	var high, medium float64
	switch f {
	case Daily:
		high, medium = 24, 48
	case Weekly:
		high, medium = 48, 96
	case Monthly:
		high, medium = 7*24, 14*24
	default:
		panic("schedule: unknown frequency " + string(f))
	}

	switch {
	case diffHours < high:
		return LevelHigh
	case diffHours < medium:
		return LevelMedium
	default:
		return LevelLow
	}
}

// SortByScore orders items descending by score, keeping the incoming order
// for ties.
func SortByScore[T any](items []T, score func(T) float64) {
	sort.SliceStable(items, func(i, j int) bool {
		return score(items[i]) > score(items[j])
	})
}
