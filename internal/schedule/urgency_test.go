package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPinnedAlwaysOutranksUnpinned(t *testing.T) {
	now := date(2026, time.March, 2)

	// A pinned monthly task due in 60 days vs an unpinned daily task overdue
	// by an hour: the pin wins.
	pinned := Score(Monthly, now.AddDate(0, 0, 60), true, now)
	overdue := Score(Daily, now.Add(-time.Hour), false, now)
	assert.Greater(t, pinned, overdue)
}

func TestOverdueOutranksUpcoming(t *testing.T) {
	now := date(2026, time.March, 2)

	justOverdue := Score(Monthly, now.Add(-time.Minute), false, now)
	dueSoon := Score(Daily, now.Add(time.Hour), false, now)
	assert.Greater(t, justOverdue, dueSoon)
}

func TestMoreOverdueRanksHigher(t *testing.T) {
	now := date(2026, time.March, 2)

	week := Score(Weekly, now.AddDate(0, 0, -7), false, now)
	day := Score(Weekly, now.AddDate(0, 0, -1), false, now)
	hour := Score(Weekly, now.Add(-time.Hour), false, now)
	assert.Greater(t, week, day)
	assert.Greater(t, day, hour)
}

func TestCloserDueDateRanksHigher(t *testing.T) {
	now := date(2026, time.March, 2)

	tomorrow := Score(Monthly, now.AddDate(0, 0, 1), false, now)
	nextWeek := Score(Monthly, now.AddDate(0, 0, 7), false, now)
	assert.Greater(t, tomorrow, nextWeek)
}

func TestFrequencyBonusBreaksNearTies(t *testing.T) {
	now := date(2026, time.March, 2)
	due := now.AddDate(0, 0, 2)

	daily := Score(Daily, due, false, now)
	weekly := Score(Weekly, due, false, now)
	monthly := Score(Monthly, due, false, now)
	assert.Greater(t, daily, weekly)
	assert.Greater(t, weekly, monthly)
}

func TestLevelOverdueIsAlwaysHigh(t *testing.T) {
	now := date(2026, time.March, 2)
	past := now.Add(-time.Minute)

	for _, freq := range []Frequency{Daily, Weekly, Monthly} {
		assert.Equal(t, LevelHigh, freq.Level(past, now), "freq %s", freq)
	}
}

func TestLevelThresholdsScaleWithFrequency(t *testing.T) {
	now := date(2026, time.March, 2)

	tests := []struct {
		freq  Frequency
		until time.Duration
		want  Level
	}{
		{Daily, 12 * time.Hour, LevelHigh},
		{Daily, 36 * time.Hour, LevelMedium},
		{Daily, 72 * time.Hour, LevelLow},
		{Weekly, 36 * time.Hour, LevelHigh},
		{Weekly, 72 * time.Hour, LevelMedium},
		{Weekly, 120 * time.Hour, LevelLow},
		{Monthly, 5 * 24 * time.Hour, LevelHigh},
		{Monthly, 10 * 24 * time.Hour, LevelMedium},
		{Monthly, 20 * 24 * time.Hour, LevelLow},
	}

	for _, tt := range tests {
		got := tt.freq.Level(now.Add(tt.until), now)
		assert.Equal(t, tt.want, got, "%s due in %s", tt.freq, tt.until)
	}
}

func TestSortByScoreIsStableDescending(t *testing.T) {
	type item struct {
		name  string
		score float64
	}
	items := []item{
		{"b", 10}, {"a", 50}, {"c", 10}, {"d", 90},
	}

	SortByScore(items, func(i item) float64 { return i.score })

	var names []string
	for _, i := range items {
		names = append(names, i.name)
	}
	assert.Equal(t, []string{"d", "a", "b", "c"}, names)
}
