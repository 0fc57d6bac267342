package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

func TestNextWorkday(t *testing.T) {
	tests := []struct {
		name string
		from time.Time
		want time.Time
	}{
		{"monday to tuesday", date(2026, time.March, 2), date(2026, time.March, 3)},
		{"wednesday to thursday", date(2026, time.March, 4), date(2026, time.March, 5)},
		{"thursday skips to monday", date(2026, time.March, 5), date(2026, time.March, 9)},
		{"friday skips to monday", date(2026, time.March, 6), date(2026, time.March, 9)},
		{"saturday skips to monday", date(2026, time.March, 7), date(2026, time.March, 9)},
		{"sunday to monday", date(2026, time.March, 8), date(2026, time.March, 9)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NextWorkday(tt.from))
		})
	}
}

func TestNextWorkdayNormalizesTimeOfDay(t *testing.T) {
	from := time.Date(2026, time.March, 2, 17, 45, 12, 0, time.Local)
	got := NextWorkday(from)
	assert.Equal(t, date(2026, time.March, 3), got)
}

func TestNextMonday(t *testing.T) {
	tests := []struct {
		name string
		from time.Time
		want time.Time
	}{
		// 2 March 2026 is a Monday
		{"monday to following monday", date(2026, time.March, 2), date(2026, time.March, 9)},
		{"tuesday to following monday", date(2026, time.March, 3), date(2026, time.March, 9)},
		{"thursday to following monday", date(2026, time.March, 5), date(2026, time.March, 9)},
		{"friday to immediate monday", date(2026, time.March, 6), date(2026, time.March, 9)},
		{"saturday to immediate monday", date(2026, time.March, 7), date(2026, time.March, 9)},
		{"sunday to immediate monday", date(2026, time.March, 8), date(2026, time.March, 9)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextMonday(tt.from)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, time.Monday, got.Weekday())
		})
	}
}

func TestFirstMondayOfNextMonth(t *testing.T) {
	tests := []struct {
		name string
		from time.Time
		want time.Time
	}{
		// 1 June 2026 is itself a Monday
		{"next month starts on monday", date(2026, time.May, 15), date(2026, time.June, 1)},
		// 1 April 2026 is a Wednesday, first Monday is the 6th
		{"next month starts midweek", date(2026, time.March, 10), date(2026, time.April, 6)},
		// year rollover: 1 Jan 2027 is a Friday, first Monday is the 4th
		{"december rolls into january", date(2026, time.December, 20), date(2027, time.January, 4)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FirstMondayOfNextMonth(tt.from))
		})
	}
}

// The work calendar is Mon-Thu; none of the primitives may ever produce a
// Friday, Saturday, or Sunday, for any input day.
func TestPrimitivesNeverLandOnWeekend(t *testing.T) {
	start := date(2026, time.January, 1)
	for i := 0; i < 730; i++ {
		d := start.AddDate(0, 0, i)
		for name, got := range map[string]time.Time{
			"NextWorkday":           NextWorkday(d),
			"NextMonday":            NextMonday(d),
			"FirstMondayOfNextMonth": FirstMondayOfNextMonth(d),
		} {
			wd := got.Weekday()
			require.NotEqual(t, time.Friday, wd, "%s(%s)", name, d)
			require.NotEqual(t, time.Saturday, wd, "%s(%s)", name, d)
			require.NotEqual(t, time.Sunday, wd, "%s(%s)", name, d)
			require.True(t, got.After(d), "%s(%s) did not advance", name, d)
		}
	}
}
