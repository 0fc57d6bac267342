package schedule

import "time"

// The practice works Monday through Thursday. All due-date math operates at
// day granularity on that calendar: a computed due date never lands on a
// Friday, Saturday, or Sunday.

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// NextWorkday returns the first working day strictly after d: the next
// calendar day, advanced to Monday when it falls on Fri/Sat/Sun.
func NextWorkday(d time.Time) time.Time {
	next := StartOfDay(d).AddDate(0, 0, 1)
	switch next.Weekday() {
	case time.Friday:
		next = next.AddDate(0, 0, 3)
	case time.Saturday:
		next = next.AddDate(0, 0, 2)
	case time.Sunday:
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// NextMonday returns the first Monday strictly after d. From a working day
// (Mon-Thu) that is the Monday of the following week; from Fri/Sat/Sun it is
// the immediately following Monday.
func NextMonday(d time.Time) time.Time {
	day := StartOfDay(d)
	switch wd := day.Weekday(); wd {
	case time.Friday:
		return day.AddDate(0, 0, 3)
	case time.Saturday:
		return day.AddDate(0, 0, 2)
	case time.Sunday:
		return day.AddDate(0, 0, 1)
	default:
		return day.AddDate(0, 0, 8-int(wd))
	}
}

// FirstMondayOfNextMonth returns the first Monday on or after the first
// calendar day of the month following d's month.
func FirstMondayOfNextMonth(d time.Time) time.Time {
	day := StartOfDay(d)
	first := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, day.Location()).AddDate(0, 1, 0)
	for first.Weekday() != time.Monday {
		first = first.AddDate(0, 0, 1)
	}
	return first
}
