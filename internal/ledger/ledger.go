// Package ledger holds the pure overtime time-bank calculations: entry
// validation, latest-entry selection, and balance totals. Everything here is
// a free function over explicit arguments; persistence lives in the store.
package ledger

import (
	"strings"
	"time"

	"github.com/jvanwell/taskbank/internal/model"
)

// WorkdayMinutes is the length of one workday used for the day/hour/minute
// breakdown of a balance.
const WorkdayMinutes = 8 * 60

// DateLayout is the stored form of an entry's calendar day.
const DateLayout = "2006-01-02"

// ValidateEntry checks a new or edited entry's fields against today's local
// calendar day. Minutes must be positive, the comment non-empty, and the date
// a valid day no later than today. All violations are reported together.
func ValidateEntry(date string, minutes int, comment string, today time.Time) error {
	ve := &ValidationError{}

	if minutes <= 0 {
		ve.add("minutes", "must be a positive number of minutes")
	}
	if strings.TrimSpace(comment) == "" {
		ve.add("comment", "comment is required")
	}

	day, err := time.ParseInLocation(DateLayout, date, today.Location())
	if err != nil {
		ve.add("date", "must be a calendar day in YYYY-MM-DD format")
	} else {
		startOfToday := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, today.Location())
		if day.After(startOfToday) {
			ve.add("date", "cannot be in the future")
		}
	}

	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}

// Balance folds the full entry set into a single signed minute count.
// Additions contribute +minutes, usages -minutes. A negative balance is
// legal here; whether to allow it is a policy question for the caller.
func Balance(entries []model.OvertimeEntry) int {
	var balance int
	for _, e := range entries {
		if e.IsAdd {
			balance += e.Minutes
		} else {
			balance -= e.Minutes
		}
	}
	return balance
}

// Totals converts the balance into days/hours/minutes over an 8-hour workday.
// For non-negative balances Days*480 + Hours*60 + Minutes equals the balance
// exactly. A negative balance is decomposed by magnitude with the minus sign
// carried on every nonzero component, so the same identity holds.
func Totals(entries []model.OvertimeEntry) model.OvertimeTotals {
	balance := Balance(entries)

	sign := 1
	if balance < 0 {
		sign = -1
		balance = -balance
	}

	days := balance / WorkdayMinutes
	rem := balance % WorkdayMinutes
	return model.OvertimeTotals{
		Days:    sign * days,
		Hours:   sign * (rem / 60),
		Minutes: sign * (rem % 60),
	}
}

// Latest returns the entry with the maximum timestamp, the only entry
// eligible for in-place correction. Creation timestamps are unique in
// practice; if two ever tied, whichever scans first is an acceptable target.
// ok is false for an empty ledger.
func Latest(entries []model.OvertimeEntry) (latest model.OvertimeEntry, ok bool) {
	for _, e := range entries {
		if !ok || e.Timestamp.After(latest.Timestamp) {
			latest = e
			ok = true
		}
	}
	return latest, ok
}

// CheckEditTarget verifies that target identifies the latest entry in the
// set. Editing anything older is a usage error, reported as ErrNotLatest.
func CheckEditTarget(entries []model.OvertimeEntry, target time.Time) error {
	latest, ok := Latest(entries)
	if !ok {
		return ErrNoEntries
	}
	if !latest.Timestamp.Equal(target) {
		return ErrNotLatest
	}
	return nil
}
