package schedule

import (
	"fmt"
	"time"
)

// Frequency is how often a recurring task falls due.
type Frequency string

const (
	Daily   Frequency = "daily"
	Weekly  Frequency = "weekly"
	Monthly Frequency = "monthly"
)

// Valid reports whether f is one of the known frequencies.
func (f Frequency) Valid() bool {
	switch f {
	case Daily, Weekly, Monthly:
		return true
	}
	return false
}

// ParseFrequency converts a stored string to a Frequency.
func ParseFrequency(s string) (Frequency, error) {
	f := Frequency(s)
	if !f.Valid() {
		return "", fmt.Errorf("unknown frequency %q", s)
	}
	return f, nil
}

// NextDue computes when a task next falls due. The reference instant is the
// last completion when one exists, otherwise the creation time. The result is
// always strictly after the reference and always lands on a working day.
//
// Panics on an unknown frequency: the enum is closed and callers validate at
// the boundary, so an unrecognized value here is a bug.
func NextDue(freq Frequency, lastCompleted *time.Time, createdAt time.Time) time.Time {
	ref := createdAt
	if lastCompleted != nil {
		ref = *lastCompleted
	}

	switch freq {
	case Daily:
		return NextWorkday(ref)
	case Weekly:
		return NextMonday(ref)
	case Monthly:
		return FirstMondayOfNextMonth(ref)
	default:
		panic(fmt.Sprintf("schedule: unknown frequency %q", freq))
	}
}
