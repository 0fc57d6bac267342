package model

import "time"

// OvertimeEntry is one line in a person's time bank. Minutes is always
// positive; IsAdd carries the direction (true = banked, false = used).
// Timestamp is assigned at creation and doubles as the entry's identity:
// the entry with the maximum timestamp is the only one that may be edited.
type OvertimeEntry struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Date      string    `json:"date"` // local calendar day, YYYY-MM-DD
	Minutes   int       `json:"minutes"`
	Comment   string    `json:"comment"`
	IsAdd     bool      `json:"is_add"`
	Timestamp time.Time `json:"timestamp"`
}

// OvertimeTotals is the banked balance broken into 8-hour workdays. Derived
// from the full entry set, never stored. For a negative balance every nonzero
// field carries the minus sign.
type OvertimeTotals struct {
	Days    int `json:"total_days"`
	Hours   int `json:"total_hours"`
	Minutes int `json:"total_minutes"`
}
