// Package streak counts consecutive qualifying calendar days.
package streak

import "time"

// DateLayout is the ISO 8601 date-only format used for all day keys
const DateLayout = "2006-01-02"

// Type identifies a tracked behaviour
type Type string

const (
	Protocol Type = "protocol"
	Fasting  Type = "fasting"
	Exercise Type = "exercise"
)

// Types lists every streak type in display order
var Types = []Type{Protocol, Fasting, Exercise}

// Data is the persisted counter for one streak type
type Data struct {
	Current           int    `json:"current"`
	Longest           int    `json:"longest"`
	LastCompletedDate string `json:"lastCompletedDate,omitempty"` // YYYY-MM-DD
}

// DateKey formats t as a day key in t's location
func DateKey(t time.Time) string {
	return t.Format(DateLayout)
}

// Yesterday returns the day key before t's day
func Yesterday(t time.Time) string {
	return DateKey(t.AddDate(0, 0, -1))
}

// Refresh zeroes Current when the last completed day is neither today nor
// yesterday. Longest is preserved.
func (d Data) Refresh(now time.Time) Data {
	if d.LastCompletedDate == DateKey(now) || d.LastCompletedDate == Yesterday(now) {
		return d
	}
	d.Current = 0
	return d
}

// Bump counts today. It continues the run when the last completed day was
// yesterday and starts a new run otherwise. bumped is false when today was
// already counted.
func (d Data) Bump(now time.Time) (next Data, bumped bool) {
	today := DateKey(now)
	if d.LastCompletedDate == today {
		return d, false
	}

	if d.LastCompletedDate == Yesterday(now) {
		d.Current++
	} else {
		d.Current = 1
	}
	if d.Current > d.Longest {
		d.Longest = d.Current
	}
	d.LastCompletedDate = today
	return d, true
}
