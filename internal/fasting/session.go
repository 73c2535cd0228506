package fasting

import (
	"time"

	"longevity/internal/analysis"
)

// MaxHistory bounds the persisted history log
const MaxHistory = 100

// Session is one fast. It is mutated only when it ends.
type Session struct {
	ID          string     `json:"id"`
	StartedAt   time.Time  `json:"startedAt"`
	EndedAt     *time.Time `json:"endedAt,omitempty"`
	TargetHours float64    `json:"targetHours"`
	ActualHours *float64   `json:"actualHours,omitempty"`
	Notes       string     `json:"notes,omitempty"`
	Completed   bool       `json:"completed"`
}

// ElapsedHours derives the elapsed time from the start timestamp
func (s Session) ElapsedHours(now time.Time) float64 {
	if s.EndedAt != nil {
		now = *s.EndedAt
	}
	h := now.Sub(s.StartedAt).Hours()
	if h < 0 {
		return 0
	}
	return h
}

// persistedState is the "current fast" document
type persistedState struct {
	IsActive       bool     `json:"isActive"`
	CurrentSession *Session `json:"currentSession"`
}

// HistoryEntry is one ended fast in the history log
type HistoryEntry struct {
	Date        string  `json:"date"`     // session start date, YYYY-MM-DD
	Duration    float64 `json:"duration"` // actual hours, one decimal
	TargetHours float64 `json:"targetHours"`
	Completed   bool    `json:"completed"`
	Notes       string  `json:"notes,omitempty"`
}

// Status is the derived view of the current fast
type Status struct {
	Active          bool
	Session         *Session
	ElapsedHours    float64
	TargetHours     float64
	ProgressPercent float64 // 0-100 towards the target
	Remaining       time.Duration
	State           analysis.MetabolicStateInfo
	Next            *analysis.MetabolicStateInfo
}

// Elapsed renders the elapsed time as "{h}h {m}m"
func (s Status) Elapsed() string {
	return analysis.FormatFastingTime(s.ElapsedHours)
}
