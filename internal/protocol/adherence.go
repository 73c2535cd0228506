package protocol

import (
	"math"
	"time"

	"longevity/internal/streak"
)

// Adherence returns Σcompleted / Σtotal as a rounded percentage over the
// history entries of the trailing window of days, today included. An empty
// window yields 0.
func (m *Manager) Adherence(days int) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return adherence(m.history, m.now(), days)
}

// Adherence7 is the 7-day adherence
func (m *Manager) Adherence7() int { return m.Adherence(7) }

// Adherence30 is the 30-day adherence
func (m *Manager) Adherence30() int { return m.Adherence(30) }

func adherence(history []HistoryEntry, now time.Time, days int) int {
	if days <= 0 {
		return 0
	}
	oldest := streak.DateKey(now.AddDate(0, 0, -(days - 1)))
	today := streak.DateKey(now)

	var completed, total int
	for _, h := range history {
		if h.Date < oldest || h.Date > today {
			continue
		}
		completed += h.CompletedCount
		total += h.TotalCount
	}
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(completed) / float64(total) * 100))
}
