package fasting

import (
	"math"
	"sort"
)

// Stats summarises the history log
type Stats struct {
	TotalFasts      int
	CompletedFasts  int
	CompletionRate  int     // percent
	AverageDuration float64 // hours, one decimal
	LongestDuration float64 // hours
	CurrentStreak   int
	LongestStreak   int
}

// ComputeStats derives statistics from history entries in any order.
// Streaks walk the entries newest first by date; the current streak stops at
// the first incomplete fast.
func ComputeStats(history []HistoryEntry) Stats {
	if len(history) == 0 {
		return Stats{}
	}

	sorted := make([]HistoryEntry, len(history))
	copy(sorted, history)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date > sorted[j].Date
	})

	var st Stats
	st.TotalFasts = len(sorted)

	var total float64
	run := 0
	currentOpen := true
	for _, h := range sorted {
		total += h.Duration
		if h.Duration > st.LongestDuration {
			st.LongestDuration = h.Duration
		}

		if h.Completed {
			st.CompletedFasts++
			run++
			if currentOpen {
				st.CurrentStreak = run
			}
		} else {
			currentOpen = false
			run = 0
		}
		if run > st.LongestStreak {
			st.LongestStreak = run
		}
	}

	st.CompletionRate = int(math.Round(float64(st.CompletedFasts) / float64(st.TotalFasts) * 100))
	st.AverageDuration = roundTo(total/float64(st.TotalFasts), 1)
	return st
}

// RecentDurations returns up to n durations oldest first, for charts
func RecentDurations(history []HistoryEntry, n int) []float64 {
	sorted := make([]HistoryEntry, len(history))
	copy(sorted, history)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date < sorted[j].Date
	})
	if len(sorted) > n {
		sorted = sorted[len(sorted)-n:]
	}

	out := make([]float64, len(sorted))
	for i, h := range sorted {
		out[i] = h.Duration
	}
	return out
}
