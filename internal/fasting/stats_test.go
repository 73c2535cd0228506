package fasting

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeStats(t *testing.T) {
	tests := []struct {
		name    string
		history []HistoryEntry
		want    Stats
	}{
		{
			name: "empty",
			want: Stats{},
		},
		{
			name: "current streak stops at first incomplete",
			history: []HistoryEntry{
				{Date: "2026-03-05", Duration: 16.5, TargetHours: 16, Completed: true},
				{Date: "2026-03-04", Duration: 17, TargetHours: 16, Completed: true},
				{Date: "2026-03-03", Duration: 10, TargetHours: 16, Completed: false},
				{Date: "2026-03-02", Duration: 18, TargetHours: 16, Completed: true},
			},
			want: Stats{
				TotalFasts:      4,
				CompletedFasts:  3,
				CompletionRate:  75,
				AverageDuration: 15.4,
				LongestDuration: 18,
				CurrentStreak:   2,
				LongestStreak:   2,
			},
		},
		{
			name: "unordered input and longest streak in the past",
			history: []HistoryEntry{
				{Date: "2026-03-01", Duration: 16, Completed: true},
				{Date: "2026-03-06", Duration: 8, Completed: false},
				{Date: "2026-03-02", Duration: 16, Completed: true},
				{Date: "2026-03-03", Duration: 16, Completed: true},
			},
			want: Stats{
				TotalFasts:      4,
				CompletedFasts:  3,
				CompletionRate:  75,
				AverageDuration: 14,
				LongestDuration: 16,
				CurrentStreak:   0,
				LongestStreak:   3,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComputeStats(tt.history))
		})
	}
}

func TestRecentDurations(t *testing.T) {
	history := []HistoryEntry{
		{Date: "2026-03-03", Duration: 18},
		{Date: "2026-03-02", Duration: 16},
		{Date: "2026-03-01", Duration: 14},
	}

	assert.Equal(t, []float64{16, 18}, RecentDurations(history, 2))
	assert.Equal(t, []float64{14, 16, 18}, RecentDurations(history, 10))
}
