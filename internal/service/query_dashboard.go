package service

import (
	"fmt"

	"github.com/rs/zerolog"

	"longevity/internal/analysis"
	"longevity/internal/fasting"
	"longevity/internal/protocol"
	"longevity/internal/streak"
)

// Tracker bundles the managers and score queries behind one handle for the
// CLI and TUI
type Tracker struct {
	Scores   *ScoreService
	Fasting  *fasting.Manager
	Protocol *protocol.Manager
	log      zerolog.Logger
}

// NewTracker wires the services together
func NewTracker(scores *ScoreService, f *fasting.Manager, p *protocol.Manager, log zerolog.Logger) *Tracker {
	return &Tracker{
		Scores:   scores,
		Fasting:  f,
		Protocol: p,
		log:      log.With().Str("component", "tracker").Logger(),
	}
}

// EndFast ends the active fast. A completed fast also counts the day
// towards the fasting streak.
func (t *Tracker) EndFast(notes string) (*fasting.HistoryEntry, error) {
	entry, err := t.Fasting.End(notes)
	if err != nil {
		return nil, err
	}

	if entry.Completed {
		data, bumped := t.Protocol.RecordStreak(streak.Fasting)
		if bumped {
			t.log.Info().Int("current", data.Current).Int("longest", data.Longest).Msg("Fasting streak extended")
		}
	}
	return entry, nil
}

// DashboardData contains all data needed for the dashboard
type DashboardData struct {
	// Scores
	Scores      *analysis.HealthScoreSet
	Description string
	History     *ScoreHistory

	// Fasting
	Fasting          fasting.Status
	FastingStats     fasting.Stats
	FastingDurations []float64 // most recent fasts, oldest first

	// Protocol
	Today       protocol.DayView
	Streaks     map[streak.Type]streak.Data
	Adherence7  int
	Adherence30 int
}

// Dashboard fetches all data needed for the dashboard
func (t *Tracker) Dashboard() (*DashboardData, error) {
	data := &DashboardData{}

	scores, err := t.Scores.CurrentScores("")
	if err != nil {
		return nil, fmt.Errorf("current scores: %w", err)
	}
	data.Scores = scores
	data.Description = analysis.ScoreDescription(scores.Overall)

	history, err := t.Scores.History(ChartDays)
	if err != nil {
		// Dashboard can show partial data
		t.log.Warn().Err(err).Msg("Score history unavailable")
		history = &ScoreHistory{Trend: analysis.TrendStable}
	}
	data.History = history

	data.Fasting = t.Fasting.Status()
	fasts := t.Fasting.History()
	data.FastingStats = fasting.ComputeStats(fasts)
	data.FastingDurations = fasting.RecentDurations(fasts, FastingChartFasts)

	data.Today = t.Protocol.Today()
	data.Streaks = t.Protocol.Streaks()
	data.Adherence7 = t.Protocol.Adherence7()
	data.Adherence30 = t.Protocol.Adherence30()

	return data, nil
}
