package service

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"longevity/internal/analysis"
	"longevity/internal/config"
	"longevity/internal/protocol"
	"longevity/internal/store"
	"longevity/internal/streak"
)

// AdherenceSource supplies checklist adherence; *protocol.Manager implements it
type AdherenceSource interface {
	Adherence(days int) int
	History() []protocol.HistoryEntry
}

// ScoreService derives health scores from the stored metric samples
type ScoreService struct {
	store     *store.DB
	adherence AdherenceSource
	profile   config.ProfileConfig
	now       func() time.Time
}

// NewScoreService creates a new score service. adherence may be nil.
func NewScoreService(db *store.DB, adherence AdherenceSource, profile config.ProfileConfig) *ScoreService {
	return &ScoreService{
		store:     db,
		adherence: adherence,
		profile:   profile,
		now:       time.Now,
	}
}

// WithClock overrides the time source
func (s *ScoreService) WithClock(now func() time.Time) *ScoreService {
	s.now = now
	return s
}

// DailyScore is the score set of a day with samples
type DailyScore struct {
	Date   string
	Scores analysis.HealthScoreSet
}

// ScoreHistory is a window of daily scores
type ScoreHistory struct {
	Days    []DailyScore // oldest first
	Overall []float64    // overall score per day, for charts and trends
	Trend   analysis.Trend
}

// RecordSample validates and stores a metric sample
func (s *ScoreService) RecordSample(sample *store.MetricSample) error {
	if sample.Date == "" {
		sample.Date = streak.DateKey(s.now())
	}
	if sample.Source == "" {
		sample.Source = store.SourceManual
	}
	if !sample.Source.Valid() {
		return fmt.Errorf("unknown source %q", sample.Source)
	}
	if sample.IsEmpty() {
		return fmt.Errorf("sample for %s has no measurements", sample.Date)
	}
	return s.store.UpsertSample(sample)
}

// Samples returns the stored samples in [from, to], oldest first
func (s *ScoreService) Samples(from, to string) ([]store.MetricSample, error) {
	return s.store.ListSamples(from, to)
}

// CurrentScores computes the score set for day (empty means today).
// Samples from every source recorded that day are merged.
func (s *ScoreService) CurrentScores(day string) (*analysis.HealthScoreSet, error) {
	if day == "" {
		day = streak.DateKey(s.now())
	}

	samples, err := s.store.ListSamples(day, day)
	if err != nil {
		return nil, fmt.Errorf("loading samples: %w", err)
	}

	biomarker, err := s.biomarkerScore(day)
	if err != nil {
		return nil, err
	}

	set := s.scoreSet(day, mergeSamples(samples), biomarker, s.windowAdherence())
	return &set, nil
}

// History computes daily scores for the trailing window of days. Days
// without samples are skipped.
func (s *ScoreService) History(days int) (*ScoreHistory, error) {
	if days <= 0 {
		days = ScoreHistoryDays
	}
	now := s.now()
	from := streak.DateKey(now.AddDate(0, 0, -(days - 1)))
	to := streak.DateKey(now)

	samples, err := s.store.ListSamples(from, to)
	if err != nil {
		return nil, fmt.Errorf("loading samples: %w", err)
	}

	byDate := make(map[string][]store.MetricSample)
	var dates []string
	for _, sample := range samples {
		if _, ok := byDate[sample.Date]; !ok {
			dates = append(dates, sample.Date)
		}
		byDate[sample.Date] = append(byDate[sample.Date], sample)
	}
	sort.Strings(dates)

	var protocolHistory []protocol.HistoryEntry
	if s.adherence != nil {
		protocolHistory = s.adherence.History()
	}

	history := &ScoreHistory{}
	for _, date := range dates {
		biomarker, err := s.biomarkerScore(date)
		if err != nil {
			return nil, err
		}
		set := s.scoreSet(date, mergeSamples(byDate[date]), biomarker, dayAdherence(protocolHistory, date))
		history.Days = append(history.Days, DailyScore{Date: date, Scores: set})
		history.Overall = append(history.Overall, float64(set.Overall))
	}
	history.Trend = analysis.ClassifyTrend(history.Overall)

	return history, nil
}

func (s *ScoreService) scoreSet(day string, sample store.MetricSample, biomarker, adherence *int) analysis.HealthScoreSet {
	in := analysis.ScoreInputs{
		Date:      day,
		Sleep:     analysis.SleepScore(sample),
		Activity:  analysis.ActivityScore(sample),
		Recovery:  analysis.RecoveryScore(sample),
		Nutrition: analysis.NutritionScore(sample),
		Biomarker: biomarker,
		Adherence: adherence,
	}

	if t, err := time.ParseInLocation(streak.DateLayout, day, s.now().Location()); err == nil {
		if age, ok := s.profile.Age(t); ok {
			in.Age = age
		}
	}

	return analysis.ComputeScoreSet(in)
}

func (s *ScoreService) biomarkerScore(day string) (*int, error) {
	panel, err := s.store.LatestPanel(day)
	if errors.Is(err, store.ErrPanelNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading biomarkers: %w", err)
	}
	return analysis.BiomarkerScore(panel.Values), nil
}

// windowAdherence is nil until any checklist day has been recorded
func (s *ScoreService) windowAdherence() *int {
	if s.adherence == nil || len(s.adherence.History()) == 0 {
		return nil
	}
	a := s.adherence.Adherence(AdherenceDays)
	return &a
}

// dayAdherence returns the completion percentage of one checklist day
func dayAdherence(history []protocol.HistoryEntry, day string) *int {
	for _, h := range history {
		if h.Date != day || h.TotalCount == 0 {
			continue
		}
		pct := int(math.Round(float64(h.CompletedCount) / float64(h.TotalCount) * 100))
		return &pct
	}
	return nil
}

// mergeSamples overlays same-day samples; later sources win per field
func mergeSamples(samples []store.MetricSample) store.MetricSample {
	var merged store.MetricSample
	for _, sample := range samples {
		merged = merged.Merge(sample)
		merged.Date = sample.Date
	}
	return merged
}
