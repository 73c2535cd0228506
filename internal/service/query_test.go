package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"longevity/internal/analysis"
	"longevity/internal/config"
	"longevity/internal/fasting"
	"longevity/internal/protocol"
	"longevity/internal/storage"
	"longevity/internal/store"
	"longevity/internal/streak"
)

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type fixture struct {
	db      *store.DB
	clock   *fakeClock
	scores  *ScoreService
	tracker *Tracker
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := store.NewTestDB(t)
	clock := &fakeClock{t: time.Date(2026, 3, 10, 8, 0, 0, 0, time.Local)}
	adapter := storage.NewAdapter(db, zerolog.Nop())

	p := protocol.NewManager(adapter, protocol.WithClock(clock.Now))
	f := fasting.NewManager(adapter, 16, fasting.WithClock(clock.Now))
	scores := NewScoreService(db, p, config.ProfileConfig{DateOfBirth: "1986-03-01"}).WithClock(clock.Now)

	return &fixture{
		db:      db,
		clock:   clock,
		scores:  scores,
		tracker: NewTracker(scores, f, p, zerolog.Nop()),
	}
}

func perfectSleep(date string, source store.Source) *store.MetricSample {
	return &store.MetricSample{
		Date:                 date,
		Source:               source,
		SleepDurationMinutes: floatPtr(480),
		DeepSleepMinutes:     floatPtr(100),
		RemSleepMinutes:      floatPtr(110),
	}
}

func TestRecordSample(t *testing.T) {
	fx := newFixture(t)

	sample := &store.MetricSample{Steps: intPtr(9000)}
	require.NoError(t, fx.scores.RecordSample(sample))
	assert.Equal(t, "2026-03-10", sample.Date)
	assert.Equal(t, store.SourceManual, sample.Source)

	err := fx.scores.RecordSample(&store.MetricSample{Date: "2026-03-10", Source: "fitbit", Steps: intPtr(1)})
	assert.Error(t, err)

	err = fx.scores.RecordSample(&store.MetricSample{Date: "2026-03-10", Source: store.SourceOura})
	assert.Error(t, err)

	samples, err := fx.scores.Samples("", "")
	require.NoError(t, err)
	assert.Len(t, samples, 1)
}

func TestCurrentScoresWithoutData(t *testing.T) {
	fx := newFixture(t)

	set, err := fx.scores.CurrentScores("")
	require.NoError(t, err)

	assert.Nil(t, set.Components.Sleep)
	assert.Nil(t, set.Components.Activity)
	assert.Nil(t, set.Components.Recovery)
	assert.Nil(t, set.Components.Biomarker)
	assert.Nil(t, set.Components.Adherence)
	assert.Equal(t, 0, set.Overall)
	require.NotNil(t, set.Age)
	assert.Equal(t, 40.0, set.Age.ChronologicalAge)
	assert.Equal(t, 40.0, set.Age.BiologicalAge)
}

func TestCurrentScoresMergesSources(t *testing.T) {
	fx := newFixture(t)

	require.NoError(t, fx.scores.RecordSample(perfectSleep("2026-03-10", store.SourceOura)))
	require.NoError(t, fx.scores.RecordSample(&store.MetricSample{
		Date:   "2026-03-10",
		Source: store.SourceWhoop,
		HRVAvg: floatPtr(70),
	}))

	set, err := fx.scores.CurrentScores("2026-03-10")
	require.NoError(t, err)

	require.NotNil(t, set.Components.Sleep)
	assert.Equal(t, 100, *set.Components.Sleep)
	require.NotNil(t, set.Components.Recovery)
	assert.Equal(t, 100, *set.Components.Recovery)
	assert.Nil(t, set.Components.Activity)
	assert.Equal(t, 100, set.Overall)
}

func TestCurrentScoresUsesBiomarkersAndAdherence(t *testing.T) {
	fx := newFixture(t)

	require.NoError(t, fx.db.SavePanel(&store.BiomarkerPanel{
		TestDate: "2026-02-01",
		Values:   map[string]float64{"hba1c": 5.0},
	}))
	item, err := fx.tracker.Protocol.AddItem(protocol.Item{Name: "Creatine", Category: protocol.CategorySupplement})
	require.NoError(t, err)
	require.NoError(t, fx.tracker.Protocol.LogItem(item.ID))

	set, err := fx.scores.CurrentScores("")
	require.NoError(t, err)

	require.NotNil(t, set.Components.Biomarker)
	require.NotNil(t, set.Components.Adherence)
	assert.Equal(t, 100, *set.Components.Adherence)
	assert.Equal(t, 100, set.Overall)
}

func TestScoreHistory(t *testing.T) {
	fx := newFixture(t)

	start := fx.clock.Now()
	for i := 0; i < 14; i++ {
		day := streak.DateKey(start.AddDate(0, 0, i-13))
		steps := 3000
		if i >= 7 {
			steps = 12000
		}
		require.NoError(t, fx.scores.RecordSample(&store.MetricSample{Date: day, Source: store.SourceAppleHealth, Steps: intPtr(steps)}))
	}
	// outside the window
	require.NoError(t, fx.scores.RecordSample(&store.MetricSample{Date: "2026-01-01", Steps: intPtr(500)}))

	history, err := fx.scores.History(14)
	require.NoError(t, err)

	require.Len(t, history.Days, 14)
	assert.Equal(t, "2026-02-25", history.Days[0].Date)
	assert.Equal(t, "2026-03-10", history.Days[13].Date)
	assert.Equal(t, analysis.TrendImproving, history.Trend)
	assert.Len(t, history.Overall, 14)
}

func TestTrackerEndFastRecordsStreak(t *testing.T) {
	fx := newFixture(t)

	_, err := fx.tracker.Fasting.Start(16)
	require.NoError(t, err)
	fx.clock.Advance(17 * time.Hour)

	entry, err := fx.tracker.EndFast("")
	require.NoError(t, err)
	assert.True(t, entry.Completed)
	assert.Equal(t, 1, fx.tracker.Protocol.Streak(streak.Fasting).Current)

	_, err = fx.tracker.Fasting.Start(16)
	require.NoError(t, err)
	fx.clock.Advance(2 * time.Hour)
	entry, err = fx.tracker.EndFast("")
	require.NoError(t, err)
	assert.False(t, entry.Completed)
	assert.Equal(t, 1, fx.tracker.Protocol.Streak(streak.Fasting).Current)

	_, err = fx.tracker.EndFast("")
	assert.ErrorIs(t, err, fasting.ErrNotActive)
}

func TestDashboard(t *testing.T) {
	fx := newFixture(t)

	require.NoError(t, fx.scores.RecordSample(perfectSleep("2026-03-10", store.SourceOura)))
	_, err := fx.tracker.Protocol.ApplyTemplate("Longevity Essentials")
	require.NoError(t, err)
	_, err = fx.tracker.Fasting.Start(16)
	require.NoError(t, err)
	fx.clock.Advance(13 * time.Hour)

	data, err := fx.tracker.Dashboard()
	require.NoError(t, err)

	assert.Equal(t, 100, data.Scores.Overall)
	assert.Equal(t, "Excellent", data.Description)
	assert.True(t, data.Fasting.Active)
	assert.Equal(t, analysis.StateFatBurning, data.Fasting.State.State)
	assert.Equal(t, 8, data.Today.TotalCount)
	assert.Len(t, data.Streaks, len(streak.Types))
	assert.Equal(t, 0, data.Adherence7)
}

type fakeUploader struct {
	sent []string
	fail map[string]bool
}

func (f *fakeUploader) RecordMetrics(_ context.Context, s store.MetricSample) error {
	if f.fail[s.Date] {
		return errors.New("gateway unavailable")
	}
	f.sent = append(f.sent, s.Date+"/"+string(s.Source))
	return nil
}

func TestSyncMetrics(t *testing.T) {
	fx := newFixture(t)
	for _, day := range []string{"2026-03-08", "2026-03-09", "2026-03-10"} {
		require.NoError(t, fx.scores.RecordSample(perfectSleep(day, store.SourceOura)))
	}

	uploader := &fakeUploader{fail: map[string]bool{"2026-03-09": true}}
	svc := NewSyncService(uploader, fx.db, zerolog.Nop())

	progress := make(chan SyncProgress, 10)
	result, err := svc.SyncMetrics(context.Background(), progress)
	require.NoError(t, err)

	var updates int
	for range progress {
		updates++
	}
	assert.Equal(t, 3, updates)
	assert.Equal(t, 2, result.SamplesUploaded)
	assert.Len(t, result.Errors, 1)
	assert.Equal(t, "2026-03-08", result.Cursor)

	// retry resends from the cursor day
	uploader.fail = nil
	uploader.sent = nil
	result, err = svc.SyncMetrics(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"2026-03-08/oura", "2026-03-09/oura", "2026-03-10/oura"}, uploader.sent)
	assert.Equal(t, "2026-03-10", result.Cursor)

	cursor, ok, err := fx.db.Get(MetricsSyncCursorKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "2026-03-10", cursor)
}
