package protocol

import (
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"longevity/internal/storage"
	"longevity/internal/streak"
)

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

type recordingPublisher struct {
	logged   []string
	unlogged []string
}

func (p *recordingPublisher) ItemLogged(item Item, day string) {
	p.logged = append(p.logged, item.Name+"@"+day)
}

func (p *recordingPublisher) ItemUnlogged(item Item, day string) {
	p.unlogged = append(p.unlogged, item.Name+"@"+day)
}

func newTestManager(t *testing.T, opts ...Option) (*Manager, *fakeClock, *storage.Adapter) {
	t.Helper()
	clock := &fakeClock{t: time.Date(2026, 3, 10, 9, 0, 0, 0, time.Local)}
	store := storage.NewAdapter(storage.NewMemoryBackend(), zerolog.Nop())
	opts = append([]Option{WithClock(clock.Now)}, opts...)
	return NewManager(store, opts...), clock, store
}

func addItems(t *testing.T, m *Manager, names ...string) []Item {
	t.Helper()
	var items []Item
	for _, name := range names {
		item, err := m.AddItem(Item{Name: name, Category: CategorySupplement, TimeOfDay: Morning})
		require.NoError(t, err)
		items = append(items, item)
	}
	return items
}

func logAll(t *testing.T, m *Manager, items []Item) {
	t.Helper()
	for _, item := range items {
		require.NoError(t, m.LogItem(item.ID))
	}
}

func TestLogItemIsIdempotent(t *testing.T) {
	m, _, _ := newTestManager(t)
	items := addItems(t, m, "Vitamin D3", "Omega-3")

	require.NoError(t, m.LogItem(items[0].ID))
	before := m.History()
	beforeStreaks := m.Streaks()

	require.NoError(t, m.LogItem(items[0].ID))

	assert.Equal(t, before, m.History())
	assert.Equal(t, beforeStreaks, m.Streaks())
	today := m.Today()
	assert.Equal(t, 1, today.CompletedCount)
	assert.Equal(t, 2, today.TotalCount)
	assert.Equal(t, 50, today.Percent)
}

func TestCompletingChecklistBumpsStreakOnce(t *testing.T) {
	m, _, _ := newTestManager(t)
	items := addItems(t, m, "Vitamin D3", "Omega-3", "Creatine")

	logAll(t, m, items[:2])
	assert.Zero(t, m.Streak(streak.Protocol).Current)

	require.NoError(t, m.LogItem(items[2].ID))
	require.NoError(t, m.LogItem(items[2].ID))

	s := m.Streak(streak.Protocol)
	assert.Equal(t, 1, s.Current)
	assert.Equal(t, 1, s.Longest)
	assert.Equal(t, "2026-03-10", s.LastCompletedDate)

	require.NoError(t, m.UnlogItem(items[2].ID))
	require.NoError(t, m.LogItem(items[2].ID))
	assert.Equal(t, 1, m.Streak(streak.Protocol).Current)
}

func TestUnlogDoesNotRollBackStreak(t *testing.T) {
	m, _, _ := newTestManager(t)
	items := addItems(t, m, "Vitamin D3")

	require.NoError(t, m.LogItem(items[0].ID))
	require.NoError(t, m.UnlogItem(items[0].ID))

	assert.Equal(t, 1, m.Streak(streak.Protocol).Current)
	history := m.History()
	require.Len(t, history, 1)
	assert.Equal(t, 0, history[0].CompletedCount)
	assert.Equal(t, 1, history[0].TotalCount)
	assert.Empty(t, history[0].CompletedIDs)
}

func TestStreakContinuesAcrossDays(t *testing.T) {
	m, clock, _ := newTestManager(t)
	items := addItems(t, m, "Vitamin D3")

	logAll(t, m, items)
	clock.Advance(24 * time.Hour)
	assert.Empty(t, m.Today().Completed)
	logAll(t, m, items)

	s := m.Streak(streak.Protocol)
	assert.Equal(t, 2, s.Current)
	assert.Equal(t, 2, s.Longest)
	assert.Len(t, m.History(), 2)
}

func TestGapDayResetsStreakOnInit(t *testing.T) {
	m, clock, store := newTestManager(t)
	items := addItems(t, m, "Vitamin D3")

	// day N and N+1 completed
	logAll(t, m, items)
	clock.Advance(24 * time.Hour)
	logAll(t, m, items)

	// N+2 missed, reopen on N+3
	clock.Advance(48 * time.Hour)
	reopened := NewManager(store, WithClock(clock.Now))

	s := reopened.Streak(streak.Protocol)
	assert.Equal(t, 0, s.Current)
	assert.GreaterOrEqual(t, s.Longest, 2)

	persisted := storage.Load(store, storage.KeyProtocolStreaks, map[streak.Type]streak.Data{})
	assert.Equal(t, 0, persisted[streak.Protocol].Current)
}

func TestYesterdayStreakSurvivesInit(t *testing.T) {
	m, clock, store := newTestManager(t)
	items := addItems(t, m, "Vitamin D3")
	logAll(t, m, items)

	clock.Advance(24 * time.Hour)
	reopened := NewManager(store, WithClock(clock.Now))

	assert.Equal(t, 1, reopened.Streak(streak.Protocol).Current)
	assert.Empty(t, reopened.Today().Completed)
}

func TestInactiveItemsDoNotBlockStreak(t *testing.T) {
	m, _, _ := newTestManager(t)
	items := addItems(t, m, "Vitamin D3", "Omega-3")

	active, err := m.ToggleItemActive(items[1].ID)
	require.NoError(t, err)
	assert.False(t, active)

	require.NoError(t, m.LogItem(items[0].ID))
	assert.Equal(t, 1, m.Streak(streak.Protocol).Current)
}

func TestExerciseStreak(t *testing.T) {
	m, _, _ := newTestManager(t)
	run, err := m.AddItem(Item{Name: "Zone 2 cardio", Category: CategoryExercise})
	require.NoError(t, err)
	addItems(t, m, "Magnesium")

	require.NoError(t, m.LogItem(run.ID))

	assert.Equal(t, 1, m.Streak(streak.Exercise).Current)
	assert.Zero(t, m.Streak(streak.Protocol).Current)
}

func TestRecordStreak(t *testing.T) {
	m, clock, _ := newTestManager(t)

	s, bumped := m.RecordStreak(streak.Fasting)
	assert.True(t, bumped)
	assert.Equal(t, 1, s.Current)

	_, bumped = m.RecordStreak(streak.Fasting)
	assert.False(t, bumped)

	clock.Advance(24 * time.Hour)
	s, bumped = m.RecordStreak(streak.Fasting)
	assert.True(t, bumped)
	assert.Equal(t, 2, s.Current)

	all := m.Streaks()
	assert.Len(t, all, len(streak.Types))
	assert.Equal(t, 2, all[streak.Fasting].Longest)
}

func TestUnknownItem(t *testing.T) {
	m, _, _ := newTestManager(t)

	assert.ErrorIs(t, m.LogItem("missing"), ErrItemNotFound)
	assert.ErrorIs(t, m.UnlogItem("missing"), ErrItemNotFound)
	assert.ErrorIs(t, m.RemoveItem("missing"), ErrItemNotFound)
	assert.ErrorIs(t, m.UpdateItem(Item{ID: "missing", Name: "x", Category: CategorySleep}), ErrItemNotFound)
	_, err := m.ToggleItemActive("missing")
	assert.ErrorIs(t, err, ErrItemNotFound)
	assert.Empty(t, m.History())
}

func TestRemoveItemPurgesTodaysCompletion(t *testing.T) {
	m, _, store := newTestManager(t)
	items := addItems(t, m, "Vitamin D3", "Omega-3")
	require.NoError(t, m.LogItem(items[0].ID))

	require.NoError(t, m.RemoveItem(items[0].ID))

	today := m.Today()
	assert.Empty(t, today.Completed)
	assert.Equal(t, 1, today.TotalCount)

	reopened := NewManager(store, WithClock(m.now))
	assert.Empty(t, reopened.Today().Completed)
	assert.Len(t, reopened.Items(), 1)
}

func TestRemoveItemRewritesTodaysHistory(t *testing.T) {
	m, _, _ := newTestManager(t)
	items := addItems(t, m, "Vitamin D3", "Omega-3")
	require.NoError(t, m.LogItem(items[0].ID))

	require.NoError(t, m.RemoveItem(items[0].ID))

	history := m.History()
	require.Len(t, history, 1)
	assert.Equal(t, 0, history[0].CompletedCount)
	assert.Equal(t, 1, history[0].TotalCount)
	assert.Empty(t, history[0].CompletedIDs)
	assert.Equal(t, 0, m.Adherence7())
}

func TestToggleItemActiveRewritesTodaysHistory(t *testing.T) {
	m, _, _ := newTestManager(t)
	items := addItems(t, m, "Vitamin D3", "Omega-3")
	require.NoError(t, m.LogItem(items[0].ID))
	assert.Equal(t, 50, m.Adherence7())

	_, err := m.ToggleItemActive(items[1].ID)
	require.NoError(t, err)

	history := m.History()
	require.Len(t, history, 1)
	assert.Equal(t, 1, history[0].CompletedCount)
	assert.Equal(t, 1, history[0].TotalCount)
	assert.Equal(t, 100, m.Adherence7())
}

func TestToggleWithoutHistoryAddsNoEntry(t *testing.T) {
	m, _, _ := newTestManager(t)
	items := addItems(t, m, "Vitamin D3")

	_, err := m.ToggleItemActive(items[0].ID)
	require.NoError(t, err)
	assert.Empty(t, m.History())
}

func TestLiveManagerResetsBrokenStreak(t *testing.T) {
	m, clock, store := newTestManager(t)
	items := addItems(t, m, "Vitamin D3")
	logAll(t, m, items)
	require.Equal(t, 1, m.Streak(streak.Protocol).Current)

	clock.Advance(72 * time.Hour)

	s := m.Streak(streak.Protocol)
	assert.Zero(t, s.Current)
	assert.Equal(t, 1, s.Longest)
	assert.Zero(t, m.Streaks()[streak.Protocol].Current)

	// the reset is persisted, not just reported
	persisted := storage.Load(store, storage.KeyProtocolStreaks, map[streak.Type]streak.Data{})
	assert.Zero(t, persisted[streak.Protocol].Current)
	assert.Equal(t, 1, persisted[streak.Protocol].Longest)
}

func TestRecordStreakAfterGapStartsNewRun(t *testing.T) {
	m, clock, _ := newTestManager(t)
	_, bumped := m.RecordStreak(streak.Fasting)
	require.True(t, bumped)

	clock.Advance(72 * time.Hour)
	s, bumped := m.RecordStreak(streak.Fasting)
	assert.True(t, bumped)
	assert.Equal(t, 1, s.Current)
	assert.Equal(t, 1, s.Longest)
}

func TestUpdateItemKeepsActiveFlag(t *testing.T) {
	m, _, _ := newTestManager(t)
	items := addItems(t, m, "Vitamin D3")
	_, err := m.ToggleItemActive(items[0].ID)
	require.NoError(t, err)

	updated := items[0]
	updated.Dosage = "4000 IU"
	updated.IsActive = true
	require.NoError(t, m.UpdateItem(updated))

	got, err := m.Item(items[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "4000 IU", got.Dosage)
	assert.False(t, got.IsActive)
}

func TestAddItemValidation(t *testing.T) {
	m, _, _ := newTestManager(t)

	_, err := m.AddItem(Item{Name: "Sauna", Category: "spa"})
	assert.Error(t, err)
	_, err = m.AddItem(Item{Category: CategoryTherapy})
	assert.Error(t, err)
	assert.Empty(t, m.Items())

	item, err := m.AddItem(Item{Name: "Sauna", Category: CategoryTherapy})
	require.NoError(t, err)
	assert.Equal(t, Daily, item.Frequency)
	assert.Equal(t, Anytime, item.Slot())
}

func TestItemsByTimeOfDay(t *testing.T) {
	m, _, _ := newTestManager(t)
	_, err := m.AddItem(Item{Name: "Magnesium", Category: CategorySupplement, TimeOfDay: Evening})
	require.NoError(t, err)
	addItems(t, m, "Vitamin D3", "Creatine")

	groups := m.ItemsByTimeOfDay()
	assert.Len(t, groups[Morning], 2)
	assert.Len(t, groups[Evening], 1)
	assert.Empty(t, groups[Afternoon])
}

func TestPublisherReceivesLogs(t *testing.T) {
	pub := &recordingPublisher{}
	m, _, _ := newTestManager(t, WithPublisher(pub))
	items := addItems(t, m, "Vitamin D3")

	require.NoError(t, m.LogItem(items[0].ID))
	require.NoError(t, m.LogItem(items[0].ID))

	assert.Equal(t, []string{"Vitamin D3@2026-03-10"}, pub.logged)

	require.NoError(t, m.UnlogItem(items[0].ID))
	require.NoError(t, m.UnlogItem(items[0].ID))
	assert.Equal(t, []string{"Vitamin D3@2026-03-10"}, pub.unlogged)
}

func TestHistoryIsCapped(t *testing.T) {
	m, clock, _ := newTestManager(t)
	items := addItems(t, m, "Vitamin D3")

	for i := 0; i < MaxHistory+3; i++ {
		logAll(t, m, items)
		clock.Advance(24 * time.Hour)
	}

	history := m.History()
	assert.Len(t, history, MaxHistory)
	assert.True(t, history[0].Date > history[len(history)-1].Date)
}

func TestCategoryInfo(t *testing.T) {
	for _, c := range Categories {
		info, err := c.Info()
		require.NoError(t, err, c)
		assert.NotEmpty(t, info.Icon)
		assert.NotEmpty(t, info.Label)
	}

	_, err := Category("spa").Info()
	assert.Error(t, err)
}
