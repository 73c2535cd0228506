// Package protocol tracks the user's daily longevity checklist: the item
// list, today's completions, per-day history and streaks.
package protocol

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"longevity/internal/storage"
	"longevity/internal/streak"
)

// MaxHistory bounds the persisted per-day history
const MaxHistory = 100

var (
	// ErrItemNotFound is returned for ids not in the item list
	ErrItemNotFound = errors.New("protocol item not found")
	// ErrUnknownTemplate is returned by ApplyTemplate for unknown names
	ErrUnknownTemplate = errors.New("unknown protocol template")
)

// Publisher receives checklist events. Implementations must not block.
type Publisher interface {
	ItemLogged(item Item, day string)
	ItemUnlogged(item Item, day string)
}

// todayDoc is the persisted completion set, valid only for Date
type todayDoc struct {
	Date         string   `json:"date"`
	CompletedIDs []string `json:"completedIds"`
}

// HistoryEntry is the completion summary of one day
type HistoryEntry struct {
	Date           string   `json:"date"`
	CompletedCount int      `json:"completedCount"`
	TotalCount     int      `json:"totalCount"`
	CompletedIDs   []string `json:"completedIds"`
}

// Manager owns the checklist state. All methods are safe for concurrent use.
type Manager struct {
	mu        sync.Mutex
	store     *storage.Adapter
	now       func() time.Time
	publisher Publisher
	templates []Template

	items   []Item
	today   todayDoc
	history []HistoryEntry
	streaks map[streak.Type]streak.Data
}

// Option configures a Manager
type Option func(*Manager)

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithPublisher attaches an event publisher
func WithPublisher(p Publisher) Option {
	return func(m *Manager) { m.publisher = p }
}

// WithTemplates adds templates after the built-in ones
func WithTemplates(t ...Template) Option {
	return func(m *Manager) { m.templates = append(m.templates, t...) }
}

// NewManager loads persisted state and resets streaks broken by a gap day
func NewManager(store *storage.Adapter, opts ...Option) *Manager {
	m := &Manager{
		store:     store,
		now:       time.Now,
		templates: append([]Template(nil), BuiltinTemplates...),
	}
	for _, opt := range opts {
		opt(m)
	}

	m.items = storage.Load(store, storage.KeyProtocolItems, []Item{})
	m.history = storage.Load(store, storage.KeyProtocolHistory, []HistoryEntry{})
	m.streaks = storage.Load(store, storage.KeyProtocolStreaks, map[streak.Type]streak.Data{})
	if m.streaks == nil {
		m.streaks = map[streak.Type]streak.Data{}
	}

	now := m.now()
	m.refreshStreaksLocked(now)

	m.today = storage.Load(store, storage.KeyProtocolToday, todayDoc{})
	m.rollover(now)

	return m
}

// refreshStreaksLocked zeroes streaks whose last day is neither today nor
// yesterday and persists any reset
func (m *Manager) refreshStreaksLocked(now time.Time) {
	changed := false
	for typ, data := range m.streaks {
		if refreshed := data.Refresh(now); refreshed != data {
			m.streaks[typ] = refreshed
			changed = true
		}
	}
	if changed {
		m.store.Save(storage.KeyProtocolStreaks, m.streaks)
	}
}

// rollover discards a completion set from a previous day
func (m *Manager) rollover(now time.Time) {
	day := streak.DateKey(now)
	if m.today.Date != day {
		m.today = todayDoc{Date: day, CompletedIDs: []string{}}
	}
}

// LogItem marks id completed today. Logging an item twice is a no-op.
func (m *Manager) LogItem(id string) error {
	m.mu.Lock()

	now := m.now()
	m.rollover(now)

	item, ok := m.findLocked(id)
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("log %q: %w", id, ErrItemNotFound)
	}
	if m.completedLocked(id) {
		m.mu.Unlock()
		return nil
	}

	m.today.CompletedIDs = append(m.today.CompletedIDs, id)
	m.store.Save(storage.KeyProtocolToday, m.today)
	m.upsertHistoryLocked()

	m.refreshStreaksLocked(now)
	streaksChanged := false
	if m.allDoneLocked(func(Item) bool { return true }) {
		streaksChanged = m.bumpLocked(streak.Protocol, now) || streaksChanged
	}
	if item.Category == CategoryExercise && m.allDoneLocked(func(i Item) bool { return i.Category == CategoryExercise }) {
		streaksChanged = m.bumpLocked(streak.Exercise, now) || streaksChanged
	}
	if streaksChanged {
		m.store.Save(storage.KeyProtocolStreaks, m.streaks)
	}

	day := m.today.Date
	m.mu.Unlock()

	if m.publisher != nil {
		m.publisher.ItemLogged(item, day)
	}
	return nil
}

// UnlogItem removes id from today's completions. Streaks already counted
// for today are kept.
func (m *Manager) UnlogItem(id string) error {
	m.mu.Lock()

	m.rollover(m.now())

	item, ok := m.findLocked(id)
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("unlog %q: %w", id, ErrItemNotFound)
	}
	if !m.removeCompletedLocked(id) {
		m.mu.Unlock()
		return nil
	}

	m.store.Save(storage.KeyProtocolToday, m.today)
	m.upsertHistoryLocked()
	day := m.today.Date
	m.mu.Unlock()

	if m.publisher != nil {
		m.publisher.ItemUnlogged(item, day)
	}
	return nil
}

// RecordStreak counts the current day for typ. It reports whether the
// streak moved; a day is only counted once.
func (m *Manager) RecordStreak(typ streak.Type) (streak.Data, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	m.refreshStreaksLocked(now)
	bumped := m.bumpLocked(typ, now)
	if bumped {
		m.store.Save(storage.KeyProtocolStreaks, m.streaks)
	}
	return m.streaks[typ], bumped
}

// Streaks returns every tracked streak, zero-valued when never counted
func (m *Manager) Streaks() map[streak.Type]streak.Data {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.refreshStreaksLocked(m.now())
	out := make(map[streak.Type]streak.Data, len(streak.Types))
	for _, typ := range streak.Types {
		out[typ] = m.streaks[typ]
	}
	for typ, data := range m.streaks {
		out[typ] = data
	}
	return out
}

// Streak returns a single streak
func (m *Manager) Streak(typ streak.Type) streak.Data {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.refreshStreaksLocked(m.now())
	return m.streaks[typ]
}

// History returns the per-day history, newest first
func (m *Manager) History() []HistoryEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]HistoryEntry, len(m.history))
	copy(out, m.history)
	return out
}

func (m *Manager) bumpLocked(typ streak.Type, now time.Time) bool {
	next, bumped := m.streaks[typ].Bump(now)
	if bumped {
		m.streaks[typ] = next
	}
	return bumped
}

// allDoneLocked reports whether every active item matching filter is
// completed today. An empty selection is never done.
func (m *Manager) allDoneLocked(filter func(Item) bool) bool {
	total, done := 0, 0
	for _, item := range m.items {
		if !item.IsActive || !filter(item) {
			continue
		}
		total++
		if m.completedLocked(item.ID) {
			done++
		}
	}
	return total > 0 && done >= total
}

// countsLocked returns completed and total counts over active items
func (m *Manager) countsLocked() (done, total int) {
	for _, item := range m.items {
		if !item.IsActive {
			continue
		}
		total++
		if m.completedLocked(item.ID) {
			done++
		}
	}
	return done, total
}

func (m *Manager) upsertHistoryLocked() {
	done, total := m.countsLocked()
	entry := HistoryEntry{
		Date:           m.today.Date,
		CompletedCount: done,
		TotalCount:     total,
		CompletedIDs:   append([]string{}, m.today.CompletedIDs...),
	}

	replaced := false
	for i := range m.history {
		if m.history[i].Date == entry.Date {
			m.history[i] = entry
			replaced = true
			break
		}
	}
	if !replaced {
		m.history = append([]HistoryEntry{entry}, m.history...)
		if len(m.history) > MaxHistory {
			m.history = m.history[:MaxHistory]
		}
	}

	m.store.Save(storage.KeyProtocolHistory, m.history)
}

func (m *Manager) findLocked(id string) (Item, bool) {
	for _, item := range m.items {
		if item.ID == id {
			return item, true
		}
	}
	return Item{}, false
}

func (m *Manager) completedLocked(id string) bool {
	for _, done := range m.today.CompletedIDs {
		if done == id {
			return true
		}
	}
	return false
}

func (m *Manager) removeCompletedLocked(id string) bool {
	for i, done := range m.today.CompletedIDs {
		if done == id {
			m.today.CompletedIDs = append(m.today.CompletedIDs[:i], m.today.CompletedIDs[i+1:]...)
			return true
		}
	}
	return false
}

func newID() string {
	return uuid.NewString()
}

func (m *Manager) saveItemsLocked() {
	m.store.Save(storage.KeyProtocolItems, m.items)
}
