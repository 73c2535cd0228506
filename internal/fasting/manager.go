// Package fasting tracks fasting sessions. At most one session is active at
// a time; elapsed time is always derived from the persisted start timestamp.
package fasting

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"longevity/internal/analysis"
	"longevity/internal/storage"
	"longevity/internal/streak"
)

var (
	// ErrAlreadyActive is returned when starting while a fast is running
	ErrAlreadyActive = errors.New("a fast is already active")
	// ErrNotActive is returned when ending or cancelling with no active fast
	ErrNotActive = errors.New("no active fast")
	// ErrInvalidTarget is returned when no positive target can be resolved
	ErrInvalidTarget = errors.New("target hours must be positive")
)

// Publisher receives lifecycle events. Implementations must not block.
type Publisher interface {
	FastStarted(s Session)
	FastEnded(s Session)
	FastCancelled(s Session)
}

// Manager owns the current session and the history log
type Manager struct {
	mu            sync.Mutex
	store         *storage.Adapter
	now           func() time.Time
	defaultTarget float64
	publisher     Publisher

	state   persistedState
	history []HistoryEntry
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

// NewManager loads persisted state from store
func NewManager(store *storage.Adapter, defaultTargetHours float64, opts ...Option) *Manager {
	m := &Manager{
		store:         store,
		now:           time.Now,
		defaultTarget: defaultTargetHours,
	}
	for _, opt := range opts {
		opt(m)
	}

	m.state = storage.Load(store, storage.KeyFastingState, persistedState{})
	if m.state.CurrentSession == nil || m.state.CurrentSession.StartedAt.IsZero() {
		m.state = persistedState{}
	}
	m.state.IsActive = m.state.CurrentSession != nil
	m.history = storage.Load(store, storage.KeyFastingHistory, []HistoryEntry{})

	return m
}

// Start begins a new fast. targetHours <= 0 uses the configured default.
func (m *Manager) Start(targetHours float64) (*Session, error) {
	m.mu.Lock()

	if m.state.IsActive {
		m.mu.Unlock()
		return nil, ErrAlreadyActive
	}

	if targetHours <= 0 || math.IsNaN(targetHours) || math.IsInf(targetHours, 0) {
		targetHours = m.defaultTarget
	}
	if targetHours <= 0 || math.IsNaN(targetHours) || math.IsInf(targetHours, 0) {
		m.mu.Unlock()
		return nil, ErrInvalidTarget
	}

	s := &Session{
		ID:          uuid.NewString(),
		StartedAt:   m.now(),
		TargetHours: targetHours,
	}
	m.state = persistedState{IsActive: true, CurrentSession: s}
	m.store.Save(storage.KeyFastingState, m.state)

	started := *s
	m.mu.Unlock()

	if m.publisher != nil {
		m.publisher.FastStarted(started)
	}
	return &started, nil
}

// End finishes the active fast and appends it to the history log
func (m *Manager) End(notes string) (*HistoryEntry, error) {
	m.mu.Lock()

	if !m.state.IsActive {
		m.mu.Unlock()
		return nil, ErrNotActive
	}

	now := m.now()
	s := *m.state.CurrentSession
	actual := s.ElapsedHours(now)

	s.EndedAt = &now
	s.ActualHours = &actual
	s.Notes = notes
	s.Completed = actual >= s.TargetHours

	entry := HistoryEntry{
		Date:        streak.DateKey(s.StartedAt),
		Duration:    roundTo(actual, 1),
		TargetHours: s.TargetHours,
		Completed:   s.Completed,
		Notes:       notes,
	}

	history := append([]HistoryEntry{entry}, m.history...)
	if len(history) > MaxHistory {
		history = history[:MaxHistory]
	}
	m.history = history
	m.state = persistedState{}

	m.store.Save(storage.KeyFastingHistory, m.history)
	m.store.Save(storage.KeyFastingState, m.state)
	m.mu.Unlock()

	if m.publisher != nil {
		m.publisher.FastEnded(s)
	}
	return &entry, nil
}

// Cancel discards the active fast without recording it
func (m *Manager) Cancel() error {
	m.mu.Lock()

	if !m.state.IsActive {
		m.mu.Unlock()
		return ErrNotActive
	}

	s := *m.state.CurrentSession
	m.state = persistedState{}
	m.store.Save(storage.KeyFastingState, m.state)
	m.mu.Unlock()

	if m.publisher != nil {
		m.publisher.FastCancelled(s)
	}
	return nil
}

// Current returns a copy of the active session
func (m *Manager) Current() (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.state.IsActive {
		return nil, false
	}
	s := *m.state.CurrentSession
	return &s, true
}

// Status derives elapsed time, progress and metabolic state for now
func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.statusLocked(m.now())
}

func (m *Manager) statusLocked(now time.Time) Status {
	st := Status{TargetHours: m.defaultTarget}

	if m.state.IsActive {
		s := *m.state.CurrentSession
		st.Active = true
		st.Session = &s
		st.TargetHours = s.TargetHours
		st.ElapsedHours = s.ElapsedHours(now)

		if st.TargetHours > 0 {
			st.ProgressPercent = math.Min(100, st.ElapsedHours/st.TargetHours*100)
		}
		remaining := s.StartedAt.Add(time.Duration(s.TargetHours * float64(time.Hour))).Sub(now)
		if remaining > 0 {
			st.Remaining = remaining
		}
	}

	st.State, _ = analysis.StateInfo(analysis.Classify(st.ElapsedHours))
	if next, ok := analysis.NextState(st.ElapsedHours); ok {
		st.Next = &next
	}
	return st
}

// Watch emits a Status roughly every interval while a fast is active.
// The channel closes when ctx is done or the fast is no longer active.
// It only drives display refreshes; Status is the source of truth.
func (m *Manager) Watch(ctx context.Context, interval time.Duration) <-chan Status {
	if interval <= 0 {
		interval = time.Second
	}
	ch := make(chan Status, 1)

	go func() {
		defer close(ch)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			st := m.Status()
			if !st.Active {
				return
			}

			select {
			case ch <- st:
			case <-ctx.Done():
				return
			}

			select {
			case <-ticker.C:
			case <-ctx.Done():
				return
			}
		}
	}()

	return ch
}

// History returns the log, newest first
func (m *Manager) History() []HistoryEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]HistoryEntry, len(m.history))
	copy(out, m.history)
	return out
}

// Stats derives statistics from the history log
func (m *Manager) Stats() Stats {
	return ComputeStats(m.History())
}

// String implements fmt.Stringer for log output
func (s Session) String() string {
	return fmt.Sprintf("fast %s (target %.0fh, started %s)", s.ID, s.TargetHours, s.StartedAt.Format(time.RFC3339))
}

func roundTo(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}
