package protocol

import (
	"fmt"
	"math"

	"longevity/internal/storage"
)

// Items returns the checklist in stored order
func (m *Manager) Items() []Item {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Item, len(m.items))
	copy(out, m.items)
	return out
}

// Item returns one item by id
func (m *Manager) Item(id string) (Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := m.findLocked(id)
	if !ok {
		return Item{}, fmt.Errorf("get %q: %w", id, ErrItemNotFound)
	}
	return item, nil
}

// AddItem appends a new active item with a fresh id
func (m *Manager) AddItem(item Item) (Item, error) {
	if item.Frequency == "" {
		item.Frequency = Daily
	}
	if err := item.Validate(); err != nil {
		return Item{}, fmt.Errorf("add item: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	item.ID = newID()
	item.IsActive = true
	m.items = append(m.items, item)
	m.saveItemsLocked()
	return item, nil
}

// UpdateItem replaces the item with the same id. The active flag is kept.
func (m *Manager) UpdateItem(item Item) error {
	if err := item.Validate(); err != nil {
		return fmt.Errorf("update item: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.items {
		if m.items[i].ID == item.ID {
			item.IsActive = m.items[i].IsActive
			m.items[i] = item
			m.saveItemsLocked()
			return nil
		}
	}
	return fmt.Errorf("update %q: %w", item.ID, ErrItemNotFound)
}

// RemoveItem deletes the item and purges it from today's completions
func (m *Manager) RemoveItem(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.items {
		if m.items[i].ID != id {
			continue
		}
		m.items = append(m.items[:i], m.items[i+1:]...)
		m.saveItemsLocked()

		m.rollover(m.now())
		if m.removeCompletedLocked(id) {
			m.store.Save(storage.KeyProtocolToday, m.today)
		}
		m.resyncTodayLocked()
		return nil
	}
	return fmt.Errorf("remove %q: %w", id, ErrItemNotFound)
}

// ToggleItemActive flips the active flag and returns the new value
func (m *Manager) ToggleItemActive(id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.items {
		if m.items[i].ID == id {
			m.items[i].IsActive = !m.items[i].IsActive
			m.saveItemsLocked()
			m.rollover(m.now())
			m.resyncTodayLocked()
			return m.items[i].IsActive, nil
		}
	}
	return false, fmt.Errorf("toggle %q: %w", id, ErrItemNotFound)
}

// ItemsByTimeOfDay groups active items by slot
func (m *Manager) ItemsByTimeOfDay() map[TimeOfDay][]Item {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[TimeOfDay][]Item)
	for _, item := range m.items {
		if !item.IsActive {
			continue
		}
		out[item.Slot()] = append(out[item.Slot()], item)
	}
	return out
}

// DayView is today's checklist state
type DayView struct {
	Date           string
	Items          []Item // active items
	Completed      map[string]bool
	CompletedCount int
	TotalCount     int
	Percent        int
}

// Today returns the checklist state for the current day
func (m *Manager) Today() DayView {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.rollover(m.now())

	v := DayView{
		Date:      m.today.Date,
		Completed: make(map[string]bool),
	}
	for _, item := range m.items {
		if !item.IsActive {
			continue
		}
		v.Items = append(v.Items, item)
		if m.completedLocked(item.ID) {
			v.Completed[item.ID] = true
			v.CompletedCount++
		}
	}
	v.TotalCount = len(v.Items)
	if v.TotalCount > 0 {
		v.Percent = int(math.Round(float64(v.CompletedCount) / float64(v.TotalCount) * 100))
	}
	return v
}

// resyncTodayLocked rewrites today's history entry after the item list
// changed. Days without an entry stay absent.
func (m *Manager) resyncTodayLocked() {
	for _, entry := range m.history {
		if entry.Date == m.today.Date {
			m.upsertHistoryLocked()
			return
		}
	}
}
