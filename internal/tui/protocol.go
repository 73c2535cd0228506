package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"longevity/internal/protocol"
	"longevity/internal/service"
	"longevity/internal/streak"
)

// ProtocolModel is today's checklist screen model
type ProtocolModel struct {
	tracker *service.Tracker
	view    protocol.DayView
	streak  streak.Data
	cursor  int
	loading bool
	err     error
}

// NewProtocolModel creates a new protocol model
func NewProtocolModel(t *service.Tracker) ProtocolModel {
	return ProtocolModel{
		tracker: t,
		loading: true,
	}
}

// Init initializes the checklist screen
func (m ProtocolModel) Init() tea.Cmd {
	return m.load
}

type checklistMsg struct {
	view   protocol.DayView
	streak streak.Data
	err    error
}

func (m ProtocolModel) load() tea.Msg {
	return checklistMsg{
		view:   m.tracker.Protocol.Today(),
		streak: m.tracker.Protocol.Streak(streak.Protocol),
	}
}

// toggle logs or unlogs the item under the cursor
func (m ProtocolModel) toggle(id string, done bool) tea.Cmd {
	return func() tea.Msg {
		var err error
		if done {
			err = m.tracker.Protocol.UnlogItem(id)
		} else {
			err = m.tracker.Protocol.LogItem(id)
		}
		msg := m.load().(checklistMsg)
		msg.err = err
		return msg
	}
}

// Update handles messages
func (m ProtocolModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case checklistMsg:
		m.loading = false
		m.err = msg.err
		m.view = msg.view
		m.streak = msg.streak
		if m.cursor >= len(m.view.Items) {
			m.cursor = max(len(m.view.Items)-1, 0)
		}

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.view.Items)-1 {
				m.cursor++
			}
		case " ", "enter":
			items := m.ordered()
			if m.cursor < len(items) {
				item := items[m.cursor]
				return m, m.toggle(item.ID, m.view.Completed[item.ID])
			}
		case "r":
			m.loading = true
			return m, m.load
		}
	}
	return m, nil
}

// View renders the checklist
func (m ProtocolModel) View() string {
	if m.loading {
		return "\n  Loading protocol..."
	}

	title := cardTitleStyle.Render(fmt.Sprintf("Protocol - %s", m.view.Date))

	if len(m.view.Items) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left,
			title,
			"  No active protocol items.",
			statusStyle.Render("  Apply a template with 'longevity protocol template apply <name>'"),
		)
	}

	var sections []string
	sections = append(sections, title)

	summary := fmt.Sprintf("  %d/%d done  %s %d%%   streak %d (best %d)",
		m.view.CompletedCount, m.view.TotalCount,
		RenderProgressBar(float64(m.view.Percent)/100, 20), m.view.Percent,
		m.streak.Current, m.streak.Longest)
	sections = append(sections, summary, "")

	var slot protocol.TimeOfDay
	for i, item := range m.ordered() {
		if i == 0 || item.Slot() != slot {
			slot = item.Slot()
			sections = append(sections, sectionTitleStyle.Render("  "+strings.ToUpper(string(slot))))
		}
		sections = append(sections, m.renderItem(item, i))
	}

	if m.err != nil {
		sections = append(sections, errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err)))
	}
	sections = append(sections, statusStyle.Render("  j/k to move, space to check off, 'r' to refresh"))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// ordered lists the active items grouped by time of day; the cursor indexes
// this order
func (m ProtocolModel) ordered() []protocol.Item {
	items := make([]protocol.Item, 0, len(m.view.Items))
	for _, slot := range protocol.TimesOfDay {
		for _, item := range m.view.Items {
			if item.Slot() == slot {
				items = append(items, item)
			}
		}
	}
	return items
}

func (m ProtocolModel) renderItem(item protocol.Item, index int) string {
	check := "[ ]"
	if m.view.Completed[item.ID] {
		check = "[x]"
	}

	icon := ""
	if info, err := item.Category.Info(); err == nil {
		icon = info.Icon
	}

	line := fmt.Sprintf("%s %s %s", check, icon, truncate(item.Name, 36))
	if item.Dosage != "" {
		line += "  " + item.Dosage
	}

	if index == m.cursor {
		return tableSelectedStyle.Render(line)
	}
	if m.view.Completed[item.ID] {
		return tableRowStyle.Inherit(mutedStyle).Render(line)
	}
	return tableRowStyle.Render(line)
}
