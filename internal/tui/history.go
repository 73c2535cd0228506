package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"

	"longevity/internal/fasting"
	"longevity/internal/protocol"
	"longevity/internal/service"
)

// chromeHeight is the space taken by header, nav and footer
const chromeHeight = 6

// HistoryModel is the scrolling history screen model
type HistoryModel struct {
	tracker  *service.Tracker
	data     *historyData
	viewport viewport.Model
	loading  bool
	err      error
	ready    bool
}

type historyData struct {
	scores   *service.ScoreHistory
	fasts    []fasting.HistoryEntry
	stats    fasting.Stats
	protocol []protocol.HistoryEntry
}

// NewHistoryModel creates a new history model
func NewHistoryModel(t *service.Tracker, width, height int) HistoryModel {
	m := HistoryModel{
		tracker: t,
		loading: true,
	}

	if width > 0 && height > chromeHeight {
		m.viewport = viewport.New(width, height-chromeHeight)
		m.ready = true
	}

	return m
}

// Init initializes the history screen
func (m HistoryModel) Init() tea.Cmd {
	return m.loadHistory
}

type historyLoadedMsg struct {
	data *historyData
	err  error
}

func (m HistoryModel) loadHistory() tea.Msg {
	scores, err := m.tracker.Scores.History(service.ScoreHistoryDays)
	if err != nil {
		return historyLoadedMsg{err: err}
	}

	fasts := m.tracker.Fasting.History()
	return historyLoadedMsg{data: &historyData{
		scores:   scores,
		fasts:    fasts,
		stats:    fasting.ComputeStats(fasts),
		protocol: m.tracker.Protocol.History(),
	}}
}

// Update handles messages
func (m HistoryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		m.loading = false
		m.err = msg.err
		m.data = msg.data
		if m.ready && m.data != nil {
			m.viewport.SetContent(m.renderContent())
		}

	case tea.WindowSizeMsg:
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-chromeHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - chromeHeight
		}
		if m.data != nil {
			m.viewport.SetContent(m.renderContent())
		}

	case tea.KeyMsg:
		switch msg.String() {
		case "r":
			m.loading = true
			return m, m.loadHistory
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the history screen
func (m HistoryModel) View() string {
	if m.loading {
		return "\n  Loading history..."
	}

	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err))
	}

	if !m.ready {
		return "\n  Initializing..."
	}

	return m.viewport.View()
}

func (m HistoryModel) renderContent() string {
	var b strings.Builder

	b.WriteString(cardTitleStyle.Render("Score History"))
	b.WriteString("\n")
	if len(m.data.scores.Days) == 0 {
		b.WriteString(mutedStyle.Render("  No scored days yet"))
		b.WriteString("\n")
	} else {
		fmt.Fprintf(&b, "  Trend: %s\n\n", trendLabel(m.data.scores.Trend))
		if len(m.data.scores.Overall) > 2 {
			b.WriteString(asciigraph.Plot(m.data.scores.Overall, asciigraph.Height(6), asciigraph.Width(50)))
			b.WriteString("\n\n")
		}
		b.WriteString(tableHeaderStyle.Render(fmt.Sprintf("%-10s  %7s  %5s  %8s  %8s  %9s",
			"Date", "Overall", "Sleep", "Activity", "Recovery", "Adherence")))
		b.WriteString("\n")
		for i := len(m.data.scores.Days) - 1; i >= 0; i-- {
			d := m.data.scores.Days[i]
			c := d.Scores.Components
			b.WriteString(tableRowStyle.Render(fmt.Sprintf("%-10s  %7d  %5s  %8s  %8s  %9s",
				d.Date, d.Scores.Overall, scoreText(c.Sleep), scoreText(c.Activity),
				scoreText(c.Recovery), scoreText(c.Adherence))))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(cardTitleStyle.Render("Fasting History"))
	b.WriteString("\n")
	if len(m.data.fasts) == 0 {
		b.WriteString(mutedStyle.Render("  No fasts yet"))
		b.WriteString("\n")
	} else {
		st := m.data.stats
		fmt.Fprintf(&b, "  %d fasts, %d completed (%d%%), average %.1fh, longest %.1fh, streak %d (best %d)\n\n",
			st.TotalFasts, st.CompletedFasts, st.CompletionRate, st.AverageDuration,
			st.LongestDuration, st.CurrentStreak, st.LongestStreak)
		b.WriteString(tableHeaderStyle.Render(fmt.Sprintf("%-10s  %8s  %6s  %-4s  %s", "Date", "Duration", "Target", "Done", "Notes")))
		b.WriteString("\n")
		for _, f := range m.data.fasts {
			done := "no"
			if f.Completed {
				done = "yes"
			}
			b.WriteString(tableRowStyle.Render(fmt.Sprintf("%-10s  %7.1fh  %5.0fh  %-4s  %s",
				f.Date, f.Duration, f.TargetHours, done, truncate(f.Notes, 30))))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(cardTitleStyle.Render("Protocol History"))
	b.WriteString("\n")
	if len(m.data.protocol) == 0 {
		b.WriteString(mutedStyle.Render("  No checklist days yet"))
		b.WriteString("\n")
	} else {
		for _, h := range m.data.protocol {
			frac := 0.0
			if h.TotalCount > 0 {
				frac = float64(h.CompletedCount) / float64(h.TotalCount)
			}
			fmt.Fprintf(&b, "  %-10s  %s %d/%d\n", h.Date, RenderProgressBar(frac, 20), h.CompletedCount, h.TotalCount)
		}
	}

	return b.String()
}
