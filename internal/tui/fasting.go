package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"longevity/internal/analysis"
	"longevity/internal/fasting"
	"longevity/internal/service"
)

const (
	tickInterval = time.Second
	targetStep   = 2.0
	maxTarget    = 168.0
)

// FastingModel is the fasting timer screen model
type FastingModel struct {
	tracker *service.Tracker
	status  fasting.Status
	target  float64 // target for the next fast
	ticking bool
	message string
	err     error
}

// NewFastingModel creates a new fasting model
func NewFastingModel(t *service.Tracker, defaultTarget float64) FastingModel {
	return FastingModel{
		tracker: t,
		status:  t.Fasting.Status(),
		target:  defaultTarget,
	}
}

type fastTickMsg time.Time

// fastChangedMsg carries the status after a start, end or cancel
type fastChangedMsg struct {
	status  fasting.Status
	message string
	err     error
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return fastTickMsg(t)
	})
}

// Init starts the refresh loop when a fast is running
func (m FastingModel) Init() tea.Cmd {
	return func() tea.Msg {
		return fastChangedMsg{status: m.tracker.Fasting.Status()}
	}
}

// Update handles messages
func (m FastingModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case fastTickMsg:
		m.status = m.tracker.Fasting.Status()
		if !m.status.Active {
			m.ticking = false
			return m, nil
		}
		return m, tick()

	case fastChangedMsg:
		m.err = msg.err
		if msg.err == nil {
			m.status = msg.status
			m.message = msg.message
		}
		if m.status.Active && !m.ticking {
			m.ticking = true
			return m, tick()
		}

	case tea.KeyMsg:
		m.err = nil
		switch msg.String() {
		case "enter":
			if !m.status.Active {
				return m, m.start(m.target)
			}
		case "e":
			if m.status.Active {
				return m, m.end
			}
		case "x":
			if m.status.Active {
				return m, m.cancel
			}
		case "+", "=":
			if !m.status.Active && m.target+targetStep <= maxTarget {
				m.target += targetStep
			}
		case "-":
			if !m.status.Active && m.target-targetStep > 0 {
				m.target -= targetStep
			}
		}
	}
	return m, nil
}

func (m FastingModel) start(target float64) tea.Cmd {
	return func() tea.Msg {
		s, err := m.tracker.Fasting.Start(target)
		if err != nil {
			return fastChangedMsg{err: err}
		}
		return fastChangedMsg{
			status:  m.tracker.Fasting.Status(),
			message: fmt.Sprintf("Started a %.0fh fast", s.TargetHours),
		}
	}
}

func (m FastingModel) end() tea.Msg {
	entry, err := m.tracker.EndFast("")
	if err != nil {
		return fastChangedMsg{err: err}
	}

	message := fmt.Sprintf("Fast ended after %.1fh", entry.Duration)
	if entry.Completed {
		message += ", target reached"
	}
	return fastChangedMsg{status: m.tracker.Fasting.Status(), message: message}
}

func (m FastingModel) cancel() tea.Msg {
	if err := m.tracker.Fasting.Cancel(); err != nil {
		return fastChangedMsg{err: err}
	}
	return fastChangedMsg{status: m.tracker.Fasting.Status(), message: "Fast cancelled"}
}

// View renders the fasting screen
func (m FastingModel) View() string {
	var sections []string

	if m.status.Active {
		sections = append(sections, m.renderActive())
	} else {
		sections = append(sections, m.renderIdle())
	}

	sections = append(sections, m.renderStates())

	if m.err != nil {
		sections = append(sections, errorStyle.Render(fmt.Sprintf("  Error: %v", m.err)))
	} else if m.message != "" {
		sections = append(sections, successStyle.Render("  "+m.message))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m FastingModel) renderActive() string {
	s := m.status
	title := cardTitleStyle.Render("Fasting")

	lines := []string{
		RenderMetric("Elapsed", s.Elapsed(), ""),
		RenderMetric("Target", fmt.Sprintf("%.0fh", s.TargetHours), ""),
		RenderMetric("Started", humanize.Time(s.Session.StartedAt), ""),
		RenderMetric("State", s.State.Name, ""),
		"",
		RenderProgressBar(s.ProgressPercent/100, 40) + fmt.Sprintf(" %.0f%%", s.ProgressPercent),
	}

	if s.Remaining > 0 {
		lines = append(lines, mutedStyle.Render(analysis.FormatFastingTime(s.Remaining.Hours())+" to go"))
	} else {
		lines = append(lines, successStyle.Render("Target reached"))
	}

	stage := analysis.StateProgress(s.ElapsedHours)
	lines = append(lines, RenderProgressBar(stage, 20)+mutedStyle.Render(fmt.Sprintf(" %d%% of %s", int(stage*100), s.State.Name)))
	if s.Next != nil {
		until := analysis.FormatFastingTime(s.Next.MinHours - s.ElapsedHours)
		lines = append(lines, mutedStyle.Render(fmt.Sprintf("%s in %s", s.Next.Name, until)))
	}

	lines = append(lines, "", statusStyle.Render("Press 'e' to end, 'x' to cancel"))

	content := lipgloss.JoinVertical(lipgloss.Left, lines...)
	return cardStyle.Width(56).Render(lipgloss.JoinVertical(lipgloss.Left, title, content))
}

func (m FastingModel) renderIdle() string {
	title := cardTitleStyle.Render("Fasting")

	lines := []string{
		"No fast in progress.",
		"",
		RenderMetric("Next target", fmt.Sprintf("%.0fh", m.target), ""),
		"",
		statusStyle.Render("Press Enter to start, '+'/'-' to adjust the target"),
	}

	content := lipgloss.JoinVertical(lipgloss.Left, lines...)
	return cardStyle.Width(56).Render(lipgloss.JoinVertical(lipgloss.Left, title, content))
}

// renderStates shows the metabolic ladder with the current state marked
func (m FastingModel) renderStates() string {
	var lines []string
	lines = append(lines, "", sectionTitleStyle.Render("Metabolic States"))

	current := analysis.StateFed
	if m.status.Active {
		current = m.status.State.State
	}

	for _, info := range analysis.MetabolicStates {
		span := fmt.Sprintf("%.0fh+", info.MinHours)
		if info.State != analysis.StateAutophagy {
			span = fmt.Sprintf("%.0f-%.0fh", info.MinHours, info.MaxHours)
		}
		line := fmt.Sprintf("  %-14s %s", info.Name, span)
		if m.status.Active && info.State == current {
			line = tableSelectedStyle.Render(strings.TrimSpace(line))
		} else {
			line = mutedStyle.Render(line)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
