package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"longevity/internal/service"
	"longevity/internal/streak"
)

// DashboardModel is the dashboard screen model
type DashboardModel struct {
	tracker *service.Tracker
	data    *service.DashboardData
	loading bool
	err     error
}

// NewDashboardModel creates a new dashboard model
func NewDashboardModel(t *service.Tracker) DashboardModel {
	return DashboardModel{
		tracker: t,
		loading: true,
	}
}

// Init initializes the dashboard
func (m DashboardModel) Init() tea.Cmd {
	return m.loadData
}

func (m DashboardModel) loadData() tea.Msg {
	data, err := m.tracker.Dashboard()
	return dashboardDataMsg{data: data, err: err}
}

type dashboardDataMsg struct {
	data *service.DashboardData
	err  error
}

// Update handles messages
func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case dashboardDataMsg:
		m.loading = false
		m.err = msg.err
		m.data = msg.data
	case tea.KeyMsg:
		switch msg.String() {
		case "r":
			m.loading = true
			return m, m.loadData
		}
	}
	return m, nil
}

// View renders the dashboard
func (m DashboardModel) View() string {
	if m.loading {
		return "\n  Loading dashboard..."
	}

	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err))
	}

	if m.data == nil {
		return "\n  No data available. Record a sample with 'longevity metrics add'."
	}

	var sections []string

	topRow := lipgloss.JoinHorizontal(lipgloss.Top, m.renderScoreCard(), "  ", m.renderTodayCard())
	sections = append(sections, topRow)

	if len(m.data.History.Overall) > 2 {
		sections = append(sections, renderChart("Overall Score - Recent Days", m.data.History.Overall, 0))
	}
	if len(m.data.FastingDurations) > 2 {
		sections = append(sections, renderChart("Fasting Duration (hours) - Recent Fasts", m.data.FastingDurations, 1))
	}

	sections = append(sections, statusStyle.Render("Press 'r' to refresh, '2' for the fasting timer, '3' for the checklist"))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m DashboardModel) renderScoreCard() string {
	title := cardTitleStyle.Render("Health Score")

	s := m.data.Scores
	c := s.Components
	overall := scoreStyle(s.Overall).Bold(true).Render(fmt.Sprintf("%d", s.Overall))

	lines := []string{
		RenderMetric("Overall", overall, trendLabel(m.data.History.Trend)),
		mutedStyle.Render(m.data.Description),
		"",
		RenderMetric("Sleep", scoreText(c.Sleep), ""),
		RenderMetric("Activity", scoreText(c.Activity), ""),
		RenderMetric("Recovery", scoreText(c.Recovery), ""),
		RenderMetric("Nutrition", scoreText(c.Nutrition), ""),
		RenderMetric("Biomarkers", scoreText(c.Biomarker), ""),
		RenderMetric("Adherence", scoreText(c.Adherence), ""),
	}

	if s.Age != nil {
		diff := fmt.Sprintf("%+.1f", s.Age.AgeDifference)
		lines = append(lines, "",
			RenderMetric("Biological Age", fmt.Sprintf("%.1f", s.Age.BiologicalAge), diff),
		)
	}

	content := lipgloss.JoinVertical(lipgloss.Left, lines...)
	return cardStyle.Width(40).Render(lipgloss.JoinVertical(lipgloss.Left, title, content))
}

func (m DashboardModel) renderTodayCard() string {
	title := cardTitleStyle.Render("Today")

	var lines []string

	f := m.data.Fasting
	if f.Active {
		lines = append(lines,
			RenderMetric("Fasting", f.Elapsed(), ""),
			RenderMetric("State", f.State.Name, ""),
			RenderProgressBar(f.ProgressPercent/100, 24)+fmt.Sprintf(" %.0f%%", f.ProgressPercent),
		)
	} else {
		lines = append(lines, RenderMetric("Fasting", "not active", ""))
	}

	today := m.data.Today
	lines = append(lines,
		"",
		RenderMetric("Protocol", fmt.Sprintf("%d/%d", today.CompletedCount, today.TotalCount), ""),
		RenderProgressBar(float64(today.Percent)/100, 24)+fmt.Sprintf(" %d%%", today.Percent),
		RenderMetric("Adherence 7d", fmt.Sprintf("%d%%", m.data.Adherence7), ""),
		RenderMetric("Adherence 30d", fmt.Sprintf("%d%%", m.data.Adherence30), ""),
		"",
	)

	for _, typ := range streak.Types {
		d := m.data.Streaks[typ]
		lines = append(lines, RenderMetric(streakLabel(typ), fmt.Sprintf("%d days", d.Current), fmt.Sprintf("best %d", d.Longest)))
	}

	content := lipgloss.JoinVertical(lipgloss.Left, lines...)
	return cardStyle.Width(44).Render(lipgloss.JoinVertical(lipgloss.Left, title, content))
}

func renderChart(title string, series []float64, precision uint) string {
	graph := asciigraph.Plot(series,
		asciigraph.Height(8),
		asciigraph.Width(60),
		asciigraph.Precision(precision),
	)
	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, cardTitleStyle.Render(title), graph))
}

func scoreText(v *int) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *v)
}

func streakLabel(t streak.Type) string {
	switch t {
	case streak.Protocol:
		return "Protocol streak"
	case streak.Fasting:
		return "Fasting streak"
	case streak.Exercise:
		return "Exercise streak"
	default:
		return string(t) + " streak"
	}
}
