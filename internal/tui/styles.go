package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"longevity/internal/analysis"
)

// palette
var (
	accent = lipgloss.Color("#0EA5A4")
	good   = lipgloss.Color("#22C55E")
	fair   = lipgloss.Color("#EAB308")
	poor   = lipgloss.Color("#F43F5E")
	dim    = lipgloss.Color("#64748B")
	ink    = lipgloss.Color("#F1F5F9")
)

func fg(c lipgloss.Color) lipgloss.Style { return lipgloss.NewStyle().Foreground(c) }

var (
	headerStyle      = lipgloss.NewStyle().Bold(true).Foreground(ink).Background(accent).Padding(0, 1).MarginBottom(1)
	navStyle         = fg(dim).MarginBottom(1)
	navActiveStyle   = fg(accent).Bold(true).Underline(true)
	navInactiveStyle = fg(dim)

	cardStyle         = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(dim).Padding(1, 2)
	cardTitleStyle    = fg(accent).Bold(true).MarginBottom(1)
	sectionTitleStyle = fg(good).Bold(true)

	labelStyle = fg(dim).Width(20)
	valueStyle = fg(ink).Bold(true)
	mutedStyle = fg(dim)

	tableHeaderStyle   = fg(accent).Bold(true).Padding(0, 1)
	tableRowStyle      = lipgloss.NewStyle().Padding(0, 1)
	tableSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(ink).Background(accent).Padding(0, 1)

	statusStyle  = fg(dim).MarginTop(1)
	errorStyle   = fg(poor)
	successStyle = fg(good)
	warningStyle = fg(fair)
	helpKeyStyle = fg(accent).Bold(true)
)

// RenderMetric lays out a label/value row. A trend starting with an up
// marker renders green, a down marker red.
func RenderMetric(label, value, trend string) string {
	ts := mutedStyle
	if r := []rune(trend); len(r) > 0 {
		switch r[0] {
		case '+', '↑':
			ts = successStyle
		case '-', '↓':
			ts = errorStyle
		}
	}
	return labelStyle.Render(label) + valueStyle.Render(value) + ts.Render(" "+trend)
}

// RenderProgressBar draws fraction (clamped to 0..1) as a bar of width cells
func RenderProgressBar(fraction float64, width int) string {
	filled := min(max(int(fraction*float64(width)), 0), width)
	return successStyle.Render(strings.Repeat("█", filled)) +
		mutedStyle.Render(strings.Repeat("░", width-filled))
}

func RenderKeyHelp(key, desc string) string {
	return helpKeyStyle.Render(key) + " " + mutedStyle.Render(desc)
}

// scoreStyle colors a 0-100 score: 80 and up good, 60 and up fair
func scoreStyle(score int) lipgloss.Style {
	if score >= 80 {
		return successStyle
	}
	if score >= 60 {
		return warningStyle
	}
	return errorStyle
}

func trendLabel(t analysis.Trend) string {
	return t.Arrow() + " " + string(t)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
