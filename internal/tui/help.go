package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"longevity/internal/analysis"
)

// HelpModel is static; it lists the bindings and explains the scores
type HelpModel struct{}

func (HelpModel) Init() tea.Cmd { return nil }
func (m HelpModel) Update(tea.Msg) (tea.Model, tea.Cmd) { return m, nil }

var keyGroups = []struct {
	title string
	keys  [][2]string
}{
	{"Navigation", [][2]string{
		{"1-5", "switch tab"}, {"?", "this screen"}, {"esc", "close help"}, {"q", "quit"},
	}},
	{"Fasting", [][2]string{
		{"enter", "start a fast"}, {"+ / -", "change the target while idle"},
		{"e", "end and record"}, {"x", "cancel without recording"},
	}},
	{"Protocol", [][2]string{
		{"j k / arrows", "move"}, {"space / enter", "check off or uncheck"},
	}},
	{"Sync", [][2]string{
		{"s / enter", "upload samples"}, {"esc", "cancel a running upload"},
	}},
	{"Everywhere", [][2]string{{"r", "reload"}}},
}

var scoreNotes = [][2]string{
	{"Sleep", "duration plus the deep and REM share of the night"},
	{"Activity", "steps, active calories and workout minutes"},
	{"Recovery", "HRV, resting heart rate and respiratory rate"},
	{"Overall", "weighted mean of the components that have data"},
	{"Biological Age", "chronological age shifted by distance from a 75 baseline"},
}

func (HelpModel) View() string {
	var b strings.Builder
	b.WriteString(cardTitleStyle.Render("Keyboard Shortcuts"))

	for _, g := range keyGroups {
		b.WriteString("\n\n" + sectionTitleStyle.Render(g.title))
		for _, k := range g.keys {
			b.WriteString("\n  " + RenderKeyHelp(k[0], k[1]))
		}
	}

	b.WriteString("\n\n" + sectionTitleStyle.Render("Scores"))
	for _, n := range scoreNotes {
		fmt.Fprintf(&b, "\n  %s  %s", helpKeyStyle.Render(fmt.Sprintf("%-15s", n[0])), mutedStyle.Render(n[1]))
	}

	b.WriteString("\n\n" + sectionTitleStyle.Render("Metabolic States"))
	for _, s := range analysis.MetabolicStates {
		fmt.Fprintf(&b, "\n  %-14s from %.0fh", s.Name, s.MinHours)
	}
	return b.String()
}
