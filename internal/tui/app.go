package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"longevity/internal/service"
)

// Screen identifies a tab
type Screen int

const (
	ScreenDashboard Screen = iota
	ScreenFasting
	ScreenProtocol
	ScreenHistory
	ScreenSync
	ScreenHelp
)

type tab struct {
	key    string
	label  string
	screen Screen
}

// tabs in nav order; the key switches to the screen
var tabs = []tab{
	{"1", "Dashboard", ScreenDashboard},
	{"2", "Fasting", ScreenFasting},
	{"3", "Protocol", ScreenProtocol},
	{"4", "History", ScreenHistory},
	{"5", "Sync", ScreenSync},
	{"?", "Help", ScreenHelp},
}

// App is the root model. It owns one model per tab and forwards input to
// the visible one.
type App struct {
	screen Screen
	back   Screen

	dashboard  DashboardModel
	fasting    FastingModel
	protocol   ProtocolModel
	history    HistoryModel
	syncScreen SyncModel
	help       HelpModel

	tracker *service.Tracker
	log     zerolog.Logger

	width, height int
}

// NewApp builds the root model. syncService may be nil.
func NewApp(tracker *service.Tracker, syncService *service.SyncService, defaultTarget float64, log zerolog.Logger) *App {
	return &App{
		tracker:    tracker,
		log:        log,
		dashboard:  NewDashboardModel(tracker),
		fasting:    NewFastingModel(tracker, defaultTarget),
		protocol:   NewProtocolModel(tracker),
		history:    NewHistoryModel(tracker, 0, 0),
		syncScreen: NewSyncModel(syncService),
	}
}

// Init starts the fasting timer alongside the dashboard load so the timer
// keeps running on every tab.
func (a *App) Init() tea.Cmd {
	return tea.Batch(a.dashboard.Init(), a.fasting.Init())
}

// step runs one Update on a concrete screen model
func step[M tea.Model](m M, msg tea.Msg) (M, tea.Cmd) {
	next, cmd := m.Update(msg)
	return next.(M), cmd
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		// a running upload keeps the keyboard so esc can cancel it
		if a.syncScreen.syncing {
			break
		}
		k := msg.String()
		if k == "q" || k == "ctrl+c" {
			return a, tea.Quit
		}
		if k == "esc" && a.screen == ScreenHelp {
			a.screen = a.back
			return a, nil
		}
		for _, t := range tabs {
			if t.key == k {
				return a, a.show(t.screen)
			}
		}

	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		a.history, cmd = step(a.history, msg)
		return a, cmd

	case fastTickMsg, fastChangedMsg:
		a.fasting, cmd = step(a.fasting, msg)
		return a, cmd

	case SyncDoneMsg:
		ev := a.log.Info()
		if msg.Err != nil {
			ev = a.log.Warn().Err(msg.Err)
		}
		if msg.Result != nil {
			ev = ev.Int("uploaded", msg.Result.SamplesUploaded).Str("cursor", msg.Result.Cursor)
		}
		ev.Msg("Gateway sync finished")
		a.syncScreen, cmd = step(a.syncScreen, msg)
		return a, cmd
	}

	switch a.screen {
	case ScreenDashboard:
		a.dashboard, cmd = step(a.dashboard, msg)
	case ScreenFasting:
		a.fasting, cmd = step(a.fasting, msg)
	case ScreenProtocol:
		a.protocol, cmd = step(a.protocol, msg)
	case ScreenHistory:
		a.history, cmd = step(a.history, msg)
	case ScreenSync:
		a.syncScreen, cmd = step(a.syncScreen, msg)
	}
	return a, cmd
}

// show switches tabs. Data screens reload on every visit.
func (a *App) show(s Screen) tea.Cmd {
	if s == ScreenHelp {
		if a.screen != ScreenHelp {
			a.back = a.screen
		}
		a.screen = s
		return nil
	}

	a.screen = s
	switch s {
	case ScreenDashboard:
		a.dashboard = NewDashboardModel(a.tracker)
		return a.dashboard.Init()
	case ScreenProtocol:
		return a.protocol.Init()
	case ScreenHistory:
		a.history = NewHistoryModel(a.tracker, a.width, a.height)
		return a.history.Init()
	}
	return nil
}

func (a *App) View() string {
	var body string
	switch a.screen {
	case ScreenDashboard:
		body = a.dashboard.View()
	case ScreenFasting:
		body = a.fasting.View()
	case ScreenProtocol:
		body = a.protocol.View()
	case ScreenHistory:
		body = a.history.View()
	case ScreenSync:
		body = a.syncScreen.View()
	case ScreenHelp:
		body = a.help.View()
	}
	return lipgloss.JoinVertical(lipgloss.Left, headerStyle.Render("Longevity Tracker"), a.nav(), body)
}

func (a *App) nav() string {
	parts := make([]string, 0, len(tabs)+1)
	for _, t := range tabs {
		style := navInactiveStyle
		if t.screen == a.screen {
			style = navActiveStyle
		}
		parts = append(parts, style.Render("["+t.key+"] "+t.label))
	}
	parts = append(parts, navInactiveStyle.Render("[q] Quit"))
	return navStyle.Render(strings.Join(parts, "  "))
}
