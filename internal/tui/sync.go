package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"longevity/internal/service"
)

// SyncModel uploads local metric samples to the gateway with live
// progress. svc is nil when no gateway is configured.
type SyncModel struct {
	svc     *service.SyncService
	syncing bool
	cancel  context.CancelFunc
	last    service.SyncProgress
	result  *service.SyncResult
	err     error
}

func NewSyncModel(svc *service.SyncService) SyncModel {
	return SyncModel{svc: svc}
}

func (m SyncModel) Init() tea.Cmd { return nil }

// SyncDoneMsg carries the outcome of an upload
type SyncDoneMsg struct {
	Result *service.SyncResult
	Err    error
}

type syncProgressMsg struct {
	progress service.SyncProgress
	run      *syncRun
}

// syncRun links a running upload to the commands that wait on it
type syncRun struct {
	progress chan service.SyncProgress
	done     chan SyncDoneMsg
}

// wait blocks for the next progress report, or for the outcome once the
// service closes the progress channel
func (r *syncRun) wait() tea.Msg {
	if p, ok := <-r.progress; ok {
		return syncProgressMsg{progress: p, run: r}
	}
	return <-r.done
}

func (m SyncModel) start() (SyncModel, tea.Cmd) {
	ctx, cancel := context.WithCancel(context.Background())
	run := &syncRun{
		progress: make(chan service.SyncProgress),
		done:     make(chan SyncDoneMsg, 1),
	}
	go func() {
		res, err := m.svc.SyncMetrics(ctx, run.progress)
		run.done <- SyncDoneMsg{Result: res, Err: err}
	}()

	m.syncing, m.cancel = true, cancel
	m.last, m.result, m.err = service.SyncProgress{}, nil, nil
	return m, run.wait
}

func (m SyncModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case syncProgressMsg:
		m.last = msg.progress
		return m, msg.run.wait

	case SyncDoneMsg:
		if m.cancel != nil {
			m.cancel()
		}
		m.syncing, m.cancel = false, nil
		m.result, m.err = msg.Result, msg.Err
		return m, nil

	case tea.KeyMsg:
		if m.svc == nil {
			return m, nil
		}
		switch k := msg.String(); {
		case m.syncing && (k == "esc" || k == "ctrl+c"):
			m.cancel()
		case !m.syncing && (k == "enter" || k == "s"):
			return m.start()
		}
	}
	return m, nil
}

func (m SyncModel) View() string {
	var b strings.Builder
	b.WriteString(cardTitleStyle.Render("Gateway Sync") + "\n")

	if m.svc == nil {
		b.WriteString("  No gateway configured.\n")
		b.WriteString(statusStyle.Render("  Set gateway.base_url in config.json to upload samples."))
		return b.String()
	}

	switch {
	case m.syncing:
		b.WriteString("\n  Uploading metric samples...\n")
		if m.last.Total > 0 {
			frac := float64(m.last.Completed) / float64(m.last.Total)
			fmt.Fprintf(&b, "\n  %s %d/%d  %s\n", RenderProgressBar(frac, 30), m.last.Completed, m.last.Total, mutedStyle.Render(m.last.Current))
		}
		b.WriteString(statusStyle.Render("  esc to cancel"))

	case m.err != nil:
		b.WriteString(errorStyle.Render(fmt.Sprintf("\n  Sync failed: %v", m.err)) + "\n")
		b.WriteString(m.summary())
		b.WriteString(statusStyle.Render("  s or enter to retry"))

	case m.result != nil:
		b.WriteString(successStyle.Render("\n  Sync complete") + "\n")
		b.WriteString(m.summary())

	default:
		b.WriteString("\n  Uploads locally recorded metric samples to the gateway.\n\n")
		cursor, err := m.svc.Cursor()
		switch {
		case err != nil:
			b.WriteString(warningStyle.Render(fmt.Sprintf("  Cursor unavailable: %v", err)))
		case cursor == "":
			b.WriteString(mutedStyle.Render("  Never synced"))
		default:
			b.WriteString(mutedStyle.Render("  Synced through " + cursor))
		}
		b.WriteString("\n" + statusStyle.Render("  s or enter to start"))
	}
	return b.String()
}

func (m SyncModel) summary() string {
	r := m.result
	if r == nil {
		return ""
	}

	var b strings.Builder
	if r.SamplesUploaded == 0 {
		b.WriteString(mutedStyle.Render("  Nothing to upload") + "\n")
	} else {
		b.WriteString(successStyle.Render(fmt.Sprintf("  %d samples uploaded", r.SamplesUploaded)) + "\n")
	}
	if r.Cursor != "" {
		b.WriteString(mutedStyle.Render("  Synced through "+r.Cursor) + "\n")
	}
	for _, err := range r.Errors {
		b.WriteString(warningStyle.Render("  "+err.Error()) + "\n")
	}
	return b.String()
}
