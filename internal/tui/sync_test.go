package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"longevity/internal/service"
	"longevity/internal/store"
)

type stubUploader struct {
	sent []string
	fail bool
}

func (u *stubUploader) RecordMetrics(_ context.Context, s store.MetricSample) error {
	if u.fail {
		return errors.New("gateway down")
	}
	u.sent = append(u.sent, s.Date)
	return nil
}

func seededSyncService(t *testing.T, u *stubUploader) *service.SyncService {
	t.Helper()
	db := store.NewTestDB(t)
	steps := 9000
	for _, d := range []string{"2026-03-08", "2026-03-09"} {
		require.NoError(t, db.UpsertSample(&store.MetricSample{Date: d, Source: store.SourceManual, Steps: &steps}))
	}
	return service.NewSyncService(u, db, zerolog.Nop())
}

// drain feeds command output back into the model until the upload finishes
func drain(t *testing.T, m SyncModel, cmd tea.Cmd) (SyncModel, []service.SyncProgress) {
	t.Helper()
	var seen []service.SyncProgress
	for cmd != nil {
		msg := cmd()
		if p, ok := msg.(syncProgressMsg); ok {
			seen = append(seen, p.progress)
		}
		var next tea.Model
		next, cmd = m.Update(msg)
		m = next.(SyncModel)
		if _, done := msg.(SyncDoneMsg); done {
			break
		}
	}
	return m, seen
}

func TestSyncScreenUploads(t *testing.T) {
	u := &stubUploader{}
	m := NewSyncModel(seededSyncService(t, u))
	assert.Contains(t, m.View(), "Never synced")

	next, cmd := m.Update(key("s"))
	m = next.(SyncModel)
	assert.True(t, m.syncing)

	m, seen := drain(t, m, cmd)
	assert.False(t, m.syncing)
	require.NoError(t, m.err)
	require.Len(t, seen, 2)
	assert.Equal(t, 2, seen[1].Total)
	assert.Equal(t, []string{"2026-03-08", "2026-03-09"}, u.sent)

	view := m.View()
	assert.Contains(t, view, "2 samples uploaded")
	assert.Contains(t, view, "Synced through 2026-03-09")
}

func TestSyncScreenReportsFailures(t *testing.T) {
	m := NewSyncModel(seededSyncService(t, &stubUploader{fail: true}))

	next, cmd := m.Update(key("enter"))
	m, _ = drain(t, next.(SyncModel), cmd)

	require.NotNil(t, m.result)
	assert.Len(t, m.result.Errors, 2)
	assert.Contains(t, m.View(), "gateway down")
}

func TestSyncScreenWithoutGateway(t *testing.T) {
	m := NewSyncModel(nil)
	next, cmd := m.Update(key("s"))
	assert.Nil(t, cmd)
	assert.False(t, next.(SyncModel).syncing)
}
