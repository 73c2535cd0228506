package cli

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

// stubGateway answers the read endpoints and accepts everything else
type stubGateway struct {
	mu       sync.Mutex
	paths    []string
	activeID string
}

func (g *stubGateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.paths = append(g.paths, r.Method+" "+r.URL.Path)

	w.Header().Set("Content-Type", "application/json")
	switch r.URL.Path {
	case "/api/scores/current":
		w.Write([]byte(`{"date":"2026-03-10","overall_score":77,"components":{"sleep_score":81}}`))
	case "/api/protocol/streaks":
		w.Write([]byte(`{"protocol":{"current":12,"longest":30,"lastCompletedDate":"2026-03-10"}}`))
	case "/api/fasting/current":
		if g.activeID == "" {
			http.NotFound(w, r)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"id": g.activeID, "targetHours": 16})
	default:
		w.WriteHeader(http.StatusAccepted)
	}
}

// setupGatewayCLI is setupCLI with a config pointing at a stub gateway
func setupGatewayCLI(t *testing.T) (string, *stubGateway) {
	t.Helper()
	db, _ := setupCLI(t)

	g := &stubGateway{}
	server := httptest.NewServer(g)
	t.Cleanup(server.Close)

	dir := filepath.Join(os.Getenv("HOME"), ".longevity")
	if err := os.MkdirAll(dir, 0700); err != nil {
		t.Fatalf("creating config dir: %v", err)
	}
	cfg := `{"gateway":{"enabled":true,"base_url":"` + server.URL + `","timeout_seconds":5}}`
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte(cfg), 0600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return db, g
}

func TestRemoteScoreAndStreaks(t *testing.T) {
	db, _ := setupGatewayCLI(t)

	out, err := execute(t, db, "score", "--remote")
	if err != nil {
		t.Fatalf("score --remote: %v", err)
	}
	if !strings.Contains(out, "Overall:    77") || !strings.Contains(out, "Sleep:      81") {
		t.Errorf("unexpected remote scores: %q", out)
	}

	out, err = execute(t, db, "streaks", "--remote")
	if err != nil {
		t.Fatalf("streaks --remote: %v", err)
	}
	if !strings.Contains(out, "protocol\t12\t30\t2026-03-10") {
		t.Errorf("unexpected remote streaks: %q", out)
	}

	// local streaks are untouched
	out, err = execute(t, db, "streaks")
	if err != nil {
		t.Fatalf("streaks: %v", err)
	}
	if !strings.Contains(out, "protocol\t0\t0\t-") {
		t.Errorf("unexpected local streaks: %q", out)
	}
}

func TestRemoteFlagsWithoutGateway(t *testing.T) {
	db, _ := setupCLI(t)

	if _, err := execute(t, db, "score", "--remote"); err != errNoGateway {
		t.Errorf("score --remote: expected errNoGateway, got %v", err)
	}
	if _, err := execute(t, db, "streaks", "--remote"); err != errNoGateway {
		t.Errorf("streaks --remote: expected errNoGateway, got %v", err)
	}
}

func TestFastStatusWarnsOnGatewayMismatch(t *testing.T) {
	db, g := setupGatewayCLI(t)

	if _, err := execute(t, db, "fast", "start"); err != nil {
		t.Fatalf("fast start: %v", err)
	}

	out, err := execute(t, db, "fast", "status")
	if err != nil {
		t.Fatalf("fast status: %v", err)
	}
	if !strings.Contains(out, "Warning: the gateway has no active fast") {
		t.Errorf("missing mismatch warning: %q", out)
	}

	if _, err := execute(t, db, "fast", "cancel"); err != nil {
		t.Fatalf("fast cancel: %v", err)
	}
	g.mu.Lock()
	g.activeID = "stale-fast"
	g.mu.Unlock()

	out, err = execute(t, db, "fast", "status")
	if err != nil {
		t.Fatalf("fast status: %v", err)
	}
	if !strings.Contains(out, "Warning: the gateway still has fast stale-fast active") {
		t.Errorf("missing stale warning: %q", out)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	found := false
	for _, p := range g.paths {
		found = found || p == "POST /api/fasting/cancel"
	}
	if !found {
		t.Errorf("cancel was not published: %v", g.paths)
	}
}

func TestSyncReportsBudget(t *testing.T) {
	db, _ := setupGatewayCLI(t)

	if _, err := execute(t, db, "metrics", "add", "--date", "2026-03-10", "--sleep", "480"); err != nil {
		t.Fatalf("metrics add: %v", err)
	}
	out, err := execute(t, db, "sync")
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if !strings.Contains(out, "Uploaded 1 samples (through 2026-03-10)") {
		t.Errorf("unexpected sync output: %q", out)
	}
	if !strings.Contains(out, "Gateway budget: 119 requests left") {
		t.Errorf("missing budget line: %q", out)
	}
}
