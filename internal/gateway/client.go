// Package gateway talks to the optional remote tracker backend. The client
// doubles as a storage.Backend so the managers can run against it instead of
// the local database, and as a fire-and-forget event publisher.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"

	"longevity/internal/analysis"
	"longevity/internal/fasting"
	"longevity/internal/storage"
	"longevity/internal/store"
	"longevity/internal/streak"
)

// DefaultTimeout bounds requests made without a caller context
const DefaultTimeout = 10 * time.Second

// ErrNotFound is returned for 404 responses
var ErrNotFound = errors.New("not found")

// APIError is a non-2xx response
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error %d: %s", e.StatusCode, e.Body)
}

// Client is a remote gateway client
type Client struct {
	baseURL     string
	httpClient  *http.Client
	tokens      oauth2.TokenSource
	rateLimiter *RateLimiter
	timeout     time.Duration
	log         zerolog.Logger
}

// invalidator is implemented by token sources that cache, such as
// *auth.TokenSource
type invalidator interface {
	Invalidate()
}

// ClientOption configures a Client
type ClientOption func(*Client)

// WithRateLimiter replaces the default limiter
func WithRateLimiter(r *RateLimiter) ClientOption {
	return func(c *Client) { c.rateLimiter = r }
}

// WithTimeout sets the timeout of Backend calls and published events
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) { c.timeout = d }
}

// NewClient creates a client for baseURL. A nil tokenSource sends
// unauthenticated requests.
func NewClient(baseURL string, tokenSource oauth2.TokenSource, log zerolog.Logger, opts ...ClientOption) *Client {
	httpClient := &http.Client{Timeout: DefaultTimeout}
	if tokenSource != nil {
		// oauth2.NewClient would wrap the source in its own cache and hide
		// Invalidate from a 401 retry
		httpClient.Transport = &oauth2.Transport{Source: tokenSource}
	}

	c := &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		httpClient:  httpClient,
		tokens:      tokenSource,
		rateLimiter: DefaultRateLimiter(),
		timeout:     DefaultTimeout,
		log:         log.With().Str("component", "gateway").Logger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get implements storage.Backend over GET /api/state/{key}
func (c *Client) Get(key string) (string, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	var out stateValue
	err := c.do(ctx, http.MethodGet, "/api/state/"+url.PathEscape(key), nil, &out)
	if errors.Is(err, ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get state %q: %w", key, err)
	}
	return out.Value, true, nil
}

// Set implements storage.Backend over PUT /api/state/{key}
func (c *Client) Set(key, value string) error {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	if err := c.do(ctx, http.MethodPut, "/api/state/"+url.PathEscape(key), stateValue{Value: value}, nil); err != nil {
		return fmt.Errorf("set state %q: %w", key, err)
	}
	return nil
}

// RecordMetrics uploads a metric sample
func (c *Client) RecordMetrics(ctx context.Context, sample store.MetricSample) error {
	return c.do(ctx, http.MethodPost, "/api/health/metrics", sample, nil)
}

// CurrentScores fetches the server-side score set
func (c *Client) CurrentScores(ctx context.Context) (*analysis.HealthScoreSet, error) {
	var scores analysis.HealthScoreSet
	if err := c.do(ctx, http.MethodGet, "/api/scores/current", nil, &scores); err != nil {
		return nil, fmt.Errorf("fetching scores: %w", err)
	}
	return &scores, nil
}

// StartFast reports a started session
func (c *Client) StartFast(ctx context.Context, s fasting.Session) error {
	return c.do(ctx, http.MethodPost, "/api/fasting/start", s, nil)
}

// EndFast reports an ended session
func (c *Client) EndFast(ctx context.Context, s fasting.Session) error {
	return c.do(ctx, http.MethodPost, "/api/fasting/end", s, nil)
}

// CancelFast reports a session discarded without a history entry
func (c *Client) CancelFast(ctx context.Context, s fasting.Session) error {
	return c.do(ctx, http.MethodPost, "/api/fasting/cancel", s, nil)
}

// CurrentFast fetches the server's view of the active session.
// It returns nil when none is active.
func (c *Client) CurrentFast(ctx context.Context) (*fasting.Session, error) {
	var s fasting.Session
	err := c.do(ctx, http.MethodGet, "/api/fasting/current", nil, &s)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetching current fast: %w", err)
	}
	return &s, nil
}

// LogProtocol reports a completed checklist item
func (c *Client) LogProtocol(ctx context.Context, entry ProtocolLog) error {
	return c.do(ctx, http.MethodPost, "/api/protocol/log", entry, nil)
}

// UnlogProtocol retracts a checklist completion
func (c *Client) UnlogProtocol(ctx context.Context, entry ProtocolLog) error {
	return c.do(ctx, http.MethodDelete, "/api/protocol/log", entry, nil)
}

// Streaks fetches the server-side streak counters
func (c *Client) Streaks(ctx context.Context) (map[streak.Type]streak.Data, error) {
	var out map[streak.Type]streak.Data
	if err := c.do(ctx, http.MethodGet, "/api/protocol/streaks", nil, &out); err != nil {
		return nil, fmt.Errorf("fetching streaks: %w", err)
	}
	return out, nil
}

// RateLimitStatus returns the remaining request budget
func (c *Client) RateLimitStatus() (remaining int, resetsAt time.Time) {
	return c.rateLimiter.Status()
}

// ProtocolLog is the body of /api/protocol/log
type ProtocolLog struct {
	ItemID   string `json:"itemId"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Date     string `json:"date"`
}

type stateValue struct {
	Value string `json:"value"`
}

var _ storage.Backend = (*Client)(nil)

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		payload = data
	}

	resp, err := c.send(ctx, method, path, payload)
	if err != nil {
		return err
	}

	// A token revoked before its expiry gets one fresh attempt
	if resp.StatusCode == http.StatusUnauthorized {
		if inv, ok := c.tokens.(invalidator); ok {
			resp.Body.Close()
			c.log.Debug().Str("path", path).Msg("Token rejected, fetching a new one")
			inv.Invalidate()
			if resp, err = c.send(ctx, method, path, payload); err != nil {
				return err
			}
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}
	return nil
}

// send performs one rate-limited request
func (c *Client) send(ctx context.Context, method, path string, payload []byte) (*http.Response, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	c.rateLimiter.UpdateFromHeaders(resp.Header)
	return resp, nil
}
