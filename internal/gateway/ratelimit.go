package gateway

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// RateLimiter keeps the client under the gateway's request budget: a
// minimum interval between requests plus a per-window budget.
type RateLimiter struct {
	mu sync.Mutex

	limit    int
	usage    int
	window   time.Duration
	resetsAt time.Time

	minInterval time.Duration
	lastRequest time.Time
}

// NewRateLimiter creates a limiter allowing limit requests per window
func NewRateLimiter(limit int, window, minInterval time.Duration) *RateLimiter {
	return &RateLimiter{
		limit:       limit,
		window:      window,
		resetsAt:    time.Now().Add(window),
		minInterval: minInterval,
	}
}

// DefaultRateLimiter allows 120 requests per minute, at most ~10 per second
func DefaultRateLimiter() *RateLimiter {
	return NewRateLimiter(120, time.Minute, 100*time.Millisecond)
}

// Wait blocks until a request fits both the window budget and the
// minimum spacing, or ctx is done
func (r *RateLimiter) Wait(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for {
		now := time.Now()
		if now.After(r.resetsAt) {
			r.usage = 0
			r.resetsAt = now.Add(r.window)
		}

		var delay time.Duration
		switch {
		case r.limit > 0 && r.usage >= r.limit:
			delay = r.resetsAt.Sub(now)
		case now.Sub(r.lastRequest) < r.minInterval:
			delay = r.minInterval - now.Sub(r.lastRequest)
		default:
			r.usage++
			r.lastRequest = now
			return nil
		}

		if err := r.sleep(ctx, delay); err != nil {
			return err
		}
	}
}

// sleep releases the lock for d; the lock is held again on return
func (r *RateLimiter) sleep(ctx context.Context, d time.Duration) error {
	r.mu.Unlock()
	defer r.mu.Lock()

	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// UpdateFromHeaders syncs the budget with the server's view.
// The gateway returns X-RateLimit-Limit, X-RateLimit-Remaining and, when
// throttled, Retry-After in seconds.
func (r *RateLimiter) UpdateFromHeaders(h http.Header) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if limit, err := strconv.Atoi(h.Get("X-RateLimit-Limit")); err == nil && limit > 0 {
		r.limit = limit
	}
	if remaining, err := strconv.Atoi(h.Get("X-RateLimit-Remaining")); err == nil && remaining >= 0 {
		r.usage = max(r.limit-remaining, 0)
	}
	if secs, err := strconv.Atoi(h.Get("Retry-After")); err == nil && secs > 0 {
		r.usage = r.limit
		r.resetsAt = time.Now().Add(time.Duration(secs) * time.Second)
	}
}

// Status returns the remaining requests in the current window
func (r *RateLimiter) Status() (remaining int, resetsAt time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.limit - r.usage, r.resetsAt
}
