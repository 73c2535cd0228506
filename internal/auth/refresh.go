package auth

import (
	"sync"
	"time"

	"golang.org/x/oauth2"
)

// RefreshBuffer is how long before expiry a token is replaced
const RefreshBuffer = 60 * time.Second

// TokenSource caches the token issued by base across runs. A token is
// fetched again when it nears expiry or after Invalidate, and every fetched
// token is handed to onRefresh for persistence.
type TokenSource struct {
	mu        sync.Mutex
	base      oauth2.TokenSource
	cached    *oauth2.Token
	onRefresh func(*oauth2.Token) error
}

// NewTokenSource seeds the cache with token, which may be nil
func NewTokenSource(base oauth2.TokenSource, token *oauth2.Token, onRefresh func(*oauth2.Token) error) *TokenSource {
	return &TokenSource{base: base, cached: token, onRefresh: onRefresh}
}

// Token implements oauth2.TokenSource
func (ts *TokenSource) Token() (*oauth2.Token, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if validFor(ts.cached, RefreshBuffer) {
		return ts.cached, nil
	}

	fresh, err := ts.base.Token()
	if err != nil {
		return nil, err
	}
	if ts.onRefresh != nil {
		if err := ts.onRefresh(fresh); err != nil {
			return nil, err
		}
	}

	ts.cached = fresh
	return fresh, nil
}

// Invalidate drops the cached token so the next call fetches a new one.
// The gateway calls it when the server rejects a token before its expiry.
func (ts *TokenSource) Invalidate() {
	ts.mu.Lock()
	ts.cached = nil
	ts.mu.Unlock()
}

// IsExpired reports whether the next Token call will fetch
func (ts *TokenSource) IsExpired() bool {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return !validFor(ts.cached, RefreshBuffer)
}

// CurrentToken returns the cached token, nil if none
func (ts *TokenSource) CurrentToken() *oauth2.Token {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return ts.cached
}
