package auth

import (
	"context"
	"errors"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// ErrNoCredentials is returned when neither a token nor client credentials
// are configured
var ErrNoCredentials = errors.New("no gateway credentials configured")

// Config holds the gateway credentials. A static Token takes precedence over
// the client credentials grant.
type Config struct {
	Token        string
	ClientID     string
	ClientSecret string
	TokenURL     string
	Scopes       []string
}

// NewClientCredentialsConfig creates a clientcredentials.Config from our Config
func NewClientCredentialsConfig(cfg Config) *clientcredentials.Config {
	return &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     cfg.TokenURL,
		Scopes:       cfg.Scopes,
	}
}

// New builds the token source for cfg. cached seeds the client credentials
// flow so a still-valid token is reused across runs; onRefresh persists
// newly fetched tokens.
func New(ctx context.Context, cfg Config, cached *oauth2.Token, onRefresh func(*oauth2.Token) error) (oauth2.TokenSource, error) {
	if cfg.Token != "" {
		return oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: cfg.Token,
			TokenType:   "Bearer",
		}), nil
	}

	if cfg.ClientID == "" || cfg.TokenURL == "" {
		return nil, ErrNoCredentials
	}

	base := NewClientCredentialsConfig(cfg).TokenSource(ctx)
	return NewTokenSource(base, cached, onRefresh), nil
}

// validFor reports whether t is usable for at least the refresh buffer
func validFor(t *oauth2.Token, buffer time.Duration) bool {
	if t == nil || t.AccessToken == "" {
		return false
	}
	if t.Expiry.IsZero() {
		return true
	}
	return time.Until(t.Expiry) > buffer
}
