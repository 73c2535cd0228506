// Package storage persists tracker documents as JSON in a key-value string
// store. Failures are logged and absorbed: a corrupt or unavailable store
// degrades to defaults instead of surfacing errors to callers.
package storage

import (
	"encoding/json"

	"github.com/rs/zerolog"
)

// Keys of the persisted tracker documents
const (
	KeyFastingState    = "fasting-state"
	KeyFastingHistory  = "fasting-history"
	KeyProtocolItems   = "protocol-items"
	KeyProtocolToday   = "protocol-today"
	KeyProtocolStreaks = "protocol-streaks"
	KeyProtocolHistory = "protocol-history"
)

// Backend is a key-value string store
type Backend interface {
	// Get returns ok=false when the key has never been written
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
}

// Adapter encodes documents to JSON on top of a Backend
type Adapter struct {
	backend Backend
	log     zerolog.Logger
}

// NewAdapter creates an adapter. A nil backend yields an adapter whose
// loads return defaults and whose saves do nothing.
func NewAdapter(backend Backend, log zerolog.Logger) *Adapter {
	return &Adapter{
		backend: backend,
		log:     log.With().Str("component", "storage").Logger(),
	}
}

// Available reports whether a backend is attached
func (a *Adapter) Available() bool {
	return a != nil && a.backend != nil
}

// Save encodes v and writes it under key
func (a *Adapter) Save(key string, v any) {
	if !a.Available() {
		return
	}

	data, err := json.Marshal(v)
	if err != nil {
		a.log.Error().Err(err).Str("key", key).Msg("Failed to encode value")
		return
	}

	if err := a.backend.Set(key, string(data)); err != nil {
		a.log.Error().Err(err).Str("key", key).Msg("Failed to write value")
	}
}

// Load reads key into a T. Missing keys, backend errors and undecodable
// values all yield def.
func Load[T any](a *Adapter, key string, def T) T {
	if !a.Available() {
		return def
	}

	raw, ok, err := a.backend.Get(key)
	if err != nil {
		a.log.Error().Err(err).Str("key", key).Msg("Failed to read value")
		return def
	}
	if !ok || raw == "" {
		return def
	}

	var v T
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		a.log.Warn().Err(err).Str("key", key).Msg("Discarding corrupt value")
		return def
	}
	return v
}
