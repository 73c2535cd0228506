package store

import (
	"database/sql"
	"errors"
	"time"
)

// ErrNoAuth is returned when no gateway token is stored
var ErrNoAuth = errors.New("no authentication stored")

// Auth is the cached gateway access token
type Auth struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
	ExpiresAt    time.Time
}

// GetAuth retrieves the stored gateway token
func (db *DB) GetAuth() (*Auth, error) {
	row := db.QueryRow(`SELECT access_token, refresh_token, token_type, expires_at FROM gateway_auth WHERE id = 1`)

	var a Auth
	var expires sql.NullInt64
	switch err := row.Scan(&a.AccessToken, &a.RefreshToken, &a.TokenType, &expires); {
	case errors.Is(err, sql.ErrNoRows):
		return nil, ErrNoAuth
	case err != nil:
		return nil, err
	}

	// zero means the token never expires
	if expires.Valid && expires.Int64 > 0 {
		a.ExpiresAt = time.Unix(expires.Int64, 0)
	}
	return &a, nil
}

// SaveAuth stores or replaces the gateway token
func (db *DB) SaveAuth(a *Auth) error {
	var expires int64
	if !a.ExpiresAt.IsZero() {
		expires = a.ExpiresAt.Unix()
	}

	_, err := db.Exec(`
		REPLACE INTO gateway_auth (id, access_token, refresh_token, token_type, expires_at, updated_at)
		VALUES (1, ?, ?, ?, ?, CURRENT_TIMESTAMP)`,
		a.AccessToken, a.RefreshToken, a.TokenType, expires)
	return err
}

// ClearAuth removes the stored token
func (db *DB) ClearAuth() error {
	_, err := db.Exec(`DELETE FROM gateway_auth WHERE id = 1`)
	return err
}
