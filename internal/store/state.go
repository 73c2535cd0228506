package store

import (
	"database/sql"
	"errors"
)

// Get retrieves a state value by key.
// ok is false when the key has never been written.
func (db *DB) Get(key string) (value string, ok bool, err error) {
	err = db.QueryRow(`
		SELECT value FROM kv_state WHERE key = ?
	`, key).Scan(&value)

	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// Set stores a state value, replacing any previous value
func (db *DB) Set(key, value string) error {
	_, err := db.Exec(`
		INSERT INTO kv_state (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = CURRENT_TIMESTAMP
	`, key, value)
	return err
}

// Delete removes a state value
func (db *DB) Delete(key string) error {
	_, err := db.Exec(`DELETE FROM kv_state WHERE key = ?`, key)
	return err
}

// Keys lists every stored state key
func (db *DB) Keys() ([]string, error) {
	rows, err := db.Query(`SELECT key FROM kv_state ORDER BY key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}
