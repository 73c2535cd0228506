package store

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// NewTestDB returns a migrated in-memory database that is closed when the
// test ends
func NewTestDB(t testing.TB) *DB {
	t.Helper()

	db, err := Open(MemoryPath)
	require.NoError(t, err, "opening in-memory database")
	t.Cleanup(func() { _ = db.Close() })
	return db
}
