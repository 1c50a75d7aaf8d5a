package database

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// NewTestDB creates an in-memory SQLite database for testing. The database is
// automatically closed when the test completes.
func NewTestDB(t *testing.T) *DB {
	t.Helper()

	t.Setenv("NEURA_ENCRYPTION_KEY", "test-encryption-key")

	db, err := New(":memory:")
	require.NoError(t, err, "failed to create test database")

	t.Cleanup(func() {
		db.Close()
	})

	return db
}
