// Package dbtest provides a migrated in-memory SQLite database for tests.
package dbtest

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iliyamo/stadium-tickets/internal/database"
)

// New returns a fresh, fully migrated database that is closed when the test
// ends.  The pool holds a single connection, so a test must never use the
// *sql.DB while it holds an open transaction on it.
func New(t testing.TB) *sql.DB {
	t.Helper()

	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, database.Migrate(context.Background(), db, database.DriverSQLite, nil))
	return db
}
