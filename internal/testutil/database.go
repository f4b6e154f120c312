// Package testutil provides testing utilities backed by a real embedded
// database.
//
// Database Setup:
//
//	db := testutil.SetupLibSQLDB(t)
//
// SetupLibSQLDB creates a fresh libSQL database file under t.TempDir(),
// applies the embedded migrations, and registers cleanup on test end. Every
// test gets an isolated database; no external services are needed.
package testutil

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/allisson/vaultlite/internal/database"
)

// SetupLibSQLDB creates a migrated, isolated libSQL database for a test.
func SetupLibSQLDB(t *testing.T) *sql.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	db, err := database.Connect(database.Config{
		Driver:           database.DriverLibSQL,
		ConnectionString: "file:" + path,
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, db.Close())
	})

	require.NoError(t, database.Migrate(context.Background(), db))
	return db
}
