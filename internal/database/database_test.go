package database

import (
	"context"
	"database/sql"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := Connect(Config{
		Driver:           DriverLibSQL,
		ConnectionString: "file:" + filepath.Join(t.TempDir(), "test.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, db.Close()) })
	return db
}

func TestConnect_Error(t *testing.T) {
	cfg := Config{
		Driver:             "invalid",
		ConnectionString:   "invalid",
		MaxOpenConnections: 10,
		MaxIdleConnections: 5,
		ConnMaxLifetime:    time.Hour,
	}

	db, err := Connect(cfg)
	assert.Error(t, err)
	assert.Nil(t, db)
	assert.Contains(t, err.Error(), "sql: unknown driver")
}

func TestConnect_LibSQL(t *testing.T) {
	db := setupTestDB(t)

	// The embedded driver is pinned to a single connection.
	assert.Equal(t, 1, db.Stats().MaxOpenConnections)

	var journalMode string
	require.NoError(t, db.QueryRow("PRAGMA journal_mode").Scan(&journalMode))
	assert.Equal(t, "wal", journalMode)
}

func TestSplitStatements(t *testing.T) {
	script := `-- header comment; semicolons in comments are not terminators;
CREATE TABLE a (
    id TEXT PRIMARY KEY
);

-- another comment ending in a semicolon;
CREATE INDEX idx_a ON a (id);
`

	stmts := splitStatements(script)
	require.Len(t, stmts, 2)
	assert.True(t, strings.HasPrefix(stmts[0], "CREATE TABLE a"))
	assert.Equal(t, "CREATE INDEX idx_a ON a (id)", stmts[1])
}

func TestMigrate(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)

	require.NoError(t, Migrate(ctx, db))

	// The secrets table exists after migration.
	var name string
	err := db.QueryRow("SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'secrets'").Scan(&name)
	require.NoError(t, err)
	assert.Equal(t, "secrets", name)

	// Running again is a no-op.
	require.NoError(t, Migrate(ctx, db))

	var version int
	require.NoError(t, db.QueryRow("SELECT MAX(version) FROM schema_version").Scan(&version))
	assert.Equal(t, 1, version)
}
