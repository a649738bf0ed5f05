package testdb

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/maika/internal/config"
	"github.com/phrazzld/maika/internal/platform/sqlite"
	"github.com/stretchr/testify/require"
)

// TestTimeout defines a default timeout for test database operations.
const TestTimeout = 5 * time.Second

// Config returns a database configuration pointing at a fresh file in a
// per-test temporary directory.
func Config(t *testing.T) config.DatabaseConfig {
	t.Helper()
	return config.DatabaseConfig{
		Path:          filepath.Join(t.TempDir(), "metrics.db"),
		BusyTimeoutMS: 5000,
		MaxOpenConns:  1,
	}
}

// GetTestDBWithT opens an empty, unmigrated database and registers its
// cleanup.
func GetTestDBWithT(t *testing.T) *sqlx.DB {
	t.Helper()
	return OpenWithConfig(t, Config(t))
}

// OpenWithConfig opens the database described by cfg and registers its
// cleanup.
func OpenWithConfig(t *testing.T, cfg config.DatabaseConfig) *sqlx.DB {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), TestTimeout)
	defer cancel()

	db, err := sqlite.Open(ctx, cfg)
	require.NoError(t, err, "Failed to open test database")

	t.Cleanup(func() {
		CleanupDB(t, db)
	})
	return db
}

// NewMigratedDB opens a database in a temporary directory and applies every
// migration to it.
func NewMigratedDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db := GetTestDBWithT(t)
	SetupTestDatabaseSchema(t, db)
	return db
}

// SetupTestDatabaseSchema applies the embedded migrations.
func SetupTestDatabaseSchema(t *testing.T, db *sqlx.DB) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), TestTimeout)
	defer cancel()

	require.NoError(t, sqlite.Migrate(ctx, db), "Failed to run migrations")
}

// CleanupDB safely closes a database connection.
func CleanupDB(t *testing.T, db *sqlx.DB) {
	t.Helper()
	if db == nil {
		return
	}
	if err := db.Close(); err != nil {
		t.Logf("Warning: failed to close database connection: %v", err)
	}
}
