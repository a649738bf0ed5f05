package sqlite

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"sync"

	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/maika/internal/platform/logger"
	"github.com/phrazzld/maika/internal/store"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// newProvider builds a goose provider over the embedded migrations.
func newProvider(db *sqlx.DB) (*goose.Provider, error) {
	fsys, err := fs.Sub(embedMigrations, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded migrations: %w", err)
	}
	provider, err := goose.NewProvider(goose.DialectSQLite3, db.DB, fsys)
	if err != nil {
		return nil, fmt.Errorf("failed to create migration provider: %w", err)
	}
	return provider, nil
}

// Migrate applies all pending migrations. Every statement in the embedded
// migrations is guarded with IF NOT EXISTS, so the call is idempotent even
// against a database created by an earlier schema bootstrap.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	log := logger.FromContext(ctx).With(slog.String("component", "migrations"))

	provider, err := newProvider(db)
	if err != nil {
		return err
	}

	results, err := provider.Up(ctx)
	if err != nil {
		log.Error("migration failed", slog.String("error", err.Error()))
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	for _, r := range results {
		log.Info("applied migration",
			slog.Int64("version", r.Source.Version),
			slog.String("path", r.Source.Path),
			slog.Duration("duration", r.Duration))
	}
	return nil
}

// Rollback reverts the most recently applied migration.
func Rollback(ctx context.Context, db *sqlx.DB) error {
	provider, err := newProvider(db)
	if err != nil {
		return err
	}
	result, err := provider.Down(ctx)
	if err != nil {
		return fmt.Errorf("failed to roll back migration: %w", err)
	}
	logger.FromContext(ctx).Info("rolled back migration",
		slog.Int64("version", result.Source.Version),
		slog.String("path", result.Source.Path))
	return nil
}

// MigrationStatus describes one embedded migration.
type MigrationStatus struct {
	Version int64
	Path    string
	Applied bool
}

// Status reports which embedded migrations have been applied.
func Status(ctx context.Context, db *sqlx.DB) ([]MigrationStatus, error) {
	provider, err := newProvider(db)
	if err != nil {
		return nil, err
	}
	statuses, err := provider.Status(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read migration status: %w", err)
	}

	out := make([]MigrationStatus, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, MigrationStatus{
			Version: s.Source.Version,
			Path:    s.Source.Path,
			Applied: s.State == goose.StateApplied,
		})
	}
	return out, nil
}

// Migrator guards Migrate so that it can be called before every entry point.
// After the first success further calls return immediately.
type Migrator struct {
	db   *sqlx.DB
	mu   sync.Mutex
	done bool
}

// NewMigrator creates a Migrator for db.
func NewMigrator(db *sqlx.DB) *Migrator {
	if db == nil {
		panic("db cannot be nil")
	}
	return &Migrator{db: db}
}

// Migrate applies pending migrations once per process. Failures are reported
// as *store.StorageError and retried on the next call.
func (m *Migrator) Migrate(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.done {
		return nil
	}
	if err := Migrate(ctx, m.db); err != nil {
		return store.NewStorageError("schema", "migrate", MapError(err))
	}
	m.done = true
	return nil
}
