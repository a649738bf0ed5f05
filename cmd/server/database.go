package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/avast/retry-go"
	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/maika/internal/config"
	"github.com/phrazzld/maika/internal/platform/sqlite"
)

const (
	bootstrapAttempts = 5
	bootstrapDelay    = 200 * time.Millisecond
)

// openDatabase opens the SQLite store and, when migrate is set, applies
// pending migrations. Both steps are retried while the file is busy or
// locked by another process.
func openDatabase(ctx context.Context, cfg config.DatabaseConfig, migrate bool, log *slog.Logger) (*sqlx.DB, error) {
	var db *sqlx.DB
	err := retry.Do(
		func() error {
			opened, err := sqlite.Open(ctx, cfg)
			if err != nil {
				return err
			}
			if migrate {
				if err := sqlite.Migrate(ctx, opened); err != nil {
					_ = opened.Close()
					return err
				}
			}
			db = opened
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(bootstrapAttempts),
		retry.Delay(bootstrapDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.RetryIf(sqlite.IsBusy),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			log.Warn("database busy, retrying",
				slog.Uint64("attempt", uint64(n)+1),
				slog.String("error", err.Error()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	log.Info("database ready", slog.Bool("migrated", migrate))
	return db, nil
}
