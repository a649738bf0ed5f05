package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/maika/internal/actions"
	"github.com/phrazzld/maika/internal/auth"
	"github.com/phrazzld/maika/internal/config"
	"github.com/phrazzld/maika/internal/content"
	"github.com/phrazzld/maika/internal/events"
	"github.com/phrazzld/maika/internal/platform/sqlite"
	"github.com/phrazzld/maika/internal/quiz"
	"github.com/phrazzld/maika/internal/rotation"
	"github.com/phrazzld/maika/internal/service"
)

// application holds the shared dependencies so they can be cleaned up
// together on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sqlx.DB
	stores *sqlite.Stores

	content  *content.Library
	emitter  *events.InMemoryEventEmitter
	progress service.ProgressService
	reviews  service.ReviewService
	stats    service.StatsService

	dispatcher *actions.Dispatcher
	tokens     auth.TokenService
}

// newApplication opens the database and wires every engine behind the
// action dispatcher.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	db, err := openDatabase(ctx, cfg.Database, true, logger)
	if err != nil {
		return nil, err
	}

	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
		stores: sqlite.NewStores(db, logger),
	}
	if err := app.wire(ctx); err != nil {
		app.cleanup()
		return nil, err
	}

	logger.Info("application initialized",
		slog.Int("actions", len(app.dispatcher.Names())),
		slog.Bool("auth_enabled", app.tokens != nil))
	return app, nil
}

func (app *application) wire(ctx context.Context) error {
	cfg := app.config
	logger := app.logger

	if cfg.Auth.WebhookSecret != "" {
		tokens, err := auth.NewTokenService(cfg.Auth)
		if err != nil {
			return fmt.Errorf("failed to initialize token service: %w", err)
		}
		app.tokens = tokens
	} else {
		logger.Warn("webhook authentication disabled: auth.webhook_secret is empty")
	}

	library, err := content.Load(ctx, cfg.Content.Dir, logger)
	if err != nil {
		return fmt.Errorf("failed to load content: %w", err)
	}
	app.content = library

	app.emitter = events.NewInMemoryEventEmitter(logger)
	app.emitter.RegisterHandler(events.NewUsageHandler(app.stores.Telemetry))

	progress := service.NewProgressService(app.db, app.stores.Users, app.stores.XP,
		app.stores.QuizResults, app.stores.Leaderboard, app.emitter, logger)
	app.progress = progress
	app.reviews = service.NewReviewService(app.db, app.stores.Users, app.stores.Reviews,
		app.stores.XP, nil, app.emitter, logger)
	app.stats = service.NewStatsService(app.stores.QuizResults, app.stores.Leaderboard,
		app.stores.Telemetry, logger)

	engine := quiz.NewEngine(library, progress, progress,
		quiz.WithDefaultCount(cfg.Quiz.QuestionCount),
		quiz.WithCompletionXP(cfg.Quiz.CompletionXP),
		quiz.WithLogger(logger))

	app.dispatcher = actions.NewDispatcher(actions.Deps{
		Migrator: sqlite.NewMigrator(app.db),
		Content:  library,
		Rotation: rotation.NewEngine(library, rotation.WithLogger(logger)),
		Quiz:     engine,
		Progress: app.progress,
		Reviews:  app.reviews,
		Stats:    app.stats,
		Emitter:  app.emitter,
		Logger:   logger,
	})
	return nil
}

// Run serves the webhook until ctx is canceled or the process is signaled.
func (app *application) Run(ctx context.Context) error {
	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup releases application resources.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", slog.String("error", err.Error()))
		}
		app.db = nil
	}
	app.logger.Debug("application resources released")
}
