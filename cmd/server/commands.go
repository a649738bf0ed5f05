package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"text/tabwriter"

	"github.com/phrazzld/maika/internal/auth"
	"github.com/phrazzld/maika/internal/config"
	"github.com/phrazzld/maika/internal/platform/logger"
	"github.com/phrazzld/maika/internal/platform/sqlite"
	"github.com/phrazzld/maika/internal/service"
	"github.com/spf13/cobra"
)

// rootOptions are the flags shared by every subcommand.
type rootOptions struct {
	configFile string
	logLevel   string
}

// loadConfig reads configuration and sets up the default logger.
func (o *rootOptions) loadConfig() (*config.Config, *slog.Logger, error) {
	cfg, err := config.LoadFile(o.configFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if o.logLevel != "" {
		cfg.Server.LogLevel = o.logLevel
	}

	log, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to set up logger: %w", err)
	}
	log.Debug("configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel),
		slog.String("content_dir", cfg.Content.Dir),
		slog.Bool("auth_enabled", cfg.Auth.WebhookSecret != ""))
	return cfg, log, nil
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "maika",
		Short:         "Progress and gamification engine for the Maika assistant",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configFile, "config", "", "config file path (default ./config.yaml)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override server.log_level")

	root.AddCommand(
		newServeCommand(opts),
		newMigrateCommand(opts),
		newLeaderboardCommand(opts),
		newStatsCommand(opts),
		newTokenCommand(opts),
	)
	return root
}

func newServeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the webhook server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := opts.loadConfig()
			if err != nil {
				return err
			}
			app, err := newApplication(cmd.Context(), cfg, log)
			if err != nil {
				return fmt.Errorf("failed to initialize application: %w", err)
			}
			return app.Run(cmd.Context())
		},
	}
}

// withDatabase opens the configured database for a maintenance command.
func withDatabase(ctx context.Context, opts *rootOptions, migrate bool, fn func(*application) error) error {
	cfg, log, err := opts.loadConfig()
	if err != nil {
		return err
	}
	db, err := openDatabase(ctx, cfg.Database, migrate, log)
	if err != nil {
		return err
	}
	app := &application{config: cfg, logger: log, db: db, stores: sqlite.NewStores(db, log)}
	defer app.cleanup()
	return fn(app)
}

func newMigrateCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withDatabase(cmd.Context(), opts, true, func(*application) error {
					fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the most recent migration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withDatabase(cmd.Context(), opts, false, func(app *application) error {
					if err := sqlite.Rollback(cmd.Context(), app.db); err != nil {
						return err
					}
					fmt.Fprintln(cmd.OutOrStdout(), "rolled back one migration")
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Show migration status",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withDatabase(cmd.Context(), opts, false, func(app *application) error {
					statuses, err := sqlite.Status(cmd.Context(), app.db)
					if err != nil {
						return err
					}
					return writeMigrationStatus(cmd.OutOrStdout(), statuses)
				})
			},
		},
	)
	return cmd
}

func writeMigrationStatus(w io.Writer, statuses []sqlite.MigrationStatus) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "VERSION\tSTATE\tFILE")
	for _, s := range statuses {
		state := "pending"
		if s.Applied {
			state = "applied"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\n", s.Version, state, s.Path)
	}
	return tw.Flush()
}

func newLeaderboardCommand(opts *rootOptions) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Print the quiz leaderboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDatabase(cmd.Context(), opts, true, func(app *application) error {
				stats := service.NewStatsService(app.stores.QuizResults, app.stores.Leaderboard, app.stores.Telemetry, app.logger)
				entries, err := stats.Leaderboard(cmd.Context(), limit)
				if err != nil {
					return err
				}

				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "RANK\tUSER\tBEST\tPERCENT\tQUIZZES")
				for i, e := range entries {
					fmt.Fprintf(tw, "%d\t%s\t%d\t%.1f%%\t%d\n",
						i+1, e.UserID, e.BestScore, e.BestPercentage, e.TotalQuizzes)
				}
				return tw.Flush()
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "number of entries to show")
	return cmd
}

func newStatsCommand(opts *rootOptions) *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print a usage summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDatabase(cmd.Context(), opts, true, func(app *application) error {
				stats := service.NewStatsService(app.stores.QuizResults, app.stores.Leaderboard, app.stores.Telemetry, app.logger)
				summary, err := stats.UsageSummary(cmd.Context(), days)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Since:          %s\n", summary.Since.Format("2006-01-02 15:04 MST"))
				fmt.Fprintf(out, "Queries:        %d\n", summary.TotalQueries)
				fmt.Fprintf(out, "Quizzes:        %d\n", summary.TotalQuizzes)
				fmt.Fprintf(out, "Average score:  %.1f%%\n", summary.AverageScore)
				if len(summary.QueriesByIntent) == 0 {
					return nil
				}

				tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "\nINTENT\tCOUNT")
				for _, ic := range summary.QueriesByIntent {
					fmt.Fprintf(tw, "%s\t%d\n", ic.Intent, ic.Count)
				}
				return tw.Flush()
			})
		},
	}
	cmd.Flags().IntVarP(&days, "days", "d", service.DefaultSummaryDays, "size of the reporting window in days")
	return cmd
}

func newTokenCommand(opts *rootOptions) *cobra.Command {
	var subject string
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a webhook bearer token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if cfg.Auth.WebhookSecret == "" {
				return fmt.Errorf("auth.webhook_secret is not set")
			}
			tokens, err := auth.NewTokenService(cfg.Auth)
			if err != nil {
				return fmt.Errorf("failed to create token service: %w", err)
			}
			token, err := tokens.GenerateToken(cmd.Context(), subject)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "rasa", "caller name recorded in the token")
	return cmd
}
