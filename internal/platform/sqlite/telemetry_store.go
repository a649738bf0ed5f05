package sqlite

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/phrazzld/maika/internal/domain"
	"github.com/phrazzld/maika/internal/platform/logger"
	"github.com/phrazzld/maika/internal/store"
)

// SQLiteTelemetryStore implements the store.TelemetryStore interface.
type SQLiteTelemetryStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewSQLiteTelemetryStore creates a new SQLite implementation of the TelemetryStore interface.
// If logger is nil, a default logger will be used.
func NewSQLiteTelemetryStore(db store.DBTX, logger *slog.Logger) *SQLiteTelemetryStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SQLiteTelemetryStore{
		db:     db,
		logger: logger.With(slog.String("component", "telemetry_store")),
	}
}

// Ensure SQLiteTelemetryStore implements store.TelemetryStore interface
var _ store.TelemetryStore = (*SQLiteTelemetryStore)(nil)

// RecordUsage implements store.TelemetryStore.RecordUsage
func (s *SQLiteTelemetryStore) RecordUsage(ctx context.Context, stat *domain.UsageStat) error {
	if stat.RecordedAt.IsZero() {
		stat.RecordedAt = nowUTC()
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO usage_stats (user_id, action_type, success, recorded_at)
		VALUES (?, ?, ?, ?)`,
		stat.UserID, stat.ActionType, stat.Success, timestamp(stat.RecordedAt),
	)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Warn("failed to record usage",
			slog.String("error", err.Error()),
			slog.String("action_type", stat.ActionType))
		return wrapError("usage_stat", "insert", err)
	}

	if id, err := res.LastInsertId(); err == nil {
		stat.ID = id
	}
	return nil
}

// RecordQuery implements store.TelemetryStore.RecordQuery
func (s *SQLiteTelemetryStore) RecordQuery(ctx context.Context, query *domain.UserQuery) error {
	if query.RecordedAt.IsZero() {
		query.RecordedAt = nowUTC()
	}

	var entities sql.NullString
	if len(query.Entities) > 0 {
		entities = sql.NullString{String: string(query.Entities), Valid: true}
	}
	var helpful sql.NullBool
	if query.ResponseHelpful != nil {
		helpful = sql.NullBool{Bool: *query.ResponseHelpful, Valid: true}
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO user_queries (user_id, intent, entities, response_helpful, recorded_at)
		VALUES (?, ?, ?, ?, ?)`,
		query.UserID, query.Intent, entities, helpful, timestamp(query.RecordedAt),
	)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Warn("failed to record query",
			slog.String("error", err.Error()),
			slog.String("intent", query.Intent))
		return wrapError("user_query", "insert", err)
	}

	if id, err := res.LastInsertId(); err == nil {
		query.ID = id
	}
	return nil
}

// Summary implements store.TelemetryStore.Summary
func (s *SQLiteTelemetryStore) Summary(ctx context.Context, since time.Time) (*domain.UsageSummary, error) {
	from := timestamp(since)
	summary := &domain.UsageSummary{Since: since.UTC()}

	if err := s.db.GetContext(ctx, &summary.TotalQueries,
		`SELECT COUNT(*) FROM user_queries WHERE recorded_at >= ?`, from); err != nil {
		return nil, wrapError("user_query", "count", err)
	}

	var byIntent []struct {
		Intent string `db:"intent"`
		Count  int    `db:"count"`
	}
	if err := s.db.SelectContext(ctx, &byIntent, `
		SELECT intent, COUNT(*) AS count
		FROM user_queries
		WHERE recorded_at >= ?
		GROUP BY intent
		ORDER BY count DESC, intent ASC`, from); err != nil {
		return nil, wrapError("user_query", "group", err)
	}
	summary.QueriesByIntent = make([]domain.IntentCount, 0, len(byIntent))
	for _, row := range byIntent {
		summary.QueriesByIntent = append(summary.QueriesByIntent,
			domain.IntentCount{Intent: row.Intent, Count: row.Count})
	}

	var quizzes struct {
		Count   int             `db:"count"`
		Average sql.NullFloat64 `db:"average"`
	}
	if err := s.db.GetContext(ctx, &quizzes, `
		SELECT COUNT(*) AS count, AVG(percentage) AS average
		FROM quiz_results
		WHERE taken_at >= ?`, from); err != nil {
		return nil, wrapError("quiz_result", "aggregate", err)
	}
	summary.TotalQuizzes = quizzes.Count
	if quizzes.Average.Valid {
		summary.AverageScore = quizzes.Average.Float64
	}

	return summary, nil
}
