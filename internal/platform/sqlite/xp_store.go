package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/maika/internal/domain"
	"github.com/phrazzld/maika/internal/platform/logger"
	"github.com/phrazzld/maika/internal/store"
)

// SQLiteXPStore implements the store.XPStore interface.
type SQLiteXPStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewSQLiteXPStore creates a new SQLite implementation of the XPStore interface.
// If logger is nil, a default logger will be used.
func NewSQLiteXPStore(db store.DBTX, logger *slog.Logger) *SQLiteXPStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SQLiteXPStore{
		db:     db,
		logger: logger.With(slog.String("component", "xp_store")),
	}
}

// Ensure SQLiteXPStore implements store.XPStore interface
var _ store.XPStore = (*SQLiteXPStore)(nil)

type xpEventRow struct {
	ID        int64          `db:"id"`
	UserID    string         `db:"user_id"`
	Kind      string         `db:"kind"`
	Amount    int            `db:"amount"`
	MetaJSON  sql.NullString `db:"meta_json"`
	CreatedAt timestamp      `db:"created_at"`
}

func (r xpEventRow) toDomain() *domain.XPEvent {
	event := &domain.XPEvent{
		ID:        r.ID,
		UserID:    r.UserID,
		Kind:      domain.XPKind(r.Kind),
		Amount:    r.Amount,
		CreatedAt: r.CreatedAt.Time(),
	}
	if r.MetaJSON.Valid {
		event.Meta = json.RawMessage(r.MetaJSON.String)
	}
	return event
}

// Append implements store.XPStore.Append
func (s *SQLiteXPStore) Append(ctx context.Context, event *domain.XPEvent) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := event.Validate(); err != nil {
		log.Warn("xp event validation failed",
			slog.String("error", err.Error()),
			slog.String("user_id", event.UserID))
		return errors.Join(store.ErrInvalidEntity, err)
	}

	var meta sql.NullString
	if len(event.Meta) > 0 {
		meta = sql.NullString{String: string(event.Meta), Valid: true}
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO xp_events (user_id, kind, amount, meta_json, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		event.UserID, string(event.Kind), event.Amount, meta, timestamp(event.CreatedAt),
	)
	if err != nil {
		log.Error("failed to append xp event",
			slog.String("error", err.Error()),
			slog.String("user_id", event.UserID),
			slog.String("kind", string(event.Kind)))
		return wrapError("xp_event", "insert", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return wrapError("xp_event", "insert", err)
	}
	event.ID = id

	log.Debug("xp event appended",
		slog.Int64("event_id", id),
		slog.String("user_id", event.UserID),
		slog.String("kind", string(event.Kind)),
		slog.Int("amount", event.Amount))
	return nil
}

// Total implements store.XPStore.Total
func (s *SQLiteXPStore) Total(ctx context.Context, userID string) (int, error) {
	var total int
	err := s.db.GetContext(ctx, &total,
		`SELECT COALESCE(SUM(amount), 0) FROM xp_events WHERE user_id = ?`, userID)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to sum xp",
			slog.String("error", err.Error()),
			slog.String("user_id", userID))
		return 0, wrapError("xp_event", "sum", err)
	}
	return total, nil
}

// ListByUser implements store.XPStore.ListByUser
func (s *SQLiteXPStore) ListByUser(ctx context.Context, userID string, limit int) ([]*domain.XPEvent, error) {
	var rows []xpEventRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, user_id, kind, amount, meta_json, created_at
		FROM xp_events
		WHERE user_id = ?
		ORDER BY id DESC
		LIMIT ?`,
		userID, normalizeLimit(limit),
	)
	if err != nil {
		return nil, wrapError("xp_event", "list", err)
	}

	events := make([]*domain.XPEvent, 0, len(rows))
	for _, r := range rows {
		events = append(events, r.toDomain())
	}
	return events, nil
}

// WithTx implements store.XPStore.WithTx
func (s *SQLiteXPStore) WithTx(tx *sqlx.Tx) store.XPStore {
	return &SQLiteXPStore{db: tx, logger: s.logger}
}
