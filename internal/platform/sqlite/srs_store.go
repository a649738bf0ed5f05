package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/maika/internal/domain"
	"github.com/phrazzld/maika/internal/platform/logger"
	"github.com/phrazzld/maika/internal/store"
)

// SQLiteSRSReviewStore implements the store.SRSReviewStore interface.
type SQLiteSRSReviewStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewSQLiteSRSReviewStore creates a new SQLite implementation of the SRSReviewStore interface.
// If logger is nil, a default logger will be used.
func NewSQLiteSRSReviewStore(db store.DBTX, logger *slog.Logger) *SQLiteSRSReviewStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SQLiteSRSReviewStore{
		db:     db,
		logger: logger.With(slog.String("component", "srs_review_store")),
	}
}

// Ensure SQLiteSRSReviewStore implements store.SRSReviewStore interface
var _ store.SRSReviewStore = (*SQLiteSRSReviewStore)(nil)

type srsReviewRow struct {
	ID           int64          `db:"id"`
	UserID       string         `db:"user_id"`
	ItemID       string         `db:"item_id"`
	DueAt        timestamp      `db:"due_at"`
	Ease         float64        `db:"ease"`
	IntervalDays int            `db:"interval_days"`
	LastResult   sql.NullString `db:"last_result"`
	UpdatedAt    timestamp      `db:"updated_at"`
}

func (r srsReviewRow) toDomain() *domain.SRSReview {
	review := &domain.SRSReview{
		ID:           r.ID,
		UserID:       r.UserID,
		ItemID:       r.ItemID,
		DueAt:        r.DueAt.Time(),
		Ease:         r.Ease,
		IntervalDays: r.IntervalDays,
		UpdatedAt:    r.UpdatedAt.Time(),
	}
	if r.LastResult.Valid {
		result := domain.ReviewResult(r.LastResult.String)
		review.LastResult = &result
	}
	return review
}

const srsReviewColumns = `id, user_id, item_id, due_at, ease, interval_days, last_result, updated_at`

// Upsert implements store.SRSReviewStore.Upsert
func (s *SQLiteSRSReviewStore) Upsert(ctx context.Context, review *domain.SRSReview) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := review.Validate(); err != nil {
		log.Warn("srs review validation failed",
			slog.String("error", err.Error()),
			slog.String("user_id", review.UserID),
			slog.String("item_id", review.ItemID))
		return errors.Join(store.ErrInvalidEntity, err)
	}

	var lastResult sql.NullString
	if review.LastResult != nil {
		lastResult = sql.NullString{String: string(*review.LastResult), Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO srs_reviews (user_id, item_id, due_at, ease, interval_days, last_result, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, item_id) DO UPDATE SET
			due_at = excluded.due_at,
			ease = excluded.ease,
			interval_days = excluded.interval_days,
			last_result = excluded.last_result,
			updated_at = excluded.updated_at`,
		review.UserID, review.ItemID, timestamp(review.DueAt), review.Ease,
		review.IntervalDays, lastResult, timestamp(review.UpdatedAt),
	)
	if err != nil {
		log.Error("failed to upsert srs review",
			slog.String("error", err.Error()),
			slog.String("user_id", review.UserID),
			slog.String("item_id", review.ItemID))
		return wrapError("srs_review", "upsert", err)
	}

	var id int64
	if err := s.db.GetContext(ctx, &id,
		`SELECT id FROM srs_reviews WHERE user_id = ? AND item_id = ?`,
		review.UserID, review.ItemID,
	); err != nil {
		return wrapError("srs_review", "upsert", err)
	}
	review.ID = id

	log.Debug("srs review upserted",
		slog.String("user_id", review.UserID),
		slog.String("item_id", review.ItemID),
		slog.Int("interval_days", review.IntervalDays),
		slog.Time("due_at", review.DueAt))
	return nil
}

// Get implements store.SRSReviewStore.Get
func (s *SQLiteSRSReviewStore) Get(ctx context.Context, userID, itemID string) (*domain.SRSReview, error) {
	var row srsReviewRow
	err := s.db.GetContext(ctx, &row,
		`SELECT `+srsReviewColumns+` FROM srs_reviews WHERE user_id = ? AND item_id = ?`,
		userID, itemID,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrReviewNotFound
		}
		return nil, wrapError("srs_review", "get", err)
	}
	return row.toDomain(), nil
}

// Due implements store.SRSReviewStore.Due
func (s *SQLiteSRSReviewStore) Due(ctx context.Context, userID string, asOf time.Time) ([]*domain.SRSReview, error) {
	var rows []srsReviewRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT `+srsReviewColumns+`
		FROM srs_reviews
		WHERE user_id = ? AND due_at <= ?
		ORDER BY due_at ASC, id ASC`,
		userID, formatTime(asOf),
	)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list due reviews",
			slog.String("error", err.Error()),
			slog.String("user_id", userID))
		return nil, wrapError("srs_review", "list_due", err)
	}

	reviews := make([]*domain.SRSReview, 0, len(rows))
	for _, r := range rows {
		reviews = append(reviews, r.toDomain())
	}
	return reviews, nil
}

// WithTx implements store.SRSReviewStore.WithTx
func (s *SQLiteSRSReviewStore) WithTx(tx *sqlx.Tx) store.SRSReviewStore {
	return &SQLiteSRSReviewStore{db: tx, logger: s.logger}
}
