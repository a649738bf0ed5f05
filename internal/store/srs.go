package store

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/maika/internal/domain"
)

// SRSReviewStore defines the interface for spaced-repetition review records.
type SRSReviewStore interface {
	// Upsert writes the record keyed by (UserID, ItemID). An existing record has
	// its due time, ease, interval, last result and update time overwritten in
	// place; a second row for the same key is never created. The stored ID is
	// copied back into review.
	Upsert(ctx context.Context, review *domain.SRSReview) error

	// Get retrieves the record for a user and item.
	// Returns ErrReviewNotFound if none exists.
	Get(ctx context.Context, userID, itemID string) (*domain.SRSReview, error)

	// Due returns all records with DueAt <= asOf, earliest due first.
	Due(ctx context.Context, userID string, asOf time.Time) ([]*domain.SRSReview, error)

	// WithTx returns a new SRSReviewStore instance that uses the provided transaction.
	WithTx(tx *sqlx.Tx) SRSReviewStore
}
