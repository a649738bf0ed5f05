package store

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/maika/internal/domain"
)

// XPStore defines the interface for the append-only XP ledger.
type XPStore interface {
	// Append inserts the event and sets its ID. The user must already exist;
	// callers pair Append with UserStore.Ensure inside one transaction.
	// Returns ErrInvalidEntity if the event fails validation.
	Append(ctx context.Context, event *domain.XPEvent) error

	// Total returns the sum of all XP amounts for the user, 0 for unknown users.
	Total(ctx context.Context, userID string) (int, error)

	// ListByUser returns the user's most recent events, newest first.
	ListByUser(ctx context.Context, userID string, limit int) ([]*domain.XPEvent, error)

	// WithTx returns a new XPStore instance that uses the provided transaction.
	WithTx(tx *sqlx.Tx) XPStore
}
