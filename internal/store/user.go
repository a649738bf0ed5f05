package store

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/maika/internal/domain"
)

// UserStore defines the interface for user data persistence.
type UserStore interface {
	// Ensure inserts the user if absent. Repeat calls are no-ops and never
	// overwrite an existing display name.
	Ensure(ctx context.Context, userID string, displayName *string) error

	// Get retrieves a user by ID.
	// Returns ErrUserNotFound if the user does not exist.
	Get(ctx context.Context, userID string) (*domain.User, error)

	// WithTx returns a new UserStore instance that uses the provided transaction.
	WithTx(tx *sqlx.Tx) UserStore
}
