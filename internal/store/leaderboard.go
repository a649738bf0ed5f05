package store

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/maika/internal/domain"
)

// LeaderboardStore defines the interface for the per-user best-score aggregate.
type LeaderboardStore interface {
	// Record folds one completed quiz into the user's entry. A new entry starts
	// with the given score and percentage and a quiz count of 1. An existing
	// entry has its count incremented and each best value replaced by the
	// maximum of old and new, independently.
	Record(ctx context.Context, userID string, score int, percentage float64) (*domain.LeaderboardEntry, error)

	// Get retrieves a user's entry.
	// Returns ErrLeaderboardEntryNotFound if the user has not finished a quiz.
	Get(ctx context.Context, userID string) (*domain.LeaderboardEntry, error)

	// Top returns up to limit entries ordered by best percentage then best
	// score, both descending.
	Top(ctx context.Context, limit int) ([]*domain.LeaderboardEntry, error)

	// WithTx returns a new LeaderboardStore instance that uses the provided transaction.
	WithTx(tx *sqlx.Tx) LeaderboardStore
}

// QuizResultStore defines the interface for completed quiz history.
type QuizResultStore interface {
	// Create inserts the result and sets its ID.
	Create(ctx context.Context, result *domain.QuizResult) error

	// ListByUser returns the user's most recent results, newest first.
	ListByUser(ctx context.Context, userID string, limit int) ([]*domain.QuizResult, error)

	// WithTx returns a new QuizResultStore instance that uses the provided transaction.
	WithTx(tx *sqlx.Tx) QuizResultStore
}
