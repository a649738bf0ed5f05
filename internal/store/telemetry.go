package store

import (
	"context"
	"time"

	"github.com/phrazzld/maika/internal/domain"
)

// TelemetryStore persists observational usage records. Nothing in the engine
// depends on these records for correctness.
type TelemetryStore interface {
	// RecordUsage appends a usage stat.
	RecordUsage(ctx context.Context, stat *domain.UsageStat) error

	// RecordQuery appends a user query.
	RecordQuery(ctx context.Context, query *domain.UserQuery) error

	// Summary aggregates queries and quizzes recorded at or after since.
	Summary(ctx context.Context, since time.Time) (*domain.UsageSummary, error)
}
