package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/maika/internal/domain"
	"github.com/phrazzld/maika/internal/platform/logger"
	"github.com/phrazzld/maika/internal/store"
)

// SQLiteUserStore implements the store.UserStore interface.
type SQLiteUserStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewSQLiteUserStore creates a new SQLite implementation of the UserStore interface.
// If logger is nil, a default logger will be used.
func NewSQLiteUserStore(db store.DBTX, logger *slog.Logger) *SQLiteUserStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SQLiteUserStore{
		db:     db,
		logger: logger.With(slog.String("component", "user_store")),
	}
}

// Ensure SQLiteUserStore implements store.UserStore interface
var _ store.UserStore = (*SQLiteUserStore)(nil)

type userRow struct {
	UserID      string         `db:"user_id"`
	CreatedAt   timestamp      `db:"created_at"`
	DisplayName sql.NullString `db:"display_name"`
}

func (r userRow) toDomain() *domain.User {
	user := &domain.User{
		ID:        r.UserID,
		CreatedAt: r.CreatedAt.Time(),
	}
	if r.DisplayName.Valid {
		name := r.DisplayName.String
		user.DisplayName = &name
	}
	return user
}

// Ensure implements store.UserStore.Ensure
func (s *SQLiteUserStore) Ensure(ctx context.Context, userID string, displayName *string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := domain.NewUser(userID, displayName)
	if err != nil {
		return errors.Join(store.ErrInvalidEntity, err)
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO users (user_id, created_at, display_name)
		VALUES (?, ?, ?)
		ON CONFLICT (user_id) DO NOTHING`,
		user.ID, timestamp(user.CreatedAt), nullString(user.DisplayName),
	)
	if err != nil {
		log.Error("failed to ensure user",
			slog.String("error", err.Error()),
			slog.String("user_id", userID))
		return wrapError("user", "ensure", err)
	}

	if n, _ := result.RowsAffected(); n > 0 {
		log.Info("user created", slog.String("user_id", userID))
	}
	return nil
}

// Get implements store.UserStore.Get
func (s *SQLiteUserStore) Get(ctx context.Context, userID string) (*domain.User, error) {
	var row userRow
	err := s.db.GetContext(ctx, &row,
		`SELECT user_id, created_at, display_name FROM users WHERE user_id = ?`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrUserNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to get user",
			slog.String("error", err.Error()),
			slog.String("user_id", userID))
		return nil, wrapError("user", "get", err)
	}
	return row.toDomain(), nil
}

// WithTx implements store.UserStore.WithTx
func (s *SQLiteUserStore) WithTx(tx *sqlx.Tx) store.UserStore {
	return &SQLiteUserStore{db: tx, logger: s.logger}
}
