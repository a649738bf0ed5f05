package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/maika/internal/domain"
	"github.com/phrazzld/maika/internal/platform/logger"
	"github.com/phrazzld/maika/internal/store"
)

// SQLiteLeaderboardStore implements the store.LeaderboardStore interface.
type SQLiteLeaderboardStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewSQLiteLeaderboardStore creates a new SQLite implementation of the LeaderboardStore interface.
// If logger is nil, a default logger will be used.
func NewSQLiteLeaderboardStore(db store.DBTX, logger *slog.Logger) *SQLiteLeaderboardStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SQLiteLeaderboardStore{
		db:     db,
		logger: logger.With(slog.String("component", "leaderboard_store")),
	}
}

// Ensure SQLiteLeaderboardStore implements store.LeaderboardStore interface
var _ store.LeaderboardStore = (*SQLiteLeaderboardStore)(nil)

type leaderboardRow struct {
	UserID         string    `db:"user_id"`
	BestScore      int       `db:"best_score"`
	BestPercentage float64   `db:"best_percentage"`
	TotalQuizzes   int       `db:"total_quizzes"`
	LastUpdated    timestamp `db:"last_updated"`
}

func (r leaderboardRow) toDomain() *domain.LeaderboardEntry {
	return &domain.LeaderboardEntry{
		UserID:         r.UserID,
		BestScore:      r.BestScore,
		BestPercentage: r.BestPercentage,
		TotalQuizzes:   r.TotalQuizzes,
		LastUpdated:    r.LastUpdated.Time(),
	}
}

const leaderboardColumns = `user_id, best_score, best_percentage, total_quizzes, last_updated`

// Record implements store.LeaderboardStore.Record
func (s *SQLiteLeaderboardStore) Record(
	ctx context.Context,
	userID string,
	score int,
	percentage float64,
) (*domain.LeaderboardEntry, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if userID == "" || score < 0 || math.IsNaN(percentage) || percentage < 0 {
		return nil, fmt.Errorf("%w: leaderboard score %d (%.1f%%) for user %q",
			store.ErrInvalidEntity, score, percentage, userID)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO leaderboard (user_id, best_score, best_percentage, total_quizzes, last_updated)
		VALUES (?, ?, ?, 1, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			best_score = MAX(leaderboard.best_score, excluded.best_score),
			best_percentage = MAX(leaderboard.best_percentage, excluded.best_percentage),
			total_quizzes = leaderboard.total_quizzes + 1,
			last_updated = excluded.last_updated`,
		userID, score, percentage, timestamp(nowUTC()),
	)
	if err != nil {
		log.Error("failed to update leaderboard",
			slog.String("error", err.Error()),
			slog.String("user_id", userID))
		return nil, wrapError("leaderboard", "upsert", err)
	}

	entry, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	log.Debug("leaderboard updated",
		slog.String("user_id", userID),
		slog.Int("best_score", entry.BestScore),
		slog.Float64("best_percentage", entry.BestPercentage),
		slog.Int("total_quizzes", entry.TotalQuizzes))
	return entry, nil
}

// Get implements store.LeaderboardStore.Get
func (s *SQLiteLeaderboardStore) Get(ctx context.Context, userID string) (*domain.LeaderboardEntry, error) {
	var row leaderboardRow
	err := s.db.GetContext(ctx, &row,
		`SELECT `+leaderboardColumns+` FROM leaderboard WHERE user_id = ?`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrLeaderboardEntryNotFound
		}
		return nil, wrapError("leaderboard", "get", err)
	}
	return row.toDomain(), nil
}

// Top implements store.LeaderboardStore.Top
func (s *SQLiteLeaderboardStore) Top(ctx context.Context, limit int) ([]*domain.LeaderboardEntry, error) {
	var rows []leaderboardRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT `+leaderboardColumns+`
		FROM leaderboard
		ORDER BY best_percentage DESC, best_score DESC, user_id ASC
		LIMIT ?`,
		normalizeLimit(limit),
	)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to read leaderboard",
			slog.String("error", err.Error()))
		return nil, wrapError("leaderboard", "list", err)
	}

	entries := make([]*domain.LeaderboardEntry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, r.toDomain())
	}
	return entries, nil
}

// WithTx implements store.LeaderboardStore.WithTx
func (s *SQLiteLeaderboardStore) WithTx(tx *sqlx.Tx) store.LeaderboardStore {
	return &SQLiteLeaderboardStore{db: tx, logger: s.logger}
}

// SQLiteQuizResultStore implements the store.QuizResultStore interface.
type SQLiteQuizResultStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewSQLiteQuizResultStore creates a new SQLite implementation of the QuizResultStore interface.
// If logger is nil, a default logger will be used.
func NewSQLiteQuizResultStore(db store.DBTX, logger *slog.Logger) *SQLiteQuizResultStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SQLiteQuizResultStore{
		db:     db,
		logger: logger.With(slog.String("component", "quiz_result_store")),
	}
}

// Ensure SQLiteQuizResultStore implements store.QuizResultStore interface
var _ store.QuizResultStore = (*SQLiteQuizResultStore)(nil)

type quizResultRow struct {
	ID             int64          `db:"id"`
	UserID         string         `db:"user_id"`
	Score          int            `db:"score"`
	TotalQuestions int            `db:"total_questions"`
	Percentage     float64        `db:"percentage"`
	QuizData       sql.NullString `db:"quiz_data"`
	TakenAt        timestamp      `db:"taken_at"`
}

func (r quizResultRow) toDomain() *domain.QuizResult {
	result := &domain.QuizResult{
		ID:             r.ID,
		UserID:         r.UserID,
		Score:          r.Score,
		TotalQuestions: r.TotalQuestions,
		Percentage:     r.Percentage,
		TakenAt:        r.TakenAt.Time(),
	}
	if r.QuizData.Valid {
		result.QuizData = []byte(r.QuizData.String)
	}
	return result
}

// Create implements store.QuizResultStore.Create
func (s *SQLiteQuizResultStore) Create(ctx context.Context, result *domain.QuizResult) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := result.Validate(); err != nil {
		log.Warn("quiz result validation failed",
			slog.String("error", err.Error()),
			slog.String("user_id", result.UserID))
		return errors.Join(store.ErrInvalidEntity, err)
	}

	var quizData sql.NullString
	if len(result.QuizData) > 0 {
		quizData = sql.NullString{String: string(result.QuizData), Valid: true}
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO quiz_results (user_id, score, total_questions, percentage, quiz_data, taken_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		result.UserID, result.Score, result.TotalQuestions, result.Percentage,
		quizData, timestamp(result.TakenAt),
	)
	if err != nil {
		log.Error("failed to save quiz result",
			slog.String("error", err.Error()),
			slog.String("user_id", result.UserID))
		return wrapError("quiz_result", "insert", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return wrapError("quiz_result", "insert", err)
	}
	result.ID = id
	return nil
}

// ListByUser implements store.QuizResultStore.ListByUser
func (s *SQLiteQuizResultStore) ListByUser(ctx context.Context, userID string, limit int) ([]*domain.QuizResult, error) {
	var rows []quizResultRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, user_id, score, total_questions, percentage, quiz_data, taken_at
		FROM quiz_results
		WHERE user_id = ?
		ORDER BY taken_at DESC, id DESC
		LIMIT ?`,
		userID, normalizeLimit(limit),
	)
	if err != nil {
		return nil, wrapError("quiz_result", "list", err)
	}

	results := make([]*domain.QuizResult, 0, len(rows))
	for _, r := range rows {
		results = append(results, r.toDomain())
	}
	return results, nil
}

// WithTx implements store.QuizResultStore.WithTx
func (s *SQLiteQuizResultStore) WithTx(tx *sqlx.Tx) store.QuizResultStore {
	return &SQLiteQuizResultStore{db: tx, logger: s.logger}
}
