package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/maika/internal/domain"
	"github.com/phrazzld/maika/internal/events"
	"github.com/phrazzld/maika/internal/platform/logger"
	"github.com/phrazzld/maika/internal/store"
)

// DefaultMissionTitle is recorded when a mission is completed without a title.
const DefaultMissionTitle = "Misión"

// ProgressService maintains the XP ledger and the quiz leaderboard.
type ProgressService interface {
	// EnsureUser creates the user if absent. Repeat calls are no-ops.
	EnsureUser(ctx context.Context, userID string, displayName *string) error

	// AddXP ensures the user exists and appends one XP event, atomically.
	// Returns ErrInvalidXP on validation failure and a *store.StorageError on
	// I/O failure; in either case nothing is written.
	AddXP(ctx context.Context, userID string, kind domain.XPKind, amount int, meta any) (*domain.XPEvent, error)

	// TotalXP returns the user's XP total, 0 for unknown users.
	TotalXP(ctx context.Context, userID string) (int, error)

	// CompleteMission awards mission XP with the mission title as metadata.
	CompleteMission(ctx context.Context, userID, title string) (*domain.XPEvent, error)

	// RewardBingo awards bingo XP when completed is true. It returns a nil
	// event and no error otherwise.
	RewardBingo(ctx context.Context, userID string, completed bool) (*domain.XPEvent, error)

	// RecordQuizResult stores a finished quiz, appends awards to the user's
	// ledger and folds the result into the leaderboard in one transaction.
	// On failure none of them is written.
	RecordQuizResult(
		ctx context.Context,
		result *domain.QuizResult,
		awards ...domain.XPAward,
	) (*domain.LeaderboardEntry, error)
}

// ProgressServiceImpl implements the ProgressService interface
type ProgressServiceImpl struct {
	db          *sqlx.DB
	users       store.UserStore
	xp          store.XPStore
	quizResults store.QuizResultStore
	leaderboard store.LeaderboardStore
	emitter     events.EventEmitter
	logger      *slog.Logger
}

// Verify interface compliance at compile time
var _ ProgressService = (*ProgressServiceImpl)(nil)

// NewProgressService creates a new ProgressService. emitter may be nil.
func NewProgressService(
	db *sqlx.DB,
	users store.UserStore,
	xp store.XPStore,
	quizResults store.QuizResultStore,
	leaderboard store.LeaderboardStore,
	emitter events.EventEmitter,
	logger *slog.Logger,
) *ProgressServiceImpl {
	if db == nil {
		panic("db cannot be nil")
	}
	if users == nil || xp == nil || quizResults == nil || leaderboard == nil {
		panic("stores cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ProgressServiceImpl{
		db:          db,
		users:       users,
		xp:          xp,
		quizResults: quizResults,
		leaderboard: leaderboard,
		emitter:     emitter,
		logger:      logger.With(slog.String("component", "progress_service")),
	}
}

// EnsureUser implements ProgressService.EnsureUser
func (s *ProgressServiceImpl) EnsureUser(ctx context.Context, userID string, displayName *string) error {
	if err := s.users.Ensure(ctx, userID, displayName); err != nil {
		return fmt.Errorf("failed to ensure user: %w", err)
	}
	return nil
}

// AddXP implements ProgressService.AddXP
func (s *ProgressServiceImpl) AddXP(
	ctx context.Context,
	userID string,
	kind domain.XPKind,
	amount int,
	meta any,
) (*domain.XPEvent, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	event, err := domain.NewXPEvent(userID, kind, amount, meta)
	if err != nil {
		log.Warn("rejected xp award",
			slog.String("error", err.Error()),
			slog.String("user_id", userID),
			slog.String("kind", string(kind)),
			slog.Int("amount", amount))
		return nil, errors.Join(ErrInvalidXP, err)
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sqlx.Tx) error {
		if err := s.users.WithTx(tx).Ensure(ctx, userID, nil); err != nil {
			return err
		}
		return s.xp.WithTx(tx).Append(ctx, event)
	})
	if err != nil {
		log.Error("failed to add xp",
			slog.String("error", err.Error()),
			slog.String("user_id", userID),
			slog.String("kind", string(kind)))
		return nil, fmt.Errorf("failed to add xp: %w", err)
	}

	log.Info("xp awarded",
		slog.String("user_id", userID),
		slog.String("kind", string(kind)),
		slog.Int("amount", amount))
	s.emit(ctx, events.TypeXPAwarded, userID, events.XPAwardedPayload{Kind: string(kind), Amount: amount})
	return event, nil
}

// TotalXP implements ProgressService.TotalXP
func (s *ProgressServiceImpl) TotalXP(ctx context.Context, userID string) (int, error) {
	total, err := s.xp.Total(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to get xp total: %w", err)
	}
	return total, nil
}

// CompleteMission implements ProgressService.CompleteMission
func (s *ProgressServiceImpl) CompleteMission(ctx context.Context, userID, title string) (*domain.XPEvent, error) {
	if title == "" {
		title = DefaultMissionTitle
	}
	return s.AddXP(ctx, userID, domain.XPKindMissionComplete, domain.XPMissionComplete,
		map[string]string{"title": title})
}

// RewardBingo implements ProgressService.RewardBingo
func (s *ProgressServiceImpl) RewardBingo(ctx context.Context, userID string, completed bool) (*domain.XPEvent, error) {
	if !completed {
		return nil, nil
	}
	return s.AddXP(ctx, userID, domain.XPKindBingoComplete, domain.XPBingoComplete, nil)
}

// RecordQuizResult implements ProgressService.RecordQuizResult
func (s *ProgressServiceImpl) RecordQuizResult(
	ctx context.Context,
	result *domain.QuizResult,
	awards ...domain.XPAward,
) (*domain.LeaderboardEntry, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if result == nil {
		return nil, fmt.Errorf("failed to record quiz result: %w", store.ErrInvalidEntity)
	}

	xpEvents := make([]*domain.XPEvent, 0, len(awards))
	for _, a := range awards {
		event, err := domain.NewXPEvent(result.UserID, a.Kind, a.Amount, a.Meta)
		if err != nil {
			log.Warn("rejected quiz xp award",
				slog.String("error", err.Error()),
				slog.String("user_id", result.UserID),
				slog.String("kind", string(a.Kind)))
			return nil, errors.Join(ErrInvalidXP, err)
		}
		xpEvents = append(xpEvents, event)
	}

	var entry *domain.LeaderboardEntry
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sqlx.Tx) error {
		if err := s.users.WithTx(tx).Ensure(ctx, result.UserID, nil); err != nil {
			return err
		}
		xp := s.xp.WithTx(tx)
		for _, event := range xpEvents {
			if err := xp.Append(ctx, event); err != nil {
				return err
			}
		}
		if err := s.quizResults.WithTx(tx).Create(ctx, result); err != nil {
			return err
		}
		var err error
		entry, err = s.leaderboard.WithTx(tx).Record(ctx, result.UserID, result.Score, result.Percentage)
		return err
	})
	if err != nil {
		log.Error("failed to record quiz result",
			slog.String("error", err.Error()),
			slog.String("user_id", result.UserID))
		return nil, fmt.Errorf("failed to record quiz result: %w", err)
	}

	for _, event := range xpEvents {
		s.emit(ctx, events.TypeXPAwarded, result.UserID, events.XPAwardedPayload{
			Kind:   string(event.Kind),
			Amount: event.Amount,
		})
	}
	s.emit(ctx, events.TypeQuizCompleted, result.UserID, events.QuizCompletedPayload{
		Score:      result.Score,
		Total:      result.TotalQuestions,
		Percentage: result.Percentage,
	})
	return entry, nil
}

func (s *ProgressServiceImpl) emit(ctx context.Context, eventType, userID string, payload any) {
	emitEvent(ctx, s.emitter, s.logger, eventType, userID, payload)
}

// emitEvent publishes an event and logs, rather than returns, any failure.
func emitEvent(ctx context.Context, emitter events.EventEmitter, log *slog.Logger, eventType, userID string, payload any) {
	if err := events.Emit(ctx, emitter, eventType, userID, payload); err != nil {
		logger.FromContextOrDefault(ctx, log).Warn("event handler failed",
			slog.String("event_type", eventType),
			slog.String("user_id", userID),
			slog.String("error", err.Error()))
	}
}
