package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/maika/internal/domain"
	"github.com/phrazzld/maika/internal/domain/srs"
	"github.com/phrazzld/maika/internal/events"
	"github.com/phrazzld/maika/internal/platform/logger"
	"github.com/phrazzld/maika/internal/store"
)

// ReviewService records spaced-repetition reviews.
type ReviewService interface {
	// ReviewResult schedules the item's next review from the state the caller
	// carries (ease, intervalDays) and the result, upserts the review record
	// and awards review XP, all in one transaction.
	ReviewResult(
		ctx context.Context,
		userID, itemID string,
		ease float64,
		intervalDays int,
		result domain.ReviewResult,
	) (srs.Schedule, error)

	// DueReviews returns the user's records due now, earliest first.
	DueReviews(ctx context.Context, userID string) ([]*domain.SRSReview, error)
}

// ReviewServiceImpl implements the ReviewService interface
type ReviewServiceImpl struct {
	db        *sqlx.DB
	users     store.UserStore
	reviews   store.SRSReviewStore
	xp        store.XPStore
	scheduler srs.Service
	emitter   events.EventEmitter
	now       func() time.Time
	logger    *slog.Logger
}

// Verify interface compliance at compile time
var _ ReviewService = (*ReviewServiceImpl)(nil)

// NewReviewService creates a new ReviewService. emitter may be nil; a nil
// scheduler uses the default parameters.
func NewReviewService(
	db *sqlx.DB,
	users store.UserStore,
	reviews store.SRSReviewStore,
	xp store.XPStore,
	scheduler srs.Service,
	emitter events.EventEmitter,
	logger *slog.Logger,
) *ReviewServiceImpl {
	if db == nil {
		panic("db cannot be nil")
	}
	if users == nil || reviews == nil || xp == nil {
		panic("stores cannot be nil")
	}
	if scheduler == nil {
		scheduler = srs.NewDefaultService()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ReviewServiceImpl{
		db:        db,
		users:     users,
		reviews:   reviews,
		xp:        xp,
		scheduler: scheduler,
		emitter:   emitter,
		now:       time.Now,
		logger:    logger.With(slog.String("component", "review_service")),
	}
}

// WithClock returns a copy of the service that reads the current time from now.
func (s *ReviewServiceImpl) WithClock(now func() time.Time) *ReviewServiceImpl {
	clone := *s
	clone.now = now
	return &clone
}

// ReviewResult implements ReviewService.ReviewResult
func (s *ReviewServiceImpl) ReviewResult(
	ctx context.Context,
	userID, itemID string,
	ease float64,
	intervalDays int,
	result domain.ReviewResult,
) (srs.Schedule, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	now := s.now().UTC()
	schedule, err := s.scheduler.Review(ease, intervalDays, result, now)
	if err != nil {
		log.Warn("invalid review",
			slog.String("error", err.Error()),
			slog.String("user_id", userID),
			slog.String("item_id", itemID))
		return srs.Schedule{}, errors.Join(ErrInvalidReview, err)
	}

	last := result
	review, err := domain.NewSRSReview(userID, itemID, schedule.DueAt, schedule.Ease, schedule.IntervalDays, &last)
	if err != nil {
		return srs.Schedule{}, errors.Join(ErrInvalidReview, err)
	}
	review.UpdatedAt = now

	xpEvent, err := domain.NewXPEvent(userID, domain.XPKindSRSReview, domain.XPSRSReview,
		map[string]string{"item_id": itemID, "result": string(result)})
	if err != nil {
		return srs.Schedule{}, errors.Join(ErrInvalidReview, err)
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sqlx.Tx) error {
		if err := s.users.WithTx(tx).Ensure(ctx, userID, nil); err != nil {
			return err
		}
		if err := s.reviews.WithTx(tx).Upsert(ctx, review); err != nil {
			return err
		}
		return s.xp.WithTx(tx).Append(ctx, xpEvent)
	})
	if err != nil {
		log.Error("failed to record review",
			slog.String("error", err.Error()),
			slog.String("user_id", userID),
			slog.String("item_id", itemID))
		return srs.Schedule{}, fmt.Errorf("failed to record review: %w", err)
	}

	log.Info("review recorded",
		slog.String("user_id", userID),
		slog.String("item_id", itemID),
		slog.String("result", string(result)),
		slog.Int("interval_days", schedule.IntervalDays),
		slog.Time("due_at", schedule.DueAt))

	emitEvent(ctx, s.emitter, s.logger, events.TypeSRSReviewed, userID, events.SRSReviewedPayload{
		ItemID:       itemID,
		Result:       string(result),
		IntervalDays: schedule.IntervalDays,
		DueAt:        schedule.DueAt,
	})
	emitEvent(ctx, s.emitter, s.logger, events.TypeXPAwarded, userID, events.XPAwardedPayload{
		Kind:   string(domain.XPKindSRSReview),
		Amount: domain.XPSRSReview,
	})
	return schedule, nil
}

// DueReviews implements ReviewService.DueReviews
func (s *ReviewServiceImpl) DueReviews(ctx context.Context, userID string) ([]*domain.SRSReview, error) {
	due, err := s.reviews.Due(ctx, userID, s.now().UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to list due reviews: %w", err)
	}
	return due, nil
}
