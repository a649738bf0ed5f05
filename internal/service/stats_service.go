package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/maika/internal/domain"
	"github.com/phrazzld/maika/internal/platform/logger"
	"github.com/phrazzld/maika/internal/store"
)

// DefaultSummaryDays is the usage summary window when days <= 0.
const DefaultSummaryDays = 7

// StatsService reads quiz history and rankings and records query telemetry.
type StatsService interface {
	// History returns the user's most recent quiz results, newest first.
	History(ctx context.Context, userID string, limit int) ([]*domain.QuizResult, error)

	// Leaderboard returns the top entries by best percentage then best score.
	Leaderboard(ctx context.Context, limit int) ([]*domain.LeaderboardEntry, error)

	// UsageSummary aggregates queries and quizzes over the last days days.
	UsageSummary(ctx context.Context, days int) (*domain.UsageSummary, error)

	// RecordQuery stores one user query with optional helpfulness feedback.
	RecordQuery(ctx context.Context, userID, intent string, entities json.RawMessage, helpful *bool) error
}

// StatsServiceImpl implements the StatsService interface
type StatsServiceImpl struct {
	quizResults store.QuizResultStore
	leaderboard store.LeaderboardStore
	telemetry   store.TelemetryStore
	now         func() time.Time
	logger      *slog.Logger
}

// Verify interface compliance at compile time
var _ StatsService = (*StatsServiceImpl)(nil)

// NewStatsService creates a new StatsService.
func NewStatsService(
	quizResults store.QuizResultStore,
	leaderboard store.LeaderboardStore,
	telemetry store.TelemetryStore,
	logger *slog.Logger,
) *StatsServiceImpl {
	if quizResults == nil || leaderboard == nil || telemetry == nil {
		panic("stores cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &StatsServiceImpl{
		quizResults: quizResults,
		leaderboard: leaderboard,
		telemetry:   telemetry,
		now:         time.Now,
		logger:      logger.With(slog.String("component", "stats_service")),
	}
}

// History implements StatsService.History
func (s *StatsServiceImpl) History(ctx context.Context, userID string, limit int) ([]*domain.QuizResult, error) {
	results, err := s.quizResults.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get quiz history: %w", err)
	}
	return results, nil
}

// Leaderboard implements StatsService.Leaderboard
func (s *StatsServiceImpl) Leaderboard(ctx context.Context, limit int) ([]*domain.LeaderboardEntry, error) {
	entries, err := s.leaderboard.Top(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get leaderboard: %w", err)
	}
	return entries, nil
}

// UsageSummary implements StatsService.UsageSummary
func (s *StatsServiceImpl) UsageSummary(ctx context.Context, days int) (*domain.UsageSummary, error) {
	if days <= 0 {
		days = DefaultSummaryDays
	}
	since := s.now().UTC().AddDate(0, 0, -days)

	summary, err := s.telemetry.Summary(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize usage: %w", err)
	}
	return summary, nil
}

// RecordQuery implements StatsService.RecordQuery
func (s *StatsServiceImpl) RecordQuery(
	ctx context.Context,
	userID, intent string,
	entities json.RawMessage,
	helpful *bool,
) error {
	err := s.telemetry.RecordQuery(ctx, &domain.UserQuery{
		UserID:          userID,
		Intent:          intent,
		Entities:        entities,
		ResponseHelpful: helpful,
		RecordedAt:      s.now().UTC(),
	})
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Warn("failed to record query",
			slog.String("error", err.Error()),
			slog.String("user_id", userID),
			slog.String("intent", intent))
		return fmt.Errorf("failed to record query: %w", err)
	}
	return nil
}
