package quiz_test

import (
	"context"
	"errors"
	"sync"

	"github.com/phrazzld/maika/internal/domain"
	"github.com/phrazzld/maika/internal/store"
	"github.com/stretchr/testify/mock"
)

type staticBank []domain.TriviaQuestion

func (b staticBank) Trivia() []domain.TriviaQuestion { return b }

type mockXPAwarder struct {
	mock.Mock
}

func (m *mockXPAwarder) AddXP(ctx context.Context, userID string, kind domain.XPKind, amount int, meta any) (*domain.XPEvent, error) {
	args := m.Called(ctx, userID, kind, amount, meta)
	event, _ := args.Get(0).(*domain.XPEvent)
	return event, args.Error(1)
}

type mockRecorder struct {
	mock.Mock
}

func (m *mockRecorder) RecordQuizResult(
	ctx context.Context,
	result *domain.QuizResult,
	awards ...domain.XPAward,
) (*domain.LeaderboardEntry, error) {
	args := m.Called(ctx, result, awards)
	entry, _ := args.Get(0).(*domain.LeaderboardEntry)
	return entry, args.Error(1)
}

// ledger is an in-memory XPAwarder and ResultRecorder that keeps the XP of
// successful writes only. The first failures calls to RecordQuizResult fail
// without writing anything.
type ledger struct {
	mu       sync.Mutex
	failures int
	total    int
	results  int
}

func (l *ledger) AddXP(_ context.Context, userID string, kind domain.XPKind, amount int, meta any) (*domain.XPEvent, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.total += amount
	return &domain.XPEvent{UserID: userID, Kind: kind, Amount: amount}, nil
}

func (l *ledger) RecordQuizResult(
	_ context.Context,
	result *domain.QuizResult,
	awards ...domain.XPAward,
) (*domain.LeaderboardEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.failures > 0 {
		l.failures--
		return nil, store.NewStorageError("leaderboard", "upsert", errors.New("database is locked"))
	}
	for _, a := range awards {
		l.total += a.Amount
	}
	l.results++
	return &domain.LeaderboardEntry{UserID: result.UserID, BestScore: result.Score, TotalQuizzes: l.results}, nil
}
