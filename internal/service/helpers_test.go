package service_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/maika/internal/domain"
	"github.com/phrazzld/maika/internal/events"
	"github.com/phrazzld/maika/internal/platform/sqlite"
	"github.com/phrazzld/maika/internal/store"
	"github.com/phrazzld/maika/internal/testdb"
)

var errSimulated = errors.New("simulated failure")

// recordingHandler keeps every event it receives.
type recordingHandler struct {
	mu     sync.Mutex
	events []*events.Event
}

func (h *recordingHandler) HandleEvent(_ context.Context, event *events.Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, event)
	return nil
}

func (h *recordingHandler) types() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	types := make([]string, 0, len(h.events))
	for _, e := range h.events {
		types = append(types, e.Type)
	}
	return types
}

// failingHandler fails every event.
type failingHandler struct{}

func (failingHandler) HandleEvent(context.Context, *events.Event) error {
	return errSimulated
}

// failingXPStore wraps a real XPStore and fails Append, including inside
// transactions.
type failingXPStore struct {
	store.XPStore
}

func (s failingXPStore) Append(context.Context, *domain.XPEvent) error {
	return store.NewStorageError("xp_event", "insert", errSimulated)
}

func (s failingXPStore) WithTx(tx *sqlx.Tx) store.XPStore {
	return failingXPStore{XPStore: s.XPStore.WithTx(tx)}
}

// flakyLeaderboardStore fails the first Record call and delegates afterwards.
type flakyLeaderboardStore struct {
	store.LeaderboardStore
	failures *atomic.Int32
}

func (s flakyLeaderboardStore) Record(
	ctx context.Context,
	userID string,
	score int,
	percentage float64,
) (*domain.LeaderboardEntry, error) {
	if s.failures.Add(-1) >= 0 {
		return nil, store.NewStorageError("leaderboard", "upsert", errSimulated)
	}
	return s.LeaderboardStore.Record(ctx, userID, score, percentage)
}

func (s flakyLeaderboardStore) WithTx(tx *sqlx.Tx) store.LeaderboardStore {
	return flakyLeaderboardStore{LeaderboardStore: s.LeaderboardStore.WithTx(tx), failures: s.failures}
}

type fixture struct {
	stores   *sqlite.Stores
	emitter  *events.InMemoryEventEmitter
	recorder *recordingHandler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	stores := sqlite.NewStores(testdb.NewMigratedDB(t), nil)
	emitter := events.NewInMemoryEventEmitter(nil)
	recorder := &recordingHandler{}
	emitter.RegisterHandler(recorder)
	return &fixture{stores: stores, emitter: emitter, recorder: recorder}
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
