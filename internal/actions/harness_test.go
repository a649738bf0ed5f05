package actions_test

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/maika/internal/actions"
	"github.com/phrazzld/maika/internal/content"
	"github.com/phrazzld/maika/internal/domain"
	"github.com/phrazzld/maika/internal/events"
	"github.com/phrazzld/maika/internal/platform/sqlite"
	"github.com/phrazzld/maika/internal/quiz"
	"github.com/phrazzld/maika/internal/rotation"
	"github.com/phrazzld/maika/internal/service"
	"github.com/phrazzld/maika/internal/store"
	"github.com/phrazzld/maika/internal/testdb"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)

var testBundle = content.Bundle{
	Verses: []domain.Verse{
		{Book: "Juan", Chapter: 3, Verse: 16, Text: "Porque de tal manera amó Dios al mundo, que ha dado a su Hijo unigénito."},
		{Book: "Romanos", Chapter: 8, Verse: 28, Text: "Y sabemos que a los que aman a Dios, todas las cosas les ayudan a bien."},
		{Book: "Salmos", Chapter: 23, Verse: 1, Text: "Jehová es mi pastor; nada me faltará."},
		{Book: "1 Corintios", Chapter: 13, Verse: 4, Text: "El amor es paciente, es bondadoso."},
	},
	Values: []string{"Amor", "Gozo", "Paz", "Paciencia", "Bondad", "Fe", "Mansedumbre", "Templanza", "Gratitud"},
	Trivia: []domain.TriviaQuestion{
		{
			Question:     "¿Quién construyó el arca?",
			Options:      []string{"Moisés", "Noé", "Abraham", "David"},
			CorrectIndex: 1,
			Explanation:  "Dios mandó a Noé construir el arca.",
		},
		{
			Question:     "¿Cuántos discípulos tuvo Jesús?",
			Options:      []string{"7", "10", "12", "40"},
			CorrectIndex: 2,
		},
	},
	DailyMissions: []domain.Mission{
		{Title: "Ora por un amigo", Description: "Dedica un momento a orar por alguien cercano."},
	},
	WeeklyMissions: []domain.Mission{
		{Title: "Lee un Evangelio", Description: "Lee un capítulo de un Evangelio cada día."},
	},
}

// testClock is a settable clock shared by the engines under test.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

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

func (h *recordingHandler) actions(t *testing.T) []events.ActionHandledPayload {
	t.Helper()
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []events.ActionHandledPayload
	for _, e := range h.events {
		if e.Type != events.TypeActionHandled {
			continue
		}
		var p events.ActionHandledPayload
		require.NoError(t, e.UnmarshalPayload(&p))
		out = append(out, p)
	}
	return out
}

type failingMigrator struct{}

func (failingMigrator) Migrate(context.Context) error {
	return errors.New("database is locked")
}

type harness struct {
	dispatcher *actions.Dispatcher
	stores     *sqlite.Stores
	rotation   *rotation.Engine
	clock      *testClock
	recorder   *recordingHandler
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
		return nil, store.NewStorageError("leaderboard", "upsert", errors.New("database is locked"))
	}
	return s.LeaderboardStore.Record(ctx, userID, score, percentage)
}

func (s flakyLeaderboardStore) WithTx(tx *sqlx.Tx) store.LeaderboardStore {
	return flakyLeaderboardStore{LeaderboardStore: s.LeaderboardStore.WithTx(tx), failures: s.failures}
}

type harnessSetup struct {
	migrator    actions.Migrator
	leaderboard func(store.LeaderboardStore) store.LeaderboardStore
}

type harnessOption func(*harnessSetup)

func withMigrator(m actions.Migrator) harnessOption {
	return func(s *harnessSetup) { s.migrator = m }
}

// withFlakyLeaderboard makes the first n leaderboard writes fail.
func withFlakyLeaderboard(n int32) harnessOption {
	return func(s *harnessSetup) {
		failures := &atomic.Int32{}
		failures.Store(n)
		s.leaderboard = func(ls store.LeaderboardStore) store.LeaderboardStore {
			return flakyLeaderboardStore{LeaderboardStore: ls, failures: failures}
		}
	}
}

func newHarness(t *testing.T, bundle content.Bundle, opts ...harnessOption) *harness {
	t.Helper()

	var setup harnessSetup
	for _, opt := range opts {
		opt(&setup)
	}

	db := testdb.NewMigratedDB(t)
	stores := sqlite.NewStores(db, nil)
	clock := &testClock{now: testNow}

	leaderboard := stores.Leaderboard
	if setup.leaderboard != nil {
		leaderboard = setup.leaderboard(leaderboard)
	}

	emitter := events.NewInMemoryEventEmitter(nil)
	emitter.RegisterHandler(events.NewUsageHandler(stores.Telemetry))
	recorder := &recordingHandler{}
	emitter.RegisterHandler(recorder)

	library := content.NewStaticLibrary(bundle)
	rot := rotation.NewEngine(library,
		rotation.WithClock(clock.Now),
		rotation.WithRand(rand.New(rand.NewPCG(1, 2))))

	progress := service.NewProgressService(db, stores.Users, stores.XP, stores.QuizResults, leaderboard, emitter, nil)
	reviews := service.NewReviewService(db, stores.Users, stores.Reviews, stores.XP, nil, emitter, nil).
		WithClock(clock.Now)
	stats := service.NewStatsService(stores.QuizResults, stores.Leaderboard, stores.Telemetry, nil)
	engine := quiz.NewEngine(library, progress, progress,
		quiz.WithClock(clock.Now),
		quiz.WithRand(rand.New(rand.NewPCG(3, 4))))

	deps := actions.Deps{
		Migrator: sqlite.NewMigrator(db),
		Content:  library,
		Rotation: rot,
		Quiz:     engine,
		Progress: progress,
		Reviews:  reviews,
		Stats:    stats,
		Emitter:  emitter,
	}
	if setup.migrator != nil {
		deps.Migrator = setup.migrator
	}

	return &harness{
		dispatcher: actions.NewDispatcher(deps),
		stores:     stores,
		rotation:   rot,
		clock:      clock,
		recorder:   recorder,
	}
}

// dispatch runs one action and fails the test on error.
func (h *harness) dispatch(t *testing.T, name string, req actions.Request) actions.Response {
	t.Helper()
	if req.UserID == "" {
		req.UserID = "u1"
	}
	resp, err := h.dispatcher.Dispatch(context.Background(), name, req)
	require.NoError(t, err)
	return resp
}

func (h *harness) totalXP(t *testing.T, userID string) int {
	t.Helper()
	total, err := h.stores.XP.Total(context.Background(), userID)
	require.NoError(t, err)
	return total
}

// applyState folds a response's updates into state the way the dialogue
// engine does.
func applyState(state map[string]any, resp actions.Response) map[string]any {
	out := make(map[string]any, len(state))
	for k, v := range state {
		out[k] = v
	}
	for k, v := range resp.StateUpdates {
		if v == nil {
			delete(out, k)
			continue
		}
		out[k] = v
	}
	return out
}
