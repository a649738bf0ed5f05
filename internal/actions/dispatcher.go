package actions

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/phrazzld/maika/internal/content"
	"github.com/phrazzld/maika/internal/domain"
	"github.com/phrazzld/maika/internal/events"
	"github.com/phrazzld/maika/internal/platform/logger"
	"github.com/phrazzld/maika/internal/quiz"
	"github.com/phrazzld/maika/internal/rotation"
	"github.com/phrazzld/maika/internal/service"
	"github.com/phrazzld/maika/internal/store"
)

// Canonical action names.
const (
	ActionVerseOfDay      = "action_verse_of_day"
	ActionReviewVerse     = "action_review_verse"
	ActionDueReviews      = "action_due_reviews"
	ActionDailyMission    = "action_daily_mission"
	ActionWeeklyMission   = "action_weekly_mission"
	ActionCompleteMission = "action_complete_mission"
	ActionBingo           = "action_bingo"
	ActionCompleteBingo   = "action_complete_bingo"
	ActionStartTrivia     = "action_start_trivia"
	ActionAnswerTrivia    = "action_answer_trivia"
	ActionSearchVerse     = "action_search_verse"
	ActionSearchTopic     = "action_search_topic"
	ActionConfirmResponse = "action_confirm_response"
	ActionShowStats       = "action_show_stats"
)

// Aliases maps the names used by existing dialogue models to canonical names.
var Aliases = map[string]string{
	"action_mostrar_verso":       ActionVerseOfDay,
	"action_repaso_verso":        ActionReviewVerse,
	"action_mision_hoy":          ActionDailyMission,
	"action_completar_mision":    ActionCompleteMission,
	"action_iniciar_trivia":      ActionStartTrivia,
	"action_responder_trivia":    ActionAnswerTrivia,
	"action_start_quiz":          ActionStartTrivia,
	"action_process_quiz_answer": ActionAnswerTrivia,
	"action_buscar_versiculo":    ActionSearchVerse,
	"action_buscar_por_tema":     ActionSearchTopic,
}

// ErrUnknownAction is returned by Dispatch for unregistered action names.
var ErrUnknownAction = errors.New("unknown action")

// Handler runs one action.
type Handler func(ctx context.Context, req Request) (Response, error)

// Migrator brings the store schema up to date. It must be cheap after the
// first successful call.
type Migrator interface {
	Migrate(ctx context.Context) error
}

// Deps are the engines the actions drive. Emitter and Logger may be nil.
type Deps struct {
	Migrator Migrator
	Content  *content.Library
	Rotation *rotation.Engine
	Quiz     *quiz.Engine
	Progress service.ProgressService
	Reviews  service.ReviewService
	Stats    service.StatsService
	Emitter  events.EventEmitter
	Logger   *slog.Logger
}

// Dispatcher routes action names to handlers.
type Dispatcher struct {
	deps   Deps
	logger *slog.Logger

	mu       sync.RWMutex
	handlers map[string]Handler
}

// NewDispatcher creates a Dispatcher with every built-in action registered.
func NewDispatcher(deps Deps) *Dispatcher {
	if deps.Migrator == nil {
		panic("migrator cannot be nil")
	}
	if deps.Content == nil || deps.Rotation == nil || deps.Quiz == nil {
		panic("engines cannot be nil")
	}
	if deps.Progress == nil || deps.Reviews == nil || deps.Stats == nil {
		panic("services cannot be nil")
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	d := &Dispatcher{
		deps:     deps,
		logger:   deps.Logger.With(slog.String("component", "action_dispatcher")),
		handlers: make(map[string]Handler),
	}

	d.Register(ActionVerseOfDay, d.verseOfDay)
	d.Register(ActionReviewVerse, d.reviewVerse)
	d.Register(ActionDueReviews, d.dueReviews)
	d.Register(ActionDailyMission, d.dailyMission)
	d.Register(ActionWeeklyMission, d.weeklyMission)
	d.Register(ActionCompleteMission, d.completeMission)
	d.Register(ActionBingo, d.bingo)
	d.Register(ActionCompleteBingo, d.completeBingo)
	d.Register(ActionStartTrivia, d.startTrivia)
	d.Register(ActionAnswerTrivia, d.answerTrivia)
	d.Register(ActionSearchVerse, d.searchVerse)
	d.Register(ActionSearchTopic, d.searchTopic)
	d.Register(ActionConfirmResponse, d.confirmResponse)
	d.Register(ActionShowStats, d.showStats)
	return d
}

// Register adds or replaces the handler for name.
func (d *Dispatcher) Register(name string, h Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[name] = h
}

// Names returns the registered canonical action names, sorted.
func (d *Dispatcher) Names() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	names := make([]string, 0, len(d.handlers))
	for name := range d.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has reports whether name (or its alias) is registered.
func (d *Dispatcher) Has(name string) bool {
	_, _, ok := d.lookup(name)
	return ok
}

func (d *Dispatcher) lookup(name string) (string, Handler, bool) {
	if canonical, ok := Aliases[name]; ok {
		name = canonical
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	h, ok := d.handlers[name]
	return name, h, ok
}

// Dispatch runs the named action. The schema is migrated before every turn.
//
// Invalid input never fails the turn: the response asks the user again and
// nothing is written. A storage failure fails the turn: the returned error
// wraps the *store.StorageError and the response carries MsgUnavailable for
// the caller to render. Every handled turn emits an action.handled event.
func (d *Dispatcher) Dispatch(ctx context.Context, name string, req Request) (Response, error) {
	canonical, h, ok := d.lookup(name)
	if !ok {
		return Response{}, fmt.Errorf("%w: %s", ErrUnknownAction, name)
	}

	log := logger.FromContextOrDefault(ctx, d.logger).With(
		slog.String("action", canonical),
		slog.String("user_id", req.UserID))
	ctx = logger.WithLogger(ctx, log)
	start := time.Now()

	if req.UserID == "" {
		return Response{}, domain.NewInvalidInputError("user_id", "", "cannot be empty")
	}

	resp, err := d.run(ctx, h, req)
	success := err == nil
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrInvalidInput):
		log.Info("action rejected invalid input", slog.String("error", err.Error()))
		resp = Response{Segments: []string{MsgInvalidInput}}
		err = nil
	case store.IsStorageError(err):
		log.Error("action failed on storage", slog.String("error", err.Error()))
		resp = Response{Segments: []string{MsgUnavailable}}
		err = fmt.Errorf("action %s failed: %w", canonical, err)
	default:
		log.Error("action failed", slog.String("error", err.Error()))
		resp = Response{Segments: []string{MsgUnavailable}}
		err = fmt.Errorf("action %s failed: %w", canonical, err)
	}

	if emitErr := events.Emit(ctx, d.deps.Emitter, events.TypeActionHandled, req.UserID,
		events.ActionHandledPayload{Action: canonical, Success: success}); emitErr != nil {
		log.Warn("failed to emit action event", slog.String("error", emitErr.Error()))
	}

	log.Debug("action handled",
		slog.Bool("success", success),
		slog.Duration("duration", time.Since(start)))
	return resp, err
}

func (d *Dispatcher) run(ctx context.Context, h Handler, req Request) (Response, error) {
	if err := d.deps.Migrator.Migrate(ctx); err != nil {
		if store.IsStorageError(err) {
			return Response{}, err
		}
		return Response{}, store.NewStorageError("schema", "migrate", err)
	}
	return h(ctx, req)
}

// recordQuery stores telemetry for the turn. Failures are logged only.
func (d *Dispatcher) recordQuery(ctx context.Context, req Request, intent string, helpful *bool) {
	if err := d.deps.Stats.RecordQuery(ctx, req.UserID, intent, req.entitiesJSON(), helpful); err != nil {
		logger.FromContextOrDefault(ctx, d.logger).Warn("failed to record user query",
			slog.String("intent", intent),
			slog.String("error", err.Error()))
	}
}
