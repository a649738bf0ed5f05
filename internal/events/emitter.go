package events

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/phrazzld/maika/internal/platform/logger"
)

var (
	// ErrNilEvent is returned when EmitEvent is given no event.
	ErrNilEvent = errors.New("event cannot be nil")

	// ErrHandlerPanic wraps the value recovered from a panicking handler.
	ErrHandlerPanic = errors.New("event handler panicked")
)

// InMemoryEventEmitter is a simple implementation of the EventEmitter interface
// that stores registered handlers in memory and dispatches events to them
// synchronously.
type InMemoryEventEmitter struct {
	handlers []EventHandler
	mu       sync.RWMutex
	logger   *slog.Logger
}

// NewInMemoryEventEmitter creates a new instance of InMemoryEventEmitter.
func NewInMemoryEventEmitter(logger *slog.Logger) *InMemoryEventEmitter {
	if logger == nil {
		logger = slog.Default()
	}
	return &InMemoryEventEmitter{
		handlers: make([]EventHandler, 0),
		logger:   logger.With(slog.String("component", "event_emitter")),
	}
}

// RegisterHandler adds a new event handler to receive events.
func (e *InMemoryEventEmitter) RegisterHandler(handler EventHandler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.handlers = append(e.handlers, handler)
	e.logger.Debug("registered event handler",
		slog.String("handler", fmt.Sprintf("%T", handler)),
		slog.Int("handler_count", len(e.handlers)))
}

// EmitEvent publishes the event to every registered handler in registration
// order. A failing or panicking handler does not stop delivery to the others;
// the first failure is returned. Failures are logged with the event type and
// user so usage gaps can be traced back to a turn.
func (e *InMemoryEventEmitter) EmitEvent(ctx context.Context, event *Event) error {
	if event == nil {
		return ErrNilEvent
	}

	e.mu.RLock()
	handlers := make([]EventHandler, len(e.handlers))
	copy(handlers, e.handlers)
	e.mu.RUnlock()

	log := logger.FromContextOrDefault(ctx, e.logger)
	log.Debug("emitting event",
		slog.String("event_type", event.Type),
		slog.String("user_id", event.UserID),
		slog.Int("handler_count", len(handlers)))

	var firstErr error
	for _, handler := range handlers {
		if err := dispatch(ctx, handler, event); err != nil {
			log.Error("handler failed to process event",
				slog.String("error", err.Error()),
				slog.String("handler", fmt.Sprintf("%T", handler)),
				slog.String("event_type", event.Type),
				slog.String("user_id", event.UserID),
				slog.String("event_id", event.ID.String()))
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	return firstErr
}

// dispatch runs one handler and turns a panic into an error.
func dispatch(ctx context.Context, handler EventHandler, event *Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrHandlerPanic, r)
		}
	}()
	return handler.HandleEvent(ctx, event)
}
