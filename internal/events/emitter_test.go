package events

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestInMemoryEventEmitter(t *testing.T) {
	// Create a minimal logger that discards output
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("emit event with no handlers", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(logger)
		event, err := NewEvent("test-event", "u1", map[string]string{"key": "value"})
		require.NoError(t, err)

		// Should not error even with no handlers
		err = emitter.EmitEvent(context.Background(), event)
		assert.NoError(t, err)
	})

	t.Run("emit event with successful handlers", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(logger)

		// Create a few mock handlers
		handler1 := &MockEventHandler{}
		handler2 := &MockEventHandler{}

		// Register the handlers
		emitter.RegisterHandler(handler1)
		emitter.RegisterHandler(handler2)

		// Create and emit an event
		event, err := NewEvent("test-event", "u1", map[string]string{"key": "value"})
		require.NoError(t, err)

		err = emitter.EmitEvent(context.Background(), event)
		assert.NoError(t, err)

		// Verify both handlers received the event
		assert.Equal(t, 1, handler1.HandledCount)
		assert.Equal(t, 1, handler2.HandledCount)
		assert.Equal(t, event, handler1.LastEvent)
		assert.Equal(t, event, handler2.LastEvent)
	})

	t.Run("emit event with failing handler", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(logger)

		// Create handlers - one successful, one that fails
		successHandler := &MockEventHandler{}
		failingHandler := &MockEventHandler{
			HandlerError: errors.New("handler error"),
		}

		// Register both handlers
		emitter.RegisterHandler(successHandler)
		emitter.RegisterHandler(failingHandler)

		// Create and emit an event
		event, err := NewEvent("test-event", "u1", map[string]string{"key": "value"})
		require.NoError(t, err)

		// Should return an error from the failing handler
		err = emitter.EmitEvent(context.Background(), event)
		assert.Error(t, err)
		assert.Equal(t, "handler error", err.Error())

		// Both handlers should still have received the event
		assert.Equal(t, 1, successHandler.HandledCount)
		assert.Equal(t, 1, failingHandler.HandledCount)
	})
}

type countingHandler struct {
	count atomic.Int64
}

func (h *countingHandler) HandleEvent(ctx context.Context, event *Event) error {
	h.count.Add(1)
	return nil
}

func TestInMemoryEventEmitter_ConcurrentEmit(t *testing.T) {
	defer goleak.VerifyNone(t)

	emitter := NewInMemoryEventEmitter(slog.New(slog.NewTextHandler(io.Discard, nil)))
	handler := &countingHandler{}
	emitter.RegisterHandler(handler)

	const senders, perSender = 8, 25
	var wg sync.WaitGroup
	for i := 0; i < senders; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perSender; j++ {
				assert.NoError(t, Emit(context.Background(), emitter, TypeXPAwarded, "u1", XPAwardedPayload{}))
			}
		}()
		if i == senders/2 {
			emitter.RegisterHandler(&countingHandler{})
		}
	}
	wg.Wait()

	assert.Equal(t, int64(senders*perSender), handler.count.Load())
}

type panickingHandler struct{}

func (panickingHandler) HandleEvent(context.Context, *Event) error {
	panic("usage table missing")
}

func TestInMemoryEventEmitter_LogsFailuresWithUser(t *testing.T) {
	var buf bytes.Buffer
	emitter := NewInMemoryEventEmitter(slog.New(slog.NewJSONHandler(&buf, nil)))
	emitter.RegisterHandler(&MockEventHandler{HandlerError: errors.New("insert failed")})

	err := Emit(context.Background(), emitter, TypeQuizCompleted, "whatsapp:+5491100000000", QuizCompletedPayload{Score: 3, Total: 5})
	require.EqualError(t, err, "insert failed")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "handler failed to process event", entry["msg"])
	assert.Equal(t, "event_emitter", entry["component"])
	assert.Equal(t, TypeQuizCompleted, entry["event_type"])
	assert.Equal(t, "whatsapp:+5491100000000", entry["user_id"])
	assert.Equal(t, "insert failed", entry["error"])
	assert.Equal(t, "*events.MockEventHandler", entry["handler"])
}

func TestInMemoryEventEmitter_RecoversHandlerPanic(t *testing.T) {
	emitter := NewInMemoryEventEmitter(slog.New(slog.NewTextHandler(io.Discard, nil)))
	after := &MockEventHandler{}
	emitter.RegisterHandler(panickingHandler{})
	emitter.RegisterHandler(after)

	err := Emit(context.Background(), emitter, TypeActionHandled, "u1", ActionHandledPayload{Action: "action_trivia"})
	require.ErrorIs(t, err, ErrHandlerPanic)
	assert.Contains(t, err.Error(), "usage table missing")
	assert.Equal(t, 1, after.HandledCount, "later handlers still receive the event")
}

func TestInMemoryEventEmitter_NilEvent(t *testing.T) {
	emitter := NewInMemoryEventEmitter(nil)
	handler := &MockEventHandler{}
	emitter.RegisterHandler(handler)

	assert.ErrorIs(t, emitter.EmitEvent(context.Background(), nil), ErrNilEvent)
	assert.Zero(t, handler.HandledCount)
}
