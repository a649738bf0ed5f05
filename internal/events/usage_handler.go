package events

import (
	"context"
	"fmt"

	"github.com/phrazzld/maika/internal/domain"
)

// UsageRecorder persists usage stats.
type UsageRecorder interface {
	RecordUsage(ctx context.Context, stat *domain.UsageStat) error
}

// UsageHandler records one usage_stats row per event. Action events are
// recorded under the action name with their success flag; every other event
// is recorded under its type as a success.
type UsageHandler struct {
	recorder UsageRecorder
}

// NewUsageHandler creates a UsageHandler.
func NewUsageHandler(recorder UsageRecorder) *UsageHandler {
	if recorder == nil {
		panic("recorder cannot be nil")
	}
	return &UsageHandler{recorder: recorder}
}

// HandleEvent implements EventHandler.
func (h *UsageHandler) HandleEvent(ctx context.Context, event *Event) error {
	stat := &domain.UsageStat{
		UserID:     event.UserID,
		ActionType: event.Type,
		Success:    true,
		RecordedAt: event.CreatedAt,
	}

	if event.Type == TypeActionHandled {
		var payload ActionHandledPayload
		if err := event.UnmarshalPayload(&payload); err != nil {
			return fmt.Errorf("failed to decode %s payload: %w", event.Type, err)
		}
		stat.ActionType = payload.Action
		stat.Success = payload.Success
	}

	if err := h.recorder.RecordUsage(ctx, stat); err != nil {
		return fmt.Errorf("failed to record usage for %s: %w", event.Type, err)
	}
	return nil
}
