package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types
const (
	TypeXPAwarded     = "xp.awarded"
	TypeSRSReviewed   = "srs.reviewed"
	TypeQuizCompleted = "quiz.completed"
	TypeActionHandled = "action.handled"
)

// Event is a notification that something happened for a user.
type Event struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// Type is one of the Type* constants
	Type string `json:"type"`

	// UserID is the user the event concerns
	UserID string `json:"user_id"`

	// Payload contains the event-specific data serialized as JSON
	Payload json.RawMessage `json:"payload"`

	// CreatedAt is the timestamp when the event was created
	CreatedAt time.Time `json:"created_at"`
}

// XPAwardedPayload is the payload of TypeXPAwarded.
type XPAwardedPayload struct {
	Kind   string `json:"kind"`
	Amount int    `json:"amount"`
}

// SRSReviewedPayload is the payload of TypeSRSReviewed.
type SRSReviewedPayload struct {
	ItemID       string    `json:"item_id"`
	Result       string    `json:"result"`
	IntervalDays int       `json:"interval_days"`
	DueAt        time.Time `json:"due_at"`
}

// QuizCompletedPayload is the payload of TypeQuizCompleted.
type QuizCompletedPayload struct {
	Score      int     `json:"score"`
	Total      int     `json:"total"`
	Percentage float64 `json:"percentage"`
}

// ActionHandledPayload is the payload of TypeActionHandled.
type ActionHandledPayload struct {
	Action  string `json:"action"`
	Success bool   `json:"success"`
}

// UnmarshalPayload decodes the event payload into the provided structure.
func (e *Event) UnmarshalPayload(v any) error {
	return json.Unmarshal(e.Payload, v)
}

// NewEvent creates a new Event with the specified type, user and payload.
func NewEvent(eventType, userID string, payload any) (*Event, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:        uuid.New(),
		Type:      eventType,
		UserID:    userID,
		Payload:   payloadBytes,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// EventHandler defines an interface for components that can handle events.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	// Returns an error if the event cannot be handled successfully.
	HandleEvent(ctx context.Context, event *Event) error
}

// EventEmitter defines an interface for components that can emit events.
// This allows services to publish events without direct knowledge of handlers.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	// Returns an error if the event cannot be emitted.
	EmitEvent(ctx context.Context, event *Event) error
}

// Emit builds an event and publishes it on emitter. A nil emitter is a
// no-op. Errors are returned for the caller to log.
func Emit(ctx context.Context, emitter EventEmitter, eventType, userID string, payload any) error {
	if emitter == nil {
		return nil
	}
	event, err := NewEvent(eventType, userID, payload)
	if err != nil {
		return err
	}
	return emitter.EmitEvent(ctx, event)
}
