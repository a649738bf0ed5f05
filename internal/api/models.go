package api

import "encoding/json"

// WebhookRequest is the action-server call made by the dialogue engine.
type WebhookRequest struct {
	NextAction string  `json:"next_action" validate:"required,max=128"`
	SenderID   string  `json:"sender_id"   validate:"required,max=256"`
	Tracker    Tracker `json:"tracker"`
}

// Tracker is the part of the conversation state sent with each call.
type Tracker struct {
	SenderID      string         `json:"sender_id,omitempty"`
	LatestMessage LatestMessage  `json:"latest_message"`
	Slots         map[string]any `json:"slots"`
}

// LatestMessage is the user's most recent message with its NLU annotations.
type LatestMessage struct {
	Text     string          `json:"text"`
	Intent   Intent          `json:"intent"`
	Entities []MessageEntity `json:"entities"`
}

// Intent is the classified intent of a message.
type Intent struct {
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence,omitempty"`
}

// MessageEntity is one extracted entity. Value keeps its JSON type.
type MessageEntity struct {
	Entity string          `json:"entity"`
	Value  json.RawMessage `json:"value"`
}

// WebhookResponse carries slot updates and messages back to the engine.
type WebhookResponse struct {
	Events    []SlotEvent    `json:"events"`
	Responses []TextResponse `json:"responses"`
}

// SlotEvent sets one slot. A null value clears it.
type SlotEvent struct {
	Event string `json:"event"`
	Name  string `json:"name"`
	Value any    `json:"value"`
}

// TextResponse is one message to send to the user.
type TextResponse struct {
	Text string `json:"text"`
}

// HealthResponse is returned by the health endpoint.
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database,omitempty"`
}
