package actions

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/phrazzld/maika/internal/domain"
)

// Conversation state keys read and written by the actions.
const (
	SlotLastVerse     = "ultimo_versiculo"
	SlotEase          = "srs_ease"
	SlotInterval      = "srs_interval"
	SlotMissionTitle  = "mission_title"
	SlotBingoBoard    = "bingo_board"
	SlotQuizData      = "quiz_data"
	SlotQuizSessionID = "quiz_session_id"
)

// Entity names extracted by the dialogue engine.
const (
	EntityBook    = "libro_biblico"
	EntityChapter = "capitulo"
	EntityVerse   = "versiculo"
)

// Request is one dialogue turn addressed to an action.
type Request struct {
	UserID   string         `json:"user_id"`
	Entities map[string]any `json:"entities,omitempty"`
	RawText  string         `json:"raw_text"`
	Intent   string         `json:"intent,omitempty"`
	State    map[string]any `json:"state,omitempty"`
}

// Response is what an action says and which state it changes. A nil value in
// StateUpdates clears that key.
type Response struct {
	Segments     []string       `json:"segments"`
	StateUpdates map[string]any `json:"state_updates,omitempty"`
}

// Say appends message segments.
func (r *Response) Say(segments ...string) {
	r.Segments = append(r.Segments, segments...)
}

// Set records a state update.
func (r *Response) Set(key string, value any) {
	if r.StateUpdates == nil {
		r.StateUpdates = make(map[string]any)
	}
	r.StateUpdates[key] = value
}

// stateString returns the state value for key as a string, or def when the
// key is absent, null or empty.
func (r Request) stateString(key, def string) string {
	v, ok := r.State[key]
	if !ok || v == nil {
		return def
	}
	s := strings.TrimSpace(fmt.Sprint(v))
	if s == "" {
		return def
	}
	return s
}

// stateFloat returns the state value for key as a float64, or def when the
// key is absent or null.
func (r Request) stateFloat(key string, def float64) (float64, error) {
	v, ok := r.State[key]
	if !ok || v == nil {
		return def, nil
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, domain.NewInvalidInputError(key, n.String(), "not a number")
		}
		return f, nil
	case string:
		if strings.TrimSpace(n) == "" {
			return def, nil
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, domain.NewInvalidInputError(key, n, "not a number")
		}
		return f, nil
	default:
		return 0, domain.NewInvalidInputError(key, fmt.Sprint(v), "not a number")
	}
}

// stateInt is stateFloat truncated to an int.
func (r Request) stateInt(key string, def int) (int, error) {
	f, err := r.stateFloat(key, float64(def))
	if err != nil {
		return 0, err
	}
	return int(f), nil
}

// entityString returns the named entity's value as a trimmed string.
func (r Request) entityString(name string) string {
	v, ok := r.Entities[name]
	if !ok || v == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(v))
}

// entityInt returns the named entity's value as an int.
func (r Request) entityInt(name string) (int, bool) {
	s := r.entityString(name)
	if s == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return int(f), true
}

// entitiesJSON encodes the turn's entities for telemetry.
func (r Request) entitiesJSON() json.RawMessage {
	if len(r.Entities) == 0 {
		return nil
	}
	data, err := json.Marshal(r.Entities)
	if err != nil {
		return nil
	}
	return data
}

// intentOr returns the request intent, or def when none was sent.
func (r Request) intentOr(def string) string {
	if r.Intent != "" {
		return r.Intent
	}
	return def
}
