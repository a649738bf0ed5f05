package domain

import (
	"encoding/json"
	"errors"
	"time"
)

// XPKind identifies why XP was awarded.
type XPKind string

// Possible XP event kinds
const (
	XPKindMissionComplete XPKind = "mission_complete"
	XPKindSRSReview       XPKind = "srs_review"
	XPKindTriviaCorrect   XPKind = "trivia_correct"
	XPKindBingoComplete   XPKind = "bingo_complete"
	XPKindQuizComplete    XPKind = "quiz_complete"
)

// Fixed XP amounts awarded by the engine.
const (
	XPMissionComplete = 20
	XPSRSReview       = 5
	XPTriviaCorrect   = 10
	XPBingoComplete   = 30
)

// Validation errors for XP events
var (
	ErrInvalidXPKind = errors.New("invalid XP kind")
	ErrNegativeXP    = errors.New("XP amount must be greater than or equal to 0")
	ErrInvalidXPMeta = errors.New("XP meta must be valid JSON")
	ErrEmptyXPUserID = errors.New("XP event user ID cannot be empty")
)

// Valid reports whether k is one of the known kinds.
func (k XPKind) Valid() bool {
	switch k {
	case XPKindMissionComplete, XPKindSRSReview, XPKindTriviaCorrect,
		XPKindBingoComplete, XPKindQuizComplete:
		return true
	default:
		return false
	}
}

// XPEvent is one append-only entry in a user's XP ledger.
// A user's total XP is the sum of Amount over all of their events.
type XPEvent struct {
	ID        int64           `json:"id"`
	UserID    string          `json:"user_id"`
	Kind      XPKind          `json:"kind"`
	Amount    int             `json:"amount"`
	Meta      json.RawMessage `json:"meta,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// XPAward is an XP grant that has not been bound to a user yet. Awards are
// handed to the store together with the write they belong to.
type XPAward struct {
	Kind   XPKind
	Amount int
	Meta   any
}

// NewXPEvent builds a validated XP event. meta may be nil, a json.RawMessage,
// or any value that marshals to JSON.
func NewXPEvent(userID string, kind XPKind, amount int, meta any) (*XPEvent, error) {
	raw, err := encodeMeta(meta)
	if err != nil {
		return nil, err
	}

	event := &XPEvent{
		UserID:    userID,
		Kind:      kind,
		Amount:    amount,
		Meta:      raw,
		CreatedAt: time.Now().UTC(),
	}

	if err := event.Validate(); err != nil {
		return nil, err
	}

	return event, nil
}

// Validate checks if the XPEvent has valid data.
func (e *XPEvent) Validate() error {
	if e.UserID == "" {
		return ErrEmptyXPUserID
	}
	if !e.Kind.Valid() {
		return ErrInvalidXPKind
	}
	if e.Amount < 0 {
		return ErrNegativeXP
	}
	if len(e.Meta) > 0 && !json.Valid(e.Meta) {
		return ErrInvalidXPMeta
	}
	return nil
}

func encodeMeta(meta any) (json.RawMessage, error) {
	switch m := meta.(type) {
	case nil:
		return nil, nil
	case json.RawMessage:
		if len(m) == 0 {
			return nil, nil
		}
		if !json.Valid(m) {
			return nil, ErrInvalidXPMeta
		}
		return m, nil
	default:
		raw, err := json.Marshal(m)
		if err != nil {
			return nil, errors.Join(ErrInvalidXPMeta, err)
		}
		return raw, nil
	}
}
