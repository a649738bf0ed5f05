package domain

import (
	"errors"
	"strings"
	"time"
)

// ReviewResult represents how well a user recalled an item.
type ReviewResult string

// Possible review result values
const (
	ReviewResultAgain ReviewResult = "again"
	ReviewResultGood  ReviewResult = "good"
	ReviewResultEasy  ReviewResult = "easy"
)

// Defaults used when a review starts without prior scheduling state.
const (
	DefaultEase         = 2.5
	MinEase             = 1.3
	DefaultReviewItemID = "Juan::3::16"
)

// Validation errors for SRS review records
var (
	ErrEmptyReviewUserID    = errors.New("review user ID cannot be empty")
	ErrEmptyReviewItemID    = errors.New("review item ID cannot be empty")
	ErrInvalidInterval      = errors.New("interval must be greater than or equal to 0")
	ErrInvalidEase          = errors.New("ease must be greater than or equal to 1.3")
	ErrInvalidReviewResult  = errors.New("invalid review result")
	ErrMissingReviewDueTime = errors.New("review due time cannot be zero")
)

// Valid reports whether r is a known review result.
func (r ReviewResult) Valid() bool {
	switch r {
	case ReviewResultAgain, ReviewResultGood, ReviewResultEasy:
		return true
	default:
		return false
	}
}

// ParseReviewResult interprets free text from the user. Text mentioning
// "easy" wins over "good"; anything else counts as a failed recall.
func ParseReviewResult(text string) ReviewResult {
	lower := strings.ToLower(text)
	for _, kw := range []string{"fácil", "facil", "easy"} {
		if strings.Contains(lower, kw) {
			return ReviewResultEasy
		}
	}
	for _, kw := range []string{"bien", "good"} {
		if strings.Contains(lower, kw) {
			return ReviewResultGood
		}
	}
	return ReviewResultAgain
}

// SRSReview is the scheduling state of one content item for one user.
// There is at most one record per (UserID, ItemID).
type SRSReview struct {
	ID           int64         `json:"id"`
	UserID       string        `json:"user_id"`
	ItemID       string        `json:"item_id"`
	DueAt        time.Time     `json:"due_at"`
	Ease         float64       `json:"ease"`
	IntervalDays int           `json:"interval_days"`
	LastResult   *ReviewResult `json:"last_result,omitempty"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// NewSRSReview creates a review record with the given scheduling state.
func NewSRSReview(
	userID, itemID string,
	dueAt time.Time,
	ease float64,
	intervalDays int,
	lastResult *ReviewResult,
) (*SRSReview, error) {
	review := &SRSReview{
		UserID:       userID,
		ItemID:       itemID,
		DueAt:        dueAt.UTC(),
		Ease:         ease,
		IntervalDays: intervalDays,
		LastResult:   lastResult,
		UpdatedAt:    time.Now().UTC(),
	}

	if err := review.Validate(); err != nil {
		return nil, err
	}

	return review, nil
}

// Validate checks if the SRSReview has valid data.
func (r *SRSReview) Validate() error {
	if r.UserID == "" {
		return ErrEmptyReviewUserID
	}
	if r.ItemID == "" {
		return ErrEmptyReviewItemID
	}
	if r.IntervalDays < 0 {
		return ErrInvalidInterval
	}
	if r.Ease < MinEase {
		return ErrInvalidEase
	}
	if r.DueAt.IsZero() {
		return ErrMissingReviewDueTime
	}
	if r.LastResult != nil && !r.LastResult.Valid() {
		return ErrInvalidReviewResult
	}
	return nil
}

// IsDue reports whether the record is due at the given instant.
func (r *SRSReview) IsDue(asOf time.Time) bool {
	return !r.DueAt.After(asOf)
}
