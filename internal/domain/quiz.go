package domain

import (
	"encoding/json"
	"errors"
	"math"
	"time"
)

// Validation errors for quiz results
var (
	ErrEmptyQuizUserID  = errors.New("quiz result user ID cannot be empty")
	ErrInvalidQuizTotal = errors.New("quiz total questions must be greater than 0")
	ErrInvalidQuizScore = errors.New("quiz score must be between 0 and total questions")
)

// Feedback tier thresholds, in percent.
const (
	ExcellentThreshold = 80.0
	GoodThreshold      = 60.0
)

// FeedbackTier is the qualitative grade attached to a finished quiz.
type FeedbackTier string

// Possible feedback tiers
const (
	FeedbackExcellent FeedbackTier = "excellent"
	FeedbackGood      FeedbackTier = "good"
	FeedbackStudy     FeedbackTier = "study"
)

// Percentage returns score/total*100, or 0 when total is not positive.
func Percentage(score, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(score) / float64(total) * 100
}

// RoundPercentage rounds p to one decimal place for display.
func RoundPercentage(p float64) float64 {
	return math.Round(p*10) / 10
}

// TierFor maps a percentage onto a feedback tier.
func TierFor(percentage float64) FeedbackTier {
	switch {
	case percentage >= ExcellentThreshold:
		return FeedbackExcellent
	case percentage >= GoodThreshold:
		return FeedbackGood
	default:
		return FeedbackStudy
	}
}

// QuizResult is the durable record of one completed quiz.
type QuizResult struct {
	ID             int64           `json:"id"`
	UserID         string          `json:"user_id"`
	Score          int             `json:"score"`
	TotalQuestions int             `json:"total_questions"`
	Percentage     float64         `json:"percentage"`
	QuizData       json.RawMessage `json:"quiz_data,omitempty"`
	TakenAt        time.Time       `json:"taken_at"`
}

// NewQuizResult creates a validated QuizResult with its percentage computed.
func NewQuizResult(userID string, score, total int, quizData json.RawMessage) (*QuizResult, error) {
	result := &QuizResult{
		UserID:         userID,
		Score:          score,
		TotalQuestions: total,
		Percentage:     Percentage(score, total),
		QuizData:       quizData,
		TakenAt:        time.Now().UTC(),
	}

	if err := result.Validate(); err != nil {
		return nil, err
	}

	return result, nil
}

// Validate checks if the QuizResult has valid data.
func (r *QuizResult) Validate() error {
	if r.UserID == "" {
		return ErrEmptyQuizUserID
	}
	if r.TotalQuestions <= 0 {
		return ErrInvalidQuizTotal
	}
	if r.Score < 0 || r.Score > r.TotalQuestions {
		return ErrInvalidQuizScore
	}
	return nil
}

// Tier returns the feedback tier for this result.
func (r *QuizResult) Tier() FeedbackTier {
	return TierFor(r.Percentage)
}

// LeaderboardEntry aggregates a user's best quiz performance. BestScore and
// BestPercentage are tracked independently and may come from different attempts.
type LeaderboardEntry struct {
	UserID         string    `json:"user_id"`
	BestScore      int       `json:"best_score"`
	BestPercentage float64   `json:"best_percentage"`
	TotalQuizzes   int       `json:"total_quizzes"`
	LastUpdated    time.Time `json:"last_updated"`
}
