package domain

import (
	"encoding/json"
	"time"
)

// UsageStat records that a user triggered an action.
type UsageStat struct {
	ID         int64     `json:"id"`
	UserID     string    `json:"user_id"`
	ActionType string    `json:"action_type"`
	Success    bool      `json:"success"`
	RecordedAt time.Time `json:"recorded_at"`
}

// UserQuery records an intent the user expressed and, optionally, whether the
// answer helped.
type UserQuery struct {
	ID              int64           `json:"id"`
	UserID          string          `json:"user_id"`
	Intent          string          `json:"intent"`
	Entities        json.RawMessage `json:"entities,omitempty"`
	ResponseHelpful *bool           `json:"response_helpful,omitempty"`
	RecordedAt      time.Time       `json:"recorded_at"`
}

// IntentCount is the number of queries seen for one intent.
type IntentCount struct {
	Intent string `json:"intent"`
	Count  int    `json:"count"`
}

// UsageSummary aggregates telemetry over a time window.
type UsageSummary struct {
	Since           time.Time     `json:"since"`
	TotalQueries    int           `json:"total_queries"`
	QueriesByIntent []IntentCount `json:"queries_by_intent"`
	TotalQuizzes    int           `json:"total_quizzes"`
	AverageScore    float64       `json:"average_score"`
}
