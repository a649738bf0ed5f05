package srs

import (
	"errors"
	"math"
	"time"

	"github.com/phrazzld/maika/internal/domain"
)

// Common errors
var (
	ErrInvalidResult   = errors.New("invalid review result")
	ErrInvalidEase     = errors.New("ease must be a positive number")
	ErrInvalidInterval = errors.New("interval must be greater than or equal to 0")
)

// Schedule is the outcome of one review: the state the caller carries forward
// and the instant the item becomes due again.
type Schedule struct {
	Ease         float64   `json:"ease"`
	IntervalDays int       `json:"interval_days"`
	DueAt        time.Time `json:"due_at"`
}

// Service defines the interface for scheduling operations
type Service interface {
	// ScheduleNext computes the new ease and interval for a review result.
	ScheduleNext(ease float64, intervalDays int, result domain.ReviewResult) (float64, int, error)

	// Review computes the full schedule for a review performed at now.
	Review(ease float64, intervalDays int, result domain.ReviewResult, now time.Time) (Schedule, error)
}

// defaultService is the standard implementation of the Service interface
type defaultService struct {
	params *Params
}

// NewDefaultService creates a new scheduling service with default parameters
func NewDefaultService() Service {
	return &defaultService{
		params: NewDefaultParams(),
	}
}

// NewServiceWithParams creates a new scheduling service with custom parameters
func NewServiceWithParams(params *Params) Service {
	if params == nil {
		params = NewDefaultParams()
	}
	return &defaultService{
		params: params,
	}
}

// ScheduleNext implements the Service interface
func (s *defaultService) ScheduleNext(
	ease float64,
	intervalDays int,
	result domain.ReviewResult,
) (float64, int, error) {
	if err := validateInputs(ease, intervalDays, result); err != nil {
		return 0, 0, err
	}

	newEase, newInterval := scheduleNext(ease, intervalDays, result, s.params)
	return newEase, newInterval, nil
}

// Review implements the Service interface
func (s *defaultService) Review(
	ease float64,
	intervalDays int,
	result domain.ReviewResult,
	now time.Time,
) (Schedule, error) {
	newEase, newInterval, err := s.ScheduleNext(ease, intervalDays, result)
	if err != nil {
		return Schedule{}, err
	}

	return Schedule{
		Ease:         newEase,
		IntervalDays: newInterval,
		DueAt:        calculateDueAt(newInterval, now, s.params),
	}, nil
}

// ScheduleNext computes the next ease and interval with the default parameters.
// Invalid results are treated as "again".
func ScheduleNext(ease float64, intervalDays int, result domain.ReviewResult) (float64, int) {
	if !result.Valid() {
		result = domain.ReviewResultAgain
	}
	return scheduleNext(ease, intervalDays, result, NewDefaultParams())
}

func validateInputs(ease float64, intervalDays int, result domain.ReviewResult) error {
	if !result.Valid() {
		return ErrInvalidResult
	}
	if math.IsNaN(ease) || math.IsInf(ease, 0) || ease <= 0 {
		return ErrInvalidEase
	}
	if intervalDays < 0 {
		return ErrInvalidInterval
	}
	return nil
}
