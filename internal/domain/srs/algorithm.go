package srs

import (
	"math"
	"time"

	"github.com/phrazzld/maika/internal/domain"
)

// calculateNewEase applies the result's adjustment and floors the result at
// params.MinEase.
//
// Parameters:
//   - ease: The item's current ease
//   - result: The user's review result (again, good, easy)
//   - params: Configuration parameters for the algorithm
//
// Returns:
//   - The new ease, never below params.MinEase
func calculateNewEase(ease float64, result domain.ReviewResult, params *Params) float64 {
	return math.Max(params.MinEase, ease+params.EaseAdjustment[result])
}

// calculateNewInterval determines the next interval in days.
//
// Algorithm behavior:
//   - "again" resets the interval to 0
//   - an interval of 0 grows to params.FirstInterval
//   - an interval of 1 grows to params.SecondInterval
//   - any longer interval is multiplied by the current ease and rounded
//     half-to-even
//
// The multiplication uses the ease the item had before this review.
func calculateNewInterval(intervalDays int, ease float64, result domain.ReviewResult, params *Params) int {
	if result == domain.ReviewResultAgain {
		return 0
	}

	switch intervalDays {
	case 0:
		return params.FirstInterval
	case 1:
		return params.SecondInterval
	default:
		return int(math.RoundToEven(float64(intervalDays) * ease))
	}
}

// calculateDueAt returns the instant the item is next due. Even a reset
// interval schedules the item at least params.MinDueDays ahead.
func calculateDueAt(intervalDays int, now time.Time, params *Params) time.Time {
	days := intervalDays
	if days < params.MinDueDays {
		days = params.MinDueDays
	}
	return now.UTC().AddDate(0, 0, days)
}

// scheduleNext is the pure scheduling step shared by the Service methods.
func scheduleNext(ease float64, intervalDays int, result domain.ReviewResult, params *Params) (float64, int) {
	return calculateNewEase(ease, result, params),
		calculateNewInterval(intervalDays, ease, result, params)
}
