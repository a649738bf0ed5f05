package srs

import (
	"testing"
	"time"

	"github.com/phrazzld/maika/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestCalculateNewInterval(t *testing.T) {
	t.Parallel() // Enable parallel execution
	params := NewDefaultParams()

	testCases := []struct {
		name     string
		current  int
		ease     float64
		result   domain.ReviewResult
		expected int
	}{
		{"again resets interval", 10, 2.5, domain.ReviewResultAgain, 0},
		{"first good review", 0, 2.5, domain.ReviewResultGood, 1},
		{"first easy review", 0, 2.5, domain.ReviewResultEasy, 1},
		{"second good review", 1, 2.5, domain.ReviewResultGood, 3},
		{"second easy review", 1, 1.3, domain.ReviewResultEasy, 3},
		{"good multiplies by ease", 3, 2.5, domain.ReviewResultGood, 8},
		{"easy multiplies by prior ease", 10, 2.0, domain.ReviewResultEasy, 20},
		{"rounds to nearest", 4, 1.3, domain.ReviewResultGood, 5},
		{"half rounds to even", 5, 2.5, domain.ReviewResultGood, 12},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := calculateNewInterval(tc.current, tc.ease, tc.result, params)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestCalculateNewEase(t *testing.T) {
	t.Parallel()
	params := NewDefaultParams()

	testCases := []struct {
		name     string
		ease     float64
		result   domain.ReviewResult
		expected float64
	}{
		{"again lowers ease", 2.5, domain.ReviewResultAgain, 2.3},
		{"again floors at minimum", 1.4, domain.ReviewResultAgain, 1.3},
		{"good keeps ease", 2.5, domain.ReviewResultGood, 2.5},
		{"easy raises ease", 2.5, domain.ReviewResultEasy, 2.6},
		{"ease below floor is lifted", 1.0, domain.ReviewResultGood, 1.3},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.expected, calculateNewEase(tc.ease, tc.result, params), 1e-9)
		})
	}
}

func TestScheduleNextProperties(t *testing.T) {
	t.Parallel()

	results := []domain.ReviewResult{
		domain.ReviewResultAgain,
		domain.ReviewResultGood,
		domain.ReviewResultEasy,
	}

	for ease := 1.3; ease <= 3.5; ease += 0.05 {
		for _, interval := range []int{0, 1, 2, 3, 10, 45} {
			againEase, againInterval := ScheduleNext(ease, interval, domain.ReviewResultAgain)
			assert.Equal(t, 0, againInterval, "again must reset interval (ease %v)", ease)
			expected := ease - 0.2
			if expected < 1.3 {
				expected = 1.3
			}
			assert.InDelta(t, expected, againEase, 1e-9)

			for _, result := range results {
				newEase, newInterval := ScheduleNext(ease, interval, result)
				assert.GreaterOrEqual(t, newEase, 1.3, "ease floor (ease %v, result %s)", ease, result)
				assert.GreaterOrEqual(t, newInterval, 0)
			}
		}
	}
}

func TestScheduleNextExample(t *testing.T) {
	t.Parallel()

	ease, interval := ScheduleNext(2.5, 3, domain.ReviewResultGood)
	assert.InDelta(t, 2.5, ease, 1e-9)
	assert.Equal(t, 8, interval)

	_, interval = ScheduleNext(2.5, 0, domain.ReviewResultGood)
	assert.Equal(t, 1, interval)

	_, interval = ScheduleNext(2.5, 1, domain.ReviewResultGood)
	assert.Equal(t, 3, interval)

	// Unknown results degrade to "again".
	_, interval = ScheduleNext(2.5, 10, domain.ReviewResult("hard"))
	assert.Equal(t, 0, interval)
}

func TestCalculateDueAt(t *testing.T) {
	t.Parallel()
	params := NewDefaultParams()
	now := time.Date(2025, 1, 31, 8, 30, 0, 0, time.UTC)

	assert.Equal(t, now.AddDate(0, 0, 1), calculateDueAt(0, now, params), "reset interval is still due tomorrow")
	assert.Equal(t, now.AddDate(0, 0, 1), calculateDueAt(1, now, params))
	assert.Equal(t, now.AddDate(0, 0, 8), calculateDueAt(8, now, params))
}
