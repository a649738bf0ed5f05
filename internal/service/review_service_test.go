package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/phrazzld/maika/internal/domain"
	"github.com/phrazzld/maika/internal/domain/srs"
	"github.com/phrazzld/maika/internal/events"
	"github.com/phrazzld/maika/internal/service"
	"github.com/phrazzld/maika/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var reviewNow = time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)

func newReviewService(f *fixture, now time.Time) *service.ReviewServiceImpl {
	return service.NewReviewService(
		f.stores.DB,
		f.stores.Users,
		f.stores.Reviews,
		f.stores.XP,
		nil,
		f.emitter,
		nil,
	).WithClock(fixedClock(now))
}

func TestReviewService_ReviewResult(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	svc := newReviewService(f, reviewNow)

	schedule, err := svc.ReviewResult(ctx, "u1", domain.DefaultReviewItemID, domain.DefaultEase, 0, domain.ReviewResultGood)
	require.NoError(t, err)
	assert.Equal(t, 1, schedule.IntervalDays)
	assert.InDelta(t, 2.5, schedule.Ease, 0.0001)
	assert.True(t, schedule.DueAt.Equal(reviewNow.AddDate(0, 0, 1)))

	schedule, err = svc.ReviewResult(ctx, "u1", domain.DefaultReviewItemID, schedule.Ease, schedule.IntervalDays, domain.ReviewResultEasy)
	require.NoError(t, err)
	assert.Equal(t, 3, schedule.IntervalDays)
	assert.InDelta(t, 2.6, schedule.Ease, 0.0001)

	review, err := f.stores.Reviews.Get(ctx, "u1", domain.DefaultReviewItemID)
	require.NoError(t, err)
	assert.Equal(t, 3, review.IntervalDays)
	require.NotNil(t, review.LastResult)
	assert.Equal(t, domain.ReviewResultEasy, *review.LastResult)

	total, err := f.stores.XP.Total(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2*domain.XPSRSReview, total)

	assert.Equal(t, []string{
		events.TypeSRSReviewed, events.TypeXPAwarded,
		events.TypeSRSReviewed, events.TypeXPAwarded,
	}, f.recorder.types())
}

func TestReviewService_AgainResetsInterval(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	svc := newReviewService(f, reviewNow)

	schedule, err := svc.ReviewResult(ctx, "u1", "Salmos::23::1", 1.4, 12, domain.ReviewResultAgain)
	require.NoError(t, err)
	assert.Equal(t, 0, schedule.IntervalDays)
	assert.InDelta(t, domain.MinEase, schedule.Ease, 0.0001)
	assert.True(t, schedule.DueAt.Equal(reviewNow.AddDate(0, 0, 1)), "due date is at least one day out")
}

func TestReviewService_RejectsInvalidInput(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	svc := newReviewService(f, reviewNow)

	tests := []struct {
		name     string
		ease     float64
		interval int
		result   domain.ReviewResult
		want     error
	}{
		{name: "unknown result", ease: 2.5, interval: 0, result: "maybe", want: srs.ErrInvalidResult},
		{name: "zero ease", ease: 0, interval: 0, result: domain.ReviewResultGood, want: srs.ErrInvalidEase},
		{name: "negative interval", ease: 2.5, interval: -1, result: domain.ReviewResultGood, want: srs.ErrInvalidInterval},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.ReviewResult(ctx, "u1", "Juan::1::1", tc.ease, tc.interval, tc.result)
			require.Error(t, err)
			assert.ErrorIs(t, err, service.ErrInvalidReview)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	_, err := f.stores.Users.Get(ctx, "u1")
	assert.ErrorIs(t, err, store.ErrUserNotFound)
}

func TestReviewService_IsAtomic(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	svc := service.NewReviewService(
		f.stores.DB,
		f.stores.Users,
		f.stores.Reviews,
		failingXPStore{XPStore: f.stores.XP},
		nil,
		f.emitter,
		nil,
	).WithClock(fixedClock(reviewNow))

	_, err := svc.ReviewResult(ctx, "u1", "Juan::1::1", 2.5, 0, domain.ReviewResultGood)
	require.Error(t, err)
	assert.True(t, store.IsStorageError(err))

	_, err = f.stores.Reviews.Get(ctx, "u1", "Juan::1::1")
	assert.ErrorIs(t, err, store.ErrReviewNotFound)
	assert.Empty(t, f.recorder.types())
}

func TestReviewService_DueReviews(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)

	_, err := newReviewService(f, reviewNow).
		ReviewResult(ctx, "u1", "Juan::1::1", 2.5, 0, domain.ReviewResultGood)
	require.NoError(t, err)

	due, err := newReviewService(f, reviewNow).DueReviews(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, due)

	due, err = newReviewService(f, reviewNow.AddDate(0, 0, 2)).DueReviews(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, "Juan::1::1", due[0].ItemID)
}
