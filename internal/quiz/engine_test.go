package quiz_test

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/phrazzld/maika/internal/domain"
	"github.com/phrazzld/maika/internal/quiz"
	"github.com/phrazzld/maika/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testQuestions = []domain.TriviaQuestion{
	{Question: "q1", Options: []string{"a", "b", "c"}, CorrectIndex: 0, Explanation: "e1"},
	{Question: "q2", Options: []string{"a", "b"}, CorrectIndex: 1},
	{Question: "q3", Options: []string{"a", "b", "c", "d"}, CorrectIndex: 3},
	{Question: "q4", Options: []string{"a", "b"}, CorrectIndex: 0},
	{Question: "q5", Options: []string{"a", "b"}, CorrectIndex: 0},
	{Question: "q6", Options: []string{"a", "b"}, CorrectIndex: 1},
}

func newEngine(bank quiz.QuestionBank, xp *mockXPAwarder, rec *mockRecorder, opts ...quiz.Option) *quiz.Engine {
	opts = append([]quiz.Option{quiz.WithRand(rand.New(rand.NewPCG(7, 11)))}, opts...)
	return quiz.NewEngine(bank, xp, rec, opts...)
}

func TestStart(t *testing.T) {
	ctx := context.Background()

	t.Run("draws distinct questions", func(t *testing.T) {
		e := newEngine(staticBank(testQuestions), &mockXPAwarder{}, &mockRecorder{})

		s, err := e.Start(ctx, "u1", 4)
		require.NoError(t, err)
		assert.NotEmpty(t, s.ID)
		assert.Len(t, s.Questions, 4)
		assert.Zero(t, s.CurrentIndex)
		assert.Zero(t, s.Score)
		assert.False(t, s.StartedAt.IsZero())

		seen := map[string]bool{}
		for _, q := range s.Questions {
			assert.False(t, seen[q.Question], "question %s drawn twice", q.Question)
			seen[q.Question] = true
		}
	})

	t.Run("caps at bank size", func(t *testing.T) {
		e := newEngine(staticBank(testQuestions[:2]), &mockXPAwarder{}, &mockRecorder{})
		s, err := e.Start(ctx, "u1", 10)
		require.NoError(t, err)
		assert.ElementsMatch(t, testQuestions[:2], s.Questions)
	})

	t.Run("uses default count", func(t *testing.T) {
		e := newEngine(staticBank(testQuestions), &mockXPAwarder{}, &mockRecorder{}, quiz.WithDefaultCount(3))
		s, err := e.Start(ctx, "u1", 0)
		require.NoError(t, err)
		assert.Len(t, s.Questions, 3)
	})

	t.Run("empty bank", func(t *testing.T) {
		e := newEngine(staticBank(nil), &mockXPAwarder{}, &mockRecorder{})
		_, err := e.Start(ctx, "u1", 5)
		assert.ErrorIs(t, err, quiz.ErrNoQuestions)
	})
}

func TestSubmitAnswer(t *testing.T) {
	ctx := context.Background()
	session := quiz.Session{ID: "s1", Questions: testQuestions[:2]}

	t.Run("correct answer awards xp and advances", func(t *testing.T) {
		xp := &mockXPAwarder{}
		xp.On("AddXP", ctx, "u1", domain.XPKindTriviaCorrect, 10, map[string]string{"q": "q1"}).
			Return(&domain.XPEvent{ID: 1}, nil).Once()
		e := newEngine(staticBank(testQuestions), xp, &mockRecorder{})

		next, out, err := e.SubmitAnswer(ctx, "u1", session, 0)
		require.NoError(t, err)
		assert.Equal(t, quiz.VerdictCorrect, out.Verdict)
		assert.Equal(t, "e1", out.Question.Explanation)
		assert.Equal(t, 1, next.Score)
		assert.Equal(t, 1, next.CurrentIndex)
		assert.Zero(t, session.CurrentIndex, "input session is not mutated")
		xp.AssertExpectations(t)
	})

	t.Run("incorrect answer advances without xp", func(t *testing.T) {
		xp := &mockXPAwarder{}
		e := newEngine(staticBank(testQuestions), xp, &mockRecorder{})

		next, out, err := e.SubmitAnswer(ctx, "u1", session, 2)
		require.NoError(t, err)
		assert.Equal(t, quiz.VerdictIncorrect, out.Verdict)
		assert.Equal(t, "a", out.CorrectOption)
		assert.Zero(t, next.Score)
		assert.Equal(t, 1, next.CurrentIndex)
		xp.AssertNotCalled(t, "AddXP", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("finished session is done without mutation", func(t *testing.T) {
		xp := &mockXPAwarder{}
		e := newEngine(staticBank(testQuestions), xp, &mockRecorder{})
		done := quiz.Session{Questions: testQuestions[:1], CurrentIndex: 1, Score: 1}

		next, out, err := e.SubmitAnswer(ctx, "u1", done, 0)
		require.NoError(t, err)
		assert.Equal(t, quiz.VerdictDone, out.Verdict)
		assert.Equal(t, done, next)
	})

	t.Run("out of range index is rejected", func(t *testing.T) {
		e := newEngine(staticBank(testQuestions), &mockXPAwarder{}, &mockRecorder{})
		next, _, err := e.SubmitAnswer(ctx, "u1", session, 3)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
		assert.Equal(t, session, next)
	})

	t.Run("xp failure leaves session unchanged", func(t *testing.T) {
		xp := &mockXPAwarder{}
		storageErr := store.NewStorageError("xp_event", "insert", errors.New("disk full"))
		xp.On("AddXP", mock.Anything, "u1", domain.XPKindTriviaCorrect, 10, mock.Anything).Return(nil, storageErr)
		e := newEngine(staticBank(testQuestions), xp, &mockRecorder{})

		next, _, err := e.SubmitAnswer(ctx, "u1", session, 0)
		assert.True(t, store.IsStorageError(err))
		assert.Equal(t, session, next)
	})
}

func TestFullQuiz(t *testing.T) {
	ctx := context.Background()
	xp := &mockXPAwarder{}
	xp.On("AddXP", ctx, "u1", domain.XPKindTriviaCorrect, 10, mock.Anything).Return(&domain.XPEvent{}, nil)

	rec := &mockRecorder{}
	rec.On("RecordQuizResult", ctx, mock.MatchedBy(func(r *domain.QuizResult) bool {
		return r.UserID == "u1" && r.Score == 2 && r.TotalQuestions == 3 && len(r.QuizData) > 0
	}), []domain.XPAward{
		{Kind: domain.XPKindTriviaCorrect, Amount: 10, Meta: map[string]string{"q": "q3"}},
	}).Return(&domain.LeaderboardEntry{UserID: "u1", BestScore: 2, TotalQuizzes: 1}, nil).Once()

	e := newEngine(staticBank(testQuestions), xp, rec)
	s := quiz.Session{ID: "s1", Questions: testQuestions[:3]}

	answers := []int{0, 0, 3} // correct, incorrect, correct
	var err error
	for _, a := range answers {
		_, err = e.Complete(ctx, "u1", s)
		assert.ErrorIs(t, err, quiz.ErrSessionInProgress)

		s, _, err = e.SubmitAnswer(ctx, "u1", s, a)
		require.NoError(t, err)
	}
	require.True(t, s.Done())

	summary, err := e.Complete(ctx, "u1", s)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Score)
	assert.Equal(t, 3, summary.Total)
	assert.InDelta(t, 66.7, domain.RoundPercentage(summary.Percentage), 1e-9)
	assert.Equal(t, domain.FeedbackGood, summary.Tier)
	assert.Equal(t, 1, summary.Leaderboard.TotalQuizzes)

	xp.AssertNumberOfCalls(t, "AddXP", 1)
	xp.AssertNotCalled(t, "AddXP", mock.Anything, "u1", domain.XPKindTriviaCorrect, 10, map[string]string{"q": "q3"})
	rec.AssertExpectations(t)
}

func TestComplete(t *testing.T) {
	ctx := context.Background()
	finished := quiz.Session{ID: "s1", Questions: testQuestions[:2], CurrentIndex: 2, Score: 2}

	t.Run("completion xp when configured", func(t *testing.T) {
		xp := &mockXPAwarder{}
		rec := &mockRecorder{}
		rec.On("RecordQuizResult", ctx, mock.Anything, []domain.XPAward{{
			Kind:   domain.XPKindQuizComplete,
			Amount: 15,
			Meta:   map[string]any{"session_id": "s1", "score": 2},
		}}).Return(&domain.LeaderboardEntry{}, nil).Once()

		e := newEngine(staticBank(testQuestions), xp, rec, quiz.WithCompletionXP(15))
		summary, err := e.Complete(ctx, "u1", finished)
		require.NoError(t, err)
		assert.Equal(t, domain.FeedbackExcellent, summary.Tier)
		rec.AssertExpectations(t)
		xp.AssertNotCalled(t, "AddXP", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("no completion xp by default", func(t *testing.T) {
		xp := &mockXPAwarder{}
		rec := &mockRecorder{}
		rec.On("RecordQuizResult", ctx, mock.Anything, []domain.XPAward(nil)).Return(&domain.LeaderboardEntry{}, nil).Once()

		e := newEngine(staticBank(testQuestions), xp, rec)
		_, err := e.Complete(ctx, "u1", finished)
		require.NoError(t, err)
		xp.AssertNotCalled(t, "AddXP", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		rec.AssertExpectations(t)
	})

	t.Run("recorder failure propagates", func(t *testing.T) {
		rec := &mockRecorder{}
		storageErr := store.NewStorageError("leaderboard", "upsert", errors.New("locked"))
		rec.On("RecordQuizResult", ctx, mock.Anything, mock.Anything).Return(nil, storageErr)

		e := newEngine(staticBank(testQuestions), &mockXPAwarder{}, rec)
		_, err := e.Complete(ctx, "u1", finished)
		assert.True(t, store.IsStorageError(err))
	})

	t.Run("empty session", func(t *testing.T) {
		e := newEngine(staticBank(testQuestions), &mockXPAwarder{}, &mockRecorder{})
		_, err := e.Complete(ctx, "u1", quiz.Session{})
		assert.ErrorIs(t, err, quiz.ErrNoQuestions)
	})
}

func TestSubmitAnswer_FinalCorrectAnswerDefersXP(t *testing.T) {
	ctx := context.Background()
	xp := &mockXPAwarder{}
	e := newEngine(staticBank(testQuestions), xp, &mockRecorder{})
	last := quiz.Session{ID: "s1", Questions: testQuestions[:2], CurrentIndex: 1}

	next, out, err := e.SubmitAnswer(ctx, "u1", last, 1)
	require.NoError(t, err)
	assert.Equal(t, quiz.VerdictCorrect, out.Verdict)
	assert.True(t, next.Done())
	assert.True(t, next.FinalCorrect)
	assert.Equal(t, 1, next.Score)
	assert.False(t, last.FinalCorrect, "input session is not mutated")
	xp.AssertNotCalled(t, "AddXP", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)

	next, out, err = e.SubmitAnswer(ctx, "u1", last, 0)
	require.NoError(t, err)
	assert.Equal(t, quiz.VerdictIncorrect, out.Verdict)
	assert.False(t, next.FinalCorrect)
}

func TestComplete_RetryAfterRecorderFailure(t *testing.T) {
	ctx := context.Background()
	l := &ledger{failures: 1}
	e := quiz.NewEngine(staticBank(testQuestions), l, l)
	start := quiz.Session{ID: "s1", Questions: testQuestions[:1]}

	// Each attempt starts from the same carried session, as a retried turn does.
	attempt := func() (quiz.Summary, error) {
		next, out, err := e.SubmitAnswer(ctx, "u1", start, 0)
		require.NoError(t, err)
		require.Equal(t, quiz.VerdictCorrect, out.Verdict)
		return e.Complete(ctx, "u1", next)
	}

	_, err := attempt()
	require.Error(t, err)
	assert.True(t, store.IsStorageError(err))
	assert.Zero(t, l.total)

	summary, err := attempt()
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Score)
	assert.Equal(t, 1, summary.Leaderboard.TotalQuizzes)
	assert.Equal(t, domain.XPTriviaCorrect, l.total)
}

func TestNewEngine_PanicsOnNilDependencies(t *testing.T) {
	assert.Panics(t, func() { quiz.NewEngine(nil, &mockXPAwarder{}, &mockRecorder{}) })
	assert.Panics(t, func() { quiz.NewEngine(staticBank(nil), nil, &mockRecorder{}) })
	assert.Panics(t, func() { quiz.NewEngine(staticBank(nil), &mockXPAwarder{}, nil) })
}
