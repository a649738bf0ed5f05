package quiz

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/maika/internal/domain"
	"github.com/phrazzld/maika/internal/platform/logger"
)

// DefaultQuestionCount is used when Start is called with count <= 0.
const DefaultQuestionCount = 5

var (
	// ErrNoQuestions is returned when the question bank is empty.
	ErrNoQuestions = errors.New("no questions available")

	// ErrSessionInProgress is returned by Complete for an unfinished session.
	ErrSessionInProgress = errors.New("quiz session still has unanswered questions")
)

// QuestionBank provides trivia questions.
type QuestionBank interface {
	Trivia() []domain.TriviaQuestion
}

// XPAwarder appends XP events to the ledger.
type XPAwarder interface {
	AddXP(ctx context.Context, userID string, kind domain.XPKind, amount int, meta any) (*domain.XPEvent, error)
}

// ResultRecorder persists a finished quiz, its XP awards and the leaderboard
// update as one unit.
type ResultRecorder interface {
	RecordQuizResult(
		ctx context.Context,
		result *domain.QuizResult,
		awards ...domain.XPAward,
	) (*domain.LeaderboardEntry, error)
}

// Outcome describes one answered question.
type Outcome struct {
	Verdict       Verdict
	Question      domain.TriviaQuestion
	CorrectOption string
}

// Summary describes a completed quiz.
type Summary struct {
	Score       int
	Total       int
	Percentage  float64
	Tier        domain.FeedbackTier
	Result      *domain.QuizResult
	Leaderboard *domain.LeaderboardEntry
}

// Engine runs trivia sessions.
type Engine struct {
	bank         QuestionBank
	xp           XPAwarder
	results      ResultRecorder
	defaultCount int
	completionXP int
	now          func() time.Time
	logger       *slog.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// Option configures an Engine.
type Option func(*Engine)

// WithDefaultCount sets the number of questions drawn when Start gets count <= 0.
func WithDefaultCount(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.defaultCount = n
		}
	}
}

// WithCompletionXP awards a quiz_complete XP event of n on completion when n > 0.
func WithCompletionXP(n int) Option {
	return func(e *Engine) { e.completionXP = n }
}

// WithRand sets the random source used to draw questions.
func WithRand(rng *rand.Rand) Option {
	return func(e *Engine) { e.rng = rng }
}

// WithClock sets the clock used to stamp sessions.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithLogger sets the engine logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// NewEngine creates an Engine.
func NewEngine(bank QuestionBank, xp XPAwarder, results ResultRecorder, opts ...Option) *Engine {
	if bank == nil {
		panic("bank cannot be nil")
	}
	if xp == nil {
		panic("xp cannot be nil")
	}
	if results == nil {
		panic("results cannot be nil")
	}

	e := &Engine{
		bank:         bank,
		xp:           xp,
		results:      results,
		defaultCount: DefaultQuestionCount,
		now:          time.Now,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		e.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	e.logger = e.logger.With(slog.String("component", "quiz_engine"))
	return e
}

// Start draws min(count, bank size) distinct questions. It returns
// ErrNoQuestions when the bank is empty.
func (e *Engine) Start(ctx context.Context, userID string, count int) (Session, error) {
	bank := e.bank.Trivia()
	if len(bank) == 0 {
		return Session{}, ErrNoQuestions
	}
	if count <= 0 {
		count = e.defaultCount
	}
	count = min(count, len(bank))

	e.mu.Lock()
	perm := e.rng.Perm(len(bank))
	e.mu.Unlock()

	questions := make([]domain.TriviaQuestion, count)
	for i := range questions {
		questions[i] = bank[perm[i]]
	}

	s := Session{
		ID:        uuid.NewString(),
		Questions: questions,
		StartedAt: e.now().UTC(),
	}

	logger.FromContextOrDefault(ctx, e.logger).Debug("quiz started",
		slog.String("user_id", userID),
		slog.String("session_id", s.ID),
		slog.Int("questions", count))
	return s, nil
}

// SubmitAnswer grades answerIndex against the current question and returns
// the advanced session. A correct answer appends a trivia_correct XP event
// before the session changes; if that fails the input session is returned
// unchanged with the error. A correct answer to the last question is only
// marked on the session and its XP is written by Complete. A finished
// session yields VerdictDone and is returned as is.
func (e *Engine) SubmitAnswer(ctx context.Context, userID string, s Session, answerIndex int) (Session, Outcome, error) {
	q, ok := s.Current()
	if !ok {
		return s, Outcome{Verdict: VerdictDone}, nil
	}
	if answerIndex < 0 || answerIndex >= len(q.Options) {
		return s, Outcome{}, domain.NewInvalidInputError("answer", strconv.Itoa(answerIndex+1),
			fmt.Sprintf("must be between 1 and %d", len(q.Options)))
	}

	out := Outcome{Verdict: VerdictIncorrect, Question: q, CorrectOption: q.CorrectOption()}
	next := s.clone()
	next.CurrentIndex++

	if answerIndex == q.CorrectIndex {
		if next.Done() {
			next.FinalCorrect = true
		} else if _, err := e.xp.AddXP(ctx, userID, domain.XPKindTriviaCorrect, domain.XPTriviaCorrect,
			triviaMeta(q)); err != nil {
			return s, Outcome{}, fmt.Errorf("failed to award trivia xp: %w", err)
		}
		next.Score++
		out.Verdict = VerdictCorrect
	}

	logger.FromContextOrDefault(ctx, e.logger).Debug("quiz answer graded",
		slog.String("user_id", userID),
		slog.String("session_id", s.ID),
		slog.String("verdict", string(out.Verdict)),
		slog.Int("current", next.CurrentIndex),
		slog.Int("score", next.Score))
	return next, out, nil
}

// Complete records a finished session: a QuizResult row, the leaderboard
// update, the deferred XP of a correct last answer and a quiz_complete XP
// event when configured. All of it is written in one call to the recorder,
// so a failed Complete can be retried with the same session.
func (e *Engine) Complete(ctx context.Context, userID string, s Session) (Summary, error) {
	if s.Total() == 0 {
		return Summary{}, ErrNoQuestions
	}
	if !s.Done() {
		return Summary{}, ErrSessionInProgress
	}

	quizData, err := json.Marshal(s)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to encode quiz data: %w", err)
	}
	result, err := domain.NewQuizResult(userID, s.Score, s.Total(), quizData)
	if err != nil {
		return Summary{}, fmt.Errorf("invalid quiz result: %w", err)
	}

	var awards []domain.XPAward
	if s.FinalCorrect {
		awards = append(awards, domain.XPAward{
			Kind:   domain.XPKindTriviaCorrect,
			Amount: domain.XPTriviaCorrect,
			Meta:   triviaMeta(s.Questions[s.Total()-1]),
		})
	}
	if e.completionXP > 0 {
		awards = append(awards, domain.XPAward{
			Kind:   domain.XPKindQuizComplete,
			Amount: e.completionXP,
			Meta:   map[string]any{"session_id": s.ID, "score": s.Score},
		})
	}

	entry, err := e.results.RecordQuizResult(ctx, result, awards...)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to record quiz result: %w", err)
	}

	logger.FromContextOrDefault(ctx, e.logger).Info("quiz completed",
		slog.String("user_id", userID),
		slog.String("session_id", s.ID),
		slog.Int("score", s.Score),
		slog.Int("total", s.Total()))

	return Summary{
		Score:       s.Score,
		Total:       s.Total(),
		Percentage:  result.Percentage,
		Tier:        result.Tier(),
		Result:      result,
		Leaderboard: entry,
	}, nil
}

func triviaMeta(q domain.TriviaQuestion) map[string]string {
	return map[string]string{"q": q.Question}
}
