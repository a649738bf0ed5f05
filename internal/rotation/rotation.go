// Package rotation picks the daily mission, weekly mission and verse of the
// day deterministically from the calendar date, and deals bingo boards.
package rotation

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strconv"
	"sync"
	"time"

	"github.com/phrazzld/maika/internal/domain"
)

// Bingo board limits.
const (
	DefaultBingoSize = 3
	MaxBingoSize     = 10
)

// Built-in items used when a collection is empty.
var (
	FallbackDailyMission = domain.Mission{
		Title:       "Lee un versículo",
		Description: "Lee y comparte un versículo que te inspire hoy.",
	}
	FallbackWeeklyMission = domain.Mission{
		Title:       "Aprende un Salmo",
		Description: "Memoriza un verso del Salmo 23 esta semana.",
	}
	FallbackVerse = domain.Verse{
		Book:    "Juan",
		Chapter: 3,
		Verse:   16,
		Text:    "Porque de tal manera amó Dios al mundo...",
	}
	FallbackValues = []string{
		"Amor", "Gozo", "Paz", "Paciencia", "Bondad", "Fe", "Mansedumbre", "Templanza", "Gratitud",
	}
)

// Source provides the collections the engine rotates through.
type Source interface {
	DailyMissions() []domain.Mission
	WeeklyMissions() []domain.Mission
	Verses() []domain.Verse
	Values() []string
}

// Engine selects rotating content. All date arithmetic is done in UTC.
type Engine struct {
	src    Source
	now    func() time.Time
	logger *slog.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock sets the clock used to derive the calendar day.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithRand sets the random source used to shuffle bingo values.
func WithRand(rng *rand.Rand) Option {
	return func(e *Engine) { e.rng = rng }
}

// WithLogger sets the engine logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// NewEngine creates an Engine over src.
func NewEngine(src Source, opts ...Option) *Engine {
	e := &Engine{
		src:    src,
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		e.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	e.logger = e.logger.With(slog.String("component", "rotation"))
	return e
}

// DayIndex is the 1-based day of the year of t in UTC.
func DayIndex(t time.Time) int {
	return t.UTC().YearDay()
}

// WeekIndex is the week of the year of t in UTC, with weeks starting on
// Sunday. Days before the first Sunday of the year are in week 0.
func WeekIndex(t time.Time) int {
	u := t.UTC()
	return (u.YearDay() + 6 - int(u.Weekday())) / 7
}

func pick[T any](items []T, index int, collection string) (T, error) {
	var zero T
	if len(items) == 0 {
		return zero, domain.NewContentMissingError(collection)
	}
	return items[index%len(items)], nil
}

func (e *Engine) fallback(err error) {
	e.logger.Debug("using built-in content", slog.String("reason", err.Error()))
}

// DailyMission returns today's mission.
func (e *Engine) DailyMission() domain.Mission {
	m, err := pick(e.src.DailyMissions(), DayIndex(e.now()), "daily_missions")
	if err != nil {
		e.fallback(err)
		return FallbackDailyMission
	}
	return m
}

// WeeklyMission returns this week's mission.
func (e *Engine) WeeklyMission() domain.Mission {
	m, err := pick(e.src.WeeklyMissions(), WeekIndex(e.now()), "weekly_missions")
	if err != nil {
		e.fallback(err)
		return FallbackWeeklyMission
	}
	return m
}

// VerseOfDay returns today's verse.
func (e *Engine) VerseOfDay() domain.Verse {
	v, err := pick(e.src.Verses(), DayIndex(e.now()), "verses")
	if err != nil {
		e.fallback(err)
		return FallbackVerse
	}
	return v
}

// GenerateBingoBoard deals a size x size board from the value bank. Values
// are shuffled, repeated when the bank is smaller than the board, and cut to
// size*size.
func (e *Engine) GenerateBingoBoard(size int) ([][]string, error) {
	if size < 1 || size > MaxBingoSize {
		return nil, domain.NewInvalidInputError("size", strconv.Itoa(size),
			fmt.Sprintf("must be between 1 and %d", MaxBingoSize))
	}

	values := append([]string(nil), e.src.Values()...)
	if len(values) == 0 {
		e.fallback(domain.NewContentMissingError("values"))
		values = append(values, FallbackValues...)
	}

	e.mu.Lock()
	e.rng.Shuffle(len(values), func(i, j int) {
		values[i], values[j] = values[j], values[i]
	})
	e.mu.Unlock()

	needed := size * size
	picked := make([]string, 0, needed)
	for len(picked) < needed {
		picked = append(picked, values[:min(len(values), needed-len(picked))]...)
	}

	board := make([][]string, size)
	for i := range board {
		board[i] = picked[i*size : (i+1)*size]
	}
	return board, nil
}
