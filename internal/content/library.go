package content

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/phrazzld/maika/internal/domain"
	"github.com/phrazzld/maika/internal/platform/logger"
)

// Bundle holds one consistent snapshot of every content collection.
type Bundle struct {
	Verses         []domain.Verse
	Values         []string
	Trivia         []domain.TriviaQuestion
	DailyMissions  []domain.Mission
	WeeklyMissions []domain.Mission
}

// Library serves content collections and the verse index. It is safe for
// concurrent use; Reload swaps in a new snapshot atomically.
type Library struct {
	dir    string
	logger *slog.Logger

	mu     sync.RWMutex
	bundle Bundle
	index  *Index
}

// NewLibrary creates an empty Library reading from dir. Call Reload to load it.
func NewLibrary(dir string, logger *slog.Logger) *Library {
	if logger == nil {
		logger = slog.Default()
	}
	return &Library{
		dir:    dir,
		logger: logger.With(slog.String("component", "content")),
		index:  NewIndex(nil),
	}
}

// NewStaticLibrary creates a Library over an in-memory bundle. Reload is a
// no-op for it.
func NewStaticLibrary(b Bundle) *Library {
	l := NewLibrary("", nil)
	l.bundle = b
	l.index = NewIndex(b.Verses)
	return l
}

// Load creates a Library for dir and loads it.
func Load(ctx context.Context, dir string, logger *slog.Logger) (*Library, error) {
	l := NewLibrary(dir, logger)
	if err := l.Reload(ctx); err != nil {
		return nil, err
	}
	return l, nil
}

// Reload rereads every content file and rebuilds the verse index. On error
// the previous snapshot is kept.
func (l *Library) Reload(ctx context.Context) error {
	if l.dir == "" {
		return nil
	}
	log := logger.FromContextOrDefault(ctx, l.logger)

	bundle, err := loadBundle(l.dir, log)
	if err != nil {
		log.Error("failed to load content", slog.String("dir", l.dir), slog.String("error", err.Error()))
		return fmt.Errorf("failed to load content from %s: %w", l.dir, err)
	}
	index := NewIndex(bundle.Verses)

	l.mu.Lock()
	l.bundle = bundle
	l.index = index
	l.mu.Unlock()

	log.Info("content loaded",
		slog.String("dir", l.dir),
		slog.Int("verses", len(bundle.Verses)),
		slog.Int("values", len(bundle.Values)),
		slog.Int("trivia", len(bundle.Trivia)),
		slog.Int("daily_missions", len(bundle.DailyMissions)),
		slog.Int("weekly_missions", len(bundle.WeeklyMissions)))
	return nil
}

func loadBundle(dir string, log *slog.Logger) (Bundle, error) {
	var b Bundle

	bible, found, err := loadOptional[bibleContentFile](dir, BibleContentFile)
	if err != nil {
		return b, err
	}
	if !found {
		log.Debug("content file not found", slog.String("file", BibleContentFile))
	}
	for _, v := range bible.Verses {
		if strings.TrimSpace(v.Book) == "" || v.Chapter <= 0 || v.Verse <= 0 || v.Text == "" {
			log.Warn("skipping malformed verse",
				slog.String("book", v.Book), slog.Int("chapter", v.Chapter), slog.Int("verse", v.Verse))
			continue
		}
		b.Verses = append(b.Verses, domain.Verse{Book: v.Book, Chapter: v.Chapter, Verse: v.Verse, Text: v.Text})
	}
	for _, value := range bible.Values {
		if value = strings.TrimSpace(value); value != "" {
			b.Values = append(b.Values, value)
		}
	}

	missions, found, err := loadOptional[missionsFile](dir, MissionsFile)
	if err != nil {
		return b, err
	}
	if !found {
		log.Debug("content file not found", slog.String("file", MissionsFile))
	}
	b.DailyMissions = toMissions(missions.Daily)
	b.WeeklyMissions = toMissions(missions.Weekly)

	trivia, found, err := loadOptional[triviaBankFile](dir, TriviaBankFile)
	if err != nil {
		return b, err
	}
	if !found {
		log.Debug("content file not found", slog.String("file", TriviaBankFile))
	}
	for _, rec := range append(trivia.Questions, bible.QuizQuestions...) {
		q, ok := rec.toDomain()
		if !ok {
			log.Warn("skipping malformed trivia question", slog.String("question", rec.Question))
			continue
		}
		b.Trivia = append(b.Trivia, q)
	}

	return b, nil
}

func toMissions(records []missionRecord) []domain.Mission {
	var out []domain.Mission
	for _, m := range records {
		if strings.TrimSpace(m.Title) == "" {
			continue
		}
		out = append(out, domain.Mission{Title: m.Title, Description: m.Description})
	}
	return out
}

func (r questionRecord) toDomain() (domain.TriviaQuestion, bool) {
	correct := r.Correct
	if correct == nil {
		correct = r.CorrectAnswer
	}
	if r.Question == "" || len(r.Options) < 2 || correct == nil ||
		*correct < 0 || *correct >= len(r.Options) {
		return domain.TriviaQuestion{}, false
	}
	return domain.TriviaQuestion{
		Question:     r.Question,
		Options:      append([]string(nil), r.Options...),
		CorrectIndex: *correct,
		Explanation:  r.Explanation,
	}, true
}

// Verses returns the verse bank.
func (l *Library) Verses() []domain.Verse {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.bundle.Verses
}

// Values returns the bingo value bank.
func (l *Library) Values() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.bundle.Values
}

// Trivia returns the trivia question bank.
func (l *Library) Trivia() []domain.TriviaQuestion {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.bundle.Trivia
}

// DailyMissions returns the daily mission list.
func (l *Library) DailyMissions() []domain.Mission {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.bundle.DailyMissions
}

// WeeklyMissions returns the weekly mission list.
func (l *Library) WeeklyMissions() []domain.Mission {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.bundle.WeeklyMissions
}

// Index returns the verse index for the current snapshot.
func (l *Library) Index() *Index {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.index
}
