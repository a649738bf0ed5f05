package quiz

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/phrazzld/maika/internal/domain"
)

// Verdict is the outcome of one submitted answer.
type Verdict string

// Possible verdicts
const (
	VerdictCorrect   Verdict = "correct"
	VerdictIncorrect Verdict = "incorrect"
	VerdictDone      Verdict = "done"
)

// Session is an in-progress quiz. Zero value is an empty, finished session.
//
// FinalCorrect marks a correct answer to the last question whose XP has not
// been written yet; Complete writes it together with the result.
type Session struct {
	ID           string                  `json:"id"`
	Questions    []domain.TriviaQuestion `json:"questions"`
	CurrentIndex int                     `json:"current"`
	Score        int                     `json:"score"`
	FinalCorrect bool                    `json:"final_correct,omitempty"`
	StartedAt    time.Time               `json:"started_at"`
}

// Total returns the number of questions in the session.
func (s Session) Total() int {
	return len(s.Questions)
}

// Done reports whether every question has been answered.
func (s Session) Done() bool {
	return s.CurrentIndex >= len(s.Questions)
}

// Current returns the question awaiting an answer.
func (s Session) Current() (domain.TriviaQuestion, bool) {
	if s.Done() || s.CurrentIndex < 0 {
		return domain.TriviaQuestion{}, false
	}
	return s.Questions[s.CurrentIndex], true
}

// Percentage returns score/total*100.
func (s Session) Percentage() float64 {
	return domain.Percentage(s.Score, s.Total())
}

// clone returns a copy that shares no mutable state with s.
func (s Session) clone() Session {
	out := s
	out.Questions = append([]domain.TriviaQuestion(nil), s.Questions...)
	return out
}

// Encode converts the session to a JSON-compatible value for the dialogue
// state.
func (s Session) Encode() (map[string]any, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to encode quiz session: %w", err)
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to encode quiz session: %w", err)
	}
	return out, nil
}

// DecodeSession reads a session from a dialogue state value produced by
// Encode. A nil value reports ok=false.
func DecodeSession(v any) (s Session, ok bool, err error) {
	if v == nil {
		return Session{}, false, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return Session{}, false, domain.NewInvalidInputError("quiz_data", "", "not a quiz session")
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return Session{}, false, domain.NewInvalidInputError("quiz_data", "", "not a quiz session")
	}
	if s.CurrentIndex < 0 || s.Score < 0 || s.Score > len(s.Questions) ||
		(s.FinalCorrect && (!s.Done() || s.Score == 0)) {
		return Session{}, false, domain.NewInvalidInputError("quiz_data", "", "inconsistent quiz session")
	}
	return s, len(s.Questions) > 0, nil
}

// ParseAnswer converts a 1-based option number typed by the user into a
// zero-based option index.
func ParseAnswer(text string, optionCount int) (int, error) {
	trimmed := strings.TrimSpace(text)
	n, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, domain.NewInvalidInputError("answer", trimmed, "not a number")
	}
	if n < 1 || n > optionCount {
		return 0, domain.NewInvalidInputError("answer", trimmed,
			fmt.Sprintf("must be between 1 and %d", optionCount))
	}
	return n - 1, nil
}
