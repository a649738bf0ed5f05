package actions

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/maika/internal/platform/logger"
	"github.com/phrazzld/maika/internal/quiz"
)

func (d *Dispatcher) startTrivia(ctx context.Context, req Request) (Response, error) {
	var resp Response

	s, err := d.deps.Quiz.Start(ctx, req.UserID, 0)
	if errors.Is(err, quiz.ErrNoQuestions) {
		resp.Say(MsgNoQuestions)
		return resp, nil
	}
	if err != nil {
		return Response{}, err
	}

	encoded, err := s.Encode()
	if err != nil {
		return Response{}, err
	}

	q, _ := s.Current()
	resp.Say(formatQuestion(fmt.Sprintf("Trivia bíblica (1/%d)", s.Total()), q))
	resp.Set(SlotQuizData, encoded)
	resp.Set(SlotQuizSessionID, s.ID)
	return resp, nil
}

func (d *Dispatcher) answerTrivia(ctx context.Context, req Request) (Response, error) {
	var resp Response

	s, ok, err := quiz.DecodeSession(req.State[SlotQuizData])
	if err != nil {
		logger.FromContext(ctx).Warn("discarding unreadable quiz session", slog.String("error", err.Error()))
		resp.Say(MsgNoActiveQuiz)
		resp.Set(SlotQuizData, nil)
		return resp, nil
	}
	q, hasCurrent := s.Current()
	if !ok || !hasCurrent {
		resp.Say(MsgNoActiveQuiz)
		return resp, nil
	}

	answer, err := quiz.ParseAnswer(req.RawText, len(q.Options))
	if err != nil {
		// Re-prompt without touching the session.
		resp.Say(formatAnswerPrompt(len(q.Options)))
		return resp, nil
	}

	next, outcome, err := d.deps.Quiz.SubmitAnswer(ctx, req.UserID, s, answer)
	if err != nil {
		return Response{}, err
	}

	if outcome.Verdict == quiz.VerdictCorrect {
		resp.Say(withExplanation("¡Correcto! 🎉", outcome.Question.Explanation))
	} else {
		resp.Say(withExplanation("Incorrecto. La respuesta correcta era: "+outcome.CorrectOption,
			outcome.Question.Explanation))
	}

	if next.Done() {
		summary, err := d.deps.Quiz.Complete(ctx, req.UserID, next)
		if err != nil {
			return Response{}, err
		}
		resp.Say(formatQuizSummary(summary.Score, summary.Total, summary.Percentage, summary.Tier))
		resp.Set(SlotQuizData, nil)
		resp.Set(SlotQuizSessionID, nil)
		return resp, nil
	}

	encoded, err := next.Encode()
	if err != nil {
		return Response{}, err
	}
	nq, _ := next.Current()
	resp.Say(formatQuestion(fmt.Sprintf("Siguiente (%d/%d):", next.CurrentIndex+1, next.Total()), nq))
	resp.Set(SlotQuizData, encoded)
	return resp, nil
}
