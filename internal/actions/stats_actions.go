package actions

import (
	"context"
	"fmt"
	"strings"
)

// statsLimit bounds both the quiz history and the ranking shown.
const statsLimit = 5

func (d *Dispatcher) showStats(ctx context.Context, req Request) (Response, error) {
	total, err := d.deps.Progress.TotalXP(ctx, req.UserID)
	if err != nil {
		return Response{}, err
	}
	history, err := d.deps.Stats.History(ctx, req.UserID, statsLimit)
	if err != nil {
		return Response{}, err
	}
	top, err := d.deps.Stats.Leaderboard(ctx, statsLimit)
	if err != nil {
		return Response{}, err
	}

	var b strings.Builder
	b.WriteString("**Tus Estadísticas:**\n\n")
	fmt.Fprintf(&b, "XP acumulada: %d\n\n", total)

	if len(history) == 0 {
		b.WriteString(MsgNoQuizHistory + "\n")
	} else {
		b.WriteString("**Últimos Quizzes:**\n")
		for _, r := range history {
			fmt.Fprintf(&b, "• %d/%d (%.1f%%) - %s\n",
				r.Score, r.TotalQuestions, r.Percentage, r.TakenAt.Format("2006-01-02 15:04"))
		}
	}

	fmt.Fprintf(&b, "\n**Top %d del Ranking:**\n", statsLimit)
	if len(top) == 0 {
		b.WriteString(MsgEmptyLeaderboard + "\n")
	}
	for i, e := range top {
		fmt.Fprintf(&b, "%d. Usuario %s - %.1f%% (%d aciertos)\n",
			i+1, shortUserID(e.UserID), e.BestPercentage, e.BestScore)
	}

	var resp Response
	resp.Say(strings.TrimRight(b.String(), "\n"))
	return resp, nil
}
