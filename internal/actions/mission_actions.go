package actions

import (
	"context"
	"fmt"

	"github.com/phrazzld/maika/internal/domain"
	"github.com/phrazzld/maika/internal/rotation"
	"github.com/phrazzld/maika/internal/service"
)

func (d *Dispatcher) dailyMission(_ context.Context, _ Request) (Response, error) {
	m := d.deps.Rotation.DailyMission()

	var resp Response
	resp.Say(formatMission("Misión de hoy", m))
	resp.Set(SlotMissionTitle, m.Title)
	return resp, nil
}

func (d *Dispatcher) weeklyMission(_ context.Context, _ Request) (Response, error) {
	m := d.deps.Rotation.WeeklyMission()

	var resp Response
	resp.Say(formatMission("Misión de la semana", m))
	resp.Set(SlotMissionTitle, m.Title)
	return resp, nil
}

func (d *Dispatcher) completeMission(ctx context.Context, req Request) (Response, error) {
	title := req.stateString(SlotMissionTitle, service.DefaultMissionTitle)
	if _, err := d.deps.Progress.CompleteMission(ctx, req.UserID, title); err != nil {
		return Response{}, err
	}

	var resp Response
	resp.Say(fmt.Sprintf("¡Misión completada! Ganaste %d XP.", domain.XPMissionComplete))
	return resp, nil
}

func (d *Dispatcher) bingo(_ context.Context, _ Request) (Response, error) {
	board, err := d.deps.Rotation.GenerateBingoBoard(rotation.DefaultBingoSize)
	if err != nil {
		return Response{}, err
	}

	var resp Response
	resp.Say(formatBingo(board))
	resp.Set(SlotBingoBoard, board)
	return resp, nil
}

// completeBingo rewards the board dealt by the bingo action once, then
// clears it.
func (d *Dispatcher) completeBingo(ctx context.Context, req Request) (Response, error) {
	var resp Response
	if board, ok := req.State[SlotBingoBoard]; !ok || board == nil {
		resp.Say(MsgNoBingoBoard)
		return resp, nil
	}

	if _, err := d.deps.Progress.RewardBingo(ctx, req.UserID, true); err != nil {
		return Response{}, err
	}
	resp.Say(fmt.Sprintf("¡Bingo completado! Ganaste %d XP.", domain.XPBingoComplete))
	resp.Set(SlotBingoBoard, nil)
	return resp, nil
}
