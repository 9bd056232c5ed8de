package worker

import (
	"context"
	"fmt"

	"github.com/Dosada05/team-manager/models"
)

type MinutesRecalculator interface {
	RecalculateMinutes(ctx context.Context, gameID int) ([]models.PlayerMatchStat, error)
}

// RecalcMinutesHandler rebuilds minutes played for the game named in the payload.
func RecalcMinutesHandler(stats MinutesRecalculator) Handler {
	return func(ctx context.Context, job *models.Job) error {
		if job.Payload.GameID <= 0 {
			return fmt.Errorf("invalid payload: gameId %d", job.Payload.GameID)
		}
		_, err := stats.RecalculateMinutes(ctx, job.Payload.GameID)
		return err
	}
}
