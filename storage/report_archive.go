package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/team-manager/models"
)

const reportContentType = "application/json"

// FinalReport is the archived snapshot of a finalized game.
type FinalReport struct {
	GameID          int                  `json:"game_id"`
	TeamID          int                  `json:"team_id"`
	Opponent        string               `json:"opponent"`
	KickoffAt       time.Time            `json:"kickoff_at"`
	Format          models.GameFormat    `json:"format"`
	Formation       *string              `json:"formation,omitempty"`
	OurScore        *int                 `json:"our_score"`
	OpponentScore   *int                 `json:"opponent_score"`
	DefenseSummary  *string              `json:"defense_summary"`
	MidfieldSummary *string              `json:"midfield_summary"`
	AttackSummary   *string              `json:"attack_summary"`
	GeneralSummary  *string              `json:"general_summary"`
	Rosters         []models.RosterEntry `json:"rosters,omitempty"`
	ArchivedAt      time.Time            `json:"archived_at"`
}

// ReportArchiver writes each finalized report as a JSON object. A game reopened and
// finalized again gets a new object; earlier versions are kept.
type ReportArchiver struct {
	uploader FileUploader
	logger   *slog.Logger
	now      func() time.Time
}

func NewReportArchiver(uploader FileUploader, logger *slog.Logger) *ReportArchiver {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportArchiver{uploader: uploader, logger: logger, now: time.Now}
}

func ReportKey(gameID int, at time.Time) string {
	return fmt.Sprintf("reports/game_%d/%s.json", gameID, at.UTC().Format("20060102T150405Z"))
}

func (a *ReportArchiver) ArchiveReport(ctx context.Context, game *models.Game) error {
	if game.Status != models.GameStatusDone {
		return fmt.Errorf("game %d is %q, only finalized reports are archived", game.ID, game.Status)
	}

	now := a.now()
	report := FinalReport{
		GameID:          game.ID,
		TeamID:          game.TeamID,
		Opponent:        game.Opponent,
		KickoffAt:       game.KickoffAt,
		Format:          game.Format,
		Formation:       game.Formation,
		OurScore:        game.OurScore,
		OpponentScore:   game.OpponentScore,
		DefenseSummary:  game.DefenseSummary,
		MidfieldSummary: game.MidfieldSummary,
		AttackSummary:   game.AttackSummary,
		GeneralSummary:  game.GeneralSummary,
		Rosters:         game.Rosters,
		ArchivedAt:      now.UTC(),
	}
	body, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to encode report for game %d: %w", game.ID, err)
	}

	result, err := a.uploader.Upload(ctx, ReportKey(game.ID, now), reportContentType, bytes.NewReader(body))
	if err != nil {
		return err
	}
	a.logger.InfoContext(ctx, "final report archived",
		slog.Int("game_id", game.ID),
		slog.String("key", result.Key),
		slog.String("location", result.Location),
	)
	return nil
}
