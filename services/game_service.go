package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/Dosada05/team-manager/models"
	"github.com/Dosada05/team-manager/realtime"
	"github.com/Dosada05/team-manager/repositories"
	"golang.org/x/sync/errgroup"
)

const (
	opMarkPlayed = "mark game as played"
	opFinalize   = "submit final report"
	opPostpone   = "postpone game"
	opReopen     = "reopen final report"
)

type CreateGameInput struct {
	TeamID    int               `json:"team_id"`
	Opponent  string            `json:"opponent"`
	Location  *string           `json:"location"`
	KickoffAt time.Time         `json:"kickoff_at"`
	Format    models.GameFormat `json:"format"`
}

type MarkPlayedInput struct {
	// Rosters maps player id to roster status. When empty the lineup draft's rosters are used.
	Rosters   map[string]models.RosterStatus `json:"rosters"`
	Formation *string                        `json:"formation"`
}

// FinalizeInput values override the ones collected in the report draft.
type FinalizeInput struct {
	OurScore        *int    `json:"our_score"`
	OpponentScore   *int    `json:"opponent_score"`
	DefenseSummary  *string `json:"defense_summary"`
	MidfieldSummary *string `json:"midfield_summary"`
	AttackSummary   *string `json:"attack_summary"`
	GeneralSummary  *string `json:"general_summary"`
}

type ReopenInput struct {
	RestoreDraft bool `json:"restore_draft"`
}

type GameService interface {
	CreateGame(ctx context.Context, input CreateGameInput) (*models.Game, error)
	GetGame(ctx context.Context, gameID int) (*models.Game, error)
	GetDraft(ctx context.Context, gameID int) (*DraftView, error)
	SaveDraft(ctx context.Context, gameID int, patch DraftPatch) (*DraftView, error)
	MarkPlayed(ctx context.Context, gameID int, input MarkPlayedInput) (*models.Game, error)
	Finalize(ctx context.Context, gameID int, input FinalizeInput) (*models.Game, error)
	Postpone(ctx context.Context, gameID int) (*models.Game, error)
	Reopen(ctx context.Context, gameID int, input ReopenInput) (*models.Game, error)
}

type gameService struct {
	txManager  repositories.TxManager
	gameRepo   repositories.GameRepository
	rosterRepo repositories.RosterRepository
	archiver   ReportArchiver
	hub        RoomBroadcaster
	metrics    MetricsRecorder
	logger     *slog.Logger
}

func NewGameService(
	txManager repositories.TxManager,
	gameRepo repositories.GameRepository,
	rosterRepo repositories.RosterRepository,
	archiver ReportArchiver,
	hub RoomBroadcaster,
	metrics MetricsRecorder,
	logger *slog.Logger,
) GameService {
	if hub == nil {
		hub = noopBroadcaster{}
	}
	if metrics == nil {
		metrics = noopMetrics{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &gameService{
		txManager:  txManager,
		gameRepo:   gameRepo,
		rosterRepo: rosterRepo,
		archiver:   archiver,
		hub:        hub,
		metrics:    metrics,
		logger:     logger,
	}
}

// allowedGameTransitions lists, per status, the statuses reachable by an explicit transition.
var allowedGameTransitions = map[models.GameStatus][]models.GameStatus{
	models.GameStatusScheduled: {models.GameStatusPlayed, models.GameStatusPostponed},
	models.GameStatusPlayed:    {models.GameStatusDone},
	models.GameStatusDone:      {models.GameStatusPlayed},
	models.GameStatusPostponed: {},
}

func isValidGameTransition(current, next models.GameStatus) bool {
	for _, allowed := range allowedGameTransitions[current] {
		if allowed == next {
			return true
		}
	}
	return false
}

func checkTransition(op string, current, next models.GameStatus) error {
	if isValidGameTransition(current, next) {
		return nil
	}
	var from []models.GameStatus
	for status, targets := range allowedGameTransitions {
		for _, t := range targets {
			if t == next {
				from = append(from, status)
			}
		}
	}
	sort.Slice(from, func(i, j int) bool { return from[i] < from[j] })
	return &InvalidStatusError{Op: op, Status: current, Allowed: from}
}

func (s *gameService) CreateGame(ctx context.Context, input CreateGameInput) (*models.Game, error) {
	if input.TeamID <= 0 {
		return nil, fmt.Errorf("%w: team_id is required", ErrValidationFailed)
	}
	if strings.TrimSpace(input.Opponent) == "" {
		return nil, fmt.Errorf("%w: opponent is required", ErrValidationFailed)
	}
	if input.KickoffAt.IsZero() {
		return nil, fmt.Errorf("%w: kickoff_at is required", ErrValidationFailed)
	}
	if input.Format == "" {
		input.Format = models.Format11v11
	}
	if _, ok := input.Format.StartersRequired(); !ok {
		return nil, fmt.Errorf("%w: unknown format %q", ErrValidationFailed, input.Format)
	}

	game := &models.Game{
		TeamID:    input.TeamID,
		Opponent:  strings.TrimSpace(input.Opponent),
		Location:  input.Location,
		KickoffAt: input.KickoffAt,
		Format:    input.Format,
		Status:    models.GameStatusScheduled,
		Draft:     models.NoDraft(),
	}
	if err := s.gameRepo.Create(ctx, game); err != nil {
		if errors.Is(err, repositories.ErrGameTeamInvalid) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to create game: %w", err)
	}
	return game, nil
}

// GetGame loads the game and its roster in parallel.
func (s *gameService) GetGame(ctx context.Context, gameID int) (*models.Game, error) {
	var game *models.Game
	var rosters []models.RosterEntry

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		game, err = s.gameRepo.GetByID(gCtx, gameID)
		return err
	})
	g.Go(func() error {
		var err error
		rosters, err = s.rosterRepo.ListByGame(gCtx, gameID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, mapGameRepoError(err, gameID)
	}

	game.Rosters = rosters
	return game, nil
}

func (s *gameService) GetDraft(ctx context.Context, gameID int) (*DraftView, error) {
	game, err := s.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		return nil, mapGameRepoError(err, gameID)
	}
	view, err := ReadDraft(game)
	if err != nil {
		return nil, err
	}
	return &view, nil
}

func (s *gameService) SaveDraft(ctx context.Context, gameID int, patch DraftPatch) (*DraftView, error) {
	var view DraftView
	updated, err := s.mutate(ctx, gameID, func(game *models.Game, _ repositories.SQLExecutor) (*models.Game, error) {
		return WriteDraft(game, patch)
	})
	if err != nil {
		return nil, err
	}
	s.metrics.RecordDraftWrite(updated.Draft.Kind)

	view, err = ReadDraft(updated)
	if err != nil {
		return nil, err
	}
	return &view, nil
}

func (s *gameService) MarkPlayed(ctx context.Context, gameID int, input MarkPlayedInput) (*models.Game, error) {
	updated, err := s.mutate(ctx, gameID, func(game *models.Game, exec repositories.SQLExecutor) (*models.Game, error) {
		if err := checkTransition(opMarkPlayed, game.Status, models.GameStatusPlayed); err != nil {
			return nil, err
		}

		var lineup models.LineupDraft
		if game.Draft.Kind == models.DraftLineup {
			if err := game.Draft.Decode(&lineup); err != nil {
				return nil, err
			}
		}
		rosters := input.Rosters
		if len(rosters) == 0 {
			rosters = lineup.Rosters
		}
		entries, err := buildRoster(game, rosters)
		if err != nil {
			return nil, err
		}

		next := game.Clone()
		switch {
		case input.Formation != nil:
			next.Formation = input.Formation
		case lineup.Formation != "":
			formation := lineup.Formation
			next.Formation = &formation
		}

		if err := s.rosterRepo.ReplaceForGame(ctx, exec, game.ID, entries); err != nil {
			if errors.Is(err, repositories.ErrRosterPlayerInvalid) {
				return nil, fmt.Errorf("%w: %v", ErrPlayerNotFound, err)
			}
			return nil, err
		}

		next.Status = models.GameStatusPlayed
		ClearDraft(next, models.DraftLineup)
		next.Rosters = entries
		return next, nil
	})
	if err != nil {
		return nil, err
	}
	s.afterTransition(models.GameStatusScheduled, updated)
	return updated, nil
}

func (s *gameService) Finalize(ctx context.Context, gameID int, input FinalizeInput) (*models.Game, error) {
	updated, err := s.mutate(ctx, gameID, func(game *models.Game, _ repositories.SQLExecutor) (*models.Game, error) {
		if err := checkTransition(opFinalize, game.Status, models.GameStatusDone); err != nil {
			return nil, err
		}

		report, err := resolveFinalReport(game, input)
		if err != nil {
			return nil, err
		}

		next := game.Clone()
		next.OurScore = report.FinalScore.OurScore
		next.OpponentScore = report.FinalScore.OpponentScore
		next.DefenseSummary = stringPtr(report.TeamSummary.DefenseSummary)
		next.MidfieldSummary = stringPtr(report.TeamSummary.MidfieldSummary)
		next.AttackSummary = stringPtr(report.TeamSummary.AttackSummary)
		next.GeneralSummary = stringPtr(report.TeamSummary.GeneralSummary)
		next.Status = models.GameStatusDone
		ClearDraft(next, models.DraftReport)
		return next, nil
	})
	if err != nil {
		return nil, err
	}
	s.afterTransition(models.GameStatusPlayed, updated)

	if rosters, listErr := s.rosterRepo.ListByGame(ctx, updated.ID); listErr == nil {
		updated.Rosters = rosters
	}
	if s.archiver != nil {
		if archErr := s.archiver.ArchiveReport(ctx, updated); archErr != nil {
			s.logger.WarnContext(ctx, "failed to archive final report", slog.Int("game_id", updated.ID), slog.Any("error", archErr))
		}
	}
	return updated, nil
}

// Postpone drops the lineup draft. A postponed game has no writable slot.
func (s *gameService) Postpone(ctx context.Context, gameID int) (*models.Game, error) {
	updated, err := s.mutate(ctx, gameID, func(game *models.Game, _ repositories.SQLExecutor) (*models.Game, error) {
		if err := checkTransition(opPostpone, game.Status, models.GameStatusPostponed); err != nil {
			return nil, err
		}
		next := game.Clone()
		next.Status = models.GameStatusPostponed
		ClearDraft(next, models.DraftLineup)
		return next, nil
	})
	if err != nil {
		return nil, err
	}
	s.afterTransition(models.GameStatusScheduled, updated)
	return updated, nil
}

func (s *gameService) Reopen(ctx context.Context, gameID int, input ReopenInput) (*models.Game, error) {
	updated, err := s.mutate(ctx, gameID, func(game *models.Game, _ repositories.SQLExecutor) (*models.Game, error) {
		if err := checkTransition(opReopen, game.Status, models.GameStatusPlayed); err != nil {
			return nil, err
		}
		next := game.Clone()
		next.Status = models.GameStatusPlayed
		next.Draft = models.NoDraft()
		if input.RestoreDraft {
			draft, err := reportDraftFromFinal(game)
			if err != nil {
				return nil, err
			}
			next.Draft = draft
		}
		return next, nil
	})
	if err != nil {
		return nil, err
	}
	s.afterTransition(models.GameStatusDone, updated)
	return updated, nil
}

// mutate applies fn to the locked game row and persists the result in the same
// transaction. fn must validate before returning; a returned error leaves the game untouched.
func (s *gameService) mutate(
	ctx context.Context,
	gameID int,
	fn func(game *models.Game, exec repositories.SQLExecutor) (*models.Game, error),
) (*models.Game, error) {
	var updated *models.Game
	err := s.txManager.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		game, err := s.gameRepo.GetForUpdate(ctx, exec, gameID)
		if err != nil {
			return mapGameRepoError(err, gameID)
		}
		next, err := fn(game, exec)
		if err != nil {
			return err
		}
		if err := s.gameRepo.Update(ctx, exec, next); err != nil {
			return mapGameRepoError(err, gameID)
		}
		updated = next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *gameService) afterTransition(from models.GameStatus, game *models.Game) {
	s.metrics.RecordTransition(from, game.Status)
	s.logger.Info("game status changed",
		slog.Int("game_id", game.ID),
		slog.String("from", string(from)),
		slog.String("to", string(game.Status)),
	)
	s.hub.BroadcastToRoom(realtime.GameRoom(game.ID), realtime.Message{
		Type:   realtime.TypeGameStatusChanged,
		RoomID: realtime.GameRoom(game.ID),
		Payload: map[string]interface{}{
			"game_id": game.ID,
			"from":    from,
			"to":      game.Status,
		},
	})
}

func buildRoster(game *models.Game, rosters map[string]models.RosterStatus) ([]models.RosterEntry, error) {
	required, ok := game.Format.StartersRequired()
	if !ok {
		return nil, fmt.Errorf("%w: game has unknown format %q", ErrValidationFailed, game.Format)
	}

	entries := make([]models.RosterEntry, 0, len(rosters))
	starters := 0
	for key, status := range rosters {
		playerID, err := parsePlayerKey(key)
		if err != nil {
			return nil, err
		}
		if !status.IsValid() {
			return nil, fmt.Errorf("%w: unknown roster status %q for player %d", ErrValidationFailed, status, playerID)
		}
		if status == models.RosterStarting {
			starters++
		}
		entries = append(entries, models.RosterEntry{GameID: game.ID, PlayerID: playerID, Status: status})
	}
	if starters != required {
		return nil, fmt.Errorf("%w: %s requires exactly %d players in %q, got %d",
			ErrInvalidLineup, game.Format, required, models.RosterStarting, starters)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].PlayerID < entries[j].PlayerID })
	return entries, nil
}

// resolveFinalReport merges finalize input over the report draft and checks completeness.
func resolveFinalReport(game *models.Game, input FinalizeInput) (*models.ReportDraft, error) {
	report := &models.ReportDraft{}
	if game.Draft.Kind == models.DraftReport {
		if err := game.Draft.Decode(report); err != nil {
			return nil, err
		}
	}
	if report.TeamSummary == nil {
		report.TeamSummary = &models.TeamSummary{}
	}
	if report.FinalScore == nil {
		report.FinalScore = &models.FinalScore{}
	}

	if input.OurScore != nil {
		report.FinalScore.OurScore = input.OurScore
	}
	if input.OpponentScore != nil {
		report.FinalScore.OpponentScore = input.OpponentScore
	}
	overrideString(&report.TeamSummary.DefenseSummary, input.DefenseSummary)
	overrideString(&report.TeamSummary.MidfieldSummary, input.MidfieldSummary)
	overrideString(&report.TeamSummary.AttackSummary, input.AttackSummary)
	overrideString(&report.TeamSummary.GeneralSummary, input.GeneralSummary)

	var missing []string
	if report.FinalScore.OurScore == nil {
		missing = append(missing, "ourScore")
	}
	if report.FinalScore.OpponentScore == nil {
		missing = append(missing, "opponentScore")
	}
	summaries := []struct {
		name  string
		value string
	}{
		{"defenseSummary", report.TeamSummary.DefenseSummary},
		{"midfieldSummary", report.TeamSummary.MidfieldSummary},
		{"attackSummary", report.TeamSummary.AttackSummary},
		{"generalSummary", report.TeamSummary.GeneralSummary},
	}
	for _, sm := range summaries {
		if strings.TrimSpace(sm.value) == "" {
			missing = append(missing, sm.name)
		}
	}
	if len(missing) > 0 {
		return nil, &IncompleteReportError{Missing: missing}
	}

	if isNegative(report.FinalScore.OurScore) || isNegative(report.FinalScore.OpponentScore) {
		return nil, fmt.Errorf("%w: scores cannot be negative", ErrValidationFailed)
	}
	return report, nil
}

// reportDraftFromFinal rebuilds a report draft from the finalized fields of a game.
func reportDraftFromFinal(game *models.Game) (models.Draft, error) {
	teamSummary, err := json.Marshal(models.TeamSummary{
		DefenseSummary:  derefString(game.DefenseSummary),
		MidfieldSummary: derefString(game.MidfieldSummary),
		AttackSummary:   derefString(game.AttackSummary),
		GeneralSummary:  derefString(game.GeneralSummary),
	})
	if err != nil {
		return models.Draft{}, err
	}
	finalScore, err := json.Marshal(models.FinalScore{OurScore: game.OurScore, OpponentScore: game.OpponentScore})
	if err != nil {
		return models.Draft{}, err
	}
	return models.Draft{
		Kind: models.DraftReport,
		Data: map[string]json.RawMessage{
			"teamSummary": teamSummary,
			"finalScore":  finalScore,
		},
	}, nil
}

func mapGameRepoError(err error, gameID int) error {
	switch {
	case errors.Is(err, repositories.ErrGameNotFound):
		return fmt.Errorf("%w: id %d", ErrGameNotFound, gameID)
	case errors.Is(err, repositories.ErrGameDraftsClash):
		return fmt.Errorf("game %d: %w", gameID, err)
	}
	return err
}

func overrideString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func stringPtr(s string) *string {
	return &s
}
