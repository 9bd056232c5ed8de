package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Dosada05/team-manager/models"
	"github.com/Dosada05/team-manager/repositories"
	"golang.org/x/sync/errgroup"
)

type StatsService interface {
	ListGameStats(ctx context.Context, gameID int) ([]models.PlayerMatchStat, error)
	// RecalculateMinutes rewrites minutes played for the game from its roster and cards.
	RecalculateMinutes(ctx context.Context, gameID int) ([]models.PlayerMatchStat, error)
}

type statsService struct {
	txManager  repositories.TxManager
	gameRepo   repositories.GameRepository
	rosterRepo repositories.RosterRepository
	cardRepo   repositories.CardRepository
	statRepo   repositories.PlayerMatchStatRepository
	logger     *slog.Logger
}

func NewStatsService(
	txManager repositories.TxManager,
	gameRepo repositories.GameRepository,
	rosterRepo repositories.RosterRepository,
	cardRepo repositories.CardRepository,
	statRepo repositories.PlayerMatchStatRepository,
	logger *slog.Logger,
) StatsService {
	if logger == nil {
		logger = slog.Default()
	}
	return &statsService{
		txManager:  txManager,
		gameRepo:   gameRepo,
		rosterRepo: rosterRepo,
		cardRepo:   cardRepo,
		statRepo:   statRepo,
		logger:     logger,
	}
}

func (s *statsService) ListGameStats(ctx context.Context, gameID int) ([]models.PlayerMatchStat, error) {
	if _, err := s.gameRepo.GetByID(ctx, gameID); err != nil {
		return nil, mapGameRepoError(err, gameID)
	}
	stats, err := s.statRepo.ListByGame(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to list stats for game %d: %w", gameID, err)
	}
	return stats, nil
}

func (s *statsService) RecalculateMinutes(ctx context.Context, gameID int) ([]models.PlayerMatchStat, error) {
	var stats []models.PlayerMatchStat
	err := s.txManager.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		// lock the game so roster and cards cannot change under the calculation
		game, err := s.gameRepo.GetForUpdate(ctx, exec, gameID)
		if err != nil {
			return mapGameRepoError(err, gameID)
		}

		var rosters []models.RosterEntry
		var cards []*models.Card
		g, gCtx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			rosters, err = s.rosterRepo.ListByGame(gCtx, gameID)
			return err
		})
		g.Go(func() error {
			var err error
			cards, err = s.cardRepo.ListByGame(gCtx, gameID)
			return err
		})
		if err := g.Wait(); err != nil {
			return fmt.Errorf("failed to load match events for game %d: %w", gameID, err)
		}

		stats = ComputeMinutes(game, rosters, cards)
		return s.statRepo.ReplaceMinutes(ctx, exec, gameID, stats)
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "minutes recalculated", slog.Int("game_id", gameID), slog.Int("players", len(stats)))
	return stats, nil
}
