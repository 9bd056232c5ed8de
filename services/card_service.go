package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Dosada05/team-manager/models"
	"github.com/Dosada05/team-manager/realtime"
	"github.com/Dosada05/team-manager/repositories"
)

const maxCardMinute = 150

type CreateCardInput struct {
	PlayerID int             `json:"player_id"`
	CardType models.CardType `json:"card_type"`
	Minute   int             `json:"minute"`
}

type UpdateCardInput struct {
	CardType *models.CardType `json:"card_type"`
	Minute   *int             `json:"minute"`
}

// CardMutationResult carries the written card and the job the write enqueued, if any.
type CardMutationResult struct {
	Card *models.Card `json:"card,omitempty"`
	Job  *models.Job  `json:"job,omitempty"`
}

type CardService interface {
	List(ctx context.Context, gameID int) ([]*models.Card, error)
	Create(ctx context.Context, gameID int, input CreateCardInput) (*CardMutationResult, error)
	Update(ctx context.Context, gameID, cardID int, input UpdateCardInput) (*CardMutationResult, error)
	Delete(ctx context.Context, gameID, cardID int) (*CardMutationResult, error)
}

type cardService struct {
	txManager  repositories.TxManager
	gameRepo   repositories.GameRepository
	cardRepo   repositories.CardRepository
	playerRepo repositories.PlayerRepository
	jobRepo    repositories.JobRepository
	notifier   JobNotifier
	hub        RoomBroadcaster
	metrics    MetricsRecorder
	logger     *slog.Logger
}

func NewCardService(
	txManager repositories.TxManager,
	gameRepo repositories.GameRepository,
	cardRepo repositories.CardRepository,
	playerRepo repositories.PlayerRepository,
	jobRepo repositories.JobRepository,
	notifier JobNotifier,
	hub RoomBroadcaster,
	metrics MetricsRecorder,
	logger *slog.Logger,
) CardService {
	if hub == nil {
		hub = noopBroadcaster{}
	}
	if metrics == nil {
		metrics = noopMetrics{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &cardService{
		txManager:  txManager,
		gameRepo:   gameRepo,
		cardRepo:   cardRepo,
		playerRepo: playerRepo,
		jobRepo:    jobRepo,
		notifier:   notifier,
		hub:        hub,
		metrics:    metrics,
		logger:     logger,
	}
}

func (s *cardService) List(ctx context.Context, gameID int) ([]*models.Card, error) {
	if _, err := s.gameRepo.GetByID(ctx, gameID); err != nil {
		return nil, mapGameRepoError(err, gameID)
	}
	cards, err := s.cardRepo.ListByGame(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cards for game %d: %w", gameID, err)
	}
	return cards, nil
}

func (s *cardService) Create(ctx context.Context, gameID int, input CreateCardInput) (*CardMutationResult, error) {
	if err := validateCard(input.CardType, input.Minute); err != nil {
		return nil, err
	}

	result := &CardMutationResult{}
	err := s.txManager.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		game, err := s.gameRepo.GetForUpdate(ctx, exec, gameID)
		if err != nil {
			return mapGameRepoError(err, gameID)
		}
		if err := s.checkPlayer(ctx, game, input.PlayerID); err != nil {
			return err
		}

		card := &models.Card{
			GameID:   gameID,
			PlayerID: input.PlayerID,
			CardType: input.CardType,
			Minute:   input.Minute,
		}
		if err := s.cardRepo.Create(ctx, exec, card); err != nil {
			return mapCardRepoError(err, 0)
		}
		result.Card = card

		job, err := s.enqueue(ctx, exec, CardEvent{Mutation: CardCreated, GameID: gameID, NewType: card.CardType})
		if err != nil {
			return err
		}
		result.Job = job
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.afterCommit(ctx, result.Job)
	return result, nil
}

func (s *cardService) Update(ctx context.Context, gameID, cardID int, input UpdateCardInput) (*CardMutationResult, error) {
	result := &CardMutationResult{}
	err := s.txManager.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if _, err := s.gameRepo.GetForUpdate(ctx, exec, gameID); err != nil {
			return mapGameRepoError(err, gameID)
		}
		card, err := s.lockCard(ctx, exec, gameID, cardID)
		if err != nil {
			return err
		}

		oldType := card.CardType
		if input.CardType != nil {
			card.CardType = *input.CardType
		}
		if input.Minute != nil {
			card.Minute = *input.Minute
		}
		if err := validateCard(card.CardType, card.Minute); err != nil {
			return err
		}

		if err := s.cardRepo.Update(ctx, exec, card); err != nil {
			return mapCardRepoError(err, cardID)
		}
		result.Card = card

		job, err := s.enqueue(ctx, exec, CardEvent{Mutation: CardUpdated, GameID: gameID, OldType: oldType, NewType: card.CardType})
		if err != nil {
			return err
		}
		result.Job = job
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.afterCommit(ctx, result.Job)
	return result, nil
}

func (s *cardService) Delete(ctx context.Context, gameID, cardID int) (*CardMutationResult, error) {
	result := &CardMutationResult{}
	err := s.txManager.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if _, err := s.gameRepo.GetForUpdate(ctx, exec, gameID); err != nil {
			return mapGameRepoError(err, gameID)
		}
		card, err := s.lockCard(ctx, exec, gameID, cardID)
		if err != nil {
			return err
		}
		if err := s.cardRepo.Delete(ctx, exec, cardID); err != nil {
			return mapCardRepoError(err, cardID)
		}

		job, err := s.enqueue(ctx, exec, CardEvent{Mutation: CardDeleted, GameID: gameID, OldType: card.CardType})
		if err != nil {
			return err
		}
		result.Job = job
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.afterCommit(ctx, result.Job)
	return result, nil
}

// lockCard loads the card under a row lock and checks that it belongs to the game.
func (s *cardService) lockCard(ctx context.Context, exec repositories.SQLExecutor, gameID, cardID int) (*models.Card, error) {
	card, err := s.cardRepo.GetForUpdate(ctx, exec, cardID)
	if err != nil {
		return nil, mapCardRepoError(err, cardID)
	}
	if card.GameID != gameID {
		return nil, fmt.Errorf("%w: card %d does not belong to game %d", ErrCardNotFound, cardID, gameID)
	}
	return card, nil
}

func (s *cardService) checkPlayer(ctx context.Context, game *models.Game, playerID int) error {
	if playerID <= 0 {
		return fmt.Errorf("%w: player_id is required", ErrValidationFailed)
	}
	player, err := s.playerRepo.GetByID(ctx, playerID)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return fmt.Errorf("%w: id %d", ErrPlayerNotFound, playerID)
		}
		return fmt.Errorf("failed to load player %d: %w", playerID, err)
	}
	if player.TeamID != game.TeamID {
		return fmt.Errorf("%w: player %d is not in team %d", ErrValidationFailed, playerID, game.TeamID)
	}
	return nil
}

// enqueue inserts the job the event requires within the card's transaction.
func (s *cardService) enqueue(ctx context.Context, exec repositories.SQLExecutor, e CardEvent) (*models.Job, error) {
	job := OnCardMutation(e)
	if job == nil {
		return nil, nil
	}
	if err := s.jobRepo.Create(ctx, exec, job); err != nil {
		return nil, fmt.Errorf("failed to enqueue %s job for game %d: %w", job.JobType, e.GameID, err)
	}
	return job, nil
}

func (s *cardService) afterCommit(ctx context.Context, job *models.Job) {
	if job == nil {
		return
	}
	s.metrics.RecordJobEnqueued(job.JobType)
	s.logger.InfoContext(ctx, "job enqueued",
		slog.String("job_id", job.ID.String()),
		slog.String("job_type", job.JobType),
		slog.Int("game_id", job.Payload.GameID),
	)

	if s.notifier != nil {
		if err := s.notifier.NotifyJobEnqueued(ctx, job); err != nil {
			// the worker still picks the job up on its next poll
			s.logger.WarnContext(ctx, "failed to notify job consumers", slog.String("job_id", job.ID.String()), slog.Any("error", err))
		}
	}

	room := realtime.GameRoom(job.Payload.GameID)
	s.hub.BroadcastToRoom(room, realtime.Message{
		Type:   realtime.TypeJobEnqueued,
		RoomID: room,
		Payload: map[string]interface{}{
			"job_id":   job.ID,
			"job_type": job.JobType,
			"game_id":  job.Payload.GameID,
		},
	})
}

func validateCard(cardType models.CardType, minute int) error {
	if !cardType.IsValid() {
		return fmt.Errorf("%w: unknown card_type %q", ErrValidationFailed, cardType)
	}
	if minute < 0 || minute > maxCardMinute {
		return fmt.Errorf("%w: minute must be between 0 and %d", ErrValidationFailed, maxCardMinute)
	}
	return nil
}

func mapCardRepoError(err error, cardID int) error {
	switch {
	case errors.Is(err, repositories.ErrCardNotFound):
		return fmt.Errorf("%w: id %d", ErrCardNotFound, cardID)
	case errors.Is(err, repositories.ErrCardPlayerInvalid):
		return fmt.Errorf("%w: %v", ErrPlayerNotFound, err)
	case errors.Is(err, repositories.ErrCardGameInvalid):
		return fmt.Errorf("%w: %v", ErrGameNotFound, err)
	}
	return err
}
