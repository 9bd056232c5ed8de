package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/team-manager/models"
	"github.com/lib/pq"
)

var (
	ErrCardNotFound      = errors.New("card not found")
	ErrCardGameInvalid   = errors.New("card game conflict or invalid")
	ErrCardPlayerInvalid = errors.New("card player conflict or invalid")
)

type CardRepository interface {
	Create(ctx context.Context, exec SQLExecutor, card *models.Card) error
	GetForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Card, error)
	Update(ctx context.Context, exec SQLExecutor, card *models.Card) error
	Delete(ctx context.Context, exec SQLExecutor, id int) error
	ListByGame(ctx context.Context, gameID int) ([]*models.Card, error)
}

type postgresCardRepository struct {
	db *sql.DB
}

func NewPostgresCardRepository(db *sql.DB) CardRepository {
	return &postgresCardRepository{db: db}
}

func (r *postgresCardRepository) Create(ctx context.Context, exec SQLExecutor, card *models.Card) error {
	query := `
		INSERT INTO cards (game_id, player_id, card_type, minute)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`

	err := getExecutor(r.db, exec).QueryRowContext(ctx, query,
		card.GameID,
		card.PlayerID,
		card.CardType,
		card.Minute,
	).Scan(&card.ID, &card.CreatedAt, &card.UpdatedAt)

	return r.handleCardError(err)
}

func (r *postgresCardRepository) GetForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Card, error) {
	query := `
		SELECT id, game_id, player_id, card_type, minute, created_at, updated_at
		FROM cards
		WHERE id = $1
		FOR UPDATE`

	card := &models.Card{}
	err := getExecutor(r.db, exec).QueryRowContext(ctx, query, id).Scan(
		&card.ID,
		&card.GameID,
		&card.PlayerID,
		&card.CardType,
		&card.Minute,
		&card.CreatedAt,
		&card.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCardNotFound
		}
		return nil, fmt.Errorf("failed to scan card by id %d: %w", id, err)
	}
	return card, nil
}

func (r *postgresCardRepository) Update(ctx context.Context, exec SQLExecutor, card *models.Card) error {
	query := `
		UPDATE cards
		SET card_type = $1, minute = $2, updated_at = NOW()
		WHERE id = $3
		RETURNING updated_at`

	err := getExecutor(r.db, exec).QueryRowContext(ctx, query, card.CardType, card.Minute, card.ID).Scan(&card.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrCardNotFound
	}
	return r.handleCardError(err)
}

func (r *postgresCardRepository) Delete(ctx context.Context, exec SQLExecutor, id int) error {
	result, err := getExecutor(r.db, exec).ExecContext(ctx, `DELETE FROM cards WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete card %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrCardNotFound)
}

func (r *postgresCardRepository) ListByGame(ctx context.Context, gameID int) ([]*models.Card, error) {
	query := `
		SELECT id, game_id, player_id, card_type, minute, created_at, updated_at
		FROM cards
		WHERE game_id = $1
		ORDER BY minute ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to query cards for game %d: %w", gameID, err)
	}
	defer rows.Close()

	cards := make([]*models.Card, 0)
	for rows.Next() {
		var card models.Card
		if scanErr := rows.Scan(
			&card.ID,
			&card.GameID,
			&card.PlayerID,
			&card.CardType,
			&card.Minute,
			&card.CreatedAt,
			&card.UpdatedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan card row: %w", scanErr)
		}
		cards = append(cards, &card)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during card rows iteration: %w", err)
	}
	return cards, nil
}

func (r *postgresCardRepository) handleCardError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23503" { // foreign_key_violation
		switch pqErr.Constraint {
		case "cards_game_id_fkey":
			return ErrCardGameInvalid
		case "cards_player_id_fkey":
			return ErrCardPlayerInvalid
		}
	}
	return fmt.Errorf("card repository: %w", err)
}
