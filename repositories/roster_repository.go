package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/team-manager/models"
	"github.com/lib/pq"
)

var ErrRosterPlayerInvalid = errors.New("roster player conflict or invalid")

type RosterRepository interface {
	// ReplaceForGame drops the game's roster rows and inserts entries in their place.
	ReplaceForGame(ctx context.Context, exec SQLExecutor, gameID int, entries []models.RosterEntry) error
	ListByGame(ctx context.Context, gameID int) ([]models.RosterEntry, error)
}

type postgresRosterRepository struct {
	db *sql.DB
}

func NewPostgresRosterRepository(db *sql.DB) RosterRepository {
	return &postgresRosterRepository{db: db}
}

func (r *postgresRosterRepository) ReplaceForGame(ctx context.Context, exec SQLExecutor, gameID int, entries []models.RosterEntry) error {
	executor := getExecutor(r.db, exec)

	if _, err := executor.ExecContext(ctx, `DELETE FROM game_rosters WHERE game_id = $1`, gameID); err != nil {
		return fmt.Errorf("failed to clear roster for game %d: %w", gameID, err)
	}

	query := `INSERT INTO game_rosters (game_id, player_id, status) VALUES ($1, $2, $3)`
	for _, entry := range entries {
		if _, err := executor.ExecContext(ctx, query, gameID, entry.PlayerID, entry.Status); err != nil {
			var pqErr *pq.Error
			if errors.As(err, &pqErr) && pqErr.Code == "23503" && pqErr.Constraint == "game_rosters_player_id_fkey" {
				return fmt.Errorf("%w: player %d", ErrRosterPlayerInvalid, entry.PlayerID)
			}
			return fmt.Errorf("failed to insert roster entry for player %d: %w", entry.PlayerID, err)
		}
	}
	return nil
}

func (r *postgresRosterRepository) ListByGame(ctx context.Context, gameID int) ([]models.RosterEntry, error) {
	query := `
		SELECT game_id, player_id, status, created_at
		FROM game_rosters
		WHERE game_id = $1
		ORDER BY player_id ASC`

	rows, err := r.db.QueryContext(ctx, query, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to query roster for game %d: %w", gameID, err)
	}
	defer rows.Close()

	entries := make([]models.RosterEntry, 0)
	for rows.Next() {
		var entry models.RosterEntry
		if scanErr := rows.Scan(&entry.GameID, &entry.PlayerID, &entry.Status, &entry.CreatedAt); scanErr != nil {
			return nil, fmt.Errorf("failed to scan roster row: %w", scanErr)
		}
		entries = append(entries, entry)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during roster rows iteration: %w", err)
	}
	return entries, nil
}
