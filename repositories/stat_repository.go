package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Dosada05/team-manager/models"
)

type PlayerMatchStatRepository interface {
	// ReplaceMinutes overwrites minutes_played for every stat row of the game.
	ReplaceMinutes(ctx context.Context, exec SQLExecutor, gameID int, stats []models.PlayerMatchStat) error
	ListByGame(ctx context.Context, gameID int) ([]models.PlayerMatchStat, error)
}

type postgresPlayerMatchStatRepository struct {
	db *sql.DB
}

func NewPostgresPlayerMatchStatRepository(db *sql.DB) PlayerMatchStatRepository {
	return &postgresPlayerMatchStatRepository{db: db}
}

func (r *postgresPlayerMatchStatRepository) ReplaceMinutes(ctx context.Context, exec SQLExecutor, gameID int, stats []models.PlayerMatchStat) error {
	executor := getExecutor(r.db, exec)

	if _, err := executor.ExecContext(ctx, `UPDATE player_match_stats SET minutes_played = 0, updated_at = NOW() WHERE game_id = $1`, gameID); err != nil {
		return fmt.Errorf("failed to reset minutes for game %d: %w", gameID, err)
	}

	query := `
		INSERT INTO player_match_stats (game_id, player_id, minutes_played)
		VALUES ($1, $2, $3)
		ON CONFLICT (game_id, player_id)
		DO UPDATE SET minutes_played = EXCLUDED.minutes_played, updated_at = NOW()`

	for _, stat := range stats {
		if _, err := executor.ExecContext(ctx, query, gameID, stat.PlayerID, stat.MinutesPlayed); err != nil {
			return fmt.Errorf("failed to upsert minutes for player %d in game %d: %w", stat.PlayerID, gameID, err)
		}
	}
	return nil
}

func (r *postgresPlayerMatchStatRepository) ListByGame(ctx context.Context, gameID int) ([]models.PlayerMatchStat, error) {
	query := `
		SELECT game_id, player_id, minutes_played, updated_at
		FROM player_match_stats
		WHERE game_id = $1
		ORDER BY player_id ASC`

	rows, err := r.db.QueryContext(ctx, query, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to query stats for game %d: %w", gameID, err)
	}
	defer rows.Close()

	stats := make([]models.PlayerMatchStat, 0)
	for rows.Next() {
		var s models.PlayerMatchStat
		if scanErr := rows.Scan(&s.GameID, &s.PlayerID, &s.MinutesPlayed, &s.UpdatedAt); scanErr != nil {
			return nil, fmt.Errorf("failed to scan stat row: %w", scanErr)
		}
		stats = append(stats, s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during stat rows iteration: %w", err)
	}
	return stats, nil
}
