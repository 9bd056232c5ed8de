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
	ErrGameNotFound      = errors.New("game not found")
	ErrGameTeamInvalid   = errors.New("game team conflict or invalid")
	ErrGameDraftsClash   = errors.New("game draft does not match its status or both drafts are set")
	ErrGameStatusInvalid = errors.New("game status is not a valid game_status value")
)

type GameRepository interface {
	Create(ctx context.Context, game *models.Game) error
	GetByID(ctx context.Context, id int) (*models.Game, error)
	// GetForUpdate loads the game and locks its row until exec's transaction ends.
	GetForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Game, error)
	Update(ctx context.Context, exec SQLExecutor, game *models.Game) error
	ListByTeam(ctx context.Context, teamID int, status *models.GameStatus) ([]*models.Game, error)
}

type postgresGameRepository struct {
	db *sql.DB
}

func NewPostgresGameRepository(db *sql.DB) GameRepository {
	return &postgresGameRepository{db: db}
}

const gameColumns = `
	id, team_id, opponent, location, kickoff_at, format, status, formation,
	lineup_draft, report_draft,
	our_score, opponent_score, defense_summary, midfield_summary, attack_summary, general_summary,
	created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanGame(row rowScanner) (*models.Game, error) {
	var game models.Game
	var lineupDraft, reportDraft []byte

	err := row.Scan(
		&game.ID,
		&game.TeamID,
		&game.Opponent,
		&game.Location,
		&game.KickoffAt,
		&game.Format,
		&game.Status,
		&game.Formation,
		&lineupDraft,
		&reportDraft,
		&game.OurScore,
		&game.OpponentScore,
		&game.DefenseSummary,
		&game.MidfieldSummary,
		&game.AttackSummary,
		&game.GeneralSummary,
		&game.CreatedAt,
		&game.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	draft, err := models.DraftFromColumns(lineupDraft, reportDraft)
	if err != nil {
		return nil, fmt.Errorf("game %d: %w", game.ID, err)
	}
	game.Draft = draft
	return &game, nil
}

func (r *postgresGameRepository) Create(ctx context.Context, game *models.Game) error {
	query := `
		INSERT INTO games (team_id, opponent, location, kickoff_at, format, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		game.TeamID,
		game.Opponent,
		game.Location,
		game.KickoffAt,
		game.Format,
		game.Status,
	).Scan(&game.ID, &game.CreatedAt, &game.UpdatedAt)

	return r.handleGameError(err)
}

func (r *postgresGameRepository) GetByID(ctx context.Context, id int) (*models.Game, error) {
	query := `SELECT` + gameColumns + ` FROM games WHERE id = $1`

	game, err := scanGame(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGameNotFound
		}
		return nil, fmt.Errorf("failed to scan game by id %d: %w", id, err)
	}
	return game, nil
}

func (r *postgresGameRepository) GetForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Game, error) {
	query := `SELECT` + gameColumns + ` FROM games WHERE id = $1 FOR UPDATE`

	game, err := scanGame(getExecutor(r.db, exec).QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGameNotFound
		}
		return nil, fmt.Errorf("failed to lock game %d: %w", id, err)
	}
	return game, nil
}

func (r *postgresGameRepository) Update(ctx context.Context, exec SQLExecutor, game *models.Game) error {
	lineupDraft, err := game.LineupDraftJSON()
	if err != nil {
		return err
	}
	reportDraft, err := game.ReportDraftJSON()
	if err != nil {
		return err
	}

	query := `
		UPDATE games
		SET status = $1, formation = $2, lineup_draft = $3, report_draft = $4,
		    our_score = $5, opponent_score = $6,
		    defense_summary = $7, midfield_summary = $8, attack_summary = $9, general_summary = $10,
		    updated_at = NOW()
		WHERE id = $11
		RETURNING updated_at`

	err = getExecutor(r.db, exec).QueryRowContext(ctx, query,
		game.Status,
		game.Formation,
		nullableJSON(lineupDraft),
		nullableJSON(reportDraft),
		game.OurScore,
		game.OpponentScore,
		game.DefenseSummary,
		game.MidfieldSummary,
		game.AttackSummary,
		game.GeneralSummary,
		game.ID,
	).Scan(&game.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return ErrGameNotFound
	}
	return r.handleGameError(err)
}

func (r *postgresGameRepository) ListByTeam(ctx context.Context, teamID int, status *models.GameStatus) ([]*models.Game, error) {
	query := `SELECT` + gameColumns + ` FROM games WHERE team_id = $1`
	args := []interface{}{teamID}
	if status != nil {
		query += " AND status = $2"
		args = append(args, *status)
	}
	query += " ORDER BY kickoff_at ASC, id ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query games for team %d: %w", teamID, err)
	}
	defer rows.Close()

	games := make([]*models.Game, 0)
	for rows.Next() {
		game, scanErr := scanGame(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan game row: %w", scanErr)
		}
		games = append(games, game)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during game rows iteration: %w", err)
	}
	return games, nil
}

func (r *postgresGameRepository) handleGameError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23503": // foreign_key_violation
			if pqErr.Constraint == "games_team_id_fkey" {
				return ErrGameTeamInvalid
			}
		case "23514": // check_violation
			switch pqErr.Constraint {
			case "chk_single_draft", "chk_lineup_draft_status", "chk_report_draft_status":
				return ErrGameDraftsClash
			}
		case "22P02": // invalid_text_representation (enum)
			return ErrGameStatusInvalid
		}
	}
	return fmt.Errorf("game repository: %w", err)
}

// nullableJSON keeps Go nil as SQL NULL instead of an empty jsonb value.
func nullableJSON(raw []byte) interface{} {
	if raw == nil {
		return nil
	}
	return string(raw)
}
