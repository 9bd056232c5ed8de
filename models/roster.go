package models

import "time"

type RosterEntry struct {
	GameID    int          `json:"game_id" db:"game_id"`
	PlayerID  int          `json:"player_id" db:"player_id"`
	Status    RosterStatus `json:"status" db:"status"`
	CreatedAt time.Time    `json:"created_at" db:"created_at"`
}

type PlayerMatchStat struct {
	GameID        int       `json:"game_id" db:"game_id"`
	PlayerID      int       `json:"player_id" db:"player_id"`
	MinutesPlayed int       `json:"minutes_played" db:"minutes_played"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}
