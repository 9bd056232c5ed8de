package models

import "time"

type Team struct {
	ID        int       `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CoachID   int       `json:"coach_id" db:"coach_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type Player struct {
	ID          int       `json:"id" db:"id"`
	TeamID      int       `json:"team_id" db:"team_id"`
	FirstName   string    `json:"first_name" db:"first_name"`
	LastName    string    `json:"last_name" db:"last_name"`
	ShirtNumber *int      `json:"shirt_number,omitempty" db:"shirt_number"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
