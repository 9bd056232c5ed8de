package models

import "time"

type CardType string

const (
	CardYellow       CardType = "yellow"
	CardRed          CardType = "red"
	CardSecondYellow CardType = "second-yellow"
)

func (t CardType) IsValid() bool {
	switch t {
	case CardYellow, CardRed, CardSecondYellow:
		return true
	}
	return false
}

// IsSendingOff reports whether the card removes the player from play.
func (t CardType) IsSendingOff() bool {
	return t == CardRed || t == CardSecondYellow
}

type Card struct {
	ID        int       `json:"id" db:"id"`
	GameID    int       `json:"game_id" db:"game_id"`
	PlayerID  int       `json:"player_id" db:"player_id"`
	CardType  CardType  `json:"card_type" db:"card_type"`
	Minute    int       `json:"minute" db:"minute"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
