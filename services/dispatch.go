package services

import "github.com/Dosada05/team-manager/models"

type CardMutation string

const (
	CardCreated CardMutation = "created"
	CardUpdated CardMutation = "updated"
	CardDeleted CardMutation = "deleted"
)

// CardEvent describes one write to a card. OldType is set for updates and
// deletes, NewType for creates and updates.
type CardEvent struct {
	Mutation CardMutation
	GameID   int
	OldType  models.CardType
	NewType  models.CardType
}

// ClassifyCardMutation reports whether the event adds, moves or removes a sending-off,
// which invalidates the minutes played in the game.
func ClassifyCardMutation(e CardEvent) bool {
	switch e.Mutation {
	case CardCreated:
		return e.NewType.IsSendingOff()
	case CardDeleted:
		return e.OldType.IsSendingOff()
	case CardUpdated:
		return e.OldType.IsSendingOff() || e.NewType.IsSendingOff()
	}
	return false
}

// OnCardMutation returns the job the event requires, or nil.
func OnCardMutation(e CardEvent) *models.Job {
	if !ClassifyCardMutation(e) {
		return nil
	}
	return models.NewRecalcMinutesJob(e.GameID)
}
