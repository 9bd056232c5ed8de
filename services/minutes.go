package services

import (
	"sort"

	"github.com/Dosada05/team-manager/models"
)

// ComputeMinutes derives minutes played from the roster and the cards of a game.
// Starters play the full match length unless sent off, in which case they play
// until the earliest sending-off minute. Everyone else plays 0.
func ComputeMinutes(game *models.Game, rosters []models.RosterEntry, cards []*models.Card) []models.PlayerMatchStat {
	matchLength := game.Format.MatchLength()

	sentOffAt := make(map[int]int)
	for _, c := range cards {
		if !c.CardType.IsSendingOff() {
			continue
		}
		if m, ok := sentOffAt[c.PlayerID]; !ok || c.Minute < m {
			sentOffAt[c.PlayerID] = c.Minute
		}
	}

	stats := make([]models.PlayerMatchStat, 0, len(rosters))
	for _, r := range rosters {
		minutes := 0
		if r.Status == models.RosterStarting {
			minutes = matchLength
			if m, ok := sentOffAt[r.PlayerID]; ok && m < minutes {
				minutes = m
			}
		}
		stats = append(stats, models.PlayerMatchStat{
			GameID:        game.ID,
			PlayerID:      r.PlayerID,
			MinutesPlayed: minutes,
		})
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].PlayerID < stats[j].PlayerID })
	return stats
}
