package models

import (
	"encoding/json"
	"time"
)

// GameStatus соответствует ENUM game_status в БД.
type GameStatus string

const (
	GameStatusScheduled GameStatus = "scheduled"
	GameStatusPlayed    GameStatus = "played"
	GameStatusDone      GameStatus = "done"
	GameStatusPostponed GameStatus = "postponed"
)

func (s GameStatus) IsValid() bool {
	switch s {
	case GameStatusScheduled, GameStatusPlayed, GameStatusDone, GameStatusPostponed:
		return true
	}
	return false
}

// GameFormat is the number of players per side, e.g. "11v11".
type GameFormat string

const (
	Format5v5   GameFormat = "5v5"
	Format7v7   GameFormat = "7v7"
	Format9v9   GameFormat = "9v9"
	Format11v11 GameFormat = "11v11"
)

// StartersRequired returns how many players must be marked as starters for the format.
func (f GameFormat) StartersRequired() (int, bool) {
	switch f {
	case Format5v5:
		return 5, true
	case Format7v7:
		return 7, true
	case Format9v9:
		return 9, true
	case Format11v11:
		return 11, true
	}
	return 0, false
}

// MatchLength returns the regulation length of a game in minutes.
func (f GameFormat) MatchLength() int {
	switch f {
	case Format5v5:
		return 40
	case Format7v7:
		return 50
	case Format9v9:
		return 60
	default:
		return 90
	}
}

type Game struct {
	ID        int        `json:"id" db:"id"`
	TeamID    int        `json:"team_id" db:"team_id"`
	Opponent  string     `json:"opponent" db:"opponent"`
	Location  *string    `json:"location,omitempty" db:"location"`
	KickoffAt time.Time  `json:"kickoff_at" db:"kickoff_at"`
	Format    GameFormat `json:"format" db:"format"`
	Status    GameStatus `json:"status" db:"status"`
	Formation *string    `json:"formation,omitempty" db:"formation"`

	// Draft is the single autosave slot; which one is active is encoded in Draft.Kind.
	Draft Draft `json:"-" db:"-"`

	OurScore        *int    `json:"our_score" db:"our_score"`
	OpponentScore   *int    `json:"opponent_score" db:"opponent_score"`
	DefenseSummary  *string `json:"defense_summary" db:"defense_summary"`
	MidfieldSummary *string `json:"midfield_summary" db:"midfield_summary"`
	AttackSummary   *string `json:"attack_summary" db:"attack_summary"`
	GeneralSummary  *string `json:"general_summary" db:"general_summary"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`

	Rosters []RosterEntry `json:"rosters,omitempty" db:"-"`
}

// Clone returns a copy that does not share the draft map with g.
func (g *Game) Clone() *Game {
	if g == nil {
		return nil
	}
	c := *g
	c.Draft = g.Draft.Clone()
	if g.Rosters != nil {
		c.Rosters = append([]RosterEntry(nil), g.Rosters...)
	}
	return &c
}

// LineupDraftJSON returns the lineup slot as stored in the lineup_draft column.
func (g *Game) LineupDraftJSON() (json.RawMessage, error) {
	if g.Draft.Kind != DraftLineup {
		return nil, nil
	}
	return g.Draft.MarshalData()
}

// ReportDraftJSON returns the report slot as stored in the report_draft column.
func (g *Game) ReportDraftJSON() (json.RawMessage, error) {
	if g.Draft.Kind != DraftReport {
		return nil, nil
	}
	return g.Draft.MarshalData()
}

// MarshalJSON exposes both slots, the inactive one always null.
func (g Game) MarshalJSON() ([]byte, error) {
	type plain Game
	out := struct {
		plain
		LineupDraft json.RawMessage `json:"lineup_draft"`
		ReportDraft json.RawMessage `json:"report_draft"`
	}{plain: plain(g)}

	var err error
	if out.LineupDraft, err = g.LineupDraftJSON(); err != nil {
		return nil, err
	}
	if out.ReportDraft, err = g.ReportDraftJSON(); err != nil {
		return nil, err
	}
	if out.LineupDraft == nil {
		out.LineupDraft = json.RawMessage("null")
	}
	if out.ReportDraft == nil {
		out.ReportDraft = json.RawMessage("null")
	}
	return json.Marshal(out)
}
