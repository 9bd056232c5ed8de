package models

import (
	"encoding/json"
	"fmt"
)

// DraftKind tags which slot of a game currently holds autosaved data.
type DraftKind string

const (
	DraftNone   DraftKind = "none"
	DraftLineup DraftKind = "lineup"
	DraftReport DraftKind = "report"
)

// Draft is a tagged union: {kind: none} | {kind: lineup, data} | {kind: report, data}.
// Data keeps top-level keys raw so a partial update can replace a key wholesale
// without interpreting nested values.
type Draft struct {
	Kind DraftKind                  `json:"kind"`
	Data map[string]json.RawMessage `json:"data,omitempty"`
}

func NoDraft() Draft {
	return Draft{Kind: DraftNone}
}

func (d Draft) IsEmpty() bool {
	return d.Kind == "" || d.Kind == DraftNone
}

func (d Draft) Clone() Draft {
	if d.Data == nil {
		return Draft{Kind: d.Kind}
	}
	data := make(map[string]json.RawMessage, len(d.Data))
	for k, v := range d.Data {
		data[k] = append(json.RawMessage(nil), v...)
	}
	return Draft{Kind: d.Kind, Data: data}
}

// MarshalData encodes the slot payload. An active slot with no keys is "{}".
func (d Draft) MarshalData() (json.RawMessage, error) {
	if d.IsEmpty() {
		return nil, nil
	}
	if d.Data == nil {
		return json.RawMessage("{}"), nil
	}
	b, err := json.Marshal(d.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s draft: %w", d.Kind, err)
	}
	return b, nil
}

// DraftFromColumns rebuilds the union from the two nullable jsonb columns.
func DraftFromColumns(lineup, report []byte) (Draft, error) {
	if len(lineup) > 0 && len(report) > 0 {
		return Draft{}, fmt.Errorf("game has both lineup and report drafts set")
	}
	switch {
	case len(lineup) > 0:
		return decodeDraft(DraftLineup, lineup)
	case len(report) > 0:
		return decodeDraft(DraftReport, report)
	}
	return NoDraft(), nil
}

func decodeDraft(kind DraftKind, raw []byte) (Draft, error) {
	data := map[string]json.RawMessage{}
	if err := json.Unmarshal(raw, &data); err != nil {
		return Draft{}, fmt.Errorf("failed to decode %s draft: %w", kind, err)
	}
	return Draft{Kind: kind, Data: data}, nil
}

// RosterStatus is the assignment of a player for one game.
type RosterStatus string

const (
	RosterStarting    RosterStatus = "Starting Lineup"
	RosterBench       RosterStatus = "Bench"
	RosterUnavailable RosterStatus = "Unavailable"
	RosterNotInSquad  RosterStatus = "Not in Squad"
)

func (s RosterStatus) IsValid() bool {
	switch s {
	case RosterStarting, RosterBench, RosterUnavailable, RosterNotInSquad:
		return true
	}
	return false
}

// LineupDraft is the typed view of a lineup slot.
type LineupDraft struct {
	Rosters   map[string]RosterStatus `json:"rosters,omitempty"`
	Formation string                  `json:"formation,omitempty"`
}

type TeamSummary struct {
	DefenseSummary  string `json:"defenseSummary"`
	MidfieldSummary string `json:"midfieldSummary"`
	AttackSummary   string `json:"attackSummary"`
	GeneralSummary  string `json:"generalSummary"`
}

type FinalScore struct {
	OurScore      *int `json:"ourScore"`
	OpponentScore *int `json:"opponentScore"`
}

// ReportDraft is the typed view of a report slot.
type ReportDraft struct {
	TeamSummary      *TeamSummary               `json:"teamSummary,omitempty"`
	FinalScore       *FinalScore                `json:"finalScore,omitempty"`
	PlayerMatchStats map[string]json.RawMessage `json:"playerMatchStats,omitempty"`
}

// Decode unmarshals the draft's data into dst.
func (d Draft) Decode(dst interface{}) error {
	raw, err := d.MarshalData()
	if err != nil {
		return err
	}
	if raw == nil {
		raw = json.RawMessage("{}")
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("failed to decode %s draft: %w", d.Kind, err)
	}
	return nil
}
