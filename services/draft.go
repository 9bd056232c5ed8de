package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/Dosada05/team-manager/models"
)

const opWriteDraft = "write draft"

// DraftView is what a client sees of a game's autosave slot.
type DraftView struct {
	GameID  int               `json:"game_id"`
	Status  models.GameStatus `json:"status"`
	Slot    models.DraftKind  `json:"slot"`
	Payload json.RawMessage   `json:"payload"`
}

// DraftPatch is a partial draft: only its top-level keys are written.
type DraftPatch map[string]json.RawMessage

// ParseDraftPatch decodes a request body into a patch. Anything but a JSON object is rejected.
func ParseDraftPatch(body []byte) (DraftPatch, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, ErrInvalidDraft
	}
	patch := DraftPatch{}
	if err := json.Unmarshal(trimmed, &patch); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDraft, err)
	}
	return patch, nil
}

// slotForStatus maps a status to the only draft slot it may hold.
func slotForStatus(status models.GameStatus) models.DraftKind {
	switch status {
	case models.GameStatusScheduled:
		return models.DraftLineup
	case models.GameStatusPlayed:
		return models.DraftReport
	default:
		return models.DraftNone
	}
}

// ReadDraft derives the active slot from the status and returns its payload.
func ReadDraft(game *models.Game) (DraftView, error) {
	view := DraftView{
		GameID:  game.ID,
		Status:  game.Status,
		Slot:    slotForStatus(game.Status),
		Payload: json.RawMessage("null"),
	}
	if view.Slot == models.DraftNone || game.Draft.Kind != view.Slot {
		return view, nil
	}
	raw, err := game.Draft.MarshalData()
	if err != nil {
		return DraftView{}, err
	}
	view.Payload = raw
	return view, nil
}

// MergeDraft is a one-level merge: keys in patch replace existing keys wholesale,
// keys absent from patch survive unchanged. Neither argument is modified.
func MergeDraft(existing map[string]json.RawMessage, patch DraftPatch) map[string]json.RawMessage {
	merged := make(map[string]json.RawMessage, len(existing)+len(patch))
	for k, v := range existing {
		merged[k] = v
	}
	for k, v := range patch {
		merged[k] = append(json.RawMessage(nil), v...)
	}
	return merged
}

// WriteDraft merges patch into the slot selected by the game's status and returns
// the updated copy. The input game is never modified.
func WriteDraft(game *models.Game, patch DraftPatch) (*models.Game, error) {
	slot := slotForStatus(game.Status)
	if slot == models.DraftNone {
		return nil, &InvalidStatusError{Op: opWriteDraft, Status: game.Status}
	}

	var existing map[string]json.RawMessage
	if game.Draft.Kind == slot {
		existing = game.Draft.Data
	}

	next := game.Clone()
	next.Draft = models.Draft{Kind: slot, Data: MergeDraft(existing, patch)}

	if err := validateDraft(next.Draft); err != nil {
		return nil, err
	}
	return next, nil
}

// ClearDraft nulls the named slot. Clearing an inactive or empty slot is a no-op.
func ClearDraft(game *models.Game, slot models.DraftKind) {
	if slot == models.DraftNone || game.Draft.Kind != slot {
		return
	}
	game.Draft = models.NoDraft()
}

func validateDraft(d models.Draft) error {
	switch d.Kind {
	case models.DraftLineup:
		var lineup models.LineupDraft
		if err := d.Decode(&lineup); err != nil {
			return fmt.Errorf("%w: lineup draft: %v", ErrValidationFailed, err)
		}
		for playerKey, status := range lineup.Rosters {
			if !status.IsValid() {
				return fmt.Errorf("%w: unknown roster status %q for player %s", ErrValidationFailed, status, playerKey)
			}
		}
	case models.DraftReport:
		var report models.ReportDraft
		if err := d.Decode(&report); err != nil {
			return fmt.Errorf("%w: report draft: %v", ErrValidationFailed, err)
		}
		if report.FinalScore != nil {
			if isNegative(report.FinalScore.OurScore) || isNegative(report.FinalScore.OpponentScore) {
				return fmt.Errorf("%w: scores cannot be negative", ErrValidationFailed)
			}
		}
	}
	return nil
}

func parsePlayerKey(key string) (int, error) {
	id, err := strconv.Atoi(key)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid player id %q in rosters", ErrValidationFailed, key)
	}
	return id, nil
}

func isNegative(v *int) bool {
	return v != nil && *v < 0
}
