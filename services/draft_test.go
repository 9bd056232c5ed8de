package services

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/Dosada05/team-manager/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scheduledGame() *models.Game {
	return &models.Game{ID: 1, TeamID: 10, Opponent: "Rovers", Format: models.Format5v5, Status: models.GameStatusScheduled, Draft: models.NoDraft()}
}

func mustPatch(t *testing.T, body string) DraftPatch {
	t.Helper()
	patch, err := ParseDraftPatch([]byte(body))
	require.NoError(t, err)
	return patch
}

func TestParseDraftPatch(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{name: "object", body: `{"formation":"4-4-2"}`},
		{name: "empty object", body: ` {} `},
		{name: "array", body: `[1,2]`, wantErr: true},
		{name: "string", body: `"lineup"`, wantErr: true},
		{name: "null", body: `null`, wantErr: true},
		{name: "empty", body: ``, wantErr: true},
		{name: "broken object", body: `{"formation":`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDraftPatch([]byte(tt.body))
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidDraft)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestWriteDraft_ScheduledGoesToLineupSlot(t *testing.T) {
	game := scheduledGame()

	next, err := WriteDraft(game, mustPatch(t, `{"rosters":{"p1":"Bench"}}`))
	require.NoError(t, err)
	assert.Equal(t, models.DraftLineup, next.Draft.Kind)

	raw, err := next.ReportDraftJSON()
	require.NoError(t, err)
	assert.Nil(t, raw)

	// исходная игра не изменилась
	assert.Equal(t, models.DraftNone, game.Draft.Kind)
}

func TestWriteDraft_PlayedGoesToReportSlot(t *testing.T) {
	game := scheduledGame()
	game.Status = models.GameStatusPlayed

	next, err := WriteDraft(game, mustPatch(t, `{"finalScore":{"ourScore":2,"opponentScore":1}}`))
	require.NoError(t, err)
	assert.Equal(t, models.DraftReport, next.Draft.Kind)

	raw, err := next.LineupDraftJSON()
	require.NoError(t, err)
	assert.Nil(t, raw)
}

func TestWriteDraft_RejectedForClosedStatuses(t *testing.T) {
	for _, status := range []models.GameStatus{models.GameStatusDone, models.GameStatusPostponed} {
		t.Run(string(status), func(t *testing.T) {
			game := scheduledGame()
			game.Status = status

			next, err := WriteDraft(game, mustPatch(t, `{"formation":"4-4-2"}`))
			assert.Nil(t, next)

			var statusErr *InvalidStatusError
			require.True(t, errors.As(err, &statusErr))
			assert.Equal(t, status, statusErr.Status)
			assert.ErrorIs(t, err, ErrInvalidStatus)
			assert.Contains(t, err.Error(), string(status))
		})
	}
}

func TestWriteDraft_MergesTopLevelKeys(t *testing.T) {
	game := scheduledGame()

	first, err := WriteDraft(game, mustPatch(t, `{"rosters":{"p1":"Bench"}}`))
	require.NoError(t, err)
	second, err := WriteDraft(first, mustPatch(t, `{"formation":"4-4-2"}`))
	require.NoError(t, err)

	view, err := ReadDraft(second)
	require.NoError(t, err)
	assert.JSONEq(t, `{"rosters":{"p1":"Bench"},"formation":"4-4-2"}`, string(view.Payload))
}

func TestWriteDraft_ReplacesNestedValueWholesale(t *testing.T) {
	game := scheduledGame()

	first, err := WriteDraft(game, mustPatch(t, `{"rosters":{"p1":"Bench","p2":"Starting Lineup"}}`))
	require.NoError(t, err)
	second, err := WriteDraft(first, mustPatch(t, `{"rosters":{"p3":"Unavailable"}}`))
	require.NoError(t, err)

	view, err := ReadDraft(second)
	require.NoError(t, err)
	assert.JSONEq(t, `{"rosters":{"p3":"Unavailable"}}`, string(view.Payload))
}

func TestWriteDraft_EmptyPatchActivatesSlot(t *testing.T) {
	next, err := WriteDraft(scheduledGame(), DraftPatch{})
	require.NoError(t, err)

	view, err := ReadDraft(next)
	require.NoError(t, err)
	assert.Equal(t, models.DraftLineup, view.Slot)
	assert.JSONEq(t, `{}`, string(view.Payload))
}

func TestWriteDraft_ValidatesKnownKeys(t *testing.T) {
	_, err := WriteDraft(scheduledGame(), mustPatch(t, `{"rosters":{"p1":"Captain"}}`))
	assert.ErrorIs(t, err, ErrValidationFailed)

	played := scheduledGame()
	played.Status = models.GameStatusPlayed
	_, err = WriteDraft(played, mustPatch(t, `{"finalScore":{"ourScore":-1}}`))
	assert.ErrorIs(t, err, ErrValidationFailed)

	// неизвестные ключи сохраняются как есть
	next, err := WriteDraft(played, mustPatch(t, `{"notes":["left wing tired"]}`))
	require.NoError(t, err)
	assert.JSONEq(t, `["left wing tired"]`, string(next.Draft.Data["notes"]))
}

func TestReadDraft(t *testing.T) {
	t.Run("no draft yet", func(t *testing.T) {
		view, err := ReadDraft(scheduledGame())
		require.NoError(t, err)
		assert.Equal(t, models.DraftLineup, view.Slot)
		assert.Equal(t, "null", string(view.Payload))
	})

	t.Run("done has no slot", func(t *testing.T) {
		game := scheduledGame()
		game.Status = models.GameStatusDone
		view, err := ReadDraft(game)
		require.NoError(t, err)
		assert.Equal(t, models.DraftNone, view.Slot)
		assert.Equal(t, "null", string(view.Payload))
	})

	t.Run("stale slot is hidden", func(t *testing.T) {
		game := scheduledGame()
		game.Status = models.GameStatusPlayed
		game.Draft = models.Draft{Kind: models.DraftLineup, Data: map[string]json.RawMessage{"formation": json.RawMessage(`"4-3-3"`)}}
		view, err := ReadDraft(game)
		require.NoError(t, err)
		assert.Equal(t, models.DraftReport, view.Slot)
		assert.Equal(t, "null", string(view.Payload))
	})
}

func TestMergeDraft_DoesNotModifyArguments(t *testing.T) {
	existing := map[string]json.RawMessage{"a": json.RawMessage(`1`)}
	patch := DraftPatch{"b": json.RawMessage(`2`)}

	merged := MergeDraft(existing, patch)

	assert.Len(t, merged, 2)
	assert.Len(t, existing, 1)
	assert.Len(t, patch, 1)
}

func TestClearDraft(t *testing.T) {
	game := scheduledGame()
	game.Draft = models.Draft{Kind: models.DraftLineup, Data: map[string]json.RawMessage{}}

	ClearDraft(game, models.DraftReport)
	assert.Equal(t, models.DraftLineup, game.Draft.Kind)

	ClearDraft(game, models.DraftLineup)
	assert.True(t, game.Draft.IsEmpty())

	ClearDraft(game, models.DraftLineup)
	assert.True(t, game.Draft.IsEmpty())
}
