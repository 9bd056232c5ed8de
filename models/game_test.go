package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDraftFromColumns(t *testing.T) {
	d, err := DraftFromColumns(nil, nil)
	require.NoError(t, err)
	assert.True(t, d.IsEmpty())

	d, err = DraftFromColumns([]byte(`{"formation":"4-4-2"}`), nil)
	require.NoError(t, err)
	assert.Equal(t, DraftLineup, d.Kind)
	assert.JSONEq(t, `"4-4-2"`, string(d.Data["formation"]))

	d, err = DraftFromColumns(nil, []byte(`{}`))
	require.NoError(t, err)
	assert.Equal(t, DraftReport, d.Kind)

	_, err = DraftFromColumns([]byte(`{}`), []byte(`{}`))
	assert.Error(t, err)

	_, err = DraftFromColumns([]byte(`[1]`), nil)
	assert.Error(t, err)
}

func TestGameMarshalJSON_InactiveSlotIsNull(t *testing.T) {
	game := Game{
		ID:     4,
		Status: GameStatusPlayed,
		Draft:  Draft{Kind: DraftReport, Data: map[string]json.RawMessage{"finalScore": json.RawMessage(`{"ourScore":1}`)}},
	}

	raw, err := json.Marshal(game)
	require.NoError(t, err)

	var out map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, "null", string(out["lineup_draft"]))
	assert.JSONEq(t, `{"finalScore":{"ourScore":1}}`, string(out["report_draft"]))
	assert.JSONEq(t, `"played"`, string(out["status"]))
}

func TestGameClone_DoesNotShareDraft(t *testing.T) {
	game := &Game{Draft: Draft{Kind: DraftLineup, Data: map[string]json.RawMessage{"formation": json.RawMessage(`"4-4-2"`)}}}

	clone := game.Clone()
	clone.Draft.Data["formation"] = json.RawMessage(`"3-5-2"`)

	assert.JSONEq(t, `"4-4-2"`, string(game.Draft.Data["formation"]))
}

func TestCardType(t *testing.T) {
	assert.True(t, CardRed.IsSendingOff())
	assert.True(t, CardSecondYellow.IsSendingOff())
	assert.False(t, CardYellow.IsSendingOff())
	assert.False(t, CardType("green").IsValid())
}

func TestGameFormat(t *testing.T) {
	n, ok := Format9v9.StartersRequired()
	assert.True(t, ok)
	assert.Equal(t, 9, n)
	assert.Equal(t, 60, Format9v9.MatchLength())

	_, ok = GameFormat("3v3").StartersRequired()
	assert.False(t, ok)
}
