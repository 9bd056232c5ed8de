package services

import (
	"context"
	"errors"
	"testing"

	"github.com/Dosada05/team-manager/models"
	"github.com/Dosada05/team-manager/realtime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cardFixture struct {
	cards    *fakeCardRepo
	jobs     *fakeJobRepo
	notifier *fakeNotifier
	hub      *recordingHub
	metrics  *recordingMetrics
	svc      CardService
}

func newCardFixture(cards ...*models.Card) *cardFixture {
	f := &cardFixture{
		cards:    newFakeCardRepo(cards...),
		jobs:     &fakeJobRepo{},
		notifier: &fakeNotifier{},
		hub:      &recordingHub{},
		metrics:  &recordingMetrics{},
	}
	games := newFakeGameRepo(gameWithStatus(1, models.GameStatusPlayed), gameWithStatus(2, models.GameStatusPlayed))
	players := newFakePlayerRepo(
		&models.Player{ID: 7, TeamID: 10, FirstName: "Ivan"},
		&models.Player{ID: 8, TeamID: 99, FirstName: "Petr"},
	)
	f.svc = NewCardService(&fakeTx{}, games, f.cards, players, f.jobs, f.notifier, f.hub, f.metrics, nil)
	return f
}

func TestCardService_CreateYellowEnqueuesNothing(t *testing.T) {
	f := newCardFixture()

	res, err := f.svc.Create(context.Background(), 1, CreateCardInput{PlayerID: 7, CardType: models.CardYellow, Minute: 12})
	require.NoError(t, err)
	assert.NotZero(t, res.Card.ID)
	assert.Nil(t, res.Job)
	assert.Empty(t, f.jobs.jobs)
	assert.Empty(t, f.notifier.notified)
	assert.Empty(t, f.hub.messages)
}

func TestCardService_CreateRedEnqueuesRecalc(t *testing.T) {
	f := newCardFixture()

	res, err := f.svc.Create(context.Background(), 1, CreateCardInput{PlayerID: 7, CardType: models.CardRed, Minute: 60})
	require.NoError(t, err)
	require.NotNil(t, res.Job)

	assert.Equal(t, models.JobTypeRecalcMinutes, res.Job.JobType)
	assert.Equal(t, 1, res.Job.Payload.GameID)
	require.Len(t, f.jobs.jobs, 1)
	assert.Equal(t, res.Job.ID, f.jobs.jobs[0].ID)
	assert.Len(t, f.notifier.notified, 1)
	assert.Equal(t, []string{models.JobTypeRecalcMinutes}, f.metrics.enqueued)

	require.Len(t, f.hub.messages, 1)
	msg := f.hub.messages[0].(realtime.Message)
	assert.Equal(t, realtime.TypeJobEnqueued, msg.Type)
	assert.Equal(t, realtime.GameRoom(1), msg.RoomID)
}

func TestCardService_NotifyFailureKeepsCard(t *testing.T) {
	f := newCardFixture()
	f.notifier.err = errors.New("redis down")

	res, err := f.svc.Create(context.Background(), 1, CreateCardInput{PlayerID: 7, CardType: models.CardSecondYellow, Minute: 70})
	require.NoError(t, err)
	assert.NotNil(t, res.Job)
	assert.Len(t, f.jobs.jobs, 1)
}

func TestCardService_JobInsertFailureFailsWrite(t *testing.T) {
	f := newCardFixture()
	f.jobs.err = errors.New("insert failed")

	_, err := f.svc.Create(context.Background(), 1, CreateCardInput{PlayerID: 7, CardType: models.CardRed, Minute: 70})
	require.Error(t, err)
	assert.Empty(t, f.notifier.notified)
	assert.Empty(t, f.metrics.enqueued)
}

func TestCardService_CreateValidation(t *testing.T) {
	tests := []struct {
		name    string
		gameID  int
		input   CreateCardInput
		wantErr error
	}{
		{"unknown type", 1, CreateCardInput{PlayerID: 7, CardType: "blue", Minute: 3}, ErrValidationFailed},
		{"negative minute", 1, CreateCardInput{PlayerID: 7, CardType: models.CardYellow, Minute: -1}, ErrValidationFailed},
		{"minute too large", 1, CreateCardInput{PlayerID: 7, CardType: models.CardYellow, Minute: 151}, ErrValidationFailed},
		{"missing player", 1, CreateCardInput{CardType: models.CardYellow, Minute: 3}, ErrValidationFailed},
		{"unknown player", 1, CreateCardInput{PlayerID: 55, CardType: models.CardYellow, Minute: 3}, ErrPlayerNotFound},
		{"player of other team", 1, CreateCardInput{PlayerID: 8, CardType: models.CardYellow, Minute: 3}, ErrValidationFailed},
		{"unknown game", 42, CreateCardInput{PlayerID: 7, CardType: models.CardYellow, Minute: 3}, ErrGameNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newCardFixture()
			_, err := f.svc.Create(context.Background(), tt.gameID, tt.input)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, f.cards.cards)
		})
	}
}

func TestCardService_Update(t *testing.T) {
	red := models.CardRed
	yellow := models.CardYellow
	secondYellow := models.CardSecondYellow
	minute := 80

	tests := []struct {
		name    string
		initial models.CardType
		input   UpdateCardInput
		wantJob bool
	}{
		{"yellow minute change", models.CardYellow, UpdateCardInput{Minute: &minute}, false},
		{"yellow to red", models.CardYellow, UpdateCardInput{CardType: &red}, true},
		{"yellow to second yellow", models.CardYellow, UpdateCardInput{CardType: &secondYellow}, true},
		{"red to yellow", models.CardRed, UpdateCardInput{CardType: &yellow}, true},
		{"red minute change", models.CardRed, UpdateCardInput{Minute: &minute}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newCardFixture(&models.Card{ID: 3, GameID: 1, PlayerID: 7, CardType: tt.initial, Minute: 20})

			res, err := f.svc.Update(context.Background(), 1, 3, tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.wantJob, res.Job != nil)
			assert.Equal(t, tt.wantJob, len(f.jobs.jobs) == 1)

			stored := f.cards.cards[3]
			assert.Equal(t, res.Card.CardType, stored.CardType)
			assert.Equal(t, res.Card.Minute, stored.Minute)
		})
	}
}

func TestCardService_UpdateInvalidKeepsCard(t *testing.T) {
	f := newCardFixture(&models.Card{ID: 3, GameID: 1, PlayerID: 7, CardType: models.CardRed, Minute: 20})
	bad := 500

	_, err := f.svc.Update(context.Background(), 1, 3, UpdateCardInput{Minute: &bad})
	assert.ErrorIs(t, err, ErrValidationFailed)
	assert.Equal(t, 20, f.cards.cards[3].Minute)
	assert.Empty(t, f.jobs.jobs)
}

func TestCardService_Delete(t *testing.T) {
	f := newCardFixture(
		&models.Card{ID: 3, GameID: 1, PlayerID: 7, CardType: models.CardSecondYellow, Minute: 20},
		&models.Card{ID: 4, GameID: 1, PlayerID: 7, CardType: models.CardYellow, Minute: 10},
	)

	res, err := f.svc.Delete(context.Background(), 1, 3)
	require.NoError(t, err)
	assert.NotNil(t, res.Job)

	res, err = f.svc.Delete(context.Background(), 1, 4)
	require.NoError(t, err)
	assert.Nil(t, res.Job)

	assert.Empty(t, f.cards.cards)
	assert.Len(t, f.jobs.jobs, 1)
}

func TestCardService_CardOfAnotherGame(t *testing.T) {
	f := newCardFixture(&models.Card{ID: 3, GameID: 2, PlayerID: 7, CardType: models.CardRed, Minute: 20})
	yellow := models.CardYellow

	_, err := f.svc.Update(context.Background(), 1, 3, UpdateCardInput{CardType: &yellow})
	assert.ErrorIs(t, err, ErrCardNotFound)

	_, err = f.svc.Delete(context.Background(), 1, 3)
	assert.ErrorIs(t, err, ErrCardNotFound)

	_, err = f.svc.Delete(context.Background(), 1, 77)
	assert.ErrorIs(t, err, ErrCardNotFound)

	assert.Contains(t, f.cards.cards, 3)
	assert.Empty(t, f.jobs.jobs)
}

func TestCardService_List(t *testing.T) {
	f := newCardFixture(
		&models.Card{ID: 3, GameID: 1, PlayerID: 7, CardType: models.CardRed},
		&models.Card{ID: 4, GameID: 2, PlayerID: 7, CardType: models.CardYellow},
	)

	cards, err := f.svc.List(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.Equal(t, 3, cards[0].ID)

	_, err = f.svc.List(context.Background(), 42)
	assert.ErrorIs(t, err, ErrGameNotFound)
}
