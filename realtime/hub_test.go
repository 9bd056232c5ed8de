package realtime

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(h *Hub, room string) *Client {
	return &Client{Hub: h, Send: make(chan []byte, 4), Room: room}
}

func TestHub_BroadcastToRoom(t *testing.T) {
	hub := NewHub(nil)
	done := make(chan struct{})
	defer close(done)
	go hub.Run(done)

	inRoom := newTestClient(hub, GameRoom(1))
	otherRoom := newTestClient(hub, GameRoom(2))
	hub.Register <- inRoom
	hub.Register <- otherRoom
	require.Eventually(t, func() bool { return hub.ClientCount(GameRoom(1)) == 1 }, time.Second, time.Millisecond)

	hub.BroadcastToRoom(GameRoom(1), Message{Type: TypeGameStatusChanged, RoomID: GameRoom(1), Payload: map[string]string{"to": "played"}})

	select {
	case raw := <-inRoom.Send:
		var msg map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(raw, &msg))
		assert.JSONEq(t, `"GAME_STATUS_CHANGED"`, string(msg["type"]))
		assert.JSONEq(t, `"game_1"`, string(msg["room_id"]))
	case <-time.After(time.Second):
		t.Fatal("message not delivered")
	}
	assert.Empty(t, otherRoom.Send)
}

func TestHub_UnregisterClosesSend(t *testing.T) {
	hub := NewHub(nil)
	done := make(chan struct{})
	defer close(done)
	go hub.Run(done)

	client := newTestClient(hub, GameRoom(3))
	hub.Register <- client
	hub.Unregister <- client
	require.Eventually(t, func() bool { return hub.ClientCount(GameRoom(3)) == 0 }, time.Second, time.Millisecond)

	_, ok := <-client.Send
	assert.False(t, ok)

	// рассылка в пустую комнату не блокируется
	hub.BroadcastToRoom(GameRoom(3), Message{Type: TypeJobEnqueued})
}

func TestHub_StoppedHubDoesNotBlockClients(t *testing.T) {
	hub := NewHub(nil)
	done := make(chan struct{})
	stopped := make(chan struct{})
	go func() {
		hub.Run(done)
		close(stopped)
	}()

	registered := newTestClient(hub, GameRoom(5))
	require.True(t, hub.RegisterClient(registered))
	require.Eventually(t, func() bool { return hub.ClientCount(GameRoom(5)) == 1 }, time.Second, time.Millisecond)

	close(done)
	<-stopped

	// при остановке хаба Send закрывается, чтобы WritePump завершился
	_, ok := <-registered.Send
	assert.False(t, ok)
	assert.Equal(t, 0, hub.ClientCount(GameRoom(5)))

	late := newTestClient(hub, GameRoom(5))
	unregistered := make(chan struct{})
	go func() {
		assert.False(t, hub.RegisterClient(late))
		hub.UnregisterClient(late)
		hub.UnregisterClient(registered)
		close(unregistered)
	}()

	select {
	case <-unregistered:
	case <-time.After(time.Second):
		t.Fatal("unregister blocked after hub stopped")
	}
	_, ok = <-late.Send
	assert.False(t, ok)
}

func TestHub_FullBufferDropsMessage(t *testing.T) {
	hub := NewHub(nil)
	done := make(chan struct{})
	defer close(done)
	go hub.Run(done)

	client := &Client{Hub: hub, Send: make(chan []byte, 1), Room: GameRoom(4)}
	hub.Register <- client
	require.Eventually(t, func() bool { return hub.ClientCount(GameRoom(4)) == 1 }, time.Second, time.Millisecond)

	hub.BroadcastToRoom(GameRoom(4), Message{Type: TypeJobEnqueued})
	hub.BroadcastToRoom(GameRoom(4), Message{Type: TypeJobEnqueued})
	assert.Len(t, client.Send, 1)
}

func TestGameRoom(t *testing.T) {
	assert.Equal(t, "game_42", GameRoom(42))
}
