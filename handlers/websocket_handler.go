package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Dosada05/team-manager/models"
	"github.com/Dosada05/team-manager/realtime"
	"github.com/gorilla/websocket"
)

// GameLookup checks that a game exists before a room is opened for it.
type GameLookup interface {
	GetGame(ctx context.Context, gameID int) (*models.Game, error)
}

type WebSocketHandler struct {
	hub      *realtime.Hub
	games    GameLookup
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewWebSocketHandler разрешает подключения только с allowedOrigins; "*" разрешает все.
func NewWebSocketHandler(hub *realtime.Hub, games GameLookup, allowedOrigins []string, logger *slog.Logger) *WebSocketHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &WebSocketHandler{
		hub:    hub,
		games:  games,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true // не браузерный клиент
		}
		for _, a := range allowed {
			if a == "*" || strings.EqualFold(a, origin) {
				return true
			}
		}
		return false
	}
}

// ServeWs подключает клиента к комнате игры: /ws/games/{gameID}.
// Клиент получает смены статуса и поставленные задачи, содержимое черновиков не рассылается.
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	gameID, err := getIDFromURL(r, "gameID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if h.games != nil {
		if _, err := h.games.GetGame(r.Context(), gameID); err != nil {
			mapServiceErrorToHTTP(w, r, err)
			return
		}
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade сам отвечает клиенту ошибкой
		h.logger.Warn("failed to upgrade websocket connection", slog.Int("game_id", gameID), slog.Any("error", err))
		return
	}

	client := &realtime.Client{
		Hub:  h.hub,
		Conn: conn,
		Send: make(chan []byte, 256),
		Room: realtime.GameRoom(gameID),
	}
	if !client.Hub.RegisterClient(client) {
		h.logger.Warn("hub stopped, closing websocket connection", slog.String("room", client.Room))
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
		conn.Close()
		return
	}

	go client.WritePump()
	go client.ReadPump()

	h.logger.Debug("websocket client connected", slog.String("room", client.Room))
}
