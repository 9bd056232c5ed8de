package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Dosada05/team-manager/docs"
	"github.com/Dosada05/team-manager/handlers"
	"github.com/Dosada05/team-manager/models"
	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type okPinger struct{}

func (okPinger) PingContext(context.Context) error { return nil }

var secret = []byte("routes-secret")

func newRouter() http.Handler {
	r := chi.NewRouter()
	SetupRoutes(r, Options{
		JWTSecret:      secret,
		AllowedOrigins: []string{"*"},
		Metrics:        http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }),
	}, Handlers{
		Auth:      handlers.NewAuthHandler(nil, string(secret)),
		Game:      handlers.NewGameHandler(nil),
		Card:      handlers.NewCardHandler(nil),
		Job:       handlers.NewJobHandler(nil),
		Stats:     handlers.NewStatsHandler(nil),
		WebSocket: handlers.NewWebSocketHandler(nil, nil, nil, nil),
		Health:    handlers.NewHealthHandler(okPinger{}),
	})
	return r
}

func bearer(t *testing.T, role models.UserRole) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": 1,
		"role":    string(role),
		"exp":     time.Now().Add(time.Hour).Unix(),
	}).SignedString(secret)
	require.NoError(t, err)
	return "Bearer " + token
}

func TestSetupRoutes_Access(t *testing.T) {
	router := newRouter()

	tests := []struct {
		name   string
		method string
		path   string
		auth   string
		want   int
	}{
		{"health is public", http.MethodGet, "/healthz", "", http.StatusOK},
		{"metrics is public", http.MethodGet, "/metrics", "", http.StatusOK},
		{"games need a token", http.MethodGet, "/games/1", "", http.StatusUnauthorized},
		{"jobs need a token", http.MethodGet, "/jobs", "", http.StatusUnauthorized},
		{"viewer cannot save drafts", http.MethodPut, "/games/1/draft", bearer(t, models.RoleViewer), http.StatusForbidden},
		{"viewer cannot add cards", http.MethodPost, "/games/1/cards", bearer(t, models.RoleViewer), http.StatusForbidden},
		{"coach cannot register users", http.MethodPost, "/auth/register", bearer(t, models.RoleCoach), http.StatusForbidden},
		{"websocket needs a token", http.MethodGet, "/ws/games/1", "", http.StatusUnauthorized},
		{"bad game id", http.MethodGet, "/games/abc/draft", bearer(t, models.RoleViewer), http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.auth != "" {
				req.Header.Set("Authorization", tt.auth)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestSetupRoutes_EveryRouteIsDocumented(t *testing.T) {
	var doc struct {
		Paths map[string]map[string]json.RawMessage `json:"paths"`
	}
	require.NoError(t, json.Unmarshal([]byte(docs.SwaggerInfo.ReadDoc()), &doc))

	router, ok := newRouter().(chi.Routes)
	require.True(t, ok)

	walked := 0
	err := chi.Walk(router, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		if route == "/metrics" || strings.HasPrefix(route, "/swagger/") {
			return nil
		}
		if len(route) > 1 {
			route = strings.TrimSuffix(route, "/")
		}
		walked++
		ops, found := doc.Paths[route]
		if assert.Truef(t, found, "route %s is missing from swagger paths", route) {
			assert.Containsf(t, ops, strings.ToLower(method), "%s %s is missing from swagger", method, route)
		}
		return nil
	})
	require.NoError(t, err)
	assert.Greater(t, walked, 15)
}
