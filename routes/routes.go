package routes

import (
	"log/slog"
	"net/http"

	_ "github.com/Dosada05/team-manager/docs" // swagger spec
	"github.com/Dosada05/team-manager/handlers"
	"github.com/Dosada05/team-manager/middleware"
	"github.com/Dosada05/team-manager/models"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware" // Alias to avoid conflict
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	JWTSecret      []byte
	AllowedOrigins []string
	Logger         *slog.Logger
	Metrics        http.Handler
}

type Handlers struct {
	Auth      *handlers.AuthHandler
	Game      *handlers.GameHandler
	Card      *handlers.CardHandler
	Job       *handlers.JobHandler
	Stats     *handlers.StatsHandler
	WebSocket *handlers.WebSocketHandler
	Health    *handlers.HealthHandler
}

func SetupRoutes(router chi.Router, opts Options, h Handlers) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(middleware.RequestLogger(opts.Logger))
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Get("/healthz", h.Health.Healthz)
	if opts.Metrics != nil {
		router.Method(http.MethodGet, "/metrics", opts.Metrics)
	}
	router.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	router.Post("/auth/login", h.Auth.Login)

	authenticate := middleware.Authenticate(opts.JWTSecret)
	canWrite := middleware.Authorize(models.RoleAdmin, models.RoleCoach)

	router.With(authenticate).Get("/ws/games/{gameID}", h.WebSocket.ServeWs)

	router.Group(func(r chi.Router) {
		r.Use(authenticate)

		r.With(middleware.Authorize(models.RoleAdmin)).Post("/auth/register", h.Auth.Register)

		r.Route("/games", func(r chi.Router) {
			r.With(canWrite).Post("/", h.Game.CreateGame)

			r.Route("/{gameID}", func(r chi.Router) {
				r.Get("/", h.Game.GetGame)
				r.Get("/draft", h.Game.GetDraft)
				r.Get("/cards", h.Card.ListCards)
				r.Get("/stats", h.Stats.GetGameStats)

				r.Group(func(r chi.Router) {
					r.Use(canWrite)
					r.Put("/draft", h.Game.SaveDraft)
					r.Post("/played", h.Game.MarkPlayed)
					r.Post("/finalize", h.Game.Finalize)
					r.Post("/postpone", h.Game.Postpone)
					r.Post("/reopen", h.Game.Reopen)

					r.Post("/cards", h.Card.CreateCard)
					r.Put("/cards/{cardID}", h.Card.UpdateCard)
					r.Delete("/cards/{cardID}", h.Card.DeleteCard)
				})
			})
		})

		r.Get("/jobs", h.Job.ListJobs)
		r.Get("/jobs/{jobID}", h.Job.GetJob)
	})
}
