package routes

import (
	"net/http"

	"github.com/Dosada05/interclasses-scoreboard/docs"
	"github.com/Dosada05/interclasses-scoreboard/handlers"
	"github.com/Dosada05/interclasses-scoreboard/metrics"
	"github.com/Dosada05/interclasses-scoreboard/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Handlers struct {
	Match      *handlers.MatchHandler
	Penalty    *handlers.PenaltyHandler
	Bracket    *handlers.BracketHandler
	Athlete    *handlers.AthleteHandler
	Turma      *handlers.TurmaHandler
	Solidarity *handlers.SolidarityHandler
	Scoreboard *handlers.ScoreboardHandler
	Admin      *handlers.AdminHandler
	WebSocket  *handlers.WebSocketHandler
}

type Options struct {
	JWTSecret      []byte
	AllowedOrigins []string
	Metrics        *metrics.Metrics
	// Health reports readiness; nil means always ready.
	Health func(r *http.Request) error
}

func SetupRoutes(router chi.Router, h Handlers, opts Options) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(opts.Metrics.Middleware)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if opts.Health != nil {
			if err := opts.Health(r); err != nil {
				http.Error(w, "unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Handle("/metrics", opts.Metrics.Handler())
	router.Get("/swagger/doc.json", docs.ServeJSON)
	router.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	router.Get("/ws/scoreboard", h.WebSocket.ServeScoreboard)
	router.Get("/ws/brackets/{bracketID}", h.WebSocket.ServeBracket)

	adminOnly := []func(http.Handler) http.Handler{
		middleware.Authenticate(opts.JWTSecret),
		middleware.RequireRole(middleware.RoleAdmin),
	}

	router.Get("/scoreboard", h.Scoreboard.GetScoreboard)

	router.Route("/turmas", func(r chi.Router) {
		r.Get("/", h.Turma.ListTurmas)
		r.Group(func(r chi.Router) {
			r.Use(adminOnly...)
			r.Post("/roster", h.Turma.SeedRoster)
			r.Put("/{turmaID}/solidarity", h.Solidarity.RecordFoodAndBlood)
			r.Delete("/{turmaID}/solidarity", h.Solidarity.ClearSolidarity)
			r.Put("/{turmaID}/baskets", h.Solidarity.RecordBaskets)
		})
	})

	router.Route("/matches", func(r chi.Router) {
		r.Get("/", h.Match.ListMatches)
		r.Group(func(r chi.Router) {
			r.Use(adminOnly...)
			r.Post("/", h.Match.RegisterMatch)
			r.Put("/{matchID}", h.Match.EditMatch)
			r.Delete("/{matchID}", h.Match.DeleteMatch)
		})
	})

	router.Route("/brackets", func(r chi.Router) {
		r.Get("/", h.Bracket.ListBrackets)
		r.Get("/{bracketID}", h.Bracket.GetBracket)
		r.Get("/{bracketID}/phases", h.Bracket.GetMatchupsByPhase)
		r.Group(func(r chi.Router) {
			r.Use(adminOnly...)
			r.Post("/", h.Bracket.CreateBracket)
			r.Post("/{bracketID}/seed", h.Bracket.SeedTeams)
			r.Post("/{bracketID}/matchups/{matchupID}/result", h.Bracket.RecordMatchupResult)
			r.Delete("/{bracketID}", h.Bracket.DeleteBracket)
		})
	})

	router.Route("/food-ranking", func(r chi.Router) {
		r.Get("/solidarity", h.Solidarity.ListSolidarity)
		r.With(adminOnly...).Post("/compute", h.Solidarity.ComputeFoodRanking)
	})

	router.Group(func(r chi.Router) {
		r.Use(adminOnly...)
		r.Get("/penalties", h.Penalty.ListPenalties)
		r.Post("/penalties", h.Penalty.ApplyPenalty)
		r.Get("/athletes", h.Athlete.ListAthletes)
		r.Post("/athletes", h.Athlete.CreateAthlete)
		r.Delete("/athletes/{athleteID}", h.Athlete.DeleteAthlete)
		r.Post("/admin/season/reset", h.Admin.ResetSeason)
		r.Post("/admin/export", h.Admin.ExportScoreboard)
	})
}
