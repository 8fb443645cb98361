package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dosada05/interclasses-scoreboard/brackets"
	"github.com/Dosada05/interclasses-scoreboard/config"
	"github.com/Dosada05/interclasses-scoreboard/db"
	"github.com/Dosada05/interclasses-scoreboard/handlers"
	"github.com/Dosada05/interclasses-scoreboard/metrics"
	"github.com/Dosada05/interclasses-scoreboard/realtime"
	"github.com/Dosada05/interclasses-scoreboard/repositories"
	"github.com/Dosada05/interclasses-scoreboard/routes"
	"github.com/Dosada05/interclasses-scoreboard/services"
	"github.com/Dosada05/interclasses-scoreboard/storage"
	"github.com/go-chi/chi/v5"
	"github.com/urfave/cli/v2"
)

const shutdownTimeout = 15 * time.Second

func main() {
	app := &cli.App{
		Name:  "interclasses",
		Usage: "Interclasses scoreboard: ledger, brackets and food-drive ranking",
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP API and the realtime relay",
				Flags:  []cli.Flag{&cli.BoolFlag{Name: "migrate", Usage: "apply pending migrations before serving", Value: true}},
				Action: serveCommand,
			},
			{
				Name:   "migrate",
				Usage:  "apply pending database migrations",
				Action: migrateCommand,
			},
			{
				Name:      "seed-turmas",
				Usage:     "upsert turmas from a YAML roster file",
				ArgsUsage: "<roster.yaml>",
				Flags:     []cli.Flag{&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Usage: "roster file", Required: true}},
				Action:    seedTurmasCommand,
			},
			{
				Name:   "food-ranking",
				Usage:  "recompute the food-drive ranking and print the top six",
				Action: foodRankingCommand,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("command failed", slog.Any("error", err))
		os.Exit(1)
	}
}

// appEnv holds what every command shares.
type appEnv struct {
	cfg     *config.Config
	logger  *slog.Logger
	db      *sql.DB
	metrics *metrics.Metrics

	tx          repositories.Transactor
	turmaRepo   repositories.TurmaRepository
	scoreRepo   repositories.ScoreRepository
	matchRepo   repositories.MatchRepository
	penaltyRepo repositories.PenaltyRepository
	athleteRepo repositories.AthleteRepository
	bracketRepo repositories.BracketRepository
}

func setup() (*appEnv, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	logger.Info("database connection established")

	return &appEnv{
		cfg:         cfg,
		logger:      logger,
		db:          dbConn,
		metrics:     metrics.New(),
		tx:          repositories.NewTransactor(dbConn),
		turmaRepo:   repositories.NewPostgresTurmaRepository(dbConn),
		scoreRepo:   repositories.NewPostgresScoreRepository(dbConn),
		matchRepo:   repositories.NewPostgresMatchRepository(dbConn),
		penaltyRepo: repositories.NewPostgresPenaltyRepository(dbConn),
		athleteRepo: repositories.NewPostgresAthleteRepository(dbConn),
		bracketRepo: repositories.NewPostgresBracketRepository(dbConn),
	}, nil
}

func (e *appEnv) close() {
	if err := e.db.Close(); err != nil {
		e.logger.Error("failed to close database connection", slog.Any("error", err))
	} else {
		e.logger.Info("database connection closed")
	}
}

func (e *appEnv) ledger() services.LedgerService {
	return services.NewLedgerService(e.scoreRepo, e.metrics, e.logger)
}

func migrateCommand(c *cli.Context) error {
	env, err := setup()
	if err != nil {
		return err
	}
	defer env.close()

	if err := db.Migrate(c.Context, env.db); err != nil {
		return err
	}
	env.logger.Info("migrations applied")
	return nil
}

func seedTurmasCommand(c *cli.Context) error {
	env, err := setup()
	if err != nil {
		return err
	}
	defer env.close()

	f, err := os.Open(c.String("file"))
	if err != nil {
		return fmt.Errorf("failed to open roster: %w", err)
	}
	defer f.Close()

	svc := services.NewTurmaService(env.tx, env.turmaRepo, env.scoreRepo, env.logger)
	turmas, err := svc.SeedRoster(c.Context, f)
	if err != nil {
		return err
	}
	for _, t := range turmas {
		fmt.Fprintf(c.App.Writer, "%-20s %s\n", t.Name, t.ID)
	}
	return nil
}

func foodRankingCommand(c *cli.Context) error {
	env, err := setup()
	if err != nil {
		return err
	}
	defer env.close()

	svc := services.NewRankingService(env.tx, env.scoreRepo, env.metrics, env.logger)
	entries, err := svc.ComputeFoodRanking(c.Context)
	if err != nil {
		return err
	}
	for _, e := range entries {
		fmt.Fprintf(c.App.Writer, "%d. %-20s %8.1f kg  %2d pts\n", e.Position, e.TurmaName, e.Kg, e.Points)
	}
	return nil
}

func serveCommand(c *cli.Context) error {
	env, err := setup()
	if err != nil {
		return err
	}
	defer env.close()
	logger := env.logger
	cfg := env.cfg

	if c.Bool("migrate") {
		if err := db.Migrate(c.Context, env.db); err != nil {
			return err
		}
	}

	var uploader storage.FileUploader
	if cfg.R2.Complete() {
		uploader, err = storage.NewR2Uploader(c.Context, cfg.R2)
		if err != nil {
			return fmt.Errorf("failed to initialize Cloudflare R2 uploader: %w", err)
		}
		logger.Info("Cloudflare R2 uploader initialized")
	} else {
		logger.Warn("R2 is not configured, scoreboard export is disabled")
	}

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hub := realtime.NewHub(logger)
	go hub.Run()
	defer hub.Stop()

	relay := realtime.NewRelay(cfg.DatabaseURL, hub, logger)
	go func() {
		if err := relay.Run(ctx); err != nil {
			logger.Error("change relay stopped", slog.Any("error", err))
		}
	}()

	ledger := env.ledger()
	generator := brackets.NewSingleEliminationGenerator(nil)

	matchService := services.NewMatchService(env.tx, env.matchRepo, ledger, env.metrics, logger)
	penaltyService := services.NewPenaltyService(env.tx, env.penaltyRepo, ledger, env.metrics, logger)
	bracketService := services.NewBracketService(env.tx, env.bracketRepo, env.turmaRepo, env.matchRepo, ledger, generator, env.metrics, logger)
	rankingService := services.NewRankingService(env.tx, env.scoreRepo, env.metrics, logger)
	solidarityService := services.NewSolidarityService(env.scoreRepo, logger)
	athleteService := services.NewAthleteService(env.athleteRepo, logger)
	turmaService := services.NewTurmaService(env.tx, env.turmaRepo, env.scoreRepo, logger)
	scoreboardService := services.NewScoreboardService(env.scoreRepo, env.matchRepo, env.turmaRepo, env.bracketRepo)
	seasonService := services.NewSeasonService(env.tx, env.athleteRepo, env.matchRepo, env.penaltyRepo, env.scoreRepo, logger)
	exportService := services.NewExportService(scoreboardService, uploader, logger)
	logger.Info("services initialized")

	router := chi.NewRouter()
	routes.SetupRoutes(router, routes.Handlers{
		Match:      handlers.NewMatchHandler(matchService),
		Penalty:    handlers.NewPenaltyHandler(penaltyService),
		Bracket:    handlers.NewBracketHandler(bracketService),
		Athlete:    handlers.NewAthleteHandler(athleteService),
		Turma:      handlers.NewTurmaHandler(turmaService),
		Solidarity: handlers.NewSolidarityHandler(solidarityService, rankingService),
		Scoreboard: handlers.NewScoreboardHandler(scoreboardService),
		Admin:      handlers.NewAdminHandler(seasonService, exportService, logger),
		WebSocket:  handlers.NewWebSocketHandler(hub, cfg.AllowedOrigins, logger),
	}, routes.Options{
		JWTSecret:      []byte(cfg.JWTSecretKey),
		AllowedOrigins: cfg.AllowedOrigins,
		Metrics:        env.metrics,
		Health:         func(r *http.Request) error { return env.db.PingContext(r.Context()) },
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		logger.Info("server stopped gracefully")
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		logger.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		logger.Info("server shutdown complete")
	}
	logger.Info("application exited")
	return nil
}
