package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/clinicore/clinicore/internal/config"
	"github.com/clinicore/clinicore/internal/domain/identity"
	"github.com/clinicore/clinicore/internal/domain/labs"
	"github.com/clinicore/clinicore/internal/domain/prediction"
	"github.com/clinicore/clinicore/internal/domain/records"
	"github.com/clinicore/clinicore/internal/domain/recovery"
	"github.com/clinicore/clinicore/internal/platform/auth"
	"github.com/clinicore/clinicore/internal/platform/db"
	"github.com/clinicore/clinicore/internal/platform/middleware"
	"github.com/clinicore/clinicore/internal/platform/scoring"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "clinicore-server",
		Short: "Clinical records and health analytics API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			return runMigrations(dir, false)
		},
	}
	upCmd.Flags().String("dir", "migrations", "migrations directory")

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			return runMigrations(dir, true)
		},
	}
	statusCmd.Flags().String("dir", "migrations", "migrations directory")

	cmd.AddCommand(upCmd)
	cmd.AddCommand(statusCmd)
	return cmd
}

func runMigrations(dir string, statusOnly bool) error {
	logger := newLogger()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	migrator := db.NewMigrator(pool, dir)

	if statusOnly {
		statuses, err := migrator.Status(ctx)
		if err != nil {
			return err
		}
		for _, st := range statuses {
			state := "pending"
			if st.Applied {
				state = "applied"
			}
			logger.Info().Int("version", st.Version).Str("name", st.Name).Str("state", state).Msg("migration")
		}
		return nil
	}

	count, err := migrator.Up(ctx)
	if err != nil {
		return err
	}
	logger.Info().Int("applied", count).Msg("migrations complete")
	return nil
}

func newLogger() zerolog.Logger {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" || os.Getenv("ENV") == "" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return logger
}

func runServer() error {
	logger := newLogger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	// OTP store: Redis when configured, otherwise the reset_otps table.
	var otpStore recovery.Store
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("invalid REDIS_URL")
		}
		otpStore = recovery.NewRedisStore(redis.NewClient(opts))
		logger.Info().Msg("reset codes stored in redis")
	} else {
		pgStore := recovery.NewPGStore(pool)
		otpStore = pgStore

		// Redis expires keys itself; the table needs a sweeper.
		sweepCtx, stopSweep := context.WithCancel(ctx)
		defer stopSweep()
		go sweepResetCodes(sweepCtx, pgStore, logger)
		logger.Info().Msg("reset codes stored in postgres")
	}

	// External engines
	scorerCmd, scorerArgs := splitCommand(cfg.ScorerCmd)
	scorer := scoring.NewSubprocessScorer(scorerCmd, scorerArgs, cfg.ScorerTimeoutDuration(), logger)

	summarizerCmd, summarizerArgs := splitCommand(cfg.SummarizerCmd)
	summarizer := scoring.NewSubprocessSummarizer(summarizerCmd, summarizerArgs, cfg.ScorerTimeoutDuration(), logger)

	// Repositories
	userRepo := identity.NewUserRepoPG(pool)
	patientRepo := identity.NewPatientRepoPG(pool)
	hospitalRepo := identity.NewHospitalRepoPG(pool)
	doctorRepo := identity.NewDoctorRepoPG(pool)
	recordRepo := records.NewRecordRepoPG(pool)
	noteRepo := records.NewNoteRepoPG(pool)
	labRepo := labs.NewLabResultRepoPG(pool)
	predictionRepo := prediction.NewPredictionRepoPG(pool)

	// Services
	tokens := auth.NewTokenIssuer([]byte(cfg.JWTSecret), "clinicore", 24*time.Hour)
	identitySvc := identity.NewService(userRepo, patientRepo, hospitalRepo, doctorRepo)
	recoverySvc := recovery.NewService(userRepo, otpStore)
	recordsSvc := records.NewService(recordRepo, noteRepo, summarizer)
	labsSvc := labs.NewService(labRepo)
	predictionSvc := prediction.NewService(predictionRepo, patientRepo, recordRepo, scorer)

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}

	api := e.Group("/api/v1")
	api.Use(middleware.RateLimit(rateLimitCfg))

	// Auth runs first so the limiter can key buckets by subject.
	authed := e.Group("/api/v1")
	authed.Use(auth.RequireAuth(tokens))
	authed.Use(middleware.RateLimit(rateLimitCfg))

	identity.NewHandler(identitySvc, tokens).RegisterRoutes(api, authed)
	recovery.NewHandler(recoverySvc).RegisterRoutes(api)
	records.NewHandler(recordsSvc).RegisterRoutes(authed)
	labs.NewHandler(labsSvc).RegisterRoutes(authed)
	prediction.NewHandler(predictionSvc).RegisterRoutes(authed)

	e.GET("/health", db.HealthHandler(pool))

	// Graceful shutdown
	addr := ":" + cfg.Port
	go func() {
		logger.Info().Str("addr", addr).Msg("server listening")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}

// sweepResetCodes periodically removes expired reset codes from the
// postgres store.
func sweepResetCodes(ctx context.Context, store *recovery.PGStore, logger zerolog.Logger) {
	ticker := time.NewTicker(15 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			removed, err := store.Cleanup(ctx, now)
			if err != nil {
				logger.Warn().Err(err).Msg("reset code cleanup failed")
				continue
			}
			if removed > 0 {
				logger.Debug().Int64("removed", removed).Msg("expired reset codes purged")
			}
		}
	}
}

// splitCommand splits a configured engine command line into the binary
// and its arguments.
func splitCommand(cmdline string) (string, []string) {
	parts := strings.Fields(cmdline)
	if len(parts) == 0 {
		return "", nil
	}
	return parts[0], parts[1:]
}
