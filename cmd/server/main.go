// cmd/server/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/mandrade85ma-cloud/site/internal/api/teams"
	"github.com/mandrade85ma-cloud/site/internal/config"
	"github.com/mandrade85ma-cloud/site/internal/db"
	"github.com/mandrade85ma-cloud/site/internal/ratelimit"
	"github.com/mandrade85ma-cloud/site/internal/scheduler"
)

func configPath() string {
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		return path
	}
	return "config.yaml"
}

func setupLogger(cfg *config.Config) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	level, err := zerolog.ParseLevel(cfg.App.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if cfg.App.Environment == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}

func main() {
	cfg, err := config.Load(configPath())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	setupLogger(cfg)
	log.Info().Fields(cfg.Redacted()).Msg("Configuration loaded")

	database, err := db.NewFromConfig(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	defer database.Close()

	if err := teams.InitHandlers(database); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize team handlers")
	}

	if cfg.RateLimit.Enabled {
		limiter := ratelimit.New(&ratelimit.Config{
			EventCooldown: cfg.GenerateCooldown(),
			MaxIPPerHour:  cfg.RateLimit.GenerateMaxPerIPPerHour,
		})
		defer limiter.Close()
		teams.InitRateLimit(limiter, cfg.RateLimit.TrustProxy)
	}

	if cfg.Scheduler.Enabled {
		sched, err := scheduler.New()
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create scheduler")
		}
		if err := scheduler.RegisterLineupBacklogJob(sched, database, cfg.Scheduler.LineupBacklogCron); err != nil {
			log.Fatal().Err(err).Msg("Failed to register lineup backlog job")
		}
		sched.Start()
		defer func() {
			if err := sched.Stop(); err != nil {
				log.Error().Err(err).Msg("Failed to stop scheduler")
			}
		}()
	}

	server := newServer(cfg, database)

	// Setup graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Str("addr", server.Addr).Msg("Starting server")
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
		defer cancel()

		log.Info().Msg("Shutting down server")
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("Server terminated with error")
		database.Close()
		os.Exit(1)
	}
}
