// cmd/server/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/courtside/courtmatch/internal/api/auth"
	"github.com/courtside/courtmatch/internal/booking"
	"github.com/courtside/courtmatch/internal/config"
	"github.com/courtside/courtmatch/internal/db"
	"github.com/courtside/courtmatch/internal/matching"
	"github.com/courtside/courtmatch/internal/ratelimit"
	"github.com/courtside/courtmatch/internal/scheduler"
)

const shutdownTimeout = 30 * time.Second

func setupLogger(environment string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if environment == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	setupLogger(cfg.App.Environment)

	database, err := db.NewFromConfig(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	defer database.Close()

	if err := database.Seed(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to seed database")
	}

	engine, err := matching.NewEngine(database, cfg.Matching.SlotStepMinutes)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build matching engine")
	}
	service, err := booking.NewService(database, engine, int64(cfg.Matching.DefaultDurationMinutes))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build booking service")
	}

	sessions := auth.NewStore(cfg.App.Environment != "development")
	loginLimiter := ratelimit.New(nil)
	defer loginLimiter.Close()

	if err := scheduler.Init(); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize scheduler")
	}
	if err := scheduler.RegisterHousekeepingJobs(service); err != nil {
		log.Fatal().Err(err).Msg("Failed to register housekeeping jobs")
	}
	if err := scheduler.Start(); err != nil {
		log.Fatal().Err(err).Msg("Failed to start scheduler")
	}

	server := newServer(cfg, database, service, sessions, loginLimiter)

	// Setup graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Int("port", cfg.App.Port).Msg("Starting server")
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		log.Info().Msg("Shutting down server")
		if err := scheduler.Stop(); err != nil {
			log.Error().Err(err).Msg("Scheduler shutdown error")
		}
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("Server terminated with error")
		os.Exit(1)
	}
}
