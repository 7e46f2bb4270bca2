package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/centimo/centimo/internal/aiextract"
	"github.com/centimo/centimo/internal/config"
	"github.com/centimo/centimo/internal/jobs/inmemory"
	"github.com/centimo/centimo/internal/logger"
	"github.com/centimo/centimo/internal/pipeline"
	"github.com/centimo/centimo/internal/store"
	"github.com/centimo/centimo/internal/store/memory"
	"github.com/centimo/centimo/internal/store/postgres"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.LogLevel, cfg.LogPretty)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	// Persistence: Postgres when configured, in-memory otherwise.
	var st store.Store
	if cfg.DatabaseURL != "" {
		pg, err := postgres.New(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer pg.Close()
		if err := pg.Migrate(ctx); err != nil {
			log.Fatal().Err(err).Msg("failed to run migrations")
		}
		st = pg
		log.Info().Msg("using postgres store")
	} else {
		st = memory.New()
		log.Warn().Msg("DATABASE_URL not set, using in-memory store")
	}

	gen, err := aiextract.NewGeminiGenerator(ctx, cfg.ModelName)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create model client")
	}
	extractor := aiextract.New(gen, cfg.Currency)

	processor := pipeline.NewProcessor(st, extractor)

	// In production, this would be replaced with Cloud Tasks or Pub/Sub.
	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(cfg.QueueBufferSize, cfg.WorkerCount, cfg.MaxJobRetries, jobStore)

	if err := jobQueue.Start(ctx, processor.HandleJob); err != nil {
		log.Fatal().Err(err).Msg("failed to start job consumer")
	}

	var sched *cron.Cron
	if cfg.SweepSchedule != "" {
		sched = cron.New()
		_, err := sched.AddFunc(cfg.SweepSchedule, func() {
			if err := processor.SweepUncategorized(ctx); err != nil {
				log.Error().Err(err).Msg("uncategorized sweep failed")
			}
		})
		if err != nil {
			log.Fatal().Err(err).Str("schedule", cfg.SweepSchedule).Msg("invalid sweep schedule")
		}
		sched.Start()
		log.Info().Str("schedule", cfg.SweepSchedule).Msg("uncategorized sweep scheduled")
	}

	log.Info().
		Int("workers", cfg.WorkerCount).
		Int("max_retries", cfg.MaxJobRetries).
		Msg("worker service started, waiting for jobs")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down worker service")
	cancel()

	if sched != nil {
		<-sched.Stop().Done()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during graceful shutdown")
	}

	log.Info().Msg("worker service exited")
}
