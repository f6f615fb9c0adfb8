package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/patience/platform/internal/app"
	"github.com/patience/platform/internal/game"
	"github.com/patience/platform/internal/infra"
	"github.com/patience/platform/internal/projection"
	"github.com/patience/platform/internal/repository"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load config
	cfg, err := infra.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	scoring, err := projection.ScoringByName(cfg.ScoringPolicy)
	if err != nil {
		return err
	}

	health := map[string]infra.Pinger{}

	// Event store
	var events repository.EventStore
	switch cfg.EventStore {
	case infra.EventStorePostgres:
		if cfg.RunMigrations {
			if err := infra.RunMigrations(cfg.DSN(), logger); err != nil {
				return fmt.Errorf("run migrations: %w", err)
			}
		}
		pool, err := infra.NewPostgresPool(ctx, cfg)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer pool.Close()
		logger.Info("connected to postgres")

		events = repository.NewEventRepository(pool)
		health["postgres"] = pool

		// Relay in-process when a broker is configured; cmd/event-relay does
		// the same as a standalone worker.
		if cfg.KafkaEnabled {
			producer := infra.NewKafkaProducer(cfg.Brokers(), true, logger)
			defer producer.Close()
			poller := infra.NewOutboxPoller(pool, repository.NewOutboxRepository(), producer, infra.OutboxOptions{
				Topic:     cfg.KafkaTopic,
				Interval:  cfg.OutboxPollInterval,
				BatchSize: cfg.OutboxBatchSize,
			}, logger)
			poller.Start(ctx)
		}
	default:
		events = repository.NewMemoryEventStore()
		logger.Info("using in-memory event store")
	}

	// Snapshot cache
	var store projection.Store = projection.NewInMemoryStore()
	if cfg.RedisEnabled {
		client, err := infra.NewRedisClient(ctx, cfg)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer client.Close()
		logger.Info("connected to redis")

		store = projection.NewRedisStore(client)
		health["redis"] = infra.RedisPinger{Client: client}
	}

	engine := game.NewEngine(game.Deps{
		Events:    events,
		Projector: projection.NewProjector(scoring),
		Snapshots: projection.NewSnapshotCache(store, cfg.SnapshotTTL).WithPolicy(cfg.ScoringPolicy),
		Logger:    logger,
	})

	r := app.NewRouter(app.RouterDeps{
		Games:              engine,
		Logger:             logger,
		Health:             health,
		AllowedOrigins:     cfg.AllowedOrigins(),
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	})

	// Start server
	addr := fmt.Sprintf(":%d", cfg.APIPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		logger.Info("api server starting", "addr", addr, "event_store", cfg.EventStore)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	}

	// Shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	logger.Info("server stopped gracefully")
	return nil
}
