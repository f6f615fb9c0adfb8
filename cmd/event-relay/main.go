package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/patience/platform/internal/infra"
	"github.com/patience/platform/internal/repository"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("event relay failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := infra.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if cfg.EventStore != infra.EventStorePostgres {
		return errors.New("event relay requires EVENT_STORE=postgres")
	}
	// A disabled producer drops messages, which would mark rows published.
	if !cfg.KafkaEnabled {
		return errors.New("event relay requires KAFKA_ENABLED=true")
	}

	pool, err := infra.NewPostgresPool(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()
	logger.Info("event-relay connected to postgres")

	producer := infra.NewKafkaProducer(cfg.Brokers(), true, logger)
	defer producer.Close()

	poller := infra.NewOutboxPoller(pool, repository.NewOutboxRepository(), producer, infra.OutboxOptions{
		Topic:     cfg.KafkaTopic,
		Interval:  cfg.OutboxPollInterval,
		BatchSize: cfg.OutboxBatchSize,
	}, logger)

	logger.Info("event-relay starting",
		"poll_interval", cfg.OutboxPollInterval,
		"batch_size", cfg.OutboxBatchSize,
		"topic", cfg.KafkaTopic,
	)
	poller.Run(ctx)

	logger.Info("event-relay shutting down")
	return nil
}
