package infra

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/patience/platform/internal/repository"
)

// Publisher sends one message to a topic.
type Publisher interface {
	Publish(ctx context.Context, topic string, key, value []byte) error
}

// OutboxPoller relays appended game events to Kafka. The game_events table is
// the outbox: rows with a NULL published_at have not been relayed yet.
type OutboxPoller struct {
	db        repository.DBTX
	repo      repository.OutboxRepository
	publisher Publisher
	topic     string
	logger    *slog.Logger
	interval  time.Duration
	batchSize int
}

// OutboxOptions tunes the poller. Zero values fall back to defaults.
type OutboxOptions struct {
	Topic     string
	Interval  time.Duration
	BatchSize int
}

// NewOutboxPoller creates a new outbox poller.
func NewOutboxPoller(db repository.DBTX, repo repository.OutboxRepository, publisher Publisher, opts OutboxOptions, logger *slog.Logger) *OutboxPoller {
	p := &OutboxPoller{
		db:        db,
		repo:      repo,
		publisher: publisher,
		topic:     opts.Topic,
		logger:    logger,
		interval:  opts.Interval,
		batchSize: opts.BatchSize,
	}
	if p.topic == "" {
		p.topic = "patience.game.events"
	}
	if p.interval <= 0 {
		p.interval = 2 * time.Second
	}
	if p.batchSize <= 0 {
		p.batchSize = 100
	}
	return p
}

// Start runs the poller in a goroutine until ctx is cancelled.
func (p *OutboxPoller) Start(ctx context.Context) {
	go p.Run(ctx)
}

// Run polls until ctx is cancelled.
func (p *OutboxPoller) Run(ctx context.Context) {
	p.logger.Info("outbox poller started", "topic", p.topic, "interval", p.interval, "batch_size", p.batchSize)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("outbox poller stopped")
			return
		case <-ticker.C:
			if _, err := p.Poll(ctx); err != nil {
				p.logger.Error("outbox poll error", "error", err)
			}
		}
	}
}

// Poll relays one batch and returns how many events were published. A publish
// failure ends the batch early so later events of a game never overtake it.
func (p *OutboxPoller) Poll(ctx context.Context) (int, error) {
	rows, err := p.repo.FetchUnpublished(ctx, p.db, p.batchSize)
	if err != nil {
		return 0, fmt.Errorf("fetch: %w", err)
	}
	if len(rows) == 0 {
		return 0, nil
	}

	ids := make([]int64, 0, len(rows))
	var publishErr error
	for _, row := range rows {
		msg, err := json.Marshal(row.Event)
		if err != nil {
			publishErr = fmt.Errorf("encode event %s: %w", row.Event.EventID, err)
			break
		}
		if err := p.publisher.Publish(ctx, p.topic, []byte(row.Event.GameID.String()), msg); err != nil {
			publishErr = fmt.Errorf("publish event %s: %w", row.Event.EventID, err)
			break
		}
		ids = append(ids, row.ID)
	}

	if err := p.repo.MarkPublished(ctx, p.db, ids); err != nil {
		return 0, fmt.Errorf("mark published: %w", err)
	}

	p.logger.Debug("outbox poll complete", "published", len(ids), "fetched", len(rows))
	return len(ids), publishErr
}
