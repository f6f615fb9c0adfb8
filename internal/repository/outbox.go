package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/patience/platform/internal/domain"
)

type outboxRepo struct{}

// NewOutboxRepository returns a pgx-backed OutboxRepository.
func NewOutboxRepository() OutboxRepository {
	return &outboxRepo{}
}

func (r *outboxRepo) FetchUnpublished(ctx context.Context, db DBTX, limit int) ([]OutboxEvent, error) {
	rows, err := db.Query(ctx, `
		SELECT id, event_id, game_id, sequence, event_type, payload, occurred_at
		FROM game_events
		WHERE published_at IS NULL
		ORDER BY id ASC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch unpublished events: %w", err)
	}
	defer rows.Close()

	var events []OutboxEvent
	for rows.Next() {
		var (
			o         OutboxEvent
			eventType string
			payload   json.RawMessage
		)
		err := rows.Scan(&o.ID, &o.Event.EventID, &o.Event.GameID, &o.Event.Sequence,
			&eventType, &payload, &o.Event.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("scan outbox row: %w", err)
		}
		o.Event.Payload, err = domain.DecodePayload(domain.EventType(eventType), payload)
		if err != nil {
			return nil, fmt.Errorf("outbox row %d: %w", o.ID, err)
		}
		events = append(events, o)
	}
	return events, rows.Err()
}

func (r *outboxRepo) MarkPublished(ctx context.Context, db DBTX, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := db.Exec(ctx, `UPDATE game_events SET published_at = now() WHERE id = ANY($1)`, ids)
	if err != nil {
		return fmt.Errorf("mark published: %w", err)
	}
	return nil
}
