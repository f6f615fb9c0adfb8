package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/patience/platform/internal/domain"
)

// pgUniqueViolation is the SQLSTATE for a unique constraint violation.
const pgUniqueViolation = "23505"

type eventRepo struct {
	db  DBTX
	now func() time.Time
}

// NewEventRepository returns a pgx-backed EventStore over the game_events table.
func NewEventRepository(db DBTX) EventStore {
	return &eventRepo{db: db, now: time.Now}
}

func (r *eventRepo) Load(ctx context.Context, gameID uuid.UUID, afterSequence int) ([]domain.GameEvent, error) {
	rows, err := r.db.Query(ctx, `
		SELECT event_id, game_id, sequence, event_type, payload, occurred_at
		FROM game_events
		WHERE game_id = $1 AND sequence > $2
		ORDER BY sequence ASC`, gameID, afterSequence)
	if err != nil {
		return nil, fmt.Errorf("load events: %w", err)
	}
	defer rows.Close()

	events := []domain.GameEvent{}
	for rows.Next() {
		var (
			e         domain.GameEvent
			eventType string
			payload   json.RawMessage
		)
		if err := rows.Scan(&e.EventID, &e.GameID, &e.Sequence, &eventType, &payload, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scan event row: %w", err)
		}
		e.Payload, err = domain.DecodePayload(domain.EventType(eventType), payload)
		if err != nil {
			return nil, domain.ErrCorruptLog("game %s event %d: %v", gameID, e.Sequence, err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load events: %w", err)
	}
	return events, nil
}

// Append inserts the next event only while the log still ends at expectedVersion.
// A writer racing past the guard trips the (game_id, sequence) unique index.
func (r *eventRepo) Append(ctx context.Context, gameID uuid.UUID, expectedVersion int, payload domain.Event) (*domain.GameEvent, error) {
	data, err := domain.EncodePayload(payload)
	if err != nil {
		return nil, err
	}

	evt := domain.GameEvent{
		EventID:   uuid.New(),
		GameID:    gameID,
		Sequence:  expectedVersion + 1,
		Timestamp: r.now().UTC(),
		Payload:   payload,
	}

	tag, err := r.db.Exec(ctx, `
		INSERT INTO game_events (event_id, game_id, sequence, event_type, payload, occurred_at)
		SELECT $1::uuid, $2::uuid, $3::int, $4::text, $5::jsonb, $6::timestamptz
		WHERE (SELECT COALESCE(MAX(sequence), 0) FROM game_events WHERE game_id = $2::uuid) = $7::int`,
		evt.EventID, evt.GameID, evt.Sequence, string(evt.Type()), data, evt.Timestamp, expectedVersion)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, fmt.Errorf("append game %s v%d: %w", gameID, evt.Sequence, domain.ErrConcurrentAppend)
		}
		return nil, fmt.Errorf("append event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, fmt.Errorf("append game %s v%d: %w", gameID, evt.Sequence, domain.ErrConcurrentAppend)
	}
	return &evt, nil
}
