package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/patience/platform/internal/domain"
)

// DBTX abstracts pgx.Tx and pgxpool.Pool so repositories work with both.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// EventStore is the append-only log of game events.
type EventStore interface {
	// Load returns the events of a game with sequence > afterSequence, oldest first.
	// An unknown game yields an empty slice.
	Load(ctx context.Context, gameID uuid.UUID, afterSequence int) ([]domain.GameEvent, error)

	// Append stores payload as event expectedVersion+1. It fails with
	// domain.ErrConcurrentAppend when the log no longer holds exactly
	// expectedVersion events.
	Append(ctx context.Context, gameID uuid.UUID, expectedVersion int, payload domain.Event) (*domain.GameEvent, error)
}

// OutboxEvent is a stored event not yet relayed to the broker.
type OutboxEvent struct {
	ID    int64
	Event domain.GameEvent
}

// OutboxRepository reads the relay backlog from the game_events table.
type OutboxRepository interface {
	// FetchUnpublished returns unpublished events for the outbox poller.
	FetchUnpublished(ctx context.Context, db DBTX, limit int) ([]OutboxEvent, error)

	// MarkPublished stamps events as relayed.
	MarkPublished(ctx context.Context, db DBTX, ids []int64) error
}
