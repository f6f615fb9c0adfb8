package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patience/platform/internal/domain"
)

// MemoryEventStore is an in-process EventStore for development and tests.
type MemoryEventStore struct {
	mu   sync.RWMutex
	logs map[uuid.UUID][]domain.GameEvent
	now  func() time.Time
}

// NewMemoryEventStore creates an empty store.
func NewMemoryEventStore() *MemoryEventStore {
	return &MemoryEventStore{logs: make(map[uuid.UUID][]domain.GameEvent), now: time.Now}
}

// WithClock overrides the timestamp source.
func (s *MemoryEventStore) WithClock(now func() time.Time) *MemoryEventStore {
	s.now = now
	return s
}

func (s *MemoryEventStore) Load(_ context.Context, gameID uuid.UUID, afterSequence int) ([]domain.GameEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	log := s.logs[gameID]
	if afterSequence < 0 {
		afterSequence = 0
	}
	if afterSequence >= len(log) {
		return []domain.GameEvent{}, nil
	}
	out := make([]domain.GameEvent, len(log)-afterSequence)
	copy(out, log[afterSequence:])
	return out, nil
}

func (s *MemoryEventStore) Append(_ context.Context, gameID uuid.UUID, expectedVersion int, payload domain.Event) (*domain.GameEvent, error) {
	if payload == nil {
		return nil, domain.ErrValidation("event payload is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	log := s.logs[gameID]
	if len(log) != expectedVersion {
		return nil, fmt.Errorf("append game %s v%d (log at v%d): %w",
			gameID, expectedVersion+1, len(log), domain.ErrConcurrentAppend)
	}

	evt := domain.GameEvent{
		EventID:   uuid.New(),
		GameID:    gameID,
		Sequence:  expectedVersion + 1,
		Timestamp: s.now().UTC(),
		Payload:   payload,
	}
	s.logs[gameID] = append(log, evt)
	return &evt, nil
}
