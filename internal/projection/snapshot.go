package projection

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/patience/platform/internal/domain"
)

// DefaultSnapshotTTL bounds how long an idle game's projection stays cached.
const DefaultSnapshotTTL = 30 * time.Minute

// SnapshotCache keeps the last projected Game per game id so the next command
// only folds events newer than the snapshot's version.
type SnapshotCache struct {
	store  Store
	ttl    time.Duration
	policy string
}

// NewSnapshotCache creates a cache over store. A non-positive ttl uses DefaultSnapshotTTL.
func NewSnapshotCache(store Store, ttl time.Duration) *SnapshotCache {
	if ttl <= 0 {
		ttl = DefaultSnapshotTTL
	}
	return &SnapshotCache{store: store, ttl: ttl}
}

// WithPolicy returns a cache whose keys are scoped to a scoring policy name,
// so snapshots scored under another policy are never read back.
func (c *SnapshotCache) WithPolicy(name string) *SnapshotCache {
	scoped := *c
	scoped.policy = name
	return &scoped
}

func (c *SnapshotCache) key(gameID uuid.UUID) string {
	if c.policy == "" {
		return fmt.Sprintf("projection:game:%s", gameID)
	}
	return fmt.Sprintf("projection:game:%s:%s", c.policy, gameID)
}

// Put caches a projected game.
func (c *SnapshotCache) Put(ctx context.Context, game domain.Game) error {
	return SetJSON(ctx, c.store, c.key(game.GameID), game, c.ttl)
}

// Get returns the cached projection or an error wrapping ErrCacheMiss.
func (c *SnapshotCache) Get(ctx context.Context, gameID uuid.UUID) (*domain.Game, error) {
	var g domain.Game
	if err := GetJSON(ctx, c.store, c.key(gameID), &g); err != nil {
		return nil, err
	}
	if g.GameID != gameID {
		return nil, fmt.Errorf("snapshot for %s holds game %s: %w", gameID, g.GameID, ErrCacheMiss)
	}
	return &g, nil
}

// Invalidate drops the cached projection.
func (c *SnapshotCache) Invalidate(ctx context.Context, gameID uuid.UUID) error {
	return c.store.Delete(ctx, c.key(gameID))
}
