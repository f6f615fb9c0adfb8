package guard

import (
	"context"
	"sync"
	"time"
)

// IdempotencyGuard deduplicates requests by idempotency key. Keys are
// forgotten after ttl.
type IdempotencyGuard struct {
	mu        sync.Mutex
	seen      map[string]time.Time
	ttl       time.Duration
	now       func() time.Time
	lastSweep time.Time
}

// NewIdempotencyGuard creates a new in-memory idempotency guard.
func NewIdempotencyGuard(ttl time.Duration) *IdempotencyGuard {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &IdempotencyGuard{
		seen: make(map[string]time.Time),
		ttl:  ttl,
		now:  time.Now,
	}
}

// Check returns whether the given key has already been processed.
func (ig *IdempotencyGuard) Check(_ context.Context, key string) Result {
	if key == "" {
		return Result{Allowed: true}
	}

	ig.mu.Lock()
	defer ig.mu.Unlock()

	now := ig.now()
	if now.Sub(ig.lastSweep) > ig.ttl {
		ig.sweep(now)
	}

	if at, ok := ig.seen[key]; ok && now.Sub(at) <= ig.ttl {
		return Result{
			Allowed: false,
			Reason:  "duplicate request: idempotency key already processed",
			Guard:   "idempotency",
		}
	}

	ig.seen[key] = now
	return Result{Allowed: true}
}

// sweep drops expired keys. At most one sweep runs per ttl, so the full scan
// is amortised over every Check in that window. Callers hold mu.
func (ig *IdempotencyGuard) sweep(now time.Time) {
	for k, at := range ig.seen {
		if now.Sub(at) > ig.ttl {
			delete(ig.seen, k)
		}
	}
	ig.lastSweep = now
}

// Remove deletes a key from the seen set so a failed request can be retried.
func (ig *IdempotencyGuard) Remove(key string) {
	ig.mu.Lock()
	defer ig.mu.Unlock()
	delete(ig.seen, key)
}
