//go:build integration

package integration

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/patience/platform/internal/domain"
	"github.com/patience/platform/internal/game"
	"github.com/patience/platform/internal/infra"
	"github.com/patience/platform/internal/repository"
	"github.com/patience/platform/internal/rules"
	"github.com/patience/platform/test/integration/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ─── Event store ────────────────────────────────────────────────────────────

func TestEventStore_ConditionalAppend(t *testing.T) {
	env := testutil.NewTestEnv(t)
	ctx := context.Background()
	gameID := uuid.New()

	_, err := env.Events.Append(ctx, gameID, 0, domain.GameCreated{})
	require.NoError(t, err)

	_, err = env.Events.Append(ctx, gameID, 0, domain.GameForfeited{})
	assert.ErrorIs(t, err, domain.ErrConcurrentAppend)

	_, err = env.Events.Append(ctx, gameID, 1, domain.GameForfeited{})
	require.NoError(t, err)

	events, err := env.Events.Load(ctx, gameID, 0)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, domain.EventGameForfeited, events[1].Type())

	tail, err := env.Events.Load(ctx, gameID, 1)
	require.NoError(t, err)
	require.Len(t, tail, 1)
	assert.Equal(t, 2, tail[0].Sequence)
}

func TestEventStore_ConcurrentCommandsOneWins(t *testing.T) {
	env := testutil.NewTestEnv(t)
	ctx := context.Background()

	created, err := env.Engine.CreateGame(ctx)
	require.NoError(t, err)
	gameID := created.Game.GameID

	// Engines without a shared snapshot cache race on the same version.
	const workers = 8
	var wins, conflicts atomic.Int32
	var wg sync.WaitGroup
	for iter := 0; iter < workers; iter++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			engine := game.NewEngine(game.Deps{Events: env.Events, Logger: env.Logger})
			res, err := engine.Execute(ctx, gameID, rules.Forfeit{})
			switch {
			case errors.Is(err, domain.ErrConcurrentAppend):
				conflicts.Add(1)
			case err == nil && !res.Rejected():
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
	assert.LessOrEqual(t, conflicts.Load(), int32(workers-1))
	assert.Equal(t, 2, testutil.CountEvents(t, env, gameID))
}

// ─── Outbox relay ───────────────────────────────────────────────────────────

type recordingPublisher struct {
	mu   sync.Mutex
	keys []string
}

func (p *recordingPublisher) Publish(_ context.Context, _ string, key, _ []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.keys = append(p.keys, string(key))
	return nil
}

func TestOutbox_RelaysAndMarksPublished(t *testing.T) {
	env := testutil.NewTestEnv(t)
	ctx := context.Background()

	g := env.CreateGame()
	_, err := env.Engine.DealStockToWaste(ctx, g.GameID)
	require.NoError(t, err)
	require.Equal(t, 2, testutil.CountUnpublished(t, env))

	pub := &recordingPublisher{}
	poller := infra.NewOutboxPoller(env.Pool, repository.NewOutboxRepository(), pub, infra.OutboxOptions{}, env.Logger)

	n, err := poller.Poll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{g.GameID.String(), g.GameID.String()}, pub.keys)
	assert.Zero(t, testutil.CountUnpublished(t, env))

	n, err = poller.Poll(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}
