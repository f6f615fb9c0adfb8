package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/patience/platform/internal/domain"
	"github.com/patience/platform/internal/guard"
	"github.com/patience/platform/internal/projection"
	"github.com/patience/platform/internal/repository"
	"github.com/patience/platform/internal/rules"
)

// Deps holds the collaborators an Engine needs. Only Events is required.
type Deps struct {
	Events    repository.EventStore
	Projector *projection.Projector
	Snapshots *projection.SnapshotCache
	Breaker   *guard.CircuitBreaker
	Random    domain.RandomSource
	NewID     func() uuid.UUID
	Logger    *slog.Logger
}

// Engine runs game commands. Every command follows the same cycle:
//  1. Load the log (from the cached snapshot's version when one exists)
//  2. Project the current state
//  3. Decide the move against that state
//  4. Append the event conditionally on the projected version
//  5. Apply the event and refresh the snapshot
type Engine struct {
	events    repository.EventStore
	projector *projection.Projector
	snapshots *projection.SnapshotCache
	breaker   *guard.CircuitBreaker
	random    domain.RandomSource
	newID     func() uuid.UUID
	logger    *slog.Logger
}

// CommandResult is the outcome of a command. Exactly one of Event and
// Rejection is set; Game is the state after the command.
type CommandResult struct {
	Game      domain.Game       `json:"game"`
	Event     *domain.GameEvent `json:"event,omitempty"`
	Rejection *domain.Rejection `json:"rejection,omitempty"`
}

// Rejected reports whether the command was declined.
func (r *CommandResult) Rejected() bool { return r.Rejection != nil }

// NewEngine creates an engine, filling unset optional dependencies.
func NewEngine(deps Deps) *Engine {
	e := &Engine{
		events:    deps.Events,
		projector: deps.Projector,
		snapshots: deps.Snapshots,
		breaker:   deps.Breaker,
		random:    deps.Random,
		newID:     deps.NewID,
		logger:    deps.Logger,
	}
	if e.projector == nil {
		e.projector = projection.NewProjector(projection.NoScoring())
	}
	if e.random == nil {
		e.random = domain.NewCryptoSource()
	}
	if e.newID == nil {
		e.newID = uuid.New
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	if e.breaker == nil {
		e.breaker = guard.NewCircuitBreaker(5, 30*time.Second)
	}
	return e
}

// Execute validates move against the current state of a game and appends the
// resulting event. Rejections are returned in the result, not as errors.
func (e *Engine) Execute(ctx context.Context, gameID uuid.UUID, move rules.Move) (*CommandResult, error) {
	game, err := e.load(ctx, gameID)
	if err != nil {
		return nil, err
	}

	decision := rules.Decide(game, move)
	if decision.Rejection != nil {
		e.logger.DebugContext(ctx, "command rejected",
			"game_id", gameID,
			"command", rules.MoveName(move),
			"code", decision.Rejection.Code,
		)
		return &CommandResult{Game: game, Rejection: decision.Rejection}, nil
	}
	return e.commit(ctx, gameID, game, decision.Event, rules.MoveName(move))
}

// GetGame returns the projected state of a game.
func (e *Engine) GetGame(ctx context.Context, gameID uuid.UUID) (*domain.Game, error) {
	game, err := e.load(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if game.Status == domain.StatusNone {
		return nil, domain.ErrNotFound("game", gameID.String())
	}
	return &game, nil
}

// ListEvents returns the full event log of a game, oldest first.
func (e *Engine) ListEvents(ctx context.Context, gameID uuid.UUID) ([]domain.GameEvent, error) {
	events, err := e.events.Load(ctx, gameID, 0)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	if len(events) == 0 {
		return nil, domain.ErrNotFound("game", gameID.String())
	}
	return events, nil
}

// commit appends payload at the game's version and folds it into the state.
func (e *Engine) commit(ctx context.Context, gameID uuid.UUID, game domain.Game, payload domain.Event, command string) (*CommandResult, error) {
	evt, err := e.events.Append(ctx, gameID, game.Version, payload)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", command, err)
	}

	next, err := e.projector.Apply(game, *evt)
	if err != nil {
		return nil, fmt.Errorf("%s apply: %w", command, err)
	}
	e.storeSnapshot(ctx, next)

	e.logger.InfoContext(ctx, "command accepted",
		"game_id", gameID,
		"command", command,
		"event_type", evt.Type(),
		"sequence", evt.Sequence,
		"score", next.Score,
	)
	return &CommandResult{Game: next, Event: evt}, nil
}

// load projects a game, starting from the cached snapshot when one is usable.
// A snapshot at version v is only trusted when the log holds event v, so the
// tail is loaded from v-1.
func (e *Engine) load(ctx context.Context, gameID uuid.UUID) (domain.Game, error) {
	base := e.readSnapshot(ctx, gameID)
	if base.Version == 0 {
		return e.refold(ctx, gameID)
	}

	events, err := e.events.Load(ctx, gameID, base.Version-1)
	if err != nil {
		return domain.Game{}, fmt.Errorf("load game %s: %w", gameID, err)
	}
	if len(events) == 0 || events[0].Sequence != base.Version {
		e.logger.WarnContext(ctx, "snapshot ahead of log", "game_id", gameID, "version", base.Version)
		e.dropSnapshot(ctx, gameID)
		return e.refold(ctx, gameID)
	}

	game, err := e.projector.ProjectFrom(base, events[1:])
	if err == nil {
		return game, nil
	}

	// The snapshot does not line up with the log; drop it and refold.
	e.logger.WarnContext(ctx, "snapshot discarded", "game_id", gameID, "version", base.Version, "error", err)
	e.dropSnapshot(ctx, gameID)
	return e.refold(ctx, gameID)
}

// refold projects a game from its full log.
func (e *Engine) refold(ctx context.Context, gameID uuid.UUID) (domain.Game, error) {
	events, err := e.events.Load(ctx, gameID, 0)
	if err != nil {
		return domain.Game{}, fmt.Errorf("load game %s: %w", gameID, err)
	}
	game, err := e.projector.Project(events)
	if err != nil {
		return domain.Game{}, fmt.Errorf("project game %s: %w", gameID, err)
	}
	return game, nil
}

// snapshotCircuit keys the breaker guarding the snapshot cache.
const snapshotCircuit = "snapshot_cache"

func (e *Engine) readSnapshot(ctx context.Context, gameID uuid.UUID) domain.Game {
	if e.snapshots == nil || !e.breaker.Check(ctx, snapshotCircuit).Allowed {
		return domain.NewGame()
	}
	snap, err := e.snapshots.Get(ctx, gameID)
	if err != nil {
		if errors.Is(err, projection.ErrCacheMiss) {
			e.breaker.RecordSuccess(snapshotCircuit)
		} else {
			e.breaker.RecordFailure(snapshotCircuit)
			e.logger.WarnContext(ctx, "snapshot read failed", "game_id", gameID, "error", err)
		}
		return domain.NewGame()
	}
	e.breaker.RecordSuccess(snapshotCircuit)
	return *snap
}

func (e *Engine) storeSnapshot(ctx context.Context, game domain.Game) {
	if e.snapshots == nil || !e.breaker.Check(ctx, snapshotCircuit).Allowed {
		return
	}
	if err := e.snapshots.Put(ctx, game); err != nil {
		e.breaker.RecordFailure(snapshotCircuit)
		e.logger.WarnContext(ctx, "snapshot write failed", "game_id", game.GameID, "error", err)
		return
	}
	e.breaker.RecordSuccess(snapshotCircuit)
}

func (e *Engine) dropSnapshot(ctx context.Context, gameID uuid.UUID) {
	if err := e.snapshots.Invalidate(ctx, gameID); err != nil {
		e.breaker.RecordFailure(snapshotCircuit)
		e.logger.WarnContext(ctx, "snapshot invalidate failed", "game_id", gameID, "error", err)
	}
}
