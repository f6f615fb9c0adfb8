package game

import (
	"context"
	"testing"
	"time"

	"github.com/patience/platform/internal/domain"
	"github.com/patience/platform/internal/projection"
	"github.com/patience/platform/internal/repository"
	"github.com/patience/platform/internal/rules"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplayHarness_AllInvariantsHold(t *testing.T) {
	store := repository.NewMemoryEventStore()
	cache := projection.NewSnapshotCache(projection.NewInMemoryStore(), time.Minute)
	engine := newTestEngine(store, cache)
	ctx := context.Background()

	created, err := engine.CreateGame(ctx)
	require.NoError(t, err)
	gameID := created.Game.GameID

	moves := []rules.Move{rules.ResetWasteToStock{}} // rejected: stock not empty
	for iter := 0; iter < domain.StockSize; iter++ {
		moves = append(moves, rules.DealStockToWaste{})
	}
	moves = append(moves,
		rules.DealStockToWaste{}, // rejected: stock empty
		rules.ResetWasteToStock{},
		rules.DealStockToWaste{},
		rules.PlayTableauToTableau{FromIndex: 0, ToIndex: 0, Count: 1}, // rejected: same column
		rules.ClaimVictory{}, // rejected: not won
	)

	result, err := NewReplayHarness(engine).Execute(ctx, gameID, moves)
	require.NoError(t, err)

	assert.Equal(t, domain.StockSize+2, result.Accepted)
	assert.Equal(t, 4, result.Rejected)
	require.Len(t, result.Rejections, 4)
	assert.Equal(t, domain.RejectStockNotEmpty, result.Rejections[0].Code)
	assert.Equal(t, domain.RejectStockEmpty, result.Rejections[1].Code)
	assert.Equal(t, domain.RejectInvalidMove, result.Rejections[2].Code)
	assert.Equal(t, domain.RejectGameNotWon, result.Rejections[3].Code)

	assert.Equal(t, 1+result.Accepted, result.EventCount)
	assert.Equal(t, result.EventCount, result.Final.Version)
	assert.Len(t, result.Final.Table.Waste, 1)

	require.Len(t, result.Invariants, 5)
	for _, inv := range result.Invariants {
		assert.True(t, inv.Passed, "%s: %s", inv.Name, inv.Detail)
	}
	assert.True(t, result.AllPassed)
}

func TestReplayHarness_FinishedGame(t *testing.T) {
	store := repository.NewMemoryEventStore()
	engine := newTestEngine(store, nil)
	ctx := context.Background()
	gameID := seedWinnableGame(t, store)

	var moves []rules.Move
	for i := 0; i < domain.DeckSize; i++ {
		moves = append(moves, rules.DealStockToWaste{}, rules.PlayWasteToFoundation{FoundationIndex: i / 13})
	}
	moves = append(moves, rules.ClaimVictory{}, rules.Forfeit{})

	result, err := NewReplayHarness(engine).Execute(ctx, gameID, moves)
	require.NoError(t, err)

	assert.Equal(t, 2*domain.DeckSize+1, result.Accepted)
	assert.Equal(t, 1, result.Rejected)
	assert.Equal(t, domain.RejectGameAlreadyCompleted, result.Rejections[0].Code)
	assert.Equal(t, domain.StatusCompleted, result.Final.Status)
	assert.True(t, result.AllPassed)
}

func TestValidateInvariants_DetectsBrokenTable(t *testing.T) {
	tableau, stock := domain.DealTableau(domain.CreateDeck())
	game := domain.Game{
		Status: domain.StatusInProgress,
		Table:  domain.TableState{Tableau: tableau, Stock: stock},
	}
	game.Table.Stock[0].FaceUp = true
	game.Table.Tableau[3] = game.Table.Tableau[3][:len(game.Table.Tableau[3])-1]

	checks := validateInvariants(game, domain.NewGame())
	byName := map[string]InvariantCheck{}
	for _, c := range checks {
		byName[c.Name] = c
	}

	assert.False(t, byName["card_conservation"].Passed)
	assert.False(t, byName["tableau_tops_face_up"].Passed)
	assert.True(t, byName["foundation_waste_face_up"].Passed)
	assert.False(t, byName["stock_face_down"].Passed)
	assert.False(t, byName["projection_parity"].Passed)
}
