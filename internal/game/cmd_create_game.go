package game

import (
	"context"

	"github.com/patience/platform/internal/domain"
)

// CreateGame shuffles a fresh deck, deals it and records gameCreated as the
// first event of a new game.
func (e *Engine) CreateGame(ctx context.Context) (*CommandResult, error) {
	gameID := e.newID()
	deck := domain.ShuffleDeck(domain.CreateDeck(), e.random)
	tableau, stock := domain.DealTableau(deck)

	return e.commit(ctx, gameID, domain.NewGame(), domain.GameCreated{
		Tableau: tableau,
		Stock:   stock,
	}, "createGame")
}
