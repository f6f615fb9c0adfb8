package game

import (
	"context"

	"github.com/google/uuid"
	"github.com/patience/platform/internal/rules"
)

// DealStockToWaste turns the top stock card onto the waste.
func (e *Engine) DealStockToWaste(ctx context.Context, gameID uuid.UUID) (*CommandResult, error) {
	return e.Execute(ctx, gameID, rules.DealStockToWaste{})
}

// ResetWasteToStock returns the waste to an empty stock.
func (e *Engine) ResetWasteToStock(ctx context.Context, gameID uuid.UUID) (*CommandResult, error) {
	return e.Execute(ctx, gameID, rules.ResetWasteToStock{})
}

func (e *Engine) PlayWasteToTableau(ctx context.Context, gameID uuid.UUID, tableauIndex int) (*CommandResult, error) {
	return e.Execute(ctx, gameID, rules.PlayWasteToTableau{TableauIndex: tableauIndex})
}

func (e *Engine) PlayWasteToFoundation(ctx context.Context, gameID uuid.UUID, foundationIndex int) (*CommandResult, error) {
	return e.Execute(ctx, gameID, rules.PlayWasteToFoundation{FoundationIndex: foundationIndex})
}

func (e *Engine) PlayTableauToFoundation(ctx context.Context, gameID uuid.UUID, tableauIndex, foundationIndex int) (*CommandResult, error) {
	return e.Execute(ctx, gameID, rules.PlayTableauToFoundation{
		TableauIndex:    tableauIndex,
		FoundationIndex: foundationIndex,
	})
}

// PlayTableauToTableau moves the top count face-up cards of one column onto another.
func (e *Engine) PlayTableauToTableau(ctx context.Context, gameID uuid.UUID, fromIndex, toIndex, count int) (*CommandResult, error) {
	return e.Execute(ctx, gameID, rules.PlayTableauToTableau{
		FromIndex: fromIndex,
		ToIndex:   toIndex,
		Count:     count,
	})
}
