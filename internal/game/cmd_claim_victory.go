package game

import (
	"context"

	"github.com/google/uuid"
	"github.com/patience/platform/internal/rules"
)

// ClaimVictory completes a game once all 52 cards are on the foundation.
func (e *Engine) ClaimVictory(ctx context.Context, gameID uuid.UUID) (*CommandResult, error) {
	return e.Execute(ctx, gameID, rules.ClaimVictory{})
}
