package game

import (
	"context"

	"github.com/google/uuid"
	"github.com/patience/platform/internal/rules"
)

// ForfeitGame ends an in-progress game. Forfeiting twice is rejected rather
// than treated as a no-op.
func (e *Engine) ForfeitGame(ctx context.Context, gameID uuid.UUID) (*CommandResult, error) {
	return e.Execute(ctx, gameID, rules.Forfeit{})
}
