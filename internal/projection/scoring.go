package projection

import (
	"fmt"

	"github.com/patience/platform/internal/domain"
)

// ScoringPolicy returns the score delta for an applied event. revealed is true
// when the move turned a face-down tableau card face-up.
type ScoringPolicy interface {
	Delta(eventType domain.EventType, revealed bool) int
}

// ScoreTable is a ScoringPolicy driven by a per-event-type delta table.
type ScoreTable struct {
	Deltas      map[domain.EventType]int
	RevealBonus int
}

func (t ScoreTable) Delta(eventType domain.EventType, revealed bool) int {
	d := t.Deltas[eventType]
	if revealed {
		d += t.RevealBonus
	}
	return d
}

// StandardScoring is a provisional classic table, selected with
// SCORING_POLICY=standard. The rules of the game do not fix a scoring scheme.
func StandardScoring() ScoreTable {
	return ScoreTable{
		Deltas: map[domain.EventType]int{
			domain.EventWastePlayedToTableau:      5,
			domain.EventWastePlayedToFoundation:   10,
			domain.EventTableauPlayedToFoundation: 10,
			domain.EventTableauPlayedToTableau:    0,
			domain.EventStockDealtToWaste:         0,
			domain.EventWasteResetToStock:         -100,
		},
		RevealBonus: 5,
	}
}

// NoScoring keeps every game at zero. It is the default policy.
func NoScoring() ScoreTable {
	return ScoreTable{}
}

// ScoringByName resolves a configured policy name.
func ScoringByName(name string) (ScoringPolicy, error) {
	switch name {
	case "", "none":
		return NoScoring(), nil
	case "standard":
		return StandardScoring(), nil
	default:
		return nil, fmt.Errorf("unknown scoring policy %q", name)
	}
}
