// Package rules decides whether a move is legal in a projected game and which
// event it produces. Nothing here performs I/O.
package rules

import (
	"fmt"

	"github.com/patience/platform/internal/domain"
)

// Rejection messages surfaced to players.
const (
	MsgGameNotFound          = "Game not found"
	MsgGameAlreadyForfeited  = "Game has already been forfeited"
	MsgGameAlreadyCompleted  = "Game has already been completed"
	MsgStockEmpty            = `"Stock" is empty`
	MsgStockNotEmpty         = `"Stock" is not empty`
	MsgWasteEmpty            = `"Waste" is empty`
	MsgTableauEmpty          = `"Tableau" is empty`
	MsgFoundationAceRequired = "Only Aces can be played to an empty foundation"
	MsgFoundationSequence    = "Only the next card of the same suit can be played to a foundation"
	MsgTableauSequence       = "Card colour must alternate when building tableau columns"
	MsgGameNotWon            = "All cards must be on the foundation to claim victory"
)

// Decide validates move against game. Status checks come first, so a finished
// game rejects every move with its terminal reason.
func Decide(game domain.Game, move Move) Decision {
	if d, ok := checkStatus(game.Status); !ok {
		return d
	}
	t := game.Table

	switch m := move.(type) {
	case Forfeit:
		return Accept(domain.GameForfeited{})

	case DealStockToWaste:
		if len(t.Stock) == 0 {
			return Reject(domain.RejectStockEmpty, MsgStockEmpty)
		}
		return Accept(domain.StockDealtToWaste{})

	case ResetWasteToStock:
		if len(t.Stock) > 0 {
			return Reject(domain.RejectStockNotEmpty, MsgStockNotEmpty)
		}
		if len(t.Waste) == 0 {
			return Reject(domain.RejectWasteEmpty, MsgWasteEmpty)
		}
		return Accept(domain.WasteResetToStock{})

	case PlayWasteToTableau:
		if d, ok := checkTableauIndex(m.TableauIndex); !ok {
			return d
		}
		card, ok := t.Waste.Top()
		if !ok {
			return Reject(domain.RejectWasteEmpty, MsgWasteEmpty)
		}
		if d, ok := checkTableauBuild(card, t.Tableau[m.TableauIndex]); !ok {
			return d
		}
		return Accept(domain.WastePlayedToTableau{TableauIndex: m.TableauIndex})

	case PlayWasteToFoundation:
		if d, ok := checkFoundationIndex(m.FoundationIndex); !ok {
			return d
		}
		card, ok := t.Waste.Top()
		if !ok {
			return Reject(domain.RejectWasteEmpty, MsgWasteEmpty)
		}
		if d, ok := checkFoundationBuild(card, t.Foundation[m.FoundationIndex]); !ok {
			return d
		}
		return Accept(domain.WastePlayedToFoundation{FoundationIndex: m.FoundationIndex})

	case PlayTableauToFoundation:
		if d, ok := checkTableauIndex(m.TableauIndex); !ok {
			return d
		}
		if d, ok := checkFoundationIndex(m.FoundationIndex); !ok {
			return d
		}
		card, ok := t.Tableau[m.TableauIndex].Top()
		if !ok {
			return Reject(domain.RejectTableauEmpty, MsgTableauEmpty)
		}
		if d, ok := checkFoundationBuild(card, t.Foundation[m.FoundationIndex]); !ok {
			return d
		}
		return Accept(domain.TableauPlayedToFoundation{
			TableauIndex:    m.TableauIndex,
			FoundationIndex: m.FoundationIndex,
		})

	case PlayTableauToTableau:
		return decideTableauToTableau(t, m)

	case ClaimVictory:
		if !t.FoundationComplete() {
			return Reject(domain.RejectGameNotWon, MsgGameNotWon)
		}
		return Accept(domain.VictoryClaimed{})

	default:
		return Reject(domain.RejectInvalidMove, fmt.Sprintf("unsupported move %T", move))
	}
}

func decideTableauToTableau(t domain.TableState, m PlayTableauToTableau) Decision {
	if d, ok := checkTableauIndex(m.FromIndex); !ok {
		return d
	}
	if d, ok := checkTableauIndex(m.ToIndex); !ok {
		return d
	}
	if m.FromIndex == m.ToIndex {
		return Reject(domain.RejectInvalidMove,
			fmt.Sprintf("Cannot move cards from tableau column %d onto itself", m.FromIndex))
	}

	from := t.Tableau[m.FromIndex]
	if len(from) == 0 {
		return Reject(domain.RejectTableauEmpty, MsgTableauEmpty)
	}
	if m.Count < 1 || m.Count > from.FaceUpRun() {
		return Reject(domain.RejectInvalidMove,
			fmt.Sprintf("Tableau column %d has %d face-up cards, cannot move %d", m.FromIndex, from.FaceUpRun(), m.Count))
	}

	run := from[len(from)-m.Count:]
	if !isBuiltRun(run) {
		return Reject(domain.RejectTableauSequence, MsgTableauSequence)
	}
	if d, ok := checkTableauBuild(run[0], t.Tableau[m.ToIndex]); !ok {
		return d
	}
	return Accept(domain.TableauPlayedToTableau{FromIndex: m.FromIndex, ToIndex: m.ToIndex, Count: m.Count})
}

func checkStatus(status domain.GameStatus) (Decision, bool) {
	switch status {
	case domain.StatusInProgress:
		return Decision{}, true
	case domain.StatusForfeited:
		return Reject(domain.RejectGameAlreadyForfeited, MsgGameAlreadyForfeited), false
	case domain.StatusCompleted:
		return Reject(domain.RejectGameAlreadyCompleted, MsgGameAlreadyCompleted), false
	default:
		return Reject(domain.RejectGameNotFound, MsgGameNotFound), false
	}
}

func checkTableauIndex(i int) (Decision, bool) {
	if i < 0 || i >= domain.TableauColumns {
		return Reject(domain.RejectInvalidMove,
			fmt.Sprintf("Tableau index %d is out of range 0-%d", i, domain.TableauColumns-1)), false
	}
	return Decision{}, true
}

func checkFoundationIndex(i int) (Decision, bool) {
	if i < 0 || i >= domain.FoundationPiles {
		return Reject(domain.RejectInvalidMove,
			fmt.Sprintf("Foundation index %d is out of range 0-%d", i, domain.FoundationPiles-1)), false
	}
	return Decision{}, true
}

// checkTableauBuild: an empty column accepts any card; otherwise the card must
// be the opposite colour and one rank below the top.
func checkTableauBuild(card domain.Card, column domain.Pile) (Decision, bool) {
	top, ok := column.Top()
	if !ok {
		return Decision{}, true
	}
	if !CanStackOnTableau(card, top) {
		return Reject(domain.RejectTableauSequence, MsgTableauSequence), false
	}
	return Decision{}, true
}

func checkFoundationBuild(card domain.Card, pile domain.Pile) (Decision, bool) {
	top, ok := pile.Top()
	if !ok {
		if card.Value != domain.ValueAce {
			return Reject(domain.RejectFoundationAceRequired, MsgFoundationAceRequired), false
		}
		return Decision{}, true
	}
	if card.Suit != top.Suit || !card.Value.IsOneAbove(top.Value) {
		return Reject(domain.RejectFoundationSequence, MsgFoundationSequence), false
	}
	return Decision{}, true
}

// CanStackOnTableau reports whether card may be placed on top.
func CanStackOnTableau(card, top domain.Card) bool {
	return card.Colour() != top.Colour() && card.Value.IsOneBelow(top.Value)
}

// isBuiltRun reports whether each card in run stacks legally on the one below it.
func isBuiltRun(run domain.Pile) bool {
	for i := 1; i < len(run); i++ {
		if !CanStackOnTableau(run[i], run[i-1]) {
			return false
		}
	}
	return true
}
