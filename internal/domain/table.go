package domain

import (
	"encoding/json"

	"github.com/google/uuid"
)

// Pile is an ordered run of cards; the last element is the top.
type Pile []Card

// Top returns the top card and false when the pile is empty.
func (p Pile) Top() (Card, bool) {
	if len(p) == 0 {
		return Card{}, false
	}
	return p[len(p)-1], true
}

// FaceUpRun counts the face-up cards forming the top of the pile.
func (p Pile) FaceUpRun() int {
	n := 0
	for i := len(p) - 1; i >= 0 && p[i].FaceUp; i-- {
		n++
	}
	return n
}

// Clone returns a copy that shares no backing array with p.
func (p Pile) Clone() Pile {
	out := make(Pile, len(p))
	copy(out, p)
	return out
}

// MarshalJSON encodes an empty pile as [] rather than null.
func (p Pile) MarshalJSON() ([]byte, error) {
	if p == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]Card(p))
}

// Tableau holds the seven build columns.
type Tableau [TableauColumns]Pile

// Foundation holds the four ascending single-suit piles.
type Foundation [FoundationPiles]Pile

// TableState is the layout of every card in a game.
type TableState struct {
	Tableau    Tableau    `json:"tableau"`
	Foundation Foundation `json:"foundation"`
	Stock      Pile       `json:"stock"`
	Waste      Pile       `json:"waste"`
}

// Clone deep-copies the table so transitions never alias prior state.
func (t TableState) Clone() TableState {
	out := TableState{Stock: t.Stock.Clone(), Waste: t.Waste.Clone()}
	for i := range t.Tableau {
		out.Tableau[i] = t.Tableau[i].Clone()
	}
	for i := range t.Foundation {
		out.Foundation[i] = t.Foundation[i].Clone()
	}
	return out
}

// CardCount returns the number of cards across all four areas.
func (t TableState) CardCount() int {
	n := len(t.Stock) + len(t.Waste)
	for _, col := range t.Tableau {
		n += len(col)
	}
	for _, pile := range t.Foundation {
		n += len(pile)
	}
	return n
}

// FoundationComplete reports whether every card sits on a foundation pile.
func (t TableState) FoundationComplete() bool {
	n := 0
	for _, pile := range t.Foundation {
		n += len(pile)
	}
	return n == DeckSize && t.CardCount() == DeckSize
}

// GameStatus tracks the game lifecycle.
type GameStatus string

const (
	StatusNone       GameStatus = "none"
	StatusInProgress GameStatus = "inProgress"
	StatusForfeited  GameStatus = "forfeited"
	StatusCompleted  GameStatus = "completed"
)

// Terminal reports whether no further gameplay is allowed.
func (s GameStatus) Terminal() bool {
	return s == StatusForfeited || s == StatusCompleted
}

// Game is the aggregate derived by folding a game's event log. It is never stored
// as the source of truth; snapshots of it are a cache only.
type Game struct {
	GameID  uuid.UUID  `json:"gameId"`
	Status  GameStatus `json:"status"`
	Score   int        `json:"score"`
	Table   TableState `json:"table"`
	Version int        `json:"version"`
}

// NewGame returns the state before any event exists.
func NewGame() Game {
	return Game{Status: StatusNone}
}

// Clone deep-copies the game.
func (g Game) Clone() Game {
	g.Table = g.Table.Clone()
	return g
}
