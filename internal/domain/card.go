package domain

import "fmt"

// Suit enumerates the four card suits.
type Suit string

const (
	SuitClubs    Suit = "clubs"
	SuitDiamonds Suit = "diamonds"
	SuitSpades   Suit = "spades"
	SuitHearts   Suit = "hearts"
)

// Suits lists every suit in declared order. Deck construction iterates this list.
var Suits = [...]Suit{SuitClubs, SuitDiamonds, SuitSpades, SuitHearts}

// Value enumerates the thirteen card values.
type Value string

const (
	ValueTwo   Value = "2"
	ValueThree Value = "3"
	ValueFour  Value = "4"
	ValueFive  Value = "5"
	ValueSix   Value = "6"
	ValueSeven Value = "7"
	ValueEight Value = "8"
	ValueNine  Value = "9"
	ValueTen   Value = "10"
	ValueJack  Value = "jack"
	ValueQueen Value = "queen"
	ValueKing  Value = "king"
	ValueAce   Value = "ace"
)

// Values lists every value in declared order (two through ace).
// This is the deck construction order, not rank order; see Value.Rank.
var Values = [...]Value{
	ValueTwo, ValueThree, ValueFour, ValueFive, ValueSix, ValueSeven, ValueEight,
	ValueNine, ValueTen, ValueJack, ValueQueen, ValueKing, ValueAce,
}

// rankOrder runs from the low end (ace) to the high end (king).
var rankOrder = [...]Value{
	ValueAce, ValueTwo, ValueThree, ValueFour, ValueFive, ValueSix, ValueSeven,
	ValueEight, ValueNine, ValueTen, ValueJack, ValueQueen, ValueKing,
}

// Colour classifies suits for alternating-colour tableau builds.
type Colour string

const (
	ColourBlack Colour = "black"
	ColourRed   Colour = "red"
)

// Colour returns black for clubs and spades, red for diamonds and hearts.
func (s Suit) Colour() Colour {
	switch s {
	case SuitDiamonds, SuitHearts:
		return ColourRed
	default:
		return ColourBlack
	}
}

// Valid reports whether s is one of the four declared suits.
func (s Suit) Valid() bool {
	for _, known := range Suits {
		if s == known {
			return true
		}
	}
	return false
}

// Rank returns the value's position in rank order: ace=1 through king=13.
// Unknown values rank 0.
func (v Value) Rank() int {
	for i, known := range rankOrder {
		if v == known {
			return i + 1
		}
	}
	return 0
}

// Valid reports whether v is one of the thirteen declared values.
func (v Value) Valid() bool { return v.Rank() > 0 }

// IsOneBelow reports whether v ranks exactly one below other (tableau builds).
func (v Value) IsOneBelow(other Value) bool {
	return v.Valid() && other.Valid() && v.Rank()+1 == other.Rank()
}

// IsOneAbove reports whether v ranks exactly one above other (foundation builds).
func (v Value) IsOneAbove(other Value) bool {
	return other.IsOneBelow(v)
}

// Card is an immutable playing card. Identity is the (suit, value) pair.
type Card struct {
	Suit   Suit  `json:"suit"`
	Value  Value `json:"value"`
	FaceUp bool  `json:"faceUp"`
}

// Colour returns the colour of the card's suit.
func (c Card) Colour() Colour { return c.Suit.Colour() }

// Same reports whether both cards are the same physical card, ignoring orientation.
func (c Card) Same(other Card) bool {
	return c.Suit == other.Suit && c.Value == other.Value
}

// WithFace returns a copy of the card with the given orientation.
func (c Card) WithFace(up bool) Card {
	c.FaceUp = up
	return c
}

func (c Card) String() string {
	return fmt.Sprintf("%s of %s", c.Value, c.Suit)
}
