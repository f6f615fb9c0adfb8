package domain

import (
	"crypto/rand"
	"math/big"
)

const (
	// DeckSize is the number of distinct cards in a game.
	DeckSize = 52
	// TableauColumns is the number of build columns.
	TableauColumns = 7
	// FoundationPiles is the number of single-suit foundation piles.
	FoundationPiles = 4
	// StockSize is the number of cards left in the stock after the deal.
	StockSize = DeckSize - TableauColumns*(TableauColumns+1)/2
)

// CreateDeck returns the 52-card deck in declared suit then value order, all face-down.
func CreateDeck() Pile {
	deck := make(Pile, 0, DeckSize)
	for _, s := range Suits {
		for _, v := range Values {
			deck = append(deck, Card{Suit: s, Value: v})
		}
	}
	return deck
}

// RandomSource yields uniformly distributed integers in [0, n).
// *math/rand.Rand satisfies it, which lets tests shuffle from a fixed seed.
type RandomSource interface {
	Intn(n int) int
}

// ShuffleDeck returns a uniformly random permutation of deck (Fisher–Yates).
// The input is not modified.
func ShuffleDeck(deck Pile, rnd RandomSource) Pile {
	out := deck.Clone()
	for i := len(out) - 1; i > 0; i-- {
		j := rnd.Intn(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// CryptoSource is a RandomSource backed by crypto/rand.
type CryptoSource struct{}

// NewCryptoSource returns the production shuffle source.
func NewCryptoSource() CryptoSource { return CryptoSource{} }

// Intn panics if n <= 0, matching math/rand.
func (CryptoSource) Intn(n int) int {
	if n <= 0 {
		panic("invalid argument to Intn")
	}
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic("crypto/rand unavailable: " + err.Error())
	}
	return int(v.Int64())
}

// DealTableau deals the seven tableau columns from the end of deck.
//
// Round c deals one face-up card to column c, then one face-down card to every
// column after c. Column c ends with c+1 cards, only the last face-up. The
// undealt remainder is returned face-down as the stock, drawn from its end.
func DealTableau(deck Pile) (Tableau, Pile) {
	remaining := deck.Clone()
	pop := func() Card {
		c := remaining[len(remaining)-1]
		remaining = remaining[:len(remaining)-1]
		return c
	}

	var tableau Tableau
	for c := 0; c < TableauColumns; c++ {
		tableau[c] = append(tableau[c], pop().WithFace(true))
		for o := c + 1; o < TableauColumns; o++ {
			tableau[o] = append(tableau[o], pop().WithFace(false))
		}
	}

	for i := range remaining {
		remaining[i] = remaining[i].WithFace(false)
	}
	return tableau, remaining
}
