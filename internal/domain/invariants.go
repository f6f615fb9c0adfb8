package domain

import "fmt"

// CheckCardConservation verifies the table holds each of the 52 cards exactly once.
func CheckCardConservation(t TableState) error {
	seen := make(map[Card]string, DeckSize)
	visit := func(area string, pile Pile) error {
		for _, c := range pile {
			key := c.WithFace(false)
			if !c.Suit.Valid() || !c.Value.Valid() {
				return fmt.Errorf("%s holds unknown card %q/%q", area, c.Suit, c.Value)
			}
			if prev, dup := seen[key]; dup {
				return fmt.Errorf("%s duplicated in %s and %s", c, prev, area)
			}
			seen[key] = area
		}
		return nil
	}

	for i, col := range t.Tableau {
		if err := visit(fmt.Sprintf("tableau[%d]", i), col); err != nil {
			return err
		}
	}
	for i, pile := range t.Foundation {
		if err := visit(fmt.Sprintf("foundation[%d]", i), pile); err != nil {
			return err
		}
	}
	if err := visit("stock", t.Stock); err != nil {
		return err
	}
	if err := visit("waste", t.Waste); err != nil {
		return err
	}
	if len(seen) != DeckSize {
		return fmt.Errorf("table holds %d cards, want %d", len(seen), DeckSize)
	}
	return nil
}

// CheckTableauTops verifies every non-empty column's top card is face-up.
func CheckTableauTops(t TableState) error {
	for i, col := range t.Tableau {
		if top, ok := col.Top(); ok && !top.FaceUp {
			return fmt.Errorf("tableau[%d] top %s is face-down", i, top)
		}
	}
	return nil
}

// CheckFoundationAndWasteFaceUp verifies every foundation and waste card is face-up.
func CheckFoundationAndWasteFaceUp(t TableState) error {
	for i, pile := range t.Foundation {
		for _, c := range pile {
			if !c.FaceUp {
				return fmt.Errorf("foundation[%d] holds face-down %s", i, c)
			}
		}
	}
	for _, c := range t.Waste {
		if !c.FaceUp {
			return fmt.Errorf("waste holds face-down %s", c)
		}
	}
	return nil
}

// CheckStockFaceDown verifies every stock card is face-down.
func CheckStockFaceDown(t TableState) error {
	for _, c := range t.Stock {
		if c.FaceUp {
			return fmt.Errorf("stock holds face-up %s", c)
		}
	}
	return nil
}
