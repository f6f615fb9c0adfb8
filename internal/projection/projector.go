package projection

import (
	"github.com/patience/platform/internal/domain"
)

// Projector folds a game's event log into its current state.
// It is pure: no clock, no I/O, and inputs are never mutated.
type Projector struct {
	scoring ScoringPolicy
}

// NewProjector creates a projector. A nil policy scores nothing.
func NewProjector(scoring ScoringPolicy) *Projector {
	if scoring == nil {
		scoring = NoScoring()
	}
	return &Projector{scoring: scoring}
}

// Project folds events, oldest first, starting from the state before creation.
func (p *Projector) Project(events []domain.GameEvent) (domain.Game, error) {
	return p.ProjectFrom(domain.NewGame(), events)
}

// ProjectFrom folds events on top of an earlier projection, typically a cached snapshot.
func (p *Projector) ProjectFrom(game domain.Game, events []domain.GameEvent) (domain.Game, error) {
	var err error
	for _, evt := range events {
		game, err = p.Apply(game, evt)
		if err != nil {
			return domain.Game{}, err
		}
	}
	return game, nil
}

// Apply is the per-event transition. Project(events[:n+1]) always equals
// Apply(Project(events[:n]), events[n]).
func (p *Projector) Apply(game domain.Game, evt domain.GameEvent) (domain.Game, error) {
	if evt.Payload == nil {
		return domain.Game{}, domain.ErrCorruptLog("event %d has no payload", evt.Sequence)
	}
	if err := checkEnvelope(game, evt); err != nil {
		return domain.Game{}, err
	}

	next := game.Clone()
	next.Version = evt.Sequence
	t := &next.Table

	var (
		moved    bool
		revealed bool
		err      error
	)

	switch e := evt.Payload.(type) {
	case domain.GameCreated:
		next.GameID = evt.GameID
		next.Status = domain.StatusInProgress
		next.Score = 0
		next.Table = domain.TableState{Stock: e.Stock.Clone(), Waste: domain.Pile{}}
		for i := range e.Tableau {
			next.Table.Tableau[i] = e.Tableau[i].Clone()
		}
		for i := range next.Table.Foundation {
			next.Table.Foundation[i] = domain.Pile{}
		}

	case domain.GameForfeited:
		next.Status = domain.StatusForfeited

	case domain.VictoryClaimed:
		next.Status = domain.StatusCompleted

	case domain.StockDealtToWaste:
		var card domain.Pile
		if t.Stock, card, err = take(t.Stock, 1, "stock"); err == nil {
			t.Waste = append(t.Waste, card[0].WithFace(true))
			moved = true
		}

	case domain.WasteResetToStock:
		stock := make(domain.Pile, 0, len(t.Waste))
		for i := len(t.Waste) - 1; i >= 0; i-- {
			stock = append(stock, t.Waste[i].WithFace(false))
		}
		t.Stock = append(t.Stock, stock...)
		t.Waste = domain.Pile{}
		moved = true

	case domain.WastePlayedToTableau:
		if err = checkIndex(e.TableauIndex, domain.TableauColumns, "tableau"); err == nil {
			var card domain.Pile
			if t.Waste, card, err = take(t.Waste, 1, "waste"); err == nil {
				t.Tableau[e.TableauIndex] = append(t.Tableau[e.TableauIndex], card[0].WithFace(true))
				moved = true
			}
		}

	case domain.WastePlayedToFoundation:
		if err = checkIndex(e.FoundationIndex, domain.FoundationPiles, "foundation"); err == nil {
			var card domain.Pile
			if t.Waste, card, err = take(t.Waste, 1, "waste"); err == nil {
				t.Foundation[e.FoundationIndex] = append(t.Foundation[e.FoundationIndex], card[0].WithFace(true))
				moved = true
			}
		}

	case domain.TableauPlayedToFoundation:
		err = checkIndex(e.TableauIndex, domain.TableauColumns, "tableau")
		if err == nil {
			err = checkIndex(e.FoundationIndex, domain.FoundationPiles, "foundation")
		}
		if err == nil {
			var card domain.Pile
			col := t.Tableau[e.TableauIndex]
			if col, card, err = take(col, 1, "tableau"); err == nil {
				t.Tableau[e.TableauIndex], revealed = flipTop(col)
				t.Foundation[e.FoundationIndex] = append(t.Foundation[e.FoundationIndex], card[0].WithFace(true))
				moved = true
			}
		}

	case domain.TableauPlayedToTableau:
		err = checkIndex(e.FromIndex, domain.TableauColumns, "tableau")
		if err == nil {
			err = checkIndex(e.ToIndex, domain.TableauColumns, "tableau")
		}
		if err == nil && e.FromIndex == e.ToIndex {
			err = domain.ErrCorruptLog("tableau move from column %d onto itself", e.FromIndex)
		}
		if err == nil {
			var run domain.Pile
			col := t.Tableau[e.FromIndex]
			if col, run, err = take(col, e.Count, "tableau"); err == nil {
				t.Tableau[e.FromIndex], revealed = flipTop(col)
				t.Tableau[e.ToIndex] = append(t.Tableau[e.ToIndex], run...)
				moved = true
			}
		}

	default:
		return domain.Game{}, domain.ErrCorruptLog("unhandled event type %q", evt.Type())
	}

	if err != nil {
		return domain.Game{}, err
	}
	if moved {
		next.Score = max(0, next.Score+p.scoring.Delta(evt.Type(), revealed))
	}
	return next, nil
}

func checkEnvelope(game domain.Game, evt domain.GameEvent) error {
	created := evt.Type() == domain.EventGameCreated
	switch {
	case game.Status == domain.StatusNone && !created:
		return domain.ErrCorruptLog("%s before gameCreated", evt.Type())
	case game.Status != domain.StatusNone && created:
		return domain.ErrCorruptLog("duplicate gameCreated for game %s", game.GameID)
	case game.Status != domain.StatusNone && evt.GameID != game.GameID:
		return domain.ErrCorruptLog("event for game %s in log of game %s", evt.GameID, game.GameID)
	case evt.Sequence != game.Version+1:
		return domain.ErrCorruptLog("event sequence %d follows version %d", evt.Sequence, game.Version)
	}
	return nil
}

func checkIndex(i, n int, area string) error {
	if i < 0 || i >= n {
		return domain.ErrCorruptLog("%s index %d out of range", area, i)
	}
	return nil
}

// take removes the top n cards, returning the remainder and the removed run in order.
func take(p domain.Pile, n int, area string) (domain.Pile, domain.Pile, error) {
	if n < 1 || n > len(p) {
		return p, nil, domain.ErrCorruptLog("cannot take %d cards from %s of %d", n, area, len(p))
	}
	cut := len(p) - n
	return p[:cut], p[cut:].Clone(), nil
}

// flipTop turns a face-down top card face-up.
func flipTop(p domain.Pile) (domain.Pile, bool) {
	top, ok := p.Top()
	if !ok || top.FaceUp {
		return p, false
	}
	p[len(p)-1] = top.WithFace(true)
	return p, true
}
