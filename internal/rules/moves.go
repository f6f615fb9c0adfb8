package rules

// Move is a gameplay command against an existing game. The set is closed.
type Move interface {
	isMove()
}

type Forfeit struct{}

type DealStockToWaste struct{}

type ResetWasteToStock struct{}

type PlayWasteToTableau struct {
	TableauIndex int `json:"tableauIndex"`
}

type PlayWasteToFoundation struct {
	FoundationIndex int `json:"foundationIndex"`
}

type PlayTableauToFoundation struct {
	TableauIndex    int `json:"tableauIndex"`
	FoundationIndex int `json:"foundationIndex"`
}

// PlayTableauToTableau moves the top Count face-up cards of FromIndex onto ToIndex.
type PlayTableauToTableau struct {
	FromIndex int `json:"fromIndex"`
	ToIndex   int `json:"toIndex"`
	Count     int `json:"count"`
}

type ClaimVictory struct{}

func (Forfeit) isMove()                 {}
func (DealStockToWaste) isMove()        {}
func (ResetWasteToStock) isMove()       {}
func (PlayWasteToTableau) isMove()      {}
func (PlayWasteToFoundation) isMove()   {}
func (PlayTableauToFoundation) isMove() {}
func (PlayTableauToTableau) isMove()    {}
func (ClaimVictory) isMove()            {}

// MoveName returns the command name used in logs.
func MoveName(m Move) string {
	switch m.(type) {
	case Forfeit:
		return "forfeitGame"
	case DealStockToWaste:
		return "dealStockToWaste"
	case ResetWasteToStock:
		return "resetWasteToStock"
	case PlayWasteToTableau:
		return "playWasteToTableau"
	case PlayWasteToFoundation:
		return "playWasteToFoundation"
	case PlayTableauToFoundation:
		return "playTableauToFoundation"
	case PlayTableauToTableau:
		return "playTableauToTableau"
	case ClaimVictory:
		return "claimVictory"
	default:
		return "unknown"
	}
}
