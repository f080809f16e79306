package match

import (
	"fmt"

	"github.com/mcoot/deckduel/internal/model"
)

// Totals is the aggregate power of both decks and the result it implies
type Totals struct {
	TotalPower1 int
	TotalPower2 int
	Result      model.MatchResult
}

// ComputeOutcome sums both decks' power. The higher total wins; equal
// totals are a draw with no further tie-break.
func ComputeOutcome(deck1, deck2 []model.Card) Totals {
	t := Totals{
		TotalPower1: model.TotalPower(deck1),
		TotalPower2: model.TotalPower(deck2),
	}
	switch {
	case t.TotalPower1 > t.TotalPower2:
		t.Result = model.ResultPlayer1
	case t.TotalPower2 > t.TotalPower1:
		t.Result = model.ResultPlayer2
	default:
		t.Result = model.ResultDraw
	}
	return t
}

// Message renders the outcome announcement
func (t Totals) Message() string {
	verdict := "Seri!"
	switch t.Result {
	case model.ResultPlayer1:
		verdict = "Player 1 Menang!"
	case model.ResultPlayer2:
		verdict = "Player 2 Menang!"
	}
	return fmt.Sprintf("Total power Player 1: %d, Total power Player 2: %d. %s", t.TotalPower1, t.TotalPower2, verdict)
}
