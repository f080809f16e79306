package match

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mcoot/deckduel/internal/model"
)

func cards(powers ...int) []model.Card {
	out := make([]model.Card, len(powers))
	for i, p := range powers {
		out[i] = model.Card{Power: p}
	}
	return out
}

func TestComputeOutcome(t *testing.T) {
	tests := []struct {
		name    string
		deck1   []model.Card
		deck2   []model.Card
		want    Totals
		message string
	}{
		{
			name:    "player one higher",
			deck1:   cards(5, 5, 5),
			deck2:   cards(4, 4, 4),
			want:    Totals{TotalPower1: 15, TotalPower2: 12, Result: model.ResultPlayer1},
			message: "Total power Player 1: 15, Total power Player 2: 12. Player 1 Menang!",
		},
		{
			name:    "player two higher",
			deck1:   cards(1),
			deck2:   cards(0, 2),
			want:    Totals{TotalPower1: 1, TotalPower2: 2, Result: model.ResultPlayer2},
			message: "Total power Player 1: 1, Total power Player 2: 2. Player 2 Menang!",
		},
		{
			name:    "equal totals with different card counts",
			deck1:   cards(10),
			deck2:   cards(2, 3, 5),
			want:    Totals{TotalPower1: 10, TotalPower2: 10, Result: model.ResultDraw},
			message: "Total power Player 1: 10, Total power Player 2: 10. Seri!",
		},
		{
			name:    "both empty",
			want:    Totals{Result: model.ResultDraw},
			message: "Total power Player 1: 0, Total power Player 2: 0. Seri!",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeOutcome(tt.deck1, tt.deck2)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.message, got.Message())
			assert.Equal(t, got, ComputeOutcome(tt.deck1, tt.deck2))
		})
	}
}
