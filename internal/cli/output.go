package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/mcoot/deckduel/internal/api/response"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter
func NewOutput(format string, w io.Writer) *Output {
	return &Output{format: format, w: w}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == OutputJSON {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == OutputJSON {
		o.printJSON(map[string]string{"message": msg})
	} else {
		fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case response.AuthResponse:
		o.printAuth(v)
	case response.Account:
		o.printAccount(v)
	case response.DeckSaved:
		o.printDeckSaved(v)
	case []response.Deck:
		o.printDecks(v)
	case response.DeckDetail:
		o.printDeckDetail(v)
	case response.MatchOutcome:
		fmt.Fprintln(o.w, v.Message)
	case []response.Match:
		o.printMatches(v)
	case response.Balance:
		fmt.Fprintf(o.w, "Balance: %d\n", v.Balance)
	case response.Credits:
		fmt.Fprintf(o.w, "Play credits: %d\n", v.PlayCredits)
	case response.Receipt:
		o.printReceipt(v)
	case []response.Topup:
		o.printTopups(v)
	case []response.Transaction:
		o.printTransactions(v)
	case HealthResult:
		fmt.Fprintf(o.w, "Status: %s\n", v.Status)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

func (o *Output) printAuth(a response.AuthResponse) {
	fmt.Fprintf(o.w, "Player: %s (%s)\n", a.Player.Username, a.Player.ID)
	fmt.Fprintf(o.w, "Role: %s\n", a.Player.Role)
	fmt.Fprintf(o.w, "Session expires: %s\n", a.ExpiresAt.Format("2006-01-02 15:04"))
}

func (o *Output) printAccount(a response.Account) {
	fmt.Fprintf(o.w, "Player: %s (%s)\n", a.Username, a.ID)
	fmt.Fprintf(o.w, "Balance: %d\n", a.Balance)
	fmt.Fprintf(o.w, "Play credits: %d\n", a.PlayCredits)
	fmt.Fprintf(o.w, "Games: %d played, %d won, %d lost (%.2f%% win rate)\n",
		a.GamesPlayed, a.GamesWon, a.GamesLost, a.WinRate)
	if len(a.Inventory) == 0 {
		return
	}
	fmt.Fprintln(o.w, "Power-ups:")
	for _, item := range a.Inventory {
		fmt.Fprintf(o.w, "  - %s x%d\n", item.Name, item.Quantity)
	}
}

func (o *Output) printDeckSaved(d response.DeckSaved) {
	fmt.Fprintf(o.w, "Deck saved: %s (%s)\n", d.Name, d.ID)
	fmt.Fprintf(o.w, "Leader: %s\n", d.Leader)
	fmt.Fprintf(o.w, "Cards: %d\n", d.TotalCards)
}

func (o *Output) printDecks(decks []response.Deck) {
	if len(decks) == 0 {
		fmt.Fprintln(o.w, "No decks")
		return
	}
	for _, d := range decks {
		fmt.Fprintf(o.w, "%s  %s  %d cards\n", d.ID, d.Name, d.TotalCards)
	}
}

func (o *Output) printDeckDetail(d response.DeckDetail) {
	fmt.Fprintf(o.w, "Deck: %s (%s)\n", d.Name, d.ID)
	fmt.Fprintf(o.w, "Faction: %s\n", d.Faction)
	fmt.Fprintf(o.w, "Leader: %s\n", d.Leader)
	fmt.Fprintf(o.w, "Total power: %d\n", d.TotalPower)
	fmt.Fprintf(o.w, "Cards (%d):\n", len(d.Cards))
	for _, c := range d.Cards {
		line := fmt.Sprintf("  - %s [%d]", c.Name, c.Power)
		if len(c.Abilities) > 0 {
			line += " " + strings.Join(c.Abilities, ", ")
		}
		fmt.Fprintln(o.w, line)
	}
}

func (o *Output) printMatches(matches []response.Match) {
	if len(matches) == 0 {
		fmt.Fprintln(o.w, "No matches")
		return
	}
	for _, m := range matches {
		winner := "draw"
		if m.WinnerID != nil {
			winner = "winner " + *m.WinnerID
		}
		fmt.Fprintf(o.w, "%s  %s  %s vs %s  %d-%d  %s\n",
			m.CreatedAt.Format("2006-01-02 15:04"), m.ID, m.Player1ID, m.Player2ID,
			m.TotalPower1, m.TotalPower2, winner)
	}
}

func (o *Output) printReceipt(r response.Receipt) {
	for _, l := range r.Transaction.Lines {
		fmt.Fprintf(o.w, "Bought %s x%d for %d\n", l.Name, l.Quantity, l.Subtotal)
		fmt.Fprintf(o.w, "Now own: %d\n", r.Owned)
	}
	fmt.Fprintf(o.w, "Balance: %d\n", r.Balance)
}

func (o *Output) printTopups(topups []response.Topup) {
	if len(topups) == 0 {
		fmt.Fprintln(o.w, "No top-ups")
		return
	}
	for _, t := range topups {
		fmt.Fprintf(o.w, "%s  %s  %d\n", t.CreatedAt.Format("2006-01-02 15:04"), t.UserID, t.Amount)
	}
}

func (o *Output) printTransactions(txs []response.Transaction) {
	if len(txs) == 0 {
		fmt.Fprintln(o.w, "No transactions")
		return
	}
	for _, t := range txs {
		fmt.Fprintf(o.w, "%s  %s  total %d\n", t.CreatedAt.Format("2006-01-02 15:04"), t.UserID, t.Total)
		for _, l := range t.Lines {
			fmt.Fprintf(o.w, "    %s x%d @ %d\n", l.Name, l.Quantity, l.UnitPrice)
		}
	}
}
