package response

import (
	"time"

	"github.com/mcoot/deckduel/internal/model"
	"github.com/mcoot/deckduel/internal/services/auth"
	"github.com/mcoot/deckduel/internal/services/deck"
	"github.com/mcoot/deckduel/internal/services/ledger"
	"github.com/mcoot/deckduel/internal/services/match"
)

// Player represents the authenticated principal in API responses
type Player struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// PlayerFromPrincipal converts an auth.Principal to a response Player
func PlayerFromPrincipal(p *auth.Principal) Player {
	return Player{
		ID:       string(p.UserID),
		Username: p.Username,
		Role:     string(p.Role),
	}
}

// AuthResponse is the response for authentication endpoints
type AuthResponse struct {
	Player       Player    `json:"player"`
	SessionToken string    `json:"session_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// AuthResponseFromSession creates an AuthResponse from a session
func AuthResponseFromSession(s *auth.Session) AuthResponse {
	return AuthResponse{
		Player:       PlayerFromPrincipal(&s.Principal),
		SessionToken: s.Token,
		ExpiresAt:    s.ExpiresAt,
	}
}

// InventoryItem is an owned power-up
type InventoryItem struct {
	PowerUpID string `json:"power_up_id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
}

// Account is a user's balances, statistics and inventory
type Account struct {
	ID          string          `json:"id"`
	Username    string          `json:"username"`
	Role        string          `json:"role"`
	Balance     int64           `json:"balance"`
	PlayCredits int64           `json:"play_credits"`
	GamesPlayed int             `json:"games_played"`
	GamesWon    int             `json:"games_won"`
	GamesLost   int             `json:"games_lost"`
	WinRate     float64         `json:"win_rate"`
	Inventory   []InventoryItem `json:"inventory"`
}

// AccountFromLedger converts a ledger.Account
func AccountFromLedger(a *ledger.Account) Account {
	out := Account{
		ID:          string(a.User.ID),
		Username:    a.User.Username,
		Role:        string(a.User.Role),
		Balance:     a.User.Balance,
		PlayCredits: a.User.PlayCredits,
		GamesPlayed: a.User.GamesPlayed,
		GamesWon:    a.User.GamesWon,
		GamesLost:   a.User.GamesLost(),
		WinRate:     a.User.WinRate,
		Inventory:   make([]InventoryItem, 0, len(a.Inventory)),
	}
	for _, item := range a.Inventory {
		out.Inventory = append(out.Inventory, InventoryItem{
			PowerUpID: string(item.PowerUpID),
			Name:      item.Name,
			Quantity:  item.Quantity,
		})
	}
	return out
}

// Deck summarizes a deck
type Deck struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	FactionID  string    `json:"faction_id"`
	LeaderID   string    `json:"leader_id"`
	TotalCards int       `json:"total_cards"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// DeckFromModel converts a model.Deck
func DeckFromModel(d *model.Deck) Deck {
	return Deck{
		ID:         string(d.ID),
		Name:       d.Name,
		FactionID:  string(d.FactionID),
		LeaderID:   string(d.LeaderID),
		TotalCards: d.TotalCards,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}
}

// DecksFromModel converts a list of decks
func DecksFromModel(decks []*model.Deck) []Deck {
	out := make([]Deck, 0, len(decks))
	for _, d := range decks {
		out = append(out, DeckFromModel(d))
	}
	return out
}

// DeckSaved is the response for creating or replacing a deck
type DeckSaved struct {
	Deck
	Leader string `json:"leader"`
}

// DeckSavedFromService reports the stored deck with the catalog's leader
// name rather than the one typed in the request
func DeckSavedFromService(d *deck.Detail) DeckSaved {
	return DeckSaved{
		Deck:   DeckFromModel(d.Deck),
		Leader: d.Leader.Name,
	}
}

// Card is a card in a deck's detail
type Card struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	FactionID string   `json:"faction_id"`
	TypeID    string   `json:"type_id,omitempty"`
	Abilities []string `json:"abilities,omitempty"`
	Power     int      `json:"power"`
}

// DeckDetail is a deck with its cards and leader resolved
type DeckDetail struct {
	Deck
	Faction    string `json:"faction"`
	Leader     string `json:"leader"`
	TotalPower int    `json:"total_power"`
	Cards      []Card `json:"cards"`
}

// DeckDetailFromService converts a deck.Detail
func DeckDetailFromService(d *deck.Detail) DeckDetail {
	out := DeckDetail{
		Deck:       DeckFromModel(d.Deck),
		Faction:    d.Faction.Name,
		Leader:     d.Leader.Name,
		TotalPower: d.TotalPower(),
		Cards:      make([]Card, 0, len(d.Cards)),
	}
	for _, c := range d.Cards {
		card := Card{
			ID:        string(c.ID),
			Name:      c.Name,
			FactionID: string(c.FactionID),
			TypeID:    string(c.TypeID),
			Power:     c.Power,
		}
		for _, a := range c.AbilityIDs {
			card.Abilities = append(card.Abilities, string(a))
		}
		out.Cards = append(out.Cards, card)
	}
	return out
}

// MatchOutcome is the response for playing a match
type MatchOutcome struct {
	MatchID     string `json:"match_id"`
	Message     string `json:"message"`
	TotalPower1 int    `json:"total_power_player1"`
	TotalPower2 int    `json:"total_power_player2"`
	Result      string `json:"result"`
	// Winner is the winning username, null on a draw
	Winner *string `json:"winner"`
}

// MatchOutcomeFromService converts a match.Outcome
func MatchOutcomeFromService(o *match.Outcome) MatchOutcome {
	out := MatchOutcome{
		MatchID:     string(o.Record.ID),
		Message:     o.Message(),
		TotalPower1: o.TotalPower1,
		TotalPower2: o.TotalPower2,
		Result:      string(o.Result),
	}
	if o.WinnerUsername != "" {
		winner := o.WinnerUsername
		out.Winner = &winner
	}
	return out
}

// Match is a match history record
type Match struct {
	ID          string    `json:"id"`
	Player1ID   string    `json:"player1_id"`
	Player2ID   string    `json:"player2_id"`
	TotalPower1 int       `json:"total_power1"`
	TotalPower2 int       `json:"total_power2"`
	Result      string    `json:"result"`
	WinnerID    *string   `json:"winner_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// MatchesFromModel converts match history records
func MatchesFromModel(matches []*model.HistoryPlay) []Match {
	out := make([]Match, 0, len(matches))
	for _, m := range matches {
		item := Match{
			ID:          string(m.ID),
			Player1ID:   string(m.Player1ID),
			Player2ID:   string(m.Player2ID),
			TotalPower1: m.TotalPower1,
			TotalPower2: m.TotalPower2,
			Result:      string(m.Result),
			CreatedAt:   m.CreatedAt,
		}
		if !m.IsDraw() {
			winner := string(m.WinnerID)
			item.WinnerID = &winner
		}
		out = append(out, item)
	}
	return out
}

// Balance is the response for a top-up
type Balance struct {
	Balance int64 `json:"balance"`
}

// Credits is the response for a credit conversion
type Credits struct {
	PlayCredits int64 `json:"play_credits"`
}

// Topup is a top-up history record
type Topup struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Amount    int64     `json:"amount"`
	CreatedAt time.Time `json:"created_at"`
}

// TopupsFromModel converts top-up history records
func TopupsFromModel(topups []*model.HistoryTopup) []Topup {
	out := make([]Topup, 0, len(topups))
	for _, t := range topups {
		out = append(out, Topup{
			ID:        string(t.ID),
			UserID:    string(t.UserID),
			Amount:    t.Amount,
			CreatedAt: t.CreatedAt,
		})
	}
	return out
}

// TransactionLine is one purchased item
type TransactionLine struct {
	PowerUpID string `json:"power_up_id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unit_price"`
	Subtotal  int64  `json:"subtotal"`
}

// Transaction is a power-up purchase
type Transaction struct {
	ID        string            `json:"id"`
	UserID    string            `json:"user_id"`
	Total     int64             `json:"total"`
	Lines     []TransactionLine `json:"lines"`
	CreatedAt time.Time         `json:"created_at"`
}

// TransactionFromModel converts a model.Transaction
func TransactionFromModel(t *model.Transaction) Transaction {
	out := Transaction{
		ID:        string(t.ID),
		UserID:    string(t.UserID),
		Total:     t.Total,
		Lines:     make([]TransactionLine, 0, len(t.Lines)),
		CreatedAt: t.CreatedAt,
	}
	for _, l := range t.Lines {
		out.Lines = append(out.Lines, TransactionLine{
			PowerUpID: string(l.PowerUpID),
			Name:      l.PowerUpName,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			Subtotal:  l.Subtotal(),
		})
	}
	return out
}

// TransactionsFromModel converts purchase records
func TransactionsFromModel(txs []*model.Transaction) []Transaction {
	out := make([]Transaction, 0, len(txs))
	for _, t := range txs {
		out = append(out, TransactionFromModel(t))
	}
	return out
}

// Receipt is the response for a power-up purchase
type Receipt struct {
	Transaction Transaction `json:"transaction"`
	Balance     int64       `json:"balance"`
	Owned       int         `json:"owned"`
}

// ReceiptFromLedger converts a ledger.Receipt
func ReceiptFromLedger(r *ledger.Receipt) Receipt {
	return Receipt{
		Transaction: TransactionFromModel(r.Transaction),
		Balance:     r.Balance,
		Owned:       r.Owned,
	}
}
