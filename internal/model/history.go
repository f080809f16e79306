package model

import "time"

// History identifiers
type (
	MatchID       string
	TopupID       string
	TransactionID string
)

// MatchResult designates the outcome of a match
type MatchResult string

const (
	ResultPlayer1 MatchResult = "player1"
	ResultPlayer2 MatchResult = "player2"
	ResultDraw    MatchResult = "draw"
)

// HistoryPlay is the immutable record of a settled match
type HistoryPlay struct {
	ID          MatchID
	Player1ID   UserID
	Player2ID   UserID
	TotalPower1 int
	TotalPower2 int
	Result      MatchResult
	WinnerID    UserID // empty on a draw
	CreatedAt   time.Time
	DeletedAt   *time.Time // administrative correction only
}

// IsDraw reports whether the match ended level
func (h *HistoryPlay) IsDraw() bool {
	return h.Result == ResultDraw
}

// Involves reports whether the user played in this match
func (h *HistoryPlay) Involves(id UserID) bool {
	return h.Player1ID == id || h.Player2ID == id
}

// HistoryTopup records a currency top-up
type HistoryTopup struct {
	ID        TopupID
	UserID    UserID
	Amount    int64
	CreatedAt time.Time
}

// Transaction is a power-up purchase: a header with its line items
type Transaction struct {
	ID        TransactionID
	UserID    UserID
	Total     int64
	Lines     []TransactionLine
	CreatedAt time.Time
}

// TransactionLine captures quantity and the unit price paid at purchase time
type TransactionLine struct {
	PowerUpID   PowerUpID
	PowerUpName string
	Quantity    int
	UnitPrice   int64
}

// Subtotal is quantity times the captured unit price
func (l TransactionLine) Subtotal() int64 {
	return int64(l.Quantity) * l.UnitPrice
}
