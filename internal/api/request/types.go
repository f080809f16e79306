package request

// RegisterRequest is the request body for registering a player
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginRequest is the request body for logging in
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// DeckRequest is the request body for creating or replacing a deck
type DeckRequest struct {
	Name   string   `json:"name"`
	Cards  []string `json:"cards"`
	Leader string   `json:"leader"`
}

// PlayRequest is the request body for playing a match. Player 1 is the
// authenticated caller.
type PlayRequest struct {
	DeckPlayer1 string `json:"deck_player1"`
	Player2     string `json:"player2"`
	DeckPlayer2 string `json:"deck_player2"`
}

// AmountRequest is the request body for top-ups and credit conversion
type AmountRequest struct {
	Amount int64 `json:"amount"`
}

// PurchaseRequest is the request body for buying a power-up
type PurchaseRequest struct {
	Name   string `json:"name"`
	Amount int    `json:"amount"`
}
