package model

import "time"

// DeckID uniquely identifies a deck
type DeckID string

// DefaultMinDeckSize is the minimum number of distinct cards in a deck
const DefaultMinDeckSize = 22

// Deck is a persisted, validated deck owned by one user.
// Cards and leader are bound by identifier, never by name.
type Deck struct {
	ID         DeckID
	Name       string // unique per owner
	OwnerID    UserID
	CardIDs    []CardID
	LeaderID   LeaderID
	FactionID  FactionID // main faction, or the neutral faction for all-neutral decks
	TotalCards int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// DeckDraft is the validated, identifier-bound result of deck validation
type DeckDraft struct {
	OwnerID   UserID
	Name      string
	CardIDs   []CardID
	LeaderID  LeaderID
	FactionID FactionID
}

// Apply copies the draft's binding onto a deck
func (d *DeckDraft) Apply(deck *Deck) {
	deck.Name = d.Name
	deck.OwnerID = d.OwnerID
	deck.CardIDs = append([]CardID(nil), d.CardIDs...)
	deck.LeaderID = d.LeaderID
	deck.FactionID = d.FactionID
	deck.TotalCards = len(d.CardIDs)
}
