package redis

import (
	"fmt"

	"github.com/mcoot/deckduel/internal/model"
)

// keys builds every Redis key under a configured prefix
type keys struct {
	prefix string
}

func (k keys) user(id model.UserID) string {
	return fmt.Sprintf("%s:user:%s", k.prefix, id)
}

func (k keys) credential(username string) string {
	return fmt.Sprintf("%s:credential:%s", k.prefix, username)
}

// usernameIndex maps username -> user ID; claimed with SETNX
func (k keys) usernameIndex(username string) string {
	return fmt.Sprintf("%s:idx:username:%s", k.prefix, username)
}

func (k keys) catalog() string {
	return fmt.Sprintf("%s:catalog", k.prefix)
}

func (k keys) deck(id model.DeckID) string {
	return fmt.Sprintf("%s:deck:%s", k.prefix, id)
}

// deckNameIndex maps (owner, name) -> deck ID; claimed with SETNX
func (k keys) deckNameIndex(ownerID model.UserID, name string) string {
	return fmt.Sprintf("%s:idx:deck_name:%s:%s", k.prefix, ownerID, name)
}

// decksForOwner is the SET of deck IDs owned by a user
func (k keys) decksForOwner(ownerID model.UserID) string {
	return fmt.Sprintf("%s:idx:decks:%s", k.prefix, ownerID)
}

func (k keys) match(id model.MatchID) string {
	return fmt.Sprintf("%s:match:%s", k.prefix, id)
}

func (k keys) topup(id model.TopupID) string {
	return fmt.Sprintf("%s:topup:%s", k.prefix, id)
}

func (k keys) transaction(id model.TransactionID) string {
	return fmt.Sprintf("%s:transaction:%s", k.prefix, id)
}

// history returns the ZSET of record IDs of one kind, scored by creation
// time. An empty user ID addresses the global index.
func (k keys) history(kind string, userID model.UserID) string {
	if userID == "" {
		return fmt.Sprintf("%s:idx:%s", k.prefix, kind)
	}
	return fmt.Sprintf("%s:idx:%s:user:%s", k.prefix, kind, userID)
}

const (
	kindMatches      = "matches"
	kindTopups       = "topups"
	kindTransactions = "transactions"
)
