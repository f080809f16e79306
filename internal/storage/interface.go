package storage

import (
	"context"
	"time"

	"github.com/mcoot/deckduel/internal/model"
)

// Storage defines the interface for data persistence
type Storage interface {
	// User operations
	// CreateUser stores a new user with its credential; ErrUsernameTaken if the username exists.
	CreateUser(ctx context.Context, user *model.User, cred *model.Credential) error
	GetUser(ctx context.Context, id model.UserID) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	GetCredential(ctx context.Context, username string) (*model.Credential, error)

	// Catalog operations
	SaveCatalog(ctx context.Context, catalog *model.Catalog) error
	GetCatalog(ctx context.Context) (*model.Catalog, error)

	// Deck operations
	// CreateDeck and UpdateDeck return ErrDuplicateDeckName when the owner
	// already has another deck with the same name.
	CreateDeck(ctx context.Context, deck *model.Deck) error
	UpdateDeck(ctx context.Context, deck *model.Deck) error
	GetDeck(ctx context.Context, id model.DeckID) (*model.Deck, error)
	GetDeckByName(ctx context.Context, ownerID model.UserID, name string) (*model.Deck, error)
	ListDecks(ctx context.Context, ownerID model.UserID) ([]*model.Deck, error)
	DeleteDeck(ctx context.Context, id model.DeckID) error

	// Ledger operations
	// Commit applies every write in c atomically. Each user write is
	// conditional on the stored version equalling user.Version; on success
	// the stored and in-memory versions are incremented. Any mismatch fails
	// the whole commit with ErrVersionConflict.
	Commit(ctx context.Context, c *Commit) error

	// History operations
	// Listing with an empty user ID returns every user's records.
	// Results are newest first and never include soft-deleted records.
	GetMatch(ctx context.Context, id model.MatchID) (*model.HistoryPlay, error)
	ListMatches(ctx context.Context, userID model.UserID) ([]*model.HistoryPlay, error)
	SoftDeleteMatch(ctx context.Context, id model.MatchID, at time.Time) error
	ListTopups(ctx context.Context, userID model.UserID) ([]*model.HistoryTopup, error)
	ListTransactions(ctx context.Context, userID model.UserID) ([]*model.Transaction, error)
}

// Commit is one atomic ledger write: user snapshots plus at most one
// history record of each kind
type Commit struct {
	Users       []*model.User
	Match       *model.HistoryPlay
	Topup       *model.HistoryTopup
	Transaction *model.Transaction
}
