package memory

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/mcoot/deckduel/internal/model"
	"github.com/mcoot/deckduel/internal/storage"
)

// Storage is an in-memory implementation of the storage interface.
// Records are copied on the way in and out so callers never share state.
type Storage struct {
	mu sync.RWMutex

	users         map[model.UserID]*model.User
	credentials   map[string]*model.Credential
	usernameIndex map[string]model.UserID
	catalog       *model.Catalog
	decks         map[model.DeckID]*model.Deck
	deckNameIndex map[deckNameKey]model.DeckID

	// history is append-only, kept in insertion order
	matches      []*model.HistoryPlay
	topups       []*model.HistoryTopup
	transactions []*model.Transaction
}

type deckNameKey struct {
	ownerID model.UserID
	name    string
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		users:         make(map[model.UserID]*model.User),
		credentials:   make(map[string]*model.Credential),
		usernameIndex: make(map[string]model.UserID),
		decks:         make(map[model.DeckID]*model.Deck),
		deckNameIndex: make(map[deckNameKey]model.DeckID),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// User operations

func (s *Storage) CreateUser(ctx context.Context, user *model.User, cred *model.Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.usernameIndex[user.Username]; taken {
		return model.ErrUsernameTaken
	}
	s.users[user.ID] = user.Clone()
	c := *cred
	s.credentials[cred.Username] = &c
	s.usernameIndex[user.Username] = user.ID
	return nil
}

func (s *Storage) GetUser(ctx context.Context, id model.UserID) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok || user.DeletedAt != nil {
		return nil, model.ErrUserNotFound
	}
	return user.Clone(), nil
}

func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	s.mu.RLock()
	id, ok := s.usernameIndex[username]
	s.mu.RUnlock()
	if !ok {
		return nil, model.ErrUserNotFound
	}
	return s.GetUser(ctx, id)
}

func (s *Storage) GetCredential(ctx context.Context, username string) (*model.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cred, ok := s.credentials[username]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	c := *cred
	return &c, nil
}

// Catalog operations

func (s *Storage) SaveCatalog(ctx context.Context, catalog *model.Catalog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.catalog = catalog.Clone()
	return nil
}

func (s *Storage) GetCatalog(ctx context.Context) (*model.Catalog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.catalog == nil {
		return nil, model.ErrCatalogNotLoaded
	}
	return s.catalog.Clone(), nil
}

// Deck operations

func (s *Storage) CreateDeck(ctx context.Context, deck *model.Deck) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := deckNameKey{deck.OwnerID, deck.Name}
	if _, taken := s.deckNameIndex[key]; taken {
		return model.ErrDuplicateDeckName
	}
	s.decks[deck.ID] = copyDeck(deck)
	s.deckNameIndex[key] = deck.ID
	return nil
}

func (s *Storage) UpdateDeck(ctx context.Context, deck *model.Deck) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.decks[deck.ID]
	if !ok {
		return model.ErrDeckNotFound
	}
	key := deckNameKey{deck.OwnerID, deck.Name}
	if id, taken := s.deckNameIndex[key]; taken && id != deck.ID {
		return model.ErrDuplicateDeckName
	}
	delete(s.deckNameIndex, deckNameKey{existing.OwnerID, existing.Name})
	s.decks[deck.ID] = copyDeck(deck)
	s.deckNameIndex[key] = deck.ID
	return nil
}

func (s *Storage) GetDeck(ctx context.Context, id model.DeckID) (*model.Deck, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	deck, ok := s.decks[id]
	if !ok {
		return nil, model.ErrDeckNotFound
	}
	return copyDeck(deck), nil
}

func (s *Storage) GetDeckByName(ctx context.Context, ownerID model.UserID, name string) (*model.Deck, error) {
	s.mu.RLock()
	id, ok := s.deckNameIndex[deckNameKey{ownerID, name}]
	s.mu.RUnlock()
	if !ok {
		return nil, model.ErrDeckNotFound
	}
	return s.GetDeck(ctx, id)
}

func (s *Storage) ListDecks(ctx context.Context, ownerID model.UserID) ([]*model.Deck, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []*model.Deck
	for _, deck := range s.decks {
		if deck.OwnerID == ownerID {
			result = append(result, copyDeck(deck))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return strings.ToLower(result[i].Name) < strings.ToLower(result[j].Name)
	})
	return result, nil
}

func (s *Storage) DeleteDeck(ctx context.Context, id model.DeckID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	deck, ok := s.decks[id]
	if !ok {
		return model.ErrDeckNotFound
	}
	delete(s.deckNameIndex, deckNameKey{deck.OwnerID, deck.Name})
	delete(s.decks, id)
	return nil
}

// Ledger operations

func (s *Storage) Commit(ctx context.Context, c *storage.Commit) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	// Check every version before writing anything
	for _, u := range c.Users {
		stored, ok := s.users[u.ID]
		if !ok {
			return model.ErrUserNotFound
		}
		if stored.Version != u.Version {
			return model.ErrVersionConflict
		}
	}

	for _, u := range c.Users {
		u.Version++
		s.users[u.ID] = u.Clone()
	}
	if c.Match != nil {
		m := *c.Match
		s.matches = append(s.matches, &m)
	}
	if c.Topup != nil {
		t := *c.Topup
		s.topups = append(s.topups, &t)
	}
	if c.Transaction != nil {
		s.transactions = append(s.transactions, copyTransaction(c.Transaction))
	}
	return nil
}

// History operations

func (s *Storage) GetMatch(ctx context.Context, id model.MatchID) (*model.HistoryPlay, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, m := range s.matches {
		if m.ID == id && m.DeletedAt == nil {
			c := *m
			return &c, nil
		}
	}
	return nil, model.ErrMatchNotFound
}

func (s *Storage) ListMatches(ctx context.Context, userID model.UserID) ([]*model.HistoryPlay, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []*model.HistoryPlay
	for _, m := range slices.Backward(s.matches) {
		if m.DeletedAt != nil || (userID != "" && !m.Involves(userID)) {
			continue
		}
		c := *m
		result = append(result, &c)
	}
	storage.SortNewestFirst(result, func(m *model.HistoryPlay) time.Time { return m.CreatedAt })
	return result, nil
}

func (s *Storage) SoftDeleteMatch(ctx context.Context, id model.MatchID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.matches {
		if m.ID == id && m.DeletedAt == nil {
			m.DeletedAt = &at
			return nil
		}
	}
	return model.ErrMatchNotFound
}

func (s *Storage) ListTopups(ctx context.Context, userID model.UserID) ([]*model.HistoryTopup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []*model.HistoryTopup
	for _, t := range slices.Backward(s.topups) {
		if userID != "" && t.UserID != userID {
			continue
		}
		c := *t
		result = append(result, &c)
	}
	storage.SortNewestFirst(result, func(t *model.HistoryTopup) time.Time { return t.CreatedAt })
	return result, nil
}

func (s *Storage) ListTransactions(ctx context.Context, userID model.UserID) ([]*model.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []*model.Transaction
	for _, t := range slices.Backward(s.transactions) {
		if userID != "" && t.UserID != userID {
			continue
		}
		result = append(result, copyTransaction(t))
	}
	storage.SortNewestFirst(result, func(t *model.Transaction) time.Time { return t.CreatedAt })
	return result, nil
}

func copyDeck(d *model.Deck) *model.Deck {
	c := *d
	c.CardIDs = slices.Clone(d.CardIDs)
	return &c
}

func copyTransaction(t *model.Transaction) *model.Transaction {
	c := *t
	c.Lines = slices.Clone(t.Lines)
	return &c
}
