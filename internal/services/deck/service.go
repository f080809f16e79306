package deck

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/text/cases"

	"github.com/mcoot/deckduel/internal/dependencies/clock"
	"github.com/mcoot/deckduel/internal/dependencies/idgen"
	"github.com/mcoot/deckduel/internal/model"
	"github.com/mcoot/deckduel/internal/storage"
)

// Detail is a deck with its cards, leader and faction resolved
type Detail struct {
	Deck    *model.Deck
	Cards   []model.Card
	Leader  model.Leader
	Faction model.Faction
}

// TotalPower sums the power of the deck's cards
func (d *Detail) TotalPower() int {
	return model.TotalPower(d.Cards)
}

// Service manages players' decks. Every operation is scoped to the owner:
// someone else's deck is reported as not found.
type Service struct {
	storage   storage.Storage
	validator *Validator
	catalog   Catalog
	clock     clock.Clock
	ids       idgen.Generator
	timeout   time.Duration
	logger    *slog.Logger
}

// New creates a new deck Service
func New(
	storage storage.Storage,
	validator *Validator,
	catalog Catalog,
	clock clock.Clock,
	ids idgen.Generator,
	timeout time.Duration,
	logger *slog.Logger,
) *Service {
	return &Service{
		storage:   storage,
		validator: validator,
		catalog:   catalog,
		clock:     clock,
		ids:       ids,
		timeout:   timeout,
		logger:    logger,
	}
}

// Create validates and stores a new deck, returning it resolved against the
// catalog
func (s *Service) Create(ctx context.Context, req Request) (*Detail, error) {
	draft, err := s.validator.Validate(ctx, req)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	deck := &model.Deck{
		ID:        model.DeckID(s.ids.NewID()),
		CreatedAt: now,
		UpdatedAt: now,
	}
	draft.Apply(deck)

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.storage.CreateDeck(ctx, deck); err != nil {
		return nil, model.Unavailable(err)
	}

	s.logger.Info("deck created", "deck_id", deck.ID, "owner_id", deck.OwnerID, "faction_id", deck.FactionID)
	return s.resolve(deck)
}

// Update revalidates and replaces an existing deck's contents. The deck keeps
// its identifier and creation time.
func (s *Service) Update(ctx context.Context, deckID model.DeckID, req Request) (*Detail, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	deck, err := s.owned(ctx, req.OwnerID, deckID)
	if err != nil {
		return nil, err
	}

	draft, err := s.validator.Validate(ctx, req)
	if err != nil {
		return nil, err
	}
	draft.Apply(deck)
	deck.UpdatedAt = s.clock.Now()

	if err := s.storage.UpdateDeck(ctx, deck); err != nil {
		return nil, model.Unavailable(err)
	}

	s.logger.Info("deck updated", "deck_id", deck.ID, "owner_id", deck.OwnerID)
	return s.resolve(deck)
}

// Get returns one of the owner's decks with its cards and leader resolved
func (s *Service) Get(ctx context.Context, ownerID model.UserID, deckID model.DeckID) (*Detail, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	deck, err := s.owned(ctx, ownerID, deckID)
	if err != nil {
		return nil, err
	}
	return s.resolve(deck)
}

// FindByName returns the owner's deck with the given name, resolved
func (s *Service) FindByName(ctx context.Context, ownerID model.UserID, name string) (*Detail, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	deck, err := s.storage.GetDeckByName(ctx, ownerID, strings.TrimSpace(name))
	if err != nil {
		return nil, model.Unavailable(err)
	}
	return s.resolve(deck)
}

// List returns the owner's decks. A non-empty nameFilter keeps only decks
// whose name contains it, ignoring case.
func (s *Service) List(ctx context.Context, ownerID model.UserID, nameFilter string) ([]*model.Deck, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	decks, err := s.storage.ListDecks(ctx, ownerID)
	if err != nil {
		return nil, model.Unavailable(err)
	}

	nameFilter = strings.TrimSpace(nameFilter)
	if nameFilter == "" {
		return decks, nil
	}

	fold := cases.Fold()
	needle := fold.String(nameFilter)
	filtered := make([]*model.Deck, 0, len(decks))
	for _, d := range decks {
		if strings.Contains(fold.String(d.Name), needle) {
			filtered = append(filtered, d)
		}
	}
	return filtered, nil
}

// Delete removes one of the owner's decks
func (s *Service) Delete(ctx context.Context, ownerID model.UserID, deckID model.DeckID) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if _, err := s.owned(ctx, ownerID, deckID); err != nil {
		return err
	}
	if err := s.storage.DeleteDeck(ctx, deckID); err != nil {
		return model.Unavailable(err)
	}

	s.logger.Info("deck deleted", "deck_id", deckID, "owner_id", ownerID)
	return nil
}

func (s *Service) owned(ctx context.Context, ownerID model.UserID, deckID model.DeckID) (*model.Deck, error) {
	deck, err := s.storage.GetDeck(ctx, deckID)
	if err != nil {
		return nil, model.Unavailable(err)
	}
	if deck.OwnerID != ownerID {
		return nil, model.ErrDeckNotFound
	}
	return deck, nil
}

func (s *Service) resolve(deck *model.Deck) (*Detail, error) {
	cards, err := s.catalog.CardsByID(deck.CardIDs)
	if err != nil {
		return nil, err
	}
	leader, err := s.catalog.LeaderByID(deck.LeaderID)
	if err != nil {
		return nil, err
	}
	faction, err := s.catalog.Faction(deck.FactionID)
	if err != nil && !errors.Is(err, model.ErrFactionNotFound) {
		return nil, err
	}
	return &Detail{Deck: deck, Cards: cards, Leader: leader, Faction: faction}, nil
}
