package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"golang.org/x/text/cases"

	"github.com/mcoot/deckduel/internal/model"
	"github.com/mcoot/deckduel/internal/storage"
)

// Service serves the read-only card catalog. It is loaded once at startup,
// persisted to storage, and then answered from an in-memory index.
type Service struct {
	storage     storage.Storage
	neutralName string
	logger      *slog.Logger

	mu    sync.RWMutex
	index *index
}

type index struct {
	catalog       *model.Catalog
	cardsByName   map[string]model.Card
	cardsByID     map[model.CardID]model.Card
	leadersByName map[string]model.Leader
	leadersByID   map[model.LeaderID]model.Leader
	factionsByID  map[model.FactionID]model.Faction
	powerUpsByID  map[model.PowerUpID]model.PowerUp
	powerUpByName map[string]model.PowerUp
	neutralID     model.FactionID
}

// New creates a new catalog Service. neutralName is matched case-insensitively
// against faction names to find the neutral faction.
func New(storage storage.Storage, neutralName string, logger *slog.Logger) *Service {
	return &Service{
		storage:     storage,
		neutralName: neutralName,
		logger:      logger,
	}
}

// LoadFromFile reads a JSON catalog file, validates it and stores it
func (s *Service) LoadFromFile(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var f fileCatalog
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("parse catalog %s: %w", path, err)
	}
	return s.Load(ctx, f.toModel())
}

// LoadFromStorage indexes the catalog previously saved to storage
func (s *Service) LoadFromStorage(ctx context.Context) error {
	catalog, err := s.storage.GetCatalog(ctx)
	if err != nil {
		return err
	}
	idx, err := s.buildIndex(catalog)
	if err != nil {
		return err
	}
	s.swap(idx)
	return nil
}

// Load validates a catalog, saves it to storage and indexes it
func (s *Service) Load(ctx context.Context, catalog *model.Catalog) error {
	idx, err := s.buildIndex(catalog)
	if err != nil {
		return err
	}
	if err := s.storage.SaveCatalog(ctx, catalog); err != nil {
		return err
	}
	s.swap(idx)
	return nil
}

func (s *Service) swap(idx *index) {
	s.mu.Lock()
	s.index = idx
	s.mu.Unlock()

	s.logger.Info("catalog loaded",
		slog.Int("factions", len(idx.catalog.Factions)),
		slog.Int("cards", len(idx.catalog.Cards)),
		slog.Int("leaders", len(idx.catalog.Leaders)),
		slog.Int("power_ups", len(idx.catalog.PowerUps)),
	)
}

// buildIndex validates references and resolves the neutral faction once
func (s *Service) buildIndex(catalog *model.Catalog) (*index, error) {
	catalog = catalog.Clone()
	idx := &index{
		catalog:       catalog,
		cardsByName:   make(map[string]model.Card, len(catalog.Cards)),
		cardsByID:     make(map[model.CardID]model.Card, len(catalog.Cards)),
		leadersByName: make(map[string]model.Leader, len(catalog.Leaders)),
		leadersByID:   make(map[model.LeaderID]model.Leader, len(catalog.Leaders)),
		factionsByID:  make(map[model.FactionID]model.Faction, len(catalog.Factions)),
		powerUpsByID:  make(map[model.PowerUpID]model.PowerUp, len(catalog.PowerUps)),
		powerUpByName: make(map[string]model.PowerUp, len(catalog.PowerUps)),
	}

	var v model.Violations
	fold := cases.Fold()
	neutral := fold.String(s.neutralName)

	for _, f := range catalog.Factions {
		_, dup := idx.factionsByID[f.ID]
		v.Check(!dup, "duplicate faction id "+string(f.ID))
		idx.factionsByID[f.ID] = f
		if fold.String(f.Name) == neutral {
			v.Check(idx.neutralID == "", "more than one faction named "+s.neutralName)
			idx.neutralID = f.ID
		}
	}
	v.Check(idx.neutralID != "", "no faction named "+s.neutralName)

	for _, c := range catalog.Cards {
		v.Merge(c.Validate())
		_, known := idx.factionsByID[c.FactionID]
		v.Check(known, "card "+c.Name+" references unknown faction "+string(c.FactionID))
		_, dupName := idx.cardsByName[c.Name]
		v.Check(!dupName, "duplicate card name "+c.Name)
		_, dupID := idx.cardsByID[c.ID]
		v.Check(!dupID, "duplicate card id "+string(c.ID))
		idx.cardsByName[c.Name] = c
		idx.cardsByID[c.ID] = c
	}

	for _, l := range catalog.Leaders {
		_, known := idx.factionsByID[l.FactionID]
		v.Check(known, "leader "+l.Name+" references unknown faction "+string(l.FactionID))
		_, dup := idx.leadersByName[l.Name]
		v.Check(!dup, "duplicate leader name "+l.Name)
		idx.leadersByName[l.Name] = l
		idx.leadersByID[l.ID] = l
	}

	for _, p := range catalog.PowerUps {
		v.Merge(p.Validate())
		_, dup := idx.powerUpByName[p.Name]
		v.Check(!dup, "duplicate power-up name "+p.Name)
		idx.powerUpsByID[p.ID] = p
		idx.powerUpByName[p.Name] = p
	}

	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}
	return idx, nil
}

func (s *Service) current() (*index, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.index == nil {
		return nil, model.ErrCatalogNotLoaded
	}
	return s.index, nil
}

// IsLoaded returns whether a catalog has been loaded
func (s *Service) IsLoaded() bool {
	_, err := s.current()
	return err == nil
}

// Catalog returns a copy of the loaded catalog
func (s *Service) Catalog() (*model.Catalog, error) {
	idx, err := s.current()
	if err != nil {
		return nil, err
	}
	return idx.catalog.Clone(), nil
}

// ResolveCards looks up cards by exact name. Names that do not resolve are
// returned in unknown, in input order.
func (s *Service) ResolveCards(names []string) (cards []model.Card, unknown []string, err error) {
	idx, err := s.current()
	if err != nil {
		return nil, nil, err
	}
	for _, name := range names {
		card, ok := idx.cardsByName[name]
		if !ok {
			unknown = append(unknown, name)
			continue
		}
		cards = append(cards, card)
	}
	return cards, unknown, nil
}

// CardsByID returns the cards for the given identifiers, in order
func (s *Service) CardsByID(ids []model.CardID) ([]model.Card, error) {
	idx, err := s.current()
	if err != nil {
		return nil, err
	}
	cards := make([]model.Card, 0, len(ids))
	for _, id := range ids {
		card, ok := idx.cardsByID[id]
		if !ok {
			return nil, fmt.Errorf("%w: %s", model.ErrCardNotFound, id)
		}
		cards = append(cards, card)
	}
	return cards, nil
}

// FindLeader looks up a leader by exact name
func (s *Service) FindLeader(name string) (model.Leader, error) {
	idx, err := s.current()
	if err != nil {
		return model.Leader{}, err
	}
	leader, ok := idx.leadersByName[name]
	if !ok {
		return model.Leader{}, model.ErrUnknownLeader
	}
	return leader, nil
}

// LeaderByID looks up a leader by identifier
func (s *Service) LeaderByID(id model.LeaderID) (model.Leader, error) {
	idx, err := s.current()
	if err != nil {
		return model.Leader{}, err
	}
	leader, ok := idx.leadersByID[id]
	if !ok {
		return model.Leader{}, model.ErrUnknownLeader
	}
	return leader, nil
}

// Faction looks up a faction by identifier
func (s *Service) Faction(id model.FactionID) (model.Faction, error) {
	idx, err := s.current()
	if err != nil {
		return model.Faction{}, err
	}
	f, ok := idx.factionsByID[id]
	if !ok {
		return model.Faction{}, model.ErrFactionNotFound
	}
	return f, nil
}

// NeutralFactionID returns the identifier of the neutral faction
func (s *Service) NeutralFactionID() (model.FactionID, error) {
	idx, err := s.current()
	if err != nil {
		return "", err
	}
	return idx.neutralID, nil
}

// FindPowerUp looks up a power-up by exact name
func (s *Service) FindPowerUp(name string) (model.PowerUp, error) {
	idx, err := s.current()
	if err != nil {
		return model.PowerUp{}, err
	}
	p, ok := idx.powerUpByName[name]
	if !ok {
		return model.PowerUp{}, model.ErrPowerUpNotFound
	}
	return p, nil
}

// PowerUp looks up a power-up by identifier
func (s *Service) PowerUp(id model.PowerUpID) (model.PowerUp, error) {
	idx, err := s.current()
	if err != nil {
		return model.PowerUp{}, err
	}
	p, ok := idx.powerUpsByID[id]
	if !ok {
		return model.PowerUp{}, model.ErrPowerUpNotFound
	}
	return p, nil
}
