package deck

import (
	"context"
	"fmt"
	"strings"

	"github.com/mcoot/deckduel/internal/model"
)

// Catalog is the read-only catalog view decks are validated and resolved against
type Catalog interface {
	ResolveCards(names []string) (cards []model.Card, unknown []string, err error)
	CardsByID(ids []model.CardID) ([]model.Card, error)
	FindLeader(name string) (model.Leader, error)
	LeaderByID(id model.LeaderID) (model.Leader, error)
	Faction(id model.FactionID) (model.Faction, error)
	NeutralFactionID() (model.FactionID, error)
}

// Request is a deck as submitted by a player: cards and leader by name
type Request struct {
	OwnerID    model.UserID
	Name       string
	CardNames  []string
	LeaderName string
}

// Validator turns a Request into an identifier-bound DeckDraft
type Validator struct {
	catalog     Catalog
	minDeckSize int
}

// NewValidator creates a Validator requiring at least minDeckSize distinct cards
func NewValidator(catalog Catalog, minDeckSize int) *Validator {
	if minDeckSize < 1 {
		minDeckSize = model.DefaultMinDeckSize
	}
	return &Validator{catalog: catalog, minDeckSize: minDeckSize}
}

// MinDeckSize returns the configured minimum number of distinct cards
func (v *Validator) MinDeckSize() int {
	return v.minDeckSize
}

// Validate checks a deck request. Input problems are reported together as a
// *model.ValidationError; catalog problems are reported in order as
// *model.UnknownCardsError, *model.MixedFactionError, model.ErrUnknownLeader
// and model.ErrLeaderFactionMismatch.
func (v *Validator) Validate(ctx context.Context, req Request) (*model.DeckDraft, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	leaderName := strings.TrimSpace(req.LeaderName)
	names, blank := distinctNames(req.CardNames)

	var violations model.Violations
	violations.Check(name != "", "deck name is required")
	violations.Check(leaderName != "", "leader is required")
	violations.Check(blank == 0, "card names must not be blank")
	violations.Check(len(names) >= v.minDeckSize,
		fmt.Sprintf("deck needs at least %d distinct cards, got %d", v.minDeckSize, len(names)))
	if err := violations.Err(); err != nil {
		return nil, err
	}

	cards, unknown, err := v.catalog.ResolveCards(names)
	if err != nil {
		return nil, err
	}
	if len(unknown) > 0 {
		return nil, &model.UnknownCardsError{Names: unknown}
	}

	neutral, err := v.catalog.NeutralFactionID()
	if err != nil {
		return nil, err
	}
	deckFaction, conflicting := decide(cards, neutral)
	if len(conflicting) > 0 {
		factionNames := make([]string, len(conflicting))
		for i, id := range conflicting {
			f, err := v.catalog.Faction(id)
			if err != nil {
				return nil, err
			}
			factionNames[i] = f.Name
		}
		return nil, &model.MixedFactionError{Factions: factionNames}
	}

	leader, err := v.catalog.FindLeader(leaderName)
	if err != nil {
		return nil, err
	}
	if leader.FactionID != deckFaction {
		return nil, fmt.Errorf("%w: %s does not lead %s", model.ErrLeaderFactionMismatch, leader.Name, v.factionName(deckFaction))
	}

	cardIDs := make([]model.CardID, len(cards))
	for i, c := range cards {
		cardIDs[i] = c.ID
	}
	return &model.DeckDraft{
		OwnerID:   req.OwnerID,
		Name:      name,
		CardIDs:   cardIDs,
		LeaderID:  leader.ID,
		FactionID: deckFaction,
	}, nil
}

func (v *Validator) factionName(id model.FactionID) string {
	if f, err := v.catalog.Faction(id); err == nil {
		return f.Name
	}
	return string(id)
}

// decide determines a deck's faction from its cards. Every non-neutral
// faction present is a main faction; a deck may have at most one. With no
// main faction the deck is neutral. When more than one main faction is
// present they are all returned, in order of first appearance.
func decide(cards []model.Card, neutral model.FactionID) (deckFaction model.FactionID, conflicting []model.FactionID) {
	var main []model.FactionID
	seen := make(map[model.FactionID]bool)
	for _, c := range cards {
		if c.FactionID == neutral || seen[c.FactionID] {
			continue
		}
		seen[c.FactionID] = true
		main = append(main, c.FactionID)
	}
	switch len(main) {
	case 0:
		return neutral, nil
	case 1:
		return main[0], nil
	default:
		return "", main
	}
}

// distinctNames trims and de-duplicates card names, keeping first occurrence
// order, and counts blank entries
func distinctNames(names []string) (distinct []string, blank int) {
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			blank++
			continue
		}
		if seen[n] {
			continue
		}
		seen[n] = true
		distinct = append(distinct, n)
	}
	return distinct, blank
}
