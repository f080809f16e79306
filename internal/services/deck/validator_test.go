package deck

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/deckduel/internal/model"
	"github.com/mcoot/deckduel/internal/services/catalog"
	"github.com/mcoot/deckduel/internal/storage/memory"
	"github.com/mcoot/deckduel/internal/testutil"
)

type ValidatorSuite struct {
	suite.Suite
	catalog   *catalog.Service
	validator *Validator
	ctx       context.Context
}

func TestValidatorSuite(t *testing.T) {
	suite.Run(t, new(ValidatorSuite))
}

func (s *ValidatorSuite) SetupTest() {
	s.ctx = context.Background()
	s.catalog = catalog.New(memory.New(), "Neutral", testutil.NopLogger())
	s.Require().NoError(s.catalog.Load(s.ctx, testutil.Catalog()))
	s.validator = NewValidator(s.catalog, model.DefaultMinDeckSize)
}

func northRequest() Request {
	return Request{
		OwnerID:    "user-1",
		Name:       "Northern Push",
		CardNames:  testutil.CardNames(testutil.NorthPrefix, 1, 22),
		LeaderName: "King Foltest",
	}
}

func (s *ValidatorSuite) TestValidDeck() {
	draft, err := s.validator.Validate(s.ctx, northRequest())
	s.Require().NoError(err)

	s.Equal(model.UserID("user-1"), draft.OwnerID)
	s.Equal("Northern Push", draft.Name)
	s.Equal(testutil.FactionNorth, draft.FactionID)
	s.Equal(testutil.LeaderFoltest, draft.LeaderID)
	s.Len(draft.CardIDs, 22)
	s.Equal(model.CardID("card-north-1"), draft.CardIDs[0])
}

func (s *ValidatorSuite) TestNameIsTrimmed() {
	req := northRequest()
	req.Name = "  Northern Push  "

	draft, err := s.validator.Validate(s.ctx, req)
	s.Require().NoError(err)
	s.Equal("Northern Push", draft.Name)
}

func (s *ValidatorSuite) TestNeutralCardsDoNotChangeFaction() {
	req := northRequest()
	req.CardNames = append(testutil.CardNames(testutil.NorthPrefix, 1, 18), testutil.CardNames(testutil.NeutralPrefix, 1, 4)...)

	draft, err := s.validator.Validate(s.ctx, req)
	s.Require().NoError(err)
	s.Equal(testutil.FactionNorth, draft.FactionID)
	s.Len(draft.CardIDs, 22)
}

func (s *ValidatorSuite) TestAllNeutralDeckIsNeutral() {
	validator := NewValidator(s.catalog, 5)

	draft, err := validator.Validate(s.ctx, Request{
		OwnerID:    "user-1",
		Name:       "Wanderers",
		CardNames:  testutil.CardNames(testutil.NeutralPrefix, 1, 5),
		LeaderName: "Gaunter O'Dimm",
	})
	s.Require().NoError(err)
	s.Equal(testutil.FactionNeutral, draft.FactionID)
}

func (s *ValidatorSuite) TestDuplicateNamesAreCollapsed() {
	req := northRequest()
	req.CardNames = append(req.CardNames, req.CardNames[0], req.CardNames[1])

	draft, err := s.validator.Validate(s.ctx, req)
	s.Require().NoError(err)
	s.Len(draft.CardIDs, 22)
}

func (s *ValidatorSuite) TestDuplicatesDoNotCountTowardsMinimum() {
	req := northRequest()
	req.CardNames = append(testutil.CardNames(testutil.NorthPrefix, 1, 21), testutil.NorthPrefix+" 1")

	_, err := s.validator.Validate(s.ctx, req)
	s.ErrorIs(err, model.ErrValidation)
}

func (s *ValidatorSuite) TestReportsEveryInputViolation() {
	_, err := s.validator.Validate(s.ctx, Request{OwnerID: "user-1", Name: " "})

	var ve *model.ValidationError
	s.Require().ErrorAs(err, &ve)
	s.Len(ve.Violations, 3)
	s.Contains(ve.Violations, "deck name is required")
	s.Contains(ve.Violations, "leader is required")
}

func (s *ValidatorSuite) TestBlankCardNamesRejected() {
	req := northRequest()
	req.CardNames = append(req.CardNames, "  ")

	_, err := s.validator.Validate(s.ctx, req)
	var ve *model.ValidationError
	s.Require().ErrorAs(err, &ve)
	s.Equal([]string{"card names must not be blank"}, ve.Violations)
}

func (s *ValidatorSuite) TestUnknownCardsListed() {
	req := northRequest()
	req.CardNames = append(testutil.CardNames(testutil.NorthPrefix, 1, 20), "Geralt of Rivia", "Yennefer")

	_, err := s.validator.Validate(s.ctx, req)
	s.ErrorIs(err, model.ErrUnknownCards)

	var unknown *model.UnknownCardsError
	s.Require().ErrorAs(err, &unknown)
	s.Equal([]string{"Geralt of Rivia", "Yennefer"}, unknown.Names)
}

func (s *ValidatorSuite) TestMixedFactionsRejected() {
	req := northRequest()
	req.CardNames = append(testutil.CardNames(testutil.NorthPrefix, 1, 12), testutil.CardNames(testutil.NilfgaardPrefix, 1, 10)...)

	_, err := s.validator.Validate(s.ctx, req)
	s.ErrorIs(err, model.ErrMixedFactions)

	var mixed *model.MixedFactionError
	s.Require().ErrorAs(err, &mixed)
	s.Equal([]string{"Northern Realms", "Nilfgaard"}, mixed.Factions)
}

func (s *ValidatorSuite) TestUnknownLeaderRejected() {
	req := northRequest()
	req.LeaderName = "King Radovid"

	_, err := s.validator.Validate(s.ctx, req)
	s.ErrorIs(err, model.ErrUnknownLeader)
}

func (s *ValidatorSuite) TestLeaderMustMatchFaction() {
	req := northRequest()
	req.LeaderName = "Emhyr var Emreis"

	_, err := s.validator.Validate(s.ctx, req)
	s.ErrorIs(err, model.ErrLeaderFactionMismatch)
}

func (s *ValidatorSuite) TestNeutralLeaderCannotLeadFactionDeck() {
	req := northRequest()
	req.LeaderName = "Gaunter O'Dimm"

	_, err := s.validator.Validate(s.ctx, req)
	s.ErrorIs(err, model.ErrLeaderFactionMismatch)
}

func (s *ValidatorSuite) TestCatalogNotLoaded() {
	empty := catalog.New(memory.New(), "Neutral", testutil.NopLogger())

	_, err := NewValidator(empty, model.DefaultMinDeckSize).Validate(s.ctx, northRequest())
	s.ErrorIs(err, model.ErrCatalogNotLoaded)
}

func (s *ValidatorSuite) TestCancelledContext() {
	ctx, cancel := context.WithCancel(s.ctx)
	cancel()

	_, err := s.validator.Validate(ctx, northRequest())
	s.ErrorIs(err, context.Canceled)
}

func (s *ValidatorSuite) TestMinDeckSizeDefaults() {
	s.Equal(model.DefaultMinDeckSize, NewValidator(s.catalog, 0).MinDeckSize())
	s.Equal(10, NewValidator(s.catalog, 10).MinDeckSize())
}

func TestDecide(t *testing.T) {
	const neutral model.FactionID = "neutral"
	card := func(f model.FactionID) model.Card { return model.Card{FactionID: f} }

	tests := []struct {
		name        string
		cards       []model.Card
		faction     model.FactionID
		conflicting []model.FactionID
	}{
		{"empty", nil, neutral, nil},
		{"all neutral", []model.Card{card(neutral), card(neutral)}, neutral, nil},
		{"single faction", []model.Card{card("a"), card("a")}, "a", nil},
		{"faction with neutrals", []model.Card{card(neutral), card("a"), card(neutral)}, "a", nil},
		{"two factions", []model.Card{card("a"), card(neutral), card("b"), card("a")}, "", []model.FactionID{"a", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			faction, conflicting := decide(tt.cards, neutral)
			if faction != tt.faction {
				t.Errorf("faction = %q, want %q", faction, tt.faction)
			}
			if len(conflicting) != len(tt.conflicting) {
				t.Fatalf("conflicting = %v, want %v", conflicting, tt.conflicting)
			}
			for i := range conflicting {
				if conflicting[i] != tt.conflicting[i] {
					t.Errorf("conflicting = %v, want %v", conflicting, tt.conflicting)
				}
			}
		})
	}
}
