package match

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/deckduel/internal/dependencies/mocks"
	"github.com/mcoot/deckduel/internal/lock"
	"github.com/mcoot/deckduel/internal/model"
	"github.com/mcoot/deckduel/internal/services/catalog"
	"github.com/mcoot/deckduel/internal/services/deck"
	"github.com/mcoot/deckduel/internal/services/ledger"
	"github.com/mcoot/deckduel/internal/storage/memory"
	"github.com/mcoot/deckduel/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	storage *memory.Storage
	decks   *deck.Service
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.storage = memory.New()
	clock := mocks.NewMockClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	ids := mocks.NewSequentialIDs()
	logger := testutil.NopLogger()

	cat := catalog.New(s.storage, "Neutral", logger)
	s.Require().NoError(cat.Load(s.ctx, testutil.Catalog()))

	s.decks = deck.New(s.storage, deck.NewValidator(cat, model.DefaultMinDeckSize), cat, clock, ids, 5*time.Second, logger)
	ledgerService := ledger.New(s.storage, lock.NewLocal(), cat, clock, ids, ledger.DefaultConfig(), logger)
	s.service = New(s.storage, s.decks, ledgerService, time.Second, logger)

	s.seed("alice", 2)
	s.seed("bob", 1)
}

func (s *ServiceSuite) seed(username string, credits int64) {
	_, err := testutil.SeedUser(s.ctx, s.storage, model.UserID(username), username, 0, credits)
	s.Require().NoError(err)
}

// northDeck totals 113, nilfgaardDeck totals 110
func (s *ServiceSuite) northDeck(owner model.UserID, name string) {
	_, err := s.decks.Create(s.ctx, deck.Request{
		OwnerID:    owner,
		Name:       name,
		CardNames:  testutil.CardNames(testutil.NorthPrefix, 1, 22),
		LeaderName: "King Foltest",
	})
	s.Require().NoError(err)
}

func (s *ServiceSuite) nilfgaardDeck(owner model.UserID, name string) {
	_, err := s.decks.Create(s.ctx, deck.Request{
		OwnerID:    owner,
		Name:       name,
		CardNames:  testutil.CardNames(testutil.NilfgaardPrefix, 1, 22),
		LeaderName: "Emhyr var Emreis",
	})
	s.Require().NoError(err)
}

func (s *ServiceSuite) user(id model.UserID) *model.User {
	u, err := s.storage.GetUser(s.ctx, id)
	s.Require().NoError(err)
	return u
}

func play(deck1, opponent, deck2 string) PlayRequest {
	return PlayRequest{Player1ID: "alice", Deck1Name: deck1, Player2Username: opponent, Deck2Name: deck2}
}

func (s *ServiceSuite) TestPlayerOneWins() {
	s.northDeck("alice", "north")
	s.nilfgaardDeck("bob", "empire")

	outcome, err := s.service.Resolve(s.ctx, play("north", "bob", "empire"))
	s.Require().NoError(err)

	s.Equal(113, outcome.TotalPower1)
	s.Equal(110, outcome.TotalPower2)
	s.Equal(model.ResultPlayer1, outcome.Result)
	s.Equal("alice", outcome.WinnerUsername)
	s.Equal("Total power Player 1: 113, Total power Player 2: 110. Player 1 Menang!", outcome.Message())
	s.Equal(model.UserID("alice"), outcome.Record.WinnerID)

	alice, bob := s.user("alice"), s.user("bob")
	s.Equal(int64(1), alice.PlayCredits)
	s.Equal(int64(0), bob.PlayCredits)
	s.Equal(1, alice.GamesWon)
	s.Equal(0, bob.GamesWon)
	s.Equal(1, bob.GamesPlayed)

	matches, err := s.storage.ListMatches(s.ctx, "bob")
	s.Require().NoError(err)
	s.Len(matches, 1)
}

func (s *ServiceSuite) TestPlayerTwoWins() {
	s.nilfgaardDeck("alice", "empire")
	s.northDeck("bob", "north")

	outcome, err := s.service.Resolve(s.ctx, play("empire", "bob", "north"))
	s.Require().NoError(err)

	s.Equal(model.ResultPlayer2, outcome.Result)
	s.Equal("bob", outcome.WinnerUsername)
	s.Equal("Total power Player 1: 110, Total power Player 2: 113. Player 2 Menang!", outcome.Message())
	s.Equal(1, s.user("bob").GamesWon)
}

func (s *ServiceSuite) TestEqualPowerIsDraw() {
	s.nilfgaardDeck("alice", "empire")
	s.nilfgaardDeck("bob", "empire")

	outcome, err := s.service.Resolve(s.ctx, play("empire", "bob", "empire"))
	s.Require().NoError(err)

	s.Equal(model.ResultDraw, outcome.Result)
	s.Empty(outcome.WinnerUsername)
	s.Empty(outcome.Record.WinnerID)
	s.Equal("Total power Player 1: 110, Total power Player 2: 110. Seri!", outcome.Message())
	s.Equal(0, s.user("alice").GamesWon)
	s.Equal(0, s.user("bob").GamesWon)
	s.Equal(1, s.user("alice").GamesPlayed)
}

func (s *ServiceSuite) TestUnknownOpponent() {
	s.northDeck("alice", "north")

	_, err := s.service.Resolve(s.ctx, play("north", "carol", "any"))
	s.ErrorIs(err, model.ErrOpponentNotFound)
}

func (s *ServiceSuite) TestDeckMustBelongToPlayer() {
	s.northDeck("alice", "north")
	s.nilfgaardDeck("bob", "empire")

	_, err := s.service.Resolve(s.ctx, play("empire", "bob", "empire"))
	s.ErrorIs(err, model.ErrDeckNotFound)

	_, err = s.service.Resolve(s.ctx, play("north", "bob", "north"))
	s.ErrorIs(err, model.ErrDeckNotFound)

	s.Equal(int64(2), s.user("alice").PlayCredits)
}

func (s *ServiceSuite) TestInsufficientCreditsChangesNothing() {
	s.seed("carol", 0)
	s.northDeck("alice", "north")
	s.nilfgaardDeck("carol", "empire")

	_, err := s.service.Resolve(s.ctx, play("north", "carol", "empire"))
	s.ErrorIs(err, model.ErrInsufficientCredits)

	s.Equal(int64(2), s.user("alice").PlayCredits)
	s.Equal(0, s.user("alice").GamesPlayed)
	matches, _ := s.storage.ListMatches(s.ctx, "")
	s.Empty(matches)
}

func (s *ServiceSuite) TestSelfPlayRejected() {
	s.northDeck("alice", "north")

	_, err := s.service.Resolve(s.ctx, play("north", "alice", "north"))
	s.ErrorIs(err, model.ErrValidation)
}

func (s *ServiceSuite) TestMissingFieldsListed() {
	_, err := s.service.Resolve(s.ctx, PlayRequest{Player1ID: "alice"})

	var ve *model.ValidationError
	s.Require().ErrorAs(err, &ve)
	s.Len(ve.Violations, 3)
}

func (s *ServiceSuite) TestReplayRecomputesSameOutcome() {
	s.seed("dave", 5)
	s.northDeck("alice", "north")
	s.nilfgaardDeck("dave", "empire")

	first, err := s.service.Resolve(s.ctx, play("north", "dave", "empire"))
	s.Require().NoError(err)
	second, err := s.service.Resolve(s.ctx, play("north", "dave", "empire"))
	s.Require().NoError(err)

	s.Equal(first.Totals, second.Totals)
	s.NotEqual(first.Record.ID, second.Record.ID)
}
