package factory

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/deckduel/internal/config"
	"github.com/mcoot/deckduel/internal/lock"
	"github.com/mcoot/deckduel/internal/model"
	"github.com/mcoot/deckduel/internal/services/deck"
	"github.com/mcoot/deckduel/internal/services/match"
	redisstorage "github.com/mcoot/deckduel/internal/storage/redis"
	"github.com/mcoot/deckduel/internal/testutil"
)

type IntegrationSuite struct {
	suite.Suite
	app *TestApp
	ctx context.Context
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationSuite))
}

func (s *IntegrationSuite) SetupTest() {
	s.app = NewTestApp()
	s.ctx = context.Background()
}

func (s *IntegrationSuite) register(username string) model.UserID {
	session, err := s.app.AuthService.Register(s.ctx, username, "password1")
	s.Require().NoError(err)
	return session.Principal.UserID
}

func (s *IntegrationSuite) fund(userID model.UserID, credits int64) {
	_, err := s.app.LedgerService.TopUp(s.ctx, userID, credits*5000)
	s.Require().NoError(err)
	_, err = s.app.LedgerService.ConvertToPlayCredits(s.ctx, userID, credits)
	s.Require().NoError(err)
}

func (s *IntegrationSuite) buildDeck(owner model.UserID, name, prefix, leader string) {
	_, err := s.app.DeckService.Create(s.ctx, deck.Request{
		OwnerID:    owner,
		Name:       name,
		CardNames:  testutil.CardNames(prefix, 1, 22),
		LeaderName: leader,
	})
	s.Require().NoError(err)
}

// Test: Complete flow from registration to match history
func (s *IntegrationSuite) TestCompleteMatchFlow() {
	// Step 1: Two players register and buy credits
	alice := s.register("alice")
	bob := s.register("bob")
	s.fund(alice, 2)
	s.fund(bob, 2)

	// Step 2: Each builds a deck
	s.buildDeck(alice, "North", testutil.NorthPrefix, "King Foltest")
	s.buildDeck(bob, "Empire", testutil.NilfgaardPrefix, "Emhyr var Emreis")

	// Step 3: Alice challenges bob
	outcome, err := s.app.MatchService.Resolve(s.ctx, match.PlayRequest{
		Player1ID:       alice,
		Deck1Name:       "North",
		Player2Username: "bob",
		Deck2Name:       "Empire",
	})
	s.Require().NoError(err)
	s.Equal(model.ResultPlayer1, outcome.Result)
	s.Equal("alice", outcome.WinnerUsername)

	// Step 4: Bob challenges back with the same decks reversed
	outcome, err = s.app.MatchService.Resolve(s.ctx, match.PlayRequest{
		Player1ID:       bob,
		Deck1Name:       "Empire",
		Player2Username: "alice",
		Deck2Name:       "North",
	})
	s.Require().NoError(err)
	s.Equal(model.ResultPlayer2, outcome.Result)

	// Step 5: Statistics and history reflect both matches
	account, err := s.app.LedgerService.Account(s.ctx, alice)
	s.Require().NoError(err)
	s.Equal(2, account.User.GamesPlayed)
	s.Equal(2, account.User.GamesWon)
	s.Equal(int64(0), account.User.PlayCredits)

	account, err = s.app.LedgerService.Account(s.ctx, bob)
	s.Require().NoError(err)
	s.Equal(0, account.User.GamesWon)
	s.InDelta(0.0, account.User.WinRate, 0.001)

	matches, err := s.app.HistoryService.MatchesForUser(s.ctx, bob)
	s.Require().NoError(err)
	s.Len(matches, 2)

	all, err := s.app.HistoryService.AllMatches(s.ctx)
	s.Require().NoError(err)
	s.Len(all, 2)

	topups, err := s.app.HistoryService.AllTopups(s.ctx)
	s.Require().NoError(err)
	s.Len(topups, 2)
}

// Test: Purchases and matches racing on the same account never lose an update
func (s *IntegrationSuite) TestConcurrentLedgerTraffic() {
	alice := s.register("alice")
	bob := s.register("bob")
	s.fund(alice, 5)
	s.fund(bob, 5)
	_, err := s.app.LedgerService.TopUp(s.ctx, alice, 15000)
	s.Require().NoError(err)
	s.buildDeck(alice, "North", testutil.NorthPrefix, "King Foltest")
	s.buildDeck(bob, "Empire", testutil.NilfgaardPrefix, "Emhyr var Emreis")

	var wg sync.WaitGroup
	for range 5 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := s.app.MatchService.Resolve(s.ctx, match.PlayRequest{
				Player1ID:       alice,
				Deck1Name:       "North",
				Player2Username: "bob",
				Deck2Name:       "Empire",
			})
			s.NoError(err)
		}()
		go func() {
			defer wg.Done()
			_, err := s.app.LedgerService.PurchasePowerUp(s.ctx, alice, "Scorch", 1)
			s.NoError(err)
		}()
	}
	wg.Wait()

	account, err := s.app.LedgerService.Account(s.ctx, alice)
	s.Require().NoError(err)
	s.Equal(5, account.User.GamesPlayed)
	s.Equal(int64(0), account.User.PlayCredits)
	s.Equal(int64(0), account.User.Balance)
	s.Require().Len(account.Inventory, 1)
	s.Equal(5, account.Inventory[0].Quantity)
}

// Test: Deleting a deck does not affect recorded matches
func (s *IntegrationSuite) TestMatchHistorySurvivesDeckDeletion() {
	alice := s.register("alice")
	bob := s.register("bob")
	s.fund(alice, 1)
	s.fund(bob, 1)
	s.buildDeck(alice, "North", testutil.NorthPrefix, "King Foltest")
	s.buildDeck(bob, "Empire", testutil.NilfgaardPrefix, "Emhyr var Emreis")

	_, err := s.app.MatchService.Resolve(s.ctx, match.PlayRequest{
		Player1ID:       alice,
		Deck1Name:       "North",
		Player2Username: "bob",
		Deck2Name:       "Empire",
	})
	s.Require().NoError(err)

	decks, err := s.app.DeckService.List(s.ctx, alice, "")
	s.Require().NoError(err)
	s.Require().Len(decks, 1)
	s.Require().NoError(s.app.DeckService.Delete(s.ctx, alice, decks[0].ID))

	matches, err := s.app.HistoryService.MatchesForUser(s.ctx, alice)
	s.Require().NoError(err)
	s.Require().Len(matches, 1)
	s.Equal(113, matches[0].TotalPower1)
}

// Test: The custom rule set is honoured end to end
func (s *IntegrationSuite) TestCustomRules() {
	rules := config.DefaultRules()
	rules.MinDeckSize = 5
	rules.MinTopUp = 100
	rules.CreditUnitPrice = 100
	s.app = NewTestAppWithRules(rules)

	alice := s.register("alice")
	_, err := s.app.LedgerService.TopUp(s.ctx, alice, 100)
	s.Require().NoError(err)
	credits, err := s.app.LedgerService.ConvertToPlayCredits(s.ctx, alice, 1)
	s.Require().NoError(err)
	s.Equal(int64(1), credits)

	_, err = s.app.DeckService.Create(s.ctx, deck.Request{
		OwnerID:    alice,
		Name:       "Tiny",
		CardNames:  testutil.CardNames(testutil.NorthPrefix, 1, 5),
		LeaderName: "King Foltest",
	})
	s.Require().NoError(err)
}

func TestNewWithMemoryStorage(t *testing.T) {
	cfg := config.Config{
		StorageType:   config.StorageMemory,
		LockType:      config.LockLocal,
		CatalogPath:   "../../data/catalog.json",
		JWTSecret:     "secret",
		AdminUsername: "root",
		AdminPassword: "rootpass",
		Rules:         config.DefaultRules(),
	}

	app, err := New(t.Context(), cfg, testutil.NopLogger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = app.Close() })

	if !app.CatalogService.IsLoaded() {
		t.Fatal("catalog not loaded")
	}
	session, err := app.AuthService.Login(t.Context(), "root", "rootpass")
	if err != nil {
		t.Fatalf("admin login: %v", err)
	}
	if !session.Principal.IsAdmin() {
		t.Fatal("bootstrapped account is not an admin")
	}
}

func TestNewWithoutCatalogFails(t *testing.T) {
	cfg := config.Config{
		StorageType: config.StorageMemory,
		CatalogPath: "does-not-exist.json",
		Rules:       config.DefaultRules(),
	}

	if _, err := New(t.Context(), cfg, nil); err == nil {
		t.Fatal("expected an error with no catalog available")
	}
}

func TestNewWithRedis(t *testing.T) {
	mini := miniredis.RunT(t)

	cfg := config.Config{
		StorageType: config.StorageRedis,
		LockType:    config.LockRedis,
		RedisURL:    "redis://" + mini.Addr(),
		CatalogPath: "../../data/catalog.json",
		JWTSecret:   "secret",
		Rules:       config.DefaultRules(),
	}

	app, err := New(t.Context(), cfg, testutil.NopLogger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = app.Close() })

	if _, ok := app.Storage.(*redisstorage.Storage); !ok {
		t.Fatalf("storage is %T, want redis", app.Storage)
	}
	if _, ok := app.Locks.(*lock.Redis); !ok {
		t.Fatalf("locks are %T, want redis", app.Locks)
	}

	// A second process sharing the instance finds the stored catalog
	cfg.CatalogPath = ""
	second, err := New(t.Context(), cfg, testutil.NopLogger())
	if err != nil {
		t.Fatalf("New without catalog file: %v", err)
	}
	t.Cleanup(func() { _ = second.Close() })
	if !second.CatalogService.IsLoaded() {
		t.Fatal("catalog not loaded from storage")
	}
}

func TestNewFallsBackToStoredCatalog(t *testing.T) {
	mini := miniredis.RunT(t)

	cfg := config.Config{
		StorageType: config.StorageRedis,
		LockType:    config.LockLocal,
		RedisURL:    "redis://" + mini.Addr(),
		CatalogPath: "../../data/catalog.json",
		JWTSecret:   "secret",
		Rules:       config.DefaultRules(),
	}
	first, err := New(t.Context(), cfg, testutil.NopLogger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = first.Close() })

	logger, logs := testutil.CaptureLogger()
	cfg.CatalogPath = "missing.json"
	second, err := New(t.Context(), cfg, logger)
	if err != nil {
		t.Fatalf("New with missing catalog file: %v", err)
	}
	t.Cleanup(func() { _ = second.Close() })

	if !second.CatalogService.IsLoaded() {
		t.Fatal("catalog not loaded from storage")
	}
	if !strings.Contains(logs.String(), "could not load catalog file") {
		t.Fatalf("expected a fallback warning, got %q", logs.String())
	}
}
