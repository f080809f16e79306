// Package storagetest holds the behaviour every storage backend must share.
// Backend packages embed Suite and set NewStorage in their SetupTest.
package storagetest

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/deckduel/internal/model"
	"github.com/mcoot/deckduel/internal/storage"
)

// Suite is a conformance suite for storage.Storage implementations
type Suite struct {
	suite.Suite
	Storage storage.Storage
	Ctx     context.Context
}

var baseTime = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

func (s *Suite) newUser(id model.UserID, username string) *model.User {
	return &model.User{
		ID:        id,
		Username:  username,
		Role:      model.RolePlayer,
		Inventory: map[model.PowerUpID]int{},
		CreatedAt: baseTime,
		UpdatedAt: baseTime,
	}
}

func (s *Suite) createUser(id model.UserID, username string) *model.User {
	user := s.newUser(id, username)
	err := s.Storage.CreateUser(s.Ctx, user, &model.Credential{
		UserID:       id,
		Username:     username,
		PasswordHash: "hash-" + username,
		CreatedAt:    baseTime,
	})
	s.Require().NoError(err)
	return user
}

// User tests

func (s *Suite) TestCreateAndGetUser() {
	s.createUser("user-1", "alice")

	byID, err := s.Storage.GetUser(s.Ctx, "user-1")
	s.Require().NoError(err)
	s.Equal("alice", byID.Username)
	s.Equal(model.RolePlayer, byID.Role)

	byName, err := s.Storage.GetUserByUsername(s.Ctx, "alice")
	s.Require().NoError(err)
	s.Equal(model.UserID("user-1"), byName.ID)

	cred, err := s.Storage.GetCredential(s.Ctx, "alice")
	s.Require().NoError(err)
	s.Equal("hash-alice", cred.PasswordHash)
	s.Equal(model.UserID("user-1"), cred.UserID)
}

func (s *Suite) TestCreateUserDuplicateUsername() {
	s.createUser("user-1", "alice")

	err := s.Storage.CreateUser(s.Ctx, s.newUser("user-2", "alice"), &model.Credential{
		UserID:   "user-2",
		Username: "alice",
	})
	s.ErrorIs(err, model.ErrUsernameTaken)
}

func (s *Suite) TestGetUserNotFound() {
	_, err := s.Storage.GetUser(s.Ctx, "nonexistent")
	s.ErrorIs(err, model.ErrUserNotFound)

	_, err = s.Storage.GetUserByUsername(s.Ctx, "nobody")
	s.ErrorIs(err, model.ErrUserNotFound)

	_, err = s.Storage.GetCredential(s.Ctx, "nobody")
	s.ErrorIs(err, model.ErrUserNotFound)
}

// Catalog tests

func (s *Suite) TestCatalogNotLoaded() {
	_, err := s.Storage.GetCatalog(s.Ctx)
	s.ErrorIs(err, model.ErrCatalogNotLoaded)
}

func (s *Suite) TestSaveAndGetCatalog() {
	catalog := &model.Catalog{
		Factions:  []model.Faction{{ID: "f-1", Name: "Northern Realms"}, {ID: "f-2", Name: "Neutral"}},
		Abilities: []model.Ability{{ID: "a-1", Name: "Spy"}},
		CardTypes: []model.CardType{{ID: "t-1", Name: "Melee"}},
		Cards: []model.Card{
			{ID: "c-1", Name: "Foltest's Guard", FactionID: "f-1", TypeID: "t-1", AbilityIDs: []model.AbilityID{"a-1"}, Power: 5},
		},
		Leaders:  []model.Leader{{ID: "l-1", Name: "Foltest", FactionID: "f-1", Effect: "Clear weather"}},
		PowerUps: []model.PowerUp{{ID: "p-1", Name: "Horn", Price: 1500}},
	}
	s.Require().NoError(s.Storage.SaveCatalog(s.Ctx, catalog))

	loaded, err := s.Storage.GetCatalog(s.Ctx)
	s.Require().NoError(err)
	s.Len(loaded.Factions, 2)
	s.Len(loaded.Cards, 1)
	s.Equal(5, loaded.Cards[0].Power)
	s.Equal([]model.AbilityID{"a-1"}, loaded.Cards[0].AbilityIDs)
	s.Equal(model.FactionID("f-1"), loaded.Leaders[0].FactionID)
	s.Equal(int64(1500), loaded.PowerUps[0].Price)

	// Saving again replaces the catalog
	catalog.PowerUps[0].Price = 2000
	s.Require().NoError(s.Storage.SaveCatalog(s.Ctx, catalog))
	loaded, err = s.Storage.GetCatalog(s.Ctx)
	s.Require().NoError(err)
	s.Require().Len(loaded.PowerUps, 1)
	s.Equal(int64(2000), loaded.PowerUps[0].Price)
}

// Deck tests

func (s *Suite) newDeck(id model.DeckID, owner model.UserID, name string) *model.Deck {
	return &model.Deck{
		ID:         id,
		Name:       name,
		OwnerID:    owner,
		CardIDs:    []model.CardID{"c-1", "c-2"},
		LeaderID:   "l-1",
		FactionID:  "f-1",
		TotalCards: 2,
		CreatedAt:  baseTime,
		UpdatedAt:  baseTime,
	}
}

func (s *Suite) TestCreateAndGetDeck() {
	s.createUser("user-1", "alice")
	s.Require().NoError(s.Storage.CreateDeck(s.Ctx, s.newDeck("deck-1", "user-1", "Aggro")))

	deck, err := s.Storage.GetDeck(s.Ctx, "deck-1")
	s.Require().NoError(err)
	s.Equal("Aggro", deck.Name)
	s.Equal([]model.CardID{"c-1", "c-2"}, deck.CardIDs)
	s.Equal(model.LeaderID("l-1"), deck.LeaderID)

	byName, err := s.Storage.GetDeckByName(s.Ctx, "user-1", "Aggro")
	s.Require().NoError(err)
	s.Equal(model.DeckID("deck-1"), byName.ID)
}

func (s *Suite) TestDeckNotFound() {
	_, err := s.Storage.GetDeck(s.Ctx, "missing")
	s.ErrorIs(err, model.ErrDeckNotFound)

	_, err = s.Storage.GetDeckByName(s.Ctx, "user-1", "missing")
	s.ErrorIs(err, model.ErrDeckNotFound)

	s.ErrorIs(s.Storage.DeleteDeck(s.Ctx, "missing"), model.ErrDeckNotFound)
	s.ErrorIs(s.Storage.UpdateDeck(s.Ctx, s.newDeck("missing", "user-1", "X")), model.ErrDeckNotFound)
}

func (s *Suite) TestDuplicateDeckNamePerOwner() {
	s.createUser("user-1", "alice")
	s.createUser("user-2", "bob")
	s.Require().NoError(s.Storage.CreateDeck(s.Ctx, s.newDeck("deck-1", "user-1", "Aggro")))

	err := s.Storage.CreateDeck(s.Ctx, s.newDeck("deck-2", "user-1", "Aggro"))
	s.ErrorIs(err, model.ErrDuplicateDeckName)

	// Another owner may reuse the name
	s.NoError(s.Storage.CreateDeck(s.Ctx, s.newDeck("deck-3", "user-2", "Aggro")))
}

func (s *Suite) TestConcurrentCreateDeckSameName() {
	s.createUser("user-1", "alice")

	const n = 8
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := range n {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := model.DeckID("deck-" + string(rune('a'+i)))
			errs[i] = s.Storage.CreateDeck(s.Ctx, s.newDeck(id, "user-1", "Same"))
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			s.ErrorIs(err, model.ErrDuplicateDeckName)
		}
	}
	s.Equal(1, succeeded)
}

func (s *Suite) TestUpdateDeck() {
	s.createUser("user-1", "alice")
	s.Require().NoError(s.Storage.CreateDeck(s.Ctx, s.newDeck("deck-1", "user-1", "Aggro")))
	s.Require().NoError(s.Storage.CreateDeck(s.Ctx, s.newDeck("deck-2", "user-1", "Control")))

	// Keeping its own name is allowed
	deck := s.newDeck("deck-1", "user-1", "Aggro")
	deck.CardIDs = []model.CardID{"c-3"}
	deck.TotalCards = 1
	s.Require().NoError(s.Storage.UpdateDeck(s.Ctx, deck))

	// Taking another deck's name is not
	deck.Name = "Control"
	s.ErrorIs(s.Storage.UpdateDeck(s.Ctx, deck), model.ErrDuplicateDeckName)

	// Renaming frees the old name
	deck.Name = "Tempo"
	s.Require().NoError(s.Storage.UpdateDeck(s.Ctx, deck))
	_, err := s.Storage.GetDeckByName(s.Ctx, "user-1", "Aggro")
	s.ErrorIs(err, model.ErrDeckNotFound)

	got, err := s.Storage.GetDeckByName(s.Ctx, "user-1", "Tempo")
	s.Require().NoError(err)
	s.Equal([]model.CardID{"c-3"}, got.CardIDs)
	s.Equal(1, got.TotalCards)
}

func (s *Suite) TestListAndDeleteDecks() {
	s.createUser("user-1", "alice")
	s.createUser("user-2", "bob")
	s.Require().NoError(s.Storage.CreateDeck(s.Ctx, s.newDeck("deck-1", "user-1", "Zeta")))
	s.Require().NoError(s.Storage.CreateDeck(s.Ctx, s.newDeck("deck-2", "user-1", "alpha")))
	s.Require().NoError(s.Storage.CreateDeck(s.Ctx, s.newDeck("deck-3", "user-2", "Other")))

	decks, err := s.Storage.ListDecks(s.Ctx, "user-1")
	s.Require().NoError(err)
	s.Require().Len(decks, 2)
	s.Equal("alpha", decks[0].Name)
	s.Equal("Zeta", decks[1].Name)

	s.Require().NoError(s.Storage.DeleteDeck(s.Ctx, "deck-1"))
	decks, err = s.Storage.ListDecks(s.Ctx, "user-1")
	s.Require().NoError(err)
	s.Len(decks, 1)

	// The deleted deck's name can be reused
	s.NoError(s.Storage.CreateDeck(s.Ctx, s.newDeck("deck-4", "user-1", "Zeta")))
}

// Commit tests

func (s *Suite) TestCommitIncrementsVersion() {
	s.createUser("user-1", "alice")

	user, err := s.Storage.GetUser(s.Ctx, "user-1")
	s.Require().NoError(err)
	s.Equal(int64(0), user.Version)

	user.Balance = 10000
	user.Inventory["p-1"] = 2
	s.Require().NoError(s.Storage.Commit(s.Ctx, &storage.Commit{Users: []*model.User{user}}))
	s.Equal(int64(1), user.Version)

	stored, err := s.Storage.GetUser(s.Ctx, "user-1")
	s.Require().NoError(err)
	s.Equal(int64(1), stored.Version)
	s.Equal(int64(10000), stored.Balance)
	s.Equal(2, stored.Inventory["p-1"])
}

func (s *Suite) TestCommitVersionConflict() {
	s.createUser("user-1", "alice")
	s.createUser("user-2", "bob")

	first, err := s.Storage.GetUser(s.Ctx, "user-1")
	s.Require().NoError(err)
	stale, err := s.Storage.GetUser(s.Ctx, "user-1")
	s.Require().NoError(err)
	other, err := s.Storage.GetUser(s.Ctx, "user-2")
	s.Require().NoError(err)

	first.Balance = 100
	s.Require().NoError(s.Storage.Commit(s.Ctx, &storage.Commit{Users: []*model.User{first}}))

	// A stale write fails as a whole, including the other user and the history record
	stale.Balance = 999
	other.Balance = 999
	err = s.Storage.Commit(s.Ctx, &storage.Commit{
		Users: []*model.User{other, stale},
		Topup: &model.HistoryTopup{ID: "topup-1", UserID: "user-1", Amount: 999, CreatedAt: baseTime},
	})
	s.ErrorIs(err, model.ErrVersionConflict)

	stored, err := s.Storage.GetUser(s.Ctx, "user-1")
	s.Require().NoError(err)
	s.Equal(int64(100), stored.Balance)

	storedOther, err := s.Storage.GetUser(s.Ctx, "user-2")
	s.Require().NoError(err)
	s.Equal(int64(0), storedOther.Balance)
	s.Equal(int64(0), storedOther.Version)

	topups, err := s.Storage.ListTopups(s.Ctx, "")
	s.Require().NoError(err)
	s.Empty(topups)
}

// History tests

func (s *Suite) commitMatch(id model.MatchID, p1, p2 model.UserID, at time.Time) {
	s.Require().NoError(s.Storage.Commit(s.Ctx, &storage.Commit{
		Match: &model.HistoryPlay{
			ID:          id,
			Player1ID:   p1,
			Player2ID:   p2,
			TotalPower1: 10,
			TotalPower2: 5,
			Result:      model.ResultPlayer1,
			WinnerID:    p1,
			CreatedAt:   at,
		},
	}))
}

func (s *Suite) TestMatchHistoryNewestFirst() {
	s.createUser("user-1", "alice")
	s.createUser("user-2", "bob")
	s.createUser("user-3", "carol")

	s.commitMatch("match-1", "user-1", "user-2", baseTime)
	s.commitMatch("match-2", "user-2", "user-3", baseTime.Add(time.Minute))
	s.commitMatch("match-3", "user-3", "user-1", baseTime.Add(2*time.Minute))

	all, err := s.Storage.ListMatches(s.Ctx, "")
	s.Require().NoError(err)
	s.Require().Len(all, 3)
	s.Equal(model.MatchID("match-3"), all[0].ID)
	s.Equal(model.MatchID("match-1"), all[2].ID)

	forUser, err := s.Storage.ListMatches(s.Ctx, "user-1")
	s.Require().NoError(err)
	s.Require().Len(forUser, 2)
	s.Equal(model.MatchID("match-3"), forUser[0].ID)
	s.Equal(model.MatchID("match-1"), forUser[1].ID)

	match, err := s.Storage.GetMatch(s.Ctx, "match-2")
	s.Require().NoError(err)
	s.Equal(model.ResultPlayer1, match.Result)
	s.Equal(model.UserID("user-2"), match.WinnerID)
}

func (s *Suite) TestSoftDeleteMatchHidesIt() {
	s.createUser("user-1", "alice")
	s.createUser("user-2", "bob")
	s.commitMatch("match-1", "user-1", "user-2", baseTime)
	s.commitMatch("match-2", "user-1", "user-2", baseTime.Add(time.Minute))

	s.Require().NoError(s.Storage.SoftDeleteMatch(s.Ctx, "match-1", baseTime.Add(time.Hour)))

	matches, err := s.Storage.ListMatches(s.Ctx, "user-1")
	s.Require().NoError(err)
	s.Require().Len(matches, 1)
	s.Equal(model.MatchID("match-2"), matches[0].ID)

	_, err = s.Storage.GetMatch(s.Ctx, "match-1")
	s.ErrorIs(err, model.ErrMatchNotFound)

	// Deleting twice reports not found
	s.ErrorIs(s.Storage.SoftDeleteMatch(s.Ctx, "match-1", baseTime), model.ErrMatchNotFound)
	s.ErrorIs(s.Storage.SoftDeleteMatch(s.Ctx, "missing", baseTime), model.ErrMatchNotFound)
}

func (s *Suite) TestTopupsAndTransactions() {
	s.createUser("user-1", "alice")
	s.createUser("user-2", "bob")

	s.Require().NoError(s.Storage.Commit(s.Ctx, &storage.Commit{
		Topup: &model.HistoryTopup{ID: "topup-1", UserID: "user-1", Amount: 5000, CreatedAt: baseTime},
	}))
	s.Require().NoError(s.Storage.Commit(s.Ctx, &storage.Commit{
		Topup: &model.HistoryTopup{ID: "topup-2", UserID: "user-2", Amount: 7000, CreatedAt: baseTime.Add(time.Minute)},
	}))
	s.Require().NoError(s.Storage.Commit(s.Ctx, &storage.Commit{
		Transaction: &model.Transaction{
			ID:     "tx-1",
			UserID: "user-1",
			Total:  3000,
			Lines: []model.TransactionLine{
				{PowerUpID: "p-1", PowerUpName: "Horn", Quantity: 2, UnitPrice: 1500},
			},
			CreatedAt: baseTime.Add(2 * time.Minute),
		},
	}))

	all, err := s.Storage.ListTopups(s.Ctx, "")
	s.Require().NoError(err)
	s.Require().Len(all, 2)
	s.Equal(model.TopupID("topup-2"), all[0].ID)

	own, err := s.Storage.ListTopups(s.Ctx, "user-1")
	s.Require().NoError(err)
	s.Require().Len(own, 1)
	s.Equal(int64(5000), own[0].Amount)

	txs, err := s.Storage.ListTransactions(s.Ctx, "user-1")
	s.Require().NoError(err)
	s.Require().Len(txs, 1)
	s.Equal(int64(3000), txs[0].Total)
	s.Require().Len(txs[0].Lines, 1)
	s.Equal(model.TransactionLine{PowerUpID: "p-1", PowerUpName: "Horn", Quantity: 2, UnitPrice: 1500}, txs[0].Lines[0])

	none, err := s.Storage.ListTransactions(s.Ctx, "user-2")
	s.Require().NoError(err)
	s.Empty(none)
}
