package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/deckduel/internal/model"
	"github.com/mcoot/deckduel/internal/storage/storagetest"
)

type StorageSuite struct {
	storagetest.Suite
	memory *Storage
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.memory = New()
	s.Storage = s.memory
	s.Ctx = context.Background()
}

func (s *StorageSuite) TestReturnedUserIsACopy() {
	user := &model.User{ID: "user-1", Username: "alice", Inventory: map[model.PowerUpID]int{}}
	s.Require().NoError(s.memory.CreateUser(s.Ctx, user, &model.Credential{UserID: "user-1", Username: "alice"}))

	got, err := s.memory.GetUser(s.Ctx, "user-1")
	s.Require().NoError(err)
	got.Balance = 500
	got.Inventory["p-1"] = 3

	again, err := s.memory.GetUser(s.Ctx, "user-1")
	s.Require().NoError(err)
	s.Equal(int64(0), again.Balance)
	s.Empty(again.Inventory)
}

func (s *StorageSuite) TestCommitHonoursCancelledContext() {
	ctx, cancel := context.WithCancel(s.Ctx)
	cancel()

	err := s.memory.Commit(ctx, nil)
	s.ErrorIs(err, context.Canceled)
}
