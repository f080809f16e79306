package testutil

import (
	"context"
	"time"

	"github.com/mcoot/deckduel/internal/model"
	"github.com/mcoot/deckduel/internal/storage"
)

// User returns a player with the given funds and an empty inventory
func User(id model.UserID, username string, balance, credits int64) *model.User {
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return &model.User{
		ID:          id,
		Username:    username,
		Role:        model.RolePlayer,
		Balance:     balance,
		PlayCredits: credits,
		Inventory:   map[model.PowerUpID]int{},
		CreatedAt:   created,
		UpdatedAt:   created,
	}
}

// SeedUser stores a player with the given funds and a placeholder credential
func SeedUser(ctx context.Context, store storage.Storage, id model.UserID, username string, balance, credits int64) (*model.User, error) {
	u := User(id, username, balance, credits)
	cred := &model.Credential{UserID: id, Username: username, PasswordHash: "x", CreatedAt: u.CreatedAt}
	if err := store.CreateUser(ctx, u, cred); err != nil {
		return nil, err
	}
	return u, nil
}
