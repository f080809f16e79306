// Package ledger owns every change to a user's balance, play credits,
// statistics and inventory. Each mutation runs under the affected users'
// locks and commits together with its history record.
package ledger

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"time"

	"github.com/mcoot/deckduel/internal/dependencies/clock"
	"github.com/mcoot/deckduel/internal/dependencies/idgen"
	"github.com/mcoot/deckduel/internal/lock"
	"github.com/mcoot/deckduel/internal/model"
	"github.com/mcoot/deckduel/internal/storage"
)

// Config holds the economy rules
type Config struct {
	MinTopUp         int64
	CreditUnitPrice  int64
	MaxRetries       int
	OperationTimeout time.Duration
}

// DefaultConfig returns the default economy rules
func DefaultConfig() Config {
	return Config{
		MinTopUp:         5000,
		CreditUnitPrice:  5000,
		MaxRetries:       3,
		OperationTimeout: 5 * time.Second,
	}
}

// Catalog resolves power-ups
type Catalog interface {
	FindPowerUp(name string) (model.PowerUp, error)
	PowerUp(id model.PowerUpID) (model.PowerUp, error)
}

// Service applies ledger operations
type Service struct {
	storage storage.Storage
	locks   lock.Manager
	catalog Catalog
	clock   clock.Clock
	ids     idgen.Generator
	config  Config
	logger  *slog.Logger
}

// New creates a new ledger Service
func New(
	storage storage.Storage,
	locks lock.Manager,
	catalog Catalog,
	clock clock.Clock,
	ids idgen.Generator,
	config Config,
	logger *slog.Logger,
) *Service {
	return &Service{
		storage: storage,
		locks:   locks,
		catalog: catalog,
		clock:   clock,
		ids:     ids,
		config:  config,
		logger:  logger,
	}
}

// Config returns the economy rules in effect
func (s *Service) Config() Config {
	return s.config
}

// Receipt describes a completed power-up purchase
type Receipt struct {
	Transaction *model.Transaction
	Balance     int64
	Owned       int
}

// Settlement is a resolved match waiting to be applied to both players
type Settlement struct {
	Player1ID   model.UserID
	Player2ID   model.UserID
	TotalPower1 int
	TotalPower2 int
	Result      model.MatchResult
}

// InventoryItem is an owned power-up
type InventoryItem struct {
	PowerUpID model.PowerUpID
	Name      string
	Quantity  int
}

// Account is a user's ledger state
type Account struct {
	User      *model.User
	Inventory []InventoryItem
}

// TopUp adds amount to the user's balance and records the top-up
func (s *Service) TopUp(ctx context.Context, userID model.UserID, amount int64) (int64, error) {
	if amount < s.config.MinTopUp {
		return 0, fmt.Errorf("%w: minimum is %d", model.ErrBelowMinimumTopUp, s.config.MinTopUp)
	}

	var balance int64
	err := s.mutate(ctx, "top-up", []model.UserID{userID}, func(users map[model.UserID]*model.User) (*storage.Commit, error) {
		u := users[userID]
		if u.Balance > math.MaxInt64-amount {
			return nil, model.NewValidationError("amount would overflow the balance")
		}
		now := s.clock.Now()
		u.Balance += amount
		u.UpdatedAt = now
		balance = u.Balance

		return &storage.Commit{
			Users: []*model.User{u},
			Topup: &model.HistoryTopup{
				ID:        model.TopupID(s.ids.NewID()),
				UserID:    userID,
				Amount:    amount,
				CreatedAt: now,
			},
		}, nil
	})
	if err != nil {
		return 0, err
	}
	return balance, nil
}

// ConvertToPlayCredits buys credits at CreditUnitPrice each from the balance
func (s *Service) ConvertToPlayCredits(ctx context.Context, userID model.UserID, credits int64) (int64, error) {
	if credits < 1 {
		return 0, model.NewValidationError("amount must be positive")
	}

	var total int64
	err := s.mutate(ctx, "convert", []model.UserID{userID}, func(users map[model.UserID]*model.User) (*storage.Commit, error) {
		u := users[userID]
		cost, ok := multiply(credits, s.config.CreditUnitPrice)
		if !ok || u.Balance < cost {
			return nil, fmt.Errorf("%w: %d credits cost %d, balance is %d",
				model.ErrInsufficientBalance, credits, cost, u.Balance)
		}
		u.Balance -= cost
		u.PlayCredits += credits
		u.UpdatedAt = s.clock.Now()
		total = u.PlayCredits

		return &storage.Commit{Users: []*model.User{u}}, nil
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}

// PurchasePowerUp buys quantity of the named power-up at its current price.
// The price paid is captured on the transaction line.
func (s *Service) PurchasePowerUp(ctx context.Context, userID model.UserID, name string, quantity int) (*Receipt, error) {
	if quantity < 1 {
		return nil, model.NewValidationError("quantity must be at least 1")
	}
	powerUp, err := s.catalog.FindPowerUp(name)
	if err != nil {
		return nil, err
	}

	var receipt *Receipt
	err = s.mutate(ctx, "purchase", []model.UserID{userID}, func(users map[model.UserID]*model.User) (*storage.Commit, error) {
		u := users[userID]
		line := model.TransactionLine{
			PowerUpID:   powerUp.ID,
			PowerUpName: powerUp.Name,
			Quantity:    quantity,
			UnitPrice:   powerUp.Price,
		}
		total, ok := multiply(int64(quantity), powerUp.Price)
		if !ok || u.Balance < total {
			return nil, fmt.Errorf("%w: %d x %s costs %d, balance is %d",
				model.ErrInsufficientBalance, quantity, powerUp.Name, total, u.Balance)
		}

		now := s.clock.Now()
		u.Balance -= total
		u.Inventory[powerUp.ID] += quantity
		u.UpdatedAt = now

		tx := &model.Transaction{
			ID:        model.TransactionID(s.ids.NewID()),
			UserID:    userID,
			Total:     total,
			Lines:     []model.TransactionLine{line},
			CreatedAt: now,
		}
		receipt = &Receipt{Transaction: tx, Balance: u.Balance, Owned: u.Inventory[powerUp.ID]}
		return &storage.Commit{Users: []*model.User{u}, Transaction: tx}, nil
	})
	if err != nil {
		return nil, err
	}
	return receipt, nil
}

// SettleMatch debits one play credit from each player, records the game on
// both players' statistics and appends the match record, all in one commit.
// If either player lacks credits nothing is written.
func (s *Service) SettleMatch(ctx context.Context, st Settlement) (*model.HistoryPlay, error) {
	var v model.Violations
	v.Check(st.Player1ID != "" && st.Player2ID != "", "both players are required")
	v.Check(st.Player1ID != st.Player2ID, "a player cannot play against themselves")
	v.Check(st.Result == model.ResultPlayer1 || st.Result == model.ResultPlayer2 || st.Result == model.ResultDraw,
		fmt.Sprintf("unknown match result %q", st.Result))
	if err := v.Err(); err != nil {
		return nil, err
	}

	var record *model.HistoryPlay
	ids := []model.UserID{st.Player1ID, st.Player2ID}
	err := s.mutate(ctx, "settle", ids, func(users map[model.UserID]*model.User) (*storage.Commit, error) {
		p1, p2 := users[st.Player1ID], users[st.Player2ID]
		for _, u := range []*model.User{p1, p2} {
			if u.PlayCredits < 1 {
				return nil, fmt.Errorf("%w: %s has no play credits", model.ErrInsufficientCredits, u.Username)
			}
		}

		now := s.clock.Now()
		record = &model.HistoryPlay{
			ID:          model.MatchID(s.ids.NewID()),
			Player1ID:   p1.ID,
			Player2ID:   p2.ID,
			TotalPower1: st.TotalPower1,
			TotalPower2: st.TotalPower2,
			Result:      st.Result,
			CreatedAt:   now,
		}
		switch st.Result {
		case model.ResultPlayer1:
			record.WinnerID = p1.ID
		case model.ResultPlayer2:
			record.WinnerID = p2.ID
		}

		for _, u := range []*model.User{p1, p2} {
			u.PlayCredits--
			u.RecordGame(record.WinnerID == u.ID)
			u.UpdatedAt = now
		}

		return &storage.Commit{Users: []*model.User{p1, p2}, Match: record}, nil
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// Account returns the user's ledger state with inventory names resolved
func (s *Service) Account(ctx context.Context, userID model.UserID) (*Account, error) {
	ctx, cancel := context.WithTimeout(ctx, s.config.OperationTimeout)
	defer cancel()

	u, err := s.storage.GetUser(ctx, userID)
	if err != nil {
		return nil, model.Unavailable(err)
	}

	account := &Account{User: u}
	for id, qty := range u.Inventory {
		if qty == 0 {
			continue
		}
		item := InventoryItem{PowerUpID: id, Name: string(id), Quantity: qty}
		if p, err := s.catalog.PowerUp(id); err == nil {
			item.Name = p.Name
		}
		account.Inventory = append(account.Inventory, item)
	}
	slices.SortFunc(account.Inventory, func(a, b InventoryItem) int {
		return cmp.Or(cmp.Compare(a.Name, b.Name), cmp.Compare(a.PowerUpID, b.PowerUpID))
	})
	return account, nil
}

type mutation func(users map[model.UserID]*model.User) (*storage.Commit, error)

// mutate runs fn under the users' locks against freshly loaded snapshots and
// commits its result. A version conflict reloads and reruns fn, up to
// MaxRetries times.
func (s *Service) mutate(ctx context.Context, op string, userIDs []model.UserID, fn mutation) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.OperationTimeout)
	defer cancel()

	keys := make([]string, len(userIDs))
	for i, id := range userIDs {
		keys[i] = lock.UserKey(id)
	}
	release, err := lock.AcquireAll(ctx, s.locks, keys...)
	if err != nil {
		return model.Unavailable(err)
	}
	defer release()

	for attempt := 0; attempt <= s.config.MaxRetries; attempt++ {
		users := make(map[model.UserID]*model.User, len(userIDs))
		for _, id := range userIDs {
			u, err := s.storage.GetUser(ctx, id)
			if err != nil {
				return model.Unavailable(err)
			}
			if u.Inventory == nil {
				u.Inventory = map[model.PowerUpID]int{}
			}
			users[id] = u
		}

		commit, err := fn(users)
		if err != nil {
			return err
		}

		err = s.storage.Commit(ctx, commit)
		if err == nil {
			s.logger.Info("ledger commit", "op", op, "users", userIDs, "attempt", attempt+1)
			return nil
		}
		if !errors.Is(err, model.ErrVersionConflict) {
			return model.Unavailable(err)
		}
		s.logger.Warn("ledger version conflict", "op", op, "users", userIDs, "attempt", attempt+1)
	}

	return fmt.Errorf("%w: %s gave up after %d attempts", model.ErrConcurrencyConflict, op, s.config.MaxRetries+1)
}

// multiply returns a*b for non-negative operands, reporting overflow
func multiply(a, b int64) (int64, bool) {
	if a != 0 && b > math.MaxInt64/a {
		return 0, false
	}
	return a * b, true
}
