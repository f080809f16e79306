// Package history answers queries over settled matches, top-ups and
// purchases. Records are only ever written by the ledger's commits.
package history

import (
	"context"
	"log/slog"
	"time"

	"github.com/mcoot/deckduel/internal/dependencies/clock"
	"github.com/mcoot/deckduel/internal/model"
	"github.com/mcoot/deckduel/internal/storage"
)

// Service reads history records, newest first
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	timeout time.Duration
	logger  *slog.Logger
}

// New creates a new history Service
func New(storage storage.Storage, clock clock.Clock, timeout time.Duration, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		clock:   clock,
		timeout: timeout,
		logger:  logger,
	}
}

// MatchesForUser returns the matches the user played in
func (s *Service) MatchesForUser(ctx context.Context, userID model.UserID) ([]*model.HistoryPlay, error) {
	return list(ctx, s.timeout, func(ctx context.Context) ([]*model.HistoryPlay, error) {
		return s.storage.ListMatches(ctx, userID)
	})
}

// AllMatches returns every user's matches
func (s *Service) AllMatches(ctx context.Context) ([]*model.HistoryPlay, error) {
	return s.MatchesForUser(ctx, "")
}

// TopupsForUser returns the user's top-ups
func (s *Service) TopupsForUser(ctx context.Context, userID model.UserID) ([]*model.HistoryTopup, error) {
	return list(ctx, s.timeout, func(ctx context.Context) ([]*model.HistoryTopup, error) {
		return s.storage.ListTopups(ctx, userID)
	})
}

// AllTopups returns every user's top-ups
func (s *Service) AllTopups(ctx context.Context) ([]*model.HistoryTopup, error) {
	return s.TopupsForUser(ctx, "")
}

// TransactionsForUser returns the user's power-up purchases
func (s *Service) TransactionsForUser(ctx context.Context, userID model.UserID) ([]*model.Transaction, error) {
	return list(ctx, s.timeout, func(ctx context.Context) ([]*model.Transaction, error) {
		return s.storage.ListTransactions(ctx, userID)
	})
}

// AllTransactions returns every user's power-up purchases
func (s *Service) AllTransactions(ctx context.Context) ([]*model.Transaction, error) {
	return s.TransactionsForUser(ctx, "")
}

// SoftDeleteMatch hides a match record from every query. It is an
// administrative correction; the players' statistics are left as they are.
func (s *Service) SoftDeleteMatch(ctx context.Context, id model.MatchID) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.storage.SoftDeleteMatch(ctx, id, s.clock.Now()); err != nil {
		return model.Unavailable(err)
	}
	s.logger.Info("match soft deleted", "match_id", id)
	return nil
}

func list[T any](ctx context.Context, timeout time.Duration, fetch func(context.Context) ([]T, error)) ([]T, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	items, err := fetch(ctx)
	if err != nil {
		return nil, model.Unavailable(err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}
