package match

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mcoot/deckduel/internal/model"
	"github.com/mcoot/deckduel/internal/services/deck"
	"github.com/mcoot/deckduel/internal/services/ledger"
	"github.com/mcoot/deckduel/internal/storage"
)

// Decks looks up a player's deck by name
type Decks interface {
	FindByName(ctx context.Context, ownerID model.UserID, name string) (*deck.Detail, error)
}

// Ledger settles a resolved match
type Ledger interface {
	SettleMatch(ctx context.Context, st ledger.Settlement) (*model.HistoryPlay, error)
}

// PlayRequest asks for a match between the requesting player's deck and a
// named opponent's deck
type PlayRequest struct {
	Player1ID       model.UserID
	Deck1Name       string
	Player2Username string
	Deck2Name       string
}

// Outcome is the settled result of a match
type Outcome struct {
	Totals
	Record          *model.HistoryPlay
	Player1Username string
	Player2Username string
	// WinnerUsername is empty on a draw
	WinnerUsername string
}

// Service resolves matches
type Service struct {
	storage storage.Storage
	decks   Decks
	ledger  Ledger
	timeout time.Duration
	logger  *slog.Logger
}

// New creates a new match Service. Each Resolve is bounded by timeout.
func New(storage storage.Storage, decks Decks, ledger Ledger, timeout time.Duration, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		decks:   decks,
		ledger:  ledger,
		timeout: timeout,
		logger:  logger,
	}
}

// Resolve plays player 1's deck against the opponent's deck and settles the
// result. Nothing is written unless the whole settlement succeeds.
func (s *Service) Resolve(ctx context.Context, req PlayRequest) (*Outcome, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req.Deck1Name = strings.TrimSpace(req.Deck1Name)
	req.Player2Username = strings.TrimSpace(req.Player2Username)
	req.Deck2Name = strings.TrimSpace(req.Deck2Name)

	var v model.Violations
	v.Check(req.Deck1Name != "", "deck_player1 is required")
	v.Check(req.Player2Username != "", "player2 is required")
	v.Check(req.Deck2Name != "", "deck_player2 is required")
	if err := v.Err(); err != nil {
		return nil, err
	}

	p1, err := s.storage.GetUser(ctx, req.Player1ID)
	if err != nil {
		return nil, model.Unavailable(err)
	}
	p2, err := s.storage.GetUserByUsername(ctx, req.Player2Username)
	if errors.Is(err, model.ErrUserNotFound) {
		return nil, fmt.Errorf("%w: %s", model.ErrOpponentNotFound, req.Player2Username)
	}
	if err != nil {
		return nil, model.Unavailable(err)
	}
	if p1.ID == p2.ID {
		return nil, model.NewValidationError("a player cannot play against themselves")
	}

	deck1, err := s.decks.FindByName(ctx, p1.ID, req.Deck1Name)
	if err != nil {
		return nil, fmt.Errorf("player 1 deck %q: %w", req.Deck1Name, model.Unavailable(err))
	}
	deck2, err := s.decks.FindByName(ctx, p2.ID, req.Deck2Name)
	if err != nil {
		return nil, fmt.Errorf("player 2 deck %q: %w", req.Deck2Name, model.Unavailable(err))
	}

	totals := ComputeOutcome(deck1.Cards, deck2.Cards)
	record, err := s.ledger.SettleMatch(ctx, ledger.Settlement{
		Player1ID:   p1.ID,
		Player2ID:   p2.ID,
		TotalPower1: totals.TotalPower1,
		TotalPower2: totals.TotalPower2,
		Result:      totals.Result,
	})
	if err != nil {
		return nil, err
	}

	outcome := &Outcome{
		Totals:          totals,
		Record:          record,
		Player1Username: p1.Username,
		Player2Username: p2.Username,
	}
	switch totals.Result {
	case model.ResultPlayer1:
		outcome.WinnerUsername = p1.Username
	case model.ResultPlayer2:
		outcome.WinnerUsername = p2.Username
	}

	s.logger.Info("match settled",
		"match_id", record.ID,
		"player1", p1.Username,
		"player2", p2.Username,
		"total_power1", totals.TotalPower1,
		"total_power2", totals.TotalPower2,
		"result", totals.Result,
	)
	return outcome, nil
}
