package model

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Common errors used across the application
var (
	// User errors
	ErrUserNotFound     = errors.New("user not found")
	ErrUsernameTaken    = errors.New("username already exists")
	ErrOpponentNotFound = errors.New("opponent not found")
	ErrForbidden        = errors.New("operation not permitted")

	// Catalog errors
	ErrCatalogNotLoaded = errors.New("catalog not loaded")
	ErrFactionNotFound  = errors.New("faction not found")
	ErrCardNotFound     = errors.New("card not found")
	ErrPowerUpNotFound  = errors.New("power-up not found")

	// Deck errors
	ErrDeckNotFound          = errors.New("deck not found")
	ErrDuplicateDeckName     = errors.New("deck name already in use")
	ErrUnknownCards          = errors.New("unknown cards")
	ErrMixedFactions         = errors.New("deck mixes more than one main faction")
	ErrUnknownLeader         = errors.New("unknown leader")
	ErrLeaderFactionMismatch = errors.New("leader faction does not match deck faction")

	// Ledger errors
	ErrInsufficientCredits = errors.New("insufficient play credits")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrBelowMinimumTopUp   = errors.New("top-up amount below minimum")

	// History errors
	ErrMatchNotFound = errors.New("match record not found")

	// Persistence errors
	ErrVersionConflict     = errors.New("record was modified concurrently")
	ErrConcurrencyConflict = errors.New("too many concurrent modifications")
	ErrUnavailable         = errors.New("service temporarily unavailable")

	// ErrValidation is matched by every *ValidationError
	ErrValidation = errors.New("validation failed")
)

// ValidationError reports every input violation found, not just the first.
type ValidationError struct {
	Violations []string
}

// NewValidationError creates a ValidationError from the given violations
func NewValidationError(violations ...string) *ValidationError {
	return &ValidationError{Violations: violations}
}

func (e *ValidationError) Error() string {
	return ErrValidation.Error() + ": " + strings.Join(e.Violations, "; ")
}

// Is lets errors.Is(err, ErrValidation) match
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Violations accumulates validation failures
type Violations []string

// Check records msg when ok is false
func (v *Violations) Check(ok bool, msg string) {
	if !ok {
		*v = append(*v, msg)
	}
}

// Merge appends the violations of a *ValidationError, or err's message otherwise
func (v *Violations) Merge(err error) {
	if err == nil {
		return
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		*v = append(*v, ve.Violations...)
		return
	}
	*v = append(*v, err.Error())
}

// Err returns a *ValidationError, or nil if nothing was recorded
func (v Violations) Err() error {
	if len(v) == 0 {
		return nil
	}
	return NewValidationError(v...)
}

// UnknownCardsError lists the card names that did not resolve in the catalog
type UnknownCardsError struct {
	Names []string
}

func (e *UnknownCardsError) Error() string {
	return ErrUnknownCards.Error() + ": " + strings.Join(e.Names, ", ")
}

func (e *UnknownCardsError) Is(target error) bool {
	return target == ErrUnknownCards
}

// MixedFactionError lists the conflicting main factions of a deck
type MixedFactionError struct {
	Factions []string
}

func (e *MixedFactionError) Error() string {
	return ErrMixedFactions.Error() + ": " + strings.Join(e.Factions, ", ")
}

func (e *MixedFactionError) Is(target error) bool {
	return target == ErrMixedFactions
}

// Unavailable reports an elapsed deadline as the retryable ErrUnavailable and
// returns any other error unchanged
func Unavailable(err error) error {
	if errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, ErrUnavailable) {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return err
}
