package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/deckduel/internal/model"
	"github.com/mcoot/deckduel/internal/services/auth"
)

// APIError represents an API error response
type APIError struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest      = "INVALID_REQUEST"
	CodeValidation          = "VALIDATION_ERROR"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeForbidden           = "FORBIDDEN"
	CodeInvalidCredentials  = "INVALID_CREDENTIALS"
	CodeUsernameExists      = "USERNAME_EXISTS"
	CodeNotFound            = "NOT_FOUND"
	CodeUserNotFound        = "USER_NOT_FOUND"
	CodeOpponentNotFound    = "OPPONENT_NOT_FOUND"
	CodeDeckNotFound        = "DECK_NOT_FOUND"
	CodePowerUpNotFound     = "POWER_UP_NOT_FOUND"
	CodeMatchNotFound       = "MATCH_NOT_FOUND"
	CodeDuplicateDeckName   = "DUPLICATE_DECK_NAME"
	CodeUnknownCards        = "UNKNOWN_CARDS"
	CodeUnknownLeader       = "UNKNOWN_LEADER"
	CodeMixedFactions       = "MIXED_FACTIONS"
	CodeLeaderMismatch      = "LEADER_FACTION_MISMATCH"
	CodeBelowMinimumTopUp   = "BELOW_MINIMUM_TOP_UP"
	CodeInsufficientBalance = "INSUFFICIENT_BALANCE"
	CodeInsufficientCredits = "INSUFFICIENT_CREDITS"
	CodeConcurrencyConflict = "CONCURRENCY_CONFLICT"
	CodeUnavailable         = "UNAVAILABLE"
	CodeInternalError       = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	if he.status == http.StatusServiceUnavailable {
		w.Header().Set("Retry-After", "1")
	}
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// Status returns the HTTP status an error is reported with
func Status(err error) int {
	return toHTTPError(err).status
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	// Errors carrying details
	var ve *model.ValidationError
	if errors.As(err, &ve) {
		return &httpError{http.StatusBadRequest, APIError{CodeValidation, "Validation failed", ve.Violations}}
	}
	var unknown *model.UnknownCardsError
	if errors.As(err, &unknown) {
		return &httpError{http.StatusBadRequest, APIError{CodeUnknownCards, "Unknown cards", unknown.Names}}
	}
	var mixed *model.MixedFactionError
	if errors.As(err, &mixed) {
		return &httpError{http.StatusBadRequest, APIError{CodeMixedFactions, "A deck may contain only one main faction", mixed.Factions}}
	}

	switch {
	// Not found
	case errors.Is(err, model.ErrUserNotFound):
		return &httpError{http.StatusNotFound, APIError{Code: CodeUserNotFound, Message: "User not found"}}
	case errors.Is(err, model.ErrOpponentNotFound):
		return &httpError{http.StatusNotFound, APIError{Code: CodeOpponentNotFound, Message: "Opponent not found"}}
	case errors.Is(err, model.ErrDeckNotFound):
		return &httpError{http.StatusNotFound, APIError{Code: CodeDeckNotFound, Message: "Deck not found"}}
	case errors.Is(err, model.ErrPowerUpNotFound):
		return &httpError{http.StatusNotFound, APIError{Code: CodePowerUpNotFound, Message: "Power-up not found"}}
	case errors.Is(err, model.ErrMatchNotFound):
		return &httpError{http.StatusNotFound, APIError{Code: CodeMatchNotFound, Message: "Match record not found"}}
	case errors.Is(err, model.ErrCardNotFound), errors.Is(err, model.ErrFactionNotFound):
		return &httpError{http.StatusNotFound, APIError{Code: CodeNotFound, Message: err.Error()}}

	// Deck conflicts
	case errors.Is(err, model.ErrDuplicateDeckName):
		return &httpError{http.StatusBadRequest, APIError{Code: CodeDuplicateDeckName, Message: "You already have a deck with this name"}}
	case errors.Is(err, model.ErrUnknownLeader):
		return &httpError{http.StatusBadRequest, APIError{Code: CodeUnknownLeader, Message: "Unknown leader"}}
	case errors.Is(err, model.ErrLeaderFactionMismatch):
		return &httpError{http.StatusBadRequest, APIError{Code: CodeLeaderMismatch, Message: err.Error()}}

	// Funds
	case errors.Is(err, model.ErrBelowMinimumTopUp):
		return &httpError{http.StatusBadRequest, APIError{Code: CodeBelowMinimumTopUp, Message: err.Error()}}
	case errors.Is(err, model.ErrInsufficientBalance):
		return &httpError{http.StatusBadRequest, APIError{Code: CodeInsufficientBalance, Message: err.Error()}}
	case errors.Is(err, model.ErrInsufficientCredits):
		return &httpError{http.StatusBadRequest, APIError{Code: CodeInsufficientCredits, Message: err.Error()}}

	// Retryable
	case errors.Is(err, model.ErrConcurrencyConflict):
		return &httpError{http.StatusServiceUnavailable, APIError{Code: CodeConcurrencyConflict, Message: "Too many concurrent updates, try again"}}
	case errors.Is(err, model.ErrUnavailable):
		return &httpError{http.StatusServiceUnavailable, APIError{Code: CodeUnavailable, Message: "Service temporarily unavailable, try again"}}

	// Auth
	case errors.Is(err, auth.ErrInvalidCredentials):
		return &httpError{http.StatusUnauthorized, APIError{Code: CodeInvalidCredentials, Message: "Invalid username or password"}}
	case errors.Is(err, auth.ErrInvalidSession):
		return &httpError{http.StatusUnauthorized, APIError{Code: CodeUnauthorized, Message: "Invalid or expired session"}}
	case errors.Is(err, model.ErrUsernameTaken):
		return &httpError{http.StatusConflict, APIError{Code: CodeUsernameExists, Message: "Username already exists"}}
	case errors.Is(err, model.ErrForbidden):
		return &httpError{http.StatusForbidden, APIError{Code: CodeForbidden, Message: "Administrator role required"}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{Code: CodeInternalError, Message: "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{Code: CodeInvalidRequest, Message: message}}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return &httpError{http.StatusUnauthorized, APIError{Code: CodeUnauthorized, Message: "Authentication required"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{Code: CodeInternalError, Message: "Internal server error"}}
}
