package apierr

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/deckduel/internal/model"
	"github.com/mcoot/deckduel/internal/services/auth"
)

func TestStatusMapping(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{model.NewValidationError("x"), http.StatusBadRequest},
		{&model.UnknownCardsError{Names: []string{"x"}}, http.StatusBadRequest},
		{&model.MixedFactionError{Factions: []string{"a", "b"}}, http.StatusBadRequest},
		{fmt.Errorf("wrapped: %w", model.ErrLeaderFactionMismatch), http.StatusBadRequest},
		{model.ErrDuplicateDeckName, http.StatusBadRequest},
		{model.ErrUnknownLeader, http.StatusBadRequest},
		{model.ErrInsufficientBalance, http.StatusBadRequest},
		{model.ErrInsufficientCredits, http.StatusBadRequest},
		{model.ErrBelowMinimumTopUp, http.StatusBadRequest},
		{model.ErrDeckNotFound, http.StatusNotFound},
		{model.ErrOpponentNotFound, http.StatusNotFound},
		{model.ErrPowerUpNotFound, http.StatusNotFound},
		{model.ErrMatchNotFound, http.StatusNotFound},
		{model.ErrConcurrencyConflict, http.StatusServiceUnavailable},
		{model.Unavailable(fmt.Errorf("commit: %w", context.DeadlineExceeded)), http.StatusServiceUnavailable},
		{auth.ErrInvalidCredentials, http.StatusUnauthorized},
		{model.ErrUsernameTaken, http.StatusConflict},
		{model.ErrForbidden, http.StatusForbidden},
		{errors.New("boom"), http.StatusInternalServerError},
		{NewInvalidRequestError("bad"), http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.status, Status(tt.err))
		})
	}
}

func TestWriteErrorListsEveryViolation(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, model.NewValidationError("deck name is required", "leader is required"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, CodeValidation, body.Error.Code)
	assert.Equal(t, []string{"deck name is required", "leader is required"}, body.Error.Details)
}

func TestWriteErrorRetryable(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, model.ErrConcurrencyConflict)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
}

func TestInternalErrorsDoNotLeakMessages(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, errors.New("dial tcp 10.0.0.1:5432: connection refused"))

	var body ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "Internal server error", body.Error.Message)
}
