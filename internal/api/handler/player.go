package handler

import (
	"net/http"

	"github.com/mcoot/deckduel/internal/api/middleware"
	"github.com/mcoot/deckduel/internal/api/request"
	"github.com/mcoot/deckduel/internal/api/response"
	"github.com/mcoot/deckduel/internal/services/auth"
	"github.com/mcoot/deckduel/internal/services/ledger"
)

// PlayerHandler handles player-related endpoints
type PlayerHandler struct {
	authService   *auth.Service
	ledgerService *ledger.Service
}

// NewPlayerHandler creates a new player handler
func NewPlayerHandler(authService *auth.Service, ledgerService *ledger.Service) *PlayerHandler {
	return &PlayerHandler{
		authService:   authService,
		ledgerService: ledgerService,
	}
}

// Register handles POST /api/v1/players/register
func (h *PlayerHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req request.RegisterRequest
	if !decode(w, r, &req) {
		return
	}

	session, err := h.authService.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.Created(w, response.AuthResponseFromSession(session))
}

// Login handles POST /api/v1/players/login
func (h *PlayerHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req request.LoginRequest
	if !decode(w, r, &req) {
		return
	}

	if req.Username == "" {
		WriteError(w, NewInvalidRequestError("username is required"))
		return
	}
	if req.Password == "" {
		WriteError(w, NewInvalidRequestError("password is required"))
		return
	}

	session, err := h.authService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.OK(w, response.AuthResponseFromSession(session))
}

// GetMe handles GET /api/v1/players/me
func (h *PlayerHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	principal := middleware.MustGetPrincipal(r.Context())

	account, err := h.ledgerService.Account(r.Context(), principal.UserID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.OK(w, response.AccountFromLedger(account))
}
