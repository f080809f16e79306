package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/deckduel/internal/api/request"
	"github.com/mcoot/deckduel/internal/api/response"
	"github.com/mcoot/deckduel/internal/model"
	"github.com/mcoot/deckduel/internal/services/history"
	"github.com/mcoot/deckduel/internal/services/ledger"
)

// AdminHandler handles administrative endpoints. Routes must be guarded by
// RequireAdmin.
type AdminHandler struct {
	historyService *history.Service
	ledgerService  *ledger.Service
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(historyService *history.Service, ledgerService *ledger.Service) *AdminHandler {
	return &AdminHandler{
		historyService: historyService,
		ledgerService:  ledgerService,
	}
}

// Matches handles GET /api/v1/admin/matches
func (h *AdminHandler) Matches(w http.ResponseWriter, r *http.Request) {
	matches, err := h.historyService.AllMatches(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	response.OK(w, response.MatchesFromModel(matches))
}

// DeleteMatch handles DELETE /api/v1/admin/matches/{id}
func (h *AdminHandler) DeleteMatch(w http.ResponseWriter, r *http.Request) {
	id := model.MatchID(mux.Vars(r)["id"])

	if err := h.historyService.SoftDeleteMatch(r.Context(), id); err != nil {
		WriteError(w, err)
		return
	}

	response.NoContent(w)
}

// Topups handles GET /api/v1/admin/topups
func (h *AdminHandler) Topups(w http.ResponseWriter, r *http.Request) {
	topups, err := h.historyService.AllTopups(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	response.OK(w, response.TopupsFromModel(topups))
}

// Transactions handles GET /api/v1/admin/transactions
func (h *AdminHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	txs, err := h.historyService.AllTransactions(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	response.OK(w, response.TransactionsFromModel(txs))
}

// TopUpUser handles POST /api/v1/admin/users/{id}/topup
func (h *AdminHandler) TopUpUser(w http.ResponseWriter, r *http.Request) {
	userID := model.UserID(mux.Vars(r)["id"])

	var req request.AmountRequest
	if !decode(w, r, &req) {
		return
	}

	balance, err := h.ledgerService.TopUp(r.Context(), userID, req.Amount)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.OK(w, response.Balance{Balance: balance})
}
