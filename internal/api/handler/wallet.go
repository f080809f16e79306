package handler

import (
	"net/http"

	"github.com/mcoot/deckduel/internal/api/middleware"
	"github.com/mcoot/deckduel/internal/api/request"
	"github.com/mcoot/deckduel/internal/api/response"
	"github.com/mcoot/deckduel/internal/services/history"
	"github.com/mcoot/deckduel/internal/services/ledger"
)

// WalletHandler handles the caller's balance, credits and purchases
type WalletHandler struct {
	ledgerService  *ledger.Service
	historyService *history.Service
}

// NewWalletHandler creates a new wallet handler
func NewWalletHandler(ledgerService *ledger.Service, historyService *history.Service) *WalletHandler {
	return &WalletHandler{
		ledgerService:  ledgerService,
		historyService: historyService,
	}
}

// Show handles GET /api/v1/wallet
func (h *WalletHandler) Show(w http.ResponseWriter, r *http.Request) {
	principal := middleware.MustGetPrincipal(r.Context())

	account, err := h.ledgerService.Account(r.Context(), principal.UserID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.OK(w, response.AccountFromLedger(account))
}

// TopUp handles POST /api/v1/wallet/topup
func (h *WalletHandler) TopUp(w http.ResponseWriter, r *http.Request) {
	principal := middleware.MustGetPrincipal(r.Context())

	var req request.AmountRequest
	if !decode(w, r, &req) {
		return
	}

	balance, err := h.ledgerService.TopUp(r.Context(), principal.UserID, req.Amount)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.OK(w, response.Balance{Balance: balance})
}

// Convert handles POST /api/v1/wallet/convert
func (h *WalletHandler) Convert(w http.ResponseWriter, r *http.Request) {
	principal := middleware.MustGetPrincipal(r.Context())

	var req request.AmountRequest
	if !decode(w, r, &req) {
		return
	}

	credits, err := h.ledgerService.ConvertToPlayCredits(r.Context(), principal.UserID, req.Amount)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.OK(w, response.Credits{PlayCredits: credits})
}

// Purchase handles POST /api/v1/wallet/powerups
func (h *WalletHandler) Purchase(w http.ResponseWriter, r *http.Request) {
	principal := middleware.MustGetPrincipal(r.Context())

	var req request.PurchaseRequest
	if !decode(w, r, &req) {
		return
	}

	receipt, err := h.ledgerService.PurchasePowerUp(r.Context(), principal.UserID, req.Name, req.Amount)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.OK(w, response.ReceiptFromLedger(receipt))
}

// Topups handles GET /api/v1/wallet/topups
func (h *WalletHandler) Topups(w http.ResponseWriter, r *http.Request) {
	principal := middleware.MustGetPrincipal(r.Context())

	topups, err := h.historyService.TopupsForUser(r.Context(), principal.UserID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.OK(w, response.TopupsFromModel(topups))
}

// Transactions handles GET /api/v1/wallet/transactions
func (h *WalletHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	principal := middleware.MustGetPrincipal(r.Context())

	txs, err := h.historyService.TransactionsForUser(r.Context(), principal.UserID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.OK(w, response.TransactionsFromModel(txs))
}
