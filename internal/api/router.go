package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/deckduel/internal/api/handler"
	"github.com/mcoot/deckduel/internal/api/middleware"
	"github.com/mcoot/deckduel/internal/api/response"
	"github.com/mcoot/deckduel/internal/services/auth"
	"github.com/mcoot/deckduel/internal/services/deck"
	"github.com/mcoot/deckduel/internal/services/history"
	"github.com/mcoot/deckduel/internal/services/ledger"
	"github.com/mcoot/deckduel/internal/services/match"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger         *slog.Logger
	AuthService    *auth.Service
	DeckService    *deck.Service
	MatchService   *match.Service
	LedgerService  *ledger.Service
	HistoryService *history.Service
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	playerHandler := handler.NewPlayerHandler(cfg.AuthService, cfg.LedgerService)
	deckHandler := handler.NewDeckHandler(cfg.DeckService)
	matchHandler := handler.NewMatchHandler(cfg.MatchService, cfg.HistoryService)
	walletHandler := handler.NewWalletHandler(cfg.LedgerService, cfg.HistoryService)
	adminHandler := handler.NewAdminHandler(cfg.HistoryService, cfg.LedgerService)

	// Create middleware
	authMiddleware := middleware.Auth(cfg.AuthService)
	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	// Player routes (no auth required for registering/logging in)
	api.HandleFunc("/players/register", playerHandler.Register).Methods(http.MethodPost)
	api.HandleFunc("/players/login", playerHandler.Login).Methods(http.MethodPost)

	// Protected player routes
	playerProtected := api.PathPrefix("/players").Subrouter()
	playerProtected.Use(authMiddleware)
	playerProtected.HandleFunc("/me", playerHandler.GetMe).Methods(http.MethodGet)

	// Deck routes
	decks := api.PathPrefix("/decks").Subrouter()
	decks.Use(authMiddleware)
	decks.HandleFunc("", deckHandler.Create).Methods(http.MethodPost)
	decks.HandleFunc("", deckHandler.List).Methods(http.MethodGet)
	decks.HandleFunc("/{id}", deckHandler.Get).Methods(http.MethodGet)
	decks.HandleFunc("/{id}", deckHandler.Update).Methods(http.MethodPut)
	decks.HandleFunc("/{id}", deckHandler.Delete).Methods(http.MethodDelete)

	// Match routes
	matches := api.PathPrefix("/matches").Subrouter()
	matches.Use(authMiddleware)
	matches.HandleFunc("", matchHandler.Play).Methods(http.MethodPost)
	matches.HandleFunc("", matchHandler.History).Methods(http.MethodGet)

	// Wallet routes
	wallet := api.PathPrefix("/wallet").Subrouter()
	wallet.Use(authMiddleware)
	wallet.HandleFunc("", walletHandler.Show).Methods(http.MethodGet)
	wallet.HandleFunc("/topup", walletHandler.TopUp).Methods(http.MethodPost)
	wallet.HandleFunc("/convert", walletHandler.Convert).Methods(http.MethodPost)
	wallet.HandleFunc("/powerups", walletHandler.Purchase).Methods(http.MethodPost)
	wallet.HandleFunc("/topups", walletHandler.Topups).Methods(http.MethodGet)
	wallet.HandleFunc("/transactions", walletHandler.Transactions).Methods(http.MethodGet)

	// Admin routes
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(authMiddleware)
	admin.Use(middleware.RequireAdmin)
	admin.HandleFunc("/matches", adminHandler.Matches).Methods(http.MethodGet)
	admin.HandleFunc("/matches/{id}", adminHandler.DeleteMatch).Methods(http.MethodDelete)
	admin.HandleFunc("/topups", adminHandler.Topups).Methods(http.MethodGet)
	admin.HandleFunc("/transactions", adminHandler.Transactions).Methods(http.MethodGet)
	admin.HandleFunc("/users/{id}/topup", adminHandler.TopUpUser).Methods(http.MethodPost)

	// Health check endpoint (no auth)
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	response.OK(w, map[string]string{"status": "ok"})
}
