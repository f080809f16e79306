package handler

import (
	"net/http"

	"github.com/mcoot/deckduel/internal/api/middleware"
	"github.com/mcoot/deckduel/internal/api/request"
	"github.com/mcoot/deckduel/internal/api/response"
	"github.com/mcoot/deckduel/internal/services/history"
	"github.com/mcoot/deckduel/internal/services/match"
)

// MatchHandler handles playing matches and the caller's match history
type MatchHandler struct {
	matchService   *match.Service
	historyService *history.Service
}

// NewMatchHandler creates a new match handler
func NewMatchHandler(matchService *match.Service, historyService *history.Service) *MatchHandler {
	return &MatchHandler{
		matchService:   matchService,
		historyService: historyService,
	}
}

// Play handles POST /api/v1/matches
func (h *MatchHandler) Play(w http.ResponseWriter, r *http.Request) {
	principal := middleware.MustGetPrincipal(r.Context())

	var req request.PlayRequest
	if !decode(w, r, &req) {
		return
	}

	outcome, err := h.matchService.Resolve(r.Context(), match.PlayRequest{
		Player1ID:       principal.UserID,
		Deck1Name:       req.DeckPlayer1,
		Player2Username: req.Player2,
		Deck2Name:       req.DeckPlayer2,
	})
	if err != nil {
		WriteError(w, err)
		return
	}

	response.OK(w, response.MatchOutcomeFromService(outcome))
}

// History handles GET /api/v1/matches
func (h *MatchHandler) History(w http.ResponseWriter, r *http.Request) {
	principal := middleware.MustGetPrincipal(r.Context())

	matches, err := h.historyService.MatchesForUser(r.Context(), principal.UserID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.OK(w, response.MatchesFromModel(matches))
}
