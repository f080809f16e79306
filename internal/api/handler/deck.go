package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/deckduel/internal/api/middleware"
	"github.com/mcoot/deckduel/internal/api/request"
	"github.com/mcoot/deckduel/internal/api/response"
	"github.com/mcoot/deckduel/internal/model"
	"github.com/mcoot/deckduel/internal/services/deck"
)

// DeckHandler handles the caller's decks
type DeckHandler struct {
	deckService *deck.Service
}

// NewDeckHandler creates a new deck handler
func NewDeckHandler(deckService *deck.Service) *DeckHandler {
	return &DeckHandler{deckService: deckService}
}

func deckRequest(ownerID model.UserID, req request.DeckRequest) deck.Request {
	return deck.Request{
		OwnerID:    ownerID,
		Name:       req.Name,
		CardNames:  req.Cards,
		LeaderName: req.Leader,
	}
}

// Create handles POST /api/v1/decks
func (h *DeckHandler) Create(w http.ResponseWriter, r *http.Request) {
	principal := middleware.MustGetPrincipal(r.Context())

	var req request.DeckRequest
	if !decode(w, r, &req) {
		return
	}

	created, err := h.deckService.Create(r.Context(), deckRequest(principal.UserID, req))
	if err != nil {
		WriteError(w, err)
		return
	}

	response.Created(w, response.DeckSavedFromService(created))
}

// List handles GET /api/v1/decks?name=
func (h *DeckHandler) List(w http.ResponseWriter, r *http.Request) {
	principal := middleware.MustGetPrincipal(r.Context())

	decks, err := h.deckService.List(r.Context(), principal.UserID, r.URL.Query().Get("name"))
	if err != nil {
		WriteError(w, err)
		return
	}

	response.OK(w, response.DecksFromModel(decks))
}

// Get handles GET /api/v1/decks/{id}
func (h *DeckHandler) Get(w http.ResponseWriter, r *http.Request) {
	principal := middleware.MustGetPrincipal(r.Context())
	deckID := model.DeckID(mux.Vars(r)["id"])

	detail, err := h.deckService.Get(r.Context(), principal.UserID, deckID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.OK(w, response.DeckDetailFromService(detail))
}

// Update handles PUT /api/v1/decks/{id}
func (h *DeckHandler) Update(w http.ResponseWriter, r *http.Request) {
	principal := middleware.MustGetPrincipal(r.Context())
	deckID := model.DeckID(mux.Vars(r)["id"])

	var req request.DeckRequest
	if !decode(w, r, &req) {
		return
	}

	updated, err := h.deckService.Update(r.Context(), deckID, deckRequest(principal.UserID, req))
	if err != nil {
		WriteError(w, err)
		return
	}

	response.OK(w, response.DeckSavedFromService(updated))
}

// Delete handles DELETE /api/v1/decks/{id}
func (h *DeckHandler) Delete(w http.ResponseWriter, r *http.Request) {
	principal := middleware.MustGetPrincipal(r.Context())
	deckID := model.DeckID(mux.Vars(r)["id"])

	if err := h.deckService.Delete(r.Context(), principal.UserID, deckID); err != nil {
		WriteError(w, err)
		return
	}

	response.NoContent(w)
}
