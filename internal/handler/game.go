package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/patience/platform/internal/domain"
	"github.com/patience/platform/internal/game"
)

// GameService is the command and query surface of the game engine.
type GameService interface {
	CreateGame(ctx context.Context) (*game.CommandResult, error)
	GetGame(ctx context.Context, gameID uuid.UUID) (*domain.Game, error)
	ListEvents(ctx context.Context, gameID uuid.UUID) ([]domain.GameEvent, error)
	ForfeitGame(ctx context.Context, gameID uuid.UUID) (*game.CommandResult, error)
	DealStockToWaste(ctx context.Context, gameID uuid.UUID) (*game.CommandResult, error)
	ResetWasteToStock(ctx context.Context, gameID uuid.UUID) (*game.CommandResult, error)
	PlayWasteToTableau(ctx context.Context, gameID uuid.UUID, tableauIndex int) (*game.CommandResult, error)
	PlayWasteToFoundation(ctx context.Context, gameID uuid.UUID, foundationIndex int) (*game.CommandResult, error)
	PlayTableauToFoundation(ctx context.Context, gameID uuid.UUID, tableauIndex, foundationIndex int) (*game.CommandResult, error)
	PlayTableauToTableau(ctx context.Context, gameID uuid.UUID, fromIndex, toIndex, count int) (*game.CommandResult, error)
	ClaimVictory(ctx context.Context, gameID uuid.UUID) (*game.CommandResult, error)
}

// GameHandler exposes the game engine over HTTP.
type GameHandler struct {
	games GameService
}

// NewGameHandler creates a new GameHandler.
func NewGameHandler(games GameService) *GameHandler {
	return &GameHandler{games: games}
}

// Routes mounts the game endpoints on r.
func (h *GameHandler) Routes(r chi.Router) {
	r.Post("/games", h.CreateGame)
	r.Route("/games/{id}", func(r chi.Router) {
		r.Get("/", h.GetGame)
		r.Get("/events", h.ListEvents)
		r.Post("/forfeit", h.simple((GameService).ForfeitGame))
		r.Post("/stock/deal", h.simple((GameService).DealStockToWaste))
		r.Post("/waste/reset", h.simple((GameService).ResetWasteToStock))
		r.Post("/claim-victory", h.simple((GameService).ClaimVictory))
		r.Post("/waste-to-tableau", h.WasteToTableau)
		r.Post("/waste-to-foundation", h.WasteToFoundation)
		r.Post("/tableau-to-foundation", h.TableauToFoundation)
		r.Post("/tableau-to-tableau", h.TableauToTableau)
	})
}

// CreateGame handles POST /games.
func (h *GameHandler) CreateGame(w http.ResponseWriter, r *http.Request) {
	res, err := h.games.CreateGame(r.Context())
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusCreated, res)
}

// GetGame handles GET /games/{id}.
func (h *GameHandler) GetGame(w http.ResponseWriter, r *http.Request) {
	id, ok := gameID(w, r)
	if !ok {
		return
	}
	g, err := h.games.GetGame(r.Context(), id)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, g)
}

// ListEvents handles GET /games/{id}/events.
func (h *GameHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	id, ok := gameID(w, r)
	if !ok {
		return
	}
	events, err := h.games.ListEvents(r.Context(), id)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, events)
}

// simple adapts a command that takes no body.
func (h *GameHandler) simple(cmd func(GameService, context.Context, uuid.UUID) (*game.CommandResult, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := gameID(w, r)
		if !ok {
			return
		}
		res, err := cmd(h.games, r.Context(), id)
		respondCommand(w, res, err)
	}
}

type wasteToTableauRequest struct {
	TableauIndex *int `json:"tableauIndex"`
}

// WasteToTableau handles POST /games/{id}/waste-to-tableau.
func (h *GameHandler) WasteToTableau(w http.ResponseWriter, r *http.Request) {
	id, ok := gameID(w, r)
	if !ok {
		return
	}
	var req wasteToTableauRequest
	if !decodeMove(w, r, &req, func() error { return required("tableauIndex", req.TableauIndex) }) {
		return
	}
	res, err := h.games.PlayWasteToTableau(r.Context(), id, *req.TableauIndex)
	respondCommand(w, res, err)
}

type wasteToFoundationRequest struct {
	FoundationIndex *int `json:"foundationIndex"`
}

// WasteToFoundation handles POST /games/{id}/waste-to-foundation.
func (h *GameHandler) WasteToFoundation(w http.ResponseWriter, r *http.Request) {
	id, ok := gameID(w, r)
	if !ok {
		return
	}
	var req wasteToFoundationRequest
	if !decodeMove(w, r, &req, func() error { return required("foundationIndex", req.FoundationIndex) }) {
		return
	}
	res, err := h.games.PlayWasteToFoundation(r.Context(), id, *req.FoundationIndex)
	respondCommand(w, res, err)
}

type tableauToFoundationRequest struct {
	TableauIndex    *int `json:"tableauIndex"`
	FoundationIndex *int `json:"foundationIndex"`
}

// TableauToFoundation handles POST /games/{id}/tableau-to-foundation.
func (h *GameHandler) TableauToFoundation(w http.ResponseWriter, r *http.Request) {
	id, ok := gameID(w, r)
	if !ok {
		return
	}
	var req tableauToFoundationRequest
	if !decodeMove(w, r, &req, func() error {
		return errors.Join(
			required("tableauIndex", req.TableauIndex),
			required("foundationIndex", req.FoundationIndex),
		)
	}) {
		return
	}
	res, err := h.games.PlayTableauToFoundation(r.Context(), id, *req.TableauIndex, *req.FoundationIndex)
	respondCommand(w, res, err)
}

type tableauToTableauRequest struct {
	FromIndex *int `json:"fromIndex"`
	ToIndex   *int `json:"toIndex"`
	Count     *int `json:"count"`
}

// TableauToTableau handles POST /games/{id}/tableau-to-tableau.
func (h *GameHandler) TableauToTableau(w http.ResponseWriter, r *http.Request) {
	id, ok := gameID(w, r)
	if !ok {
		return
	}
	var req tableauToTableauRequest
	if !decodeMove(w, r, &req, func() error {
		return errors.Join(
			required("fromIndex", req.FromIndex),
			required("toIndex", req.ToIndex),
			required("count", req.Count),
		)
	}) {
		return
	}
	res, err := h.games.PlayTableauToTableau(r.Context(), id, *req.FromIndex, *req.ToIndex, *req.Count)
	respondCommand(w, res, err)
}

func gameID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		RespondError(w, domain.ErrValidation("invalid game id"))
		return uuid.Nil, false
	}
	return id, true
}

// decodeMove decodes the body into dst and runs validate on it, answering 400
// on failure.
func decodeMove(w http.ResponseWriter, r *http.Request, dst interface{}, validate func() error) bool {
	if err := DecodeJSON(r, dst); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body: "+err.Error()))
		return false
	}
	if err := validate(); err != nil {
		RespondError(w, domain.ErrValidation(err.Error()))
		return false
	}
	return true
}

func required(name string, v *int) error {
	if v == nil {
		return fmt.Errorf("%s is required", name)
	}
	return nil
}

func respondCommand(w http.ResponseWriter, res *game.CommandResult, err error) {
	switch {
	case err != nil:
		RespondError(w, err)
	case res.Rejected():
		RespondRejection(w, res.Rejection)
	default:
		RespondJSON(w, http.StatusOK, res)
	}
}
