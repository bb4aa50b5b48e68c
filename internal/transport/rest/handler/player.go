package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"murdermystery/internal/model"
	"murdermystery/internal/service"
	"murdermystery/internal/transport/rest/middleware"
)

// PlayerHandler handles endpoints called with a player code
type PlayerHandler struct {
	gameSvc *service.GameService
	voteSvc *service.VoteService
}

// NewPlayerHandler creates a new player handler
func NewPlayerHandler(gameSvc *service.GameService, voteSvc *service.VoteService) *PlayerHandler {
	return &PlayerHandler{
		gameSvc: gameSvc,
		voteSvc: voteSvc,
	}
}

// Me handles GET /v1/me
func (h *PlayerHandler) Me(w http.ResponseWriter, r *http.Request) {
	gameCode := middleware.GetGameCode(r.Context())
	playerID := middleware.GetPlayerID(r.Context())

	self, err := h.gameSvc.Self(r.Context(), gameCode, playerID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, self)
}

// CheckAbility handles GET /v1/me/abilities/{ability}
func (h *PlayerHandler) CheckAbility(w http.ResponseWriter, r *http.Request) {
	gameCode := middleware.GetGameCode(r.Context())
	playerID := middleware.GetPlayerID(r.Context())
	kind, ok := model.ParseAbility(mux.Vars(r)["ability"])
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown ability")
		return
	}

	check, err := h.gameSvc.CheckAbility(r.Context(), gameCode, playerID, kind)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, check)
}

// TargetRequest is the request body for abilities and votes
type TargetRequest struct {
	TargetID string `json:"targetId"`
}

// UseAbility handles POST /v1/me/abilities/{ability}
func (h *PlayerHandler) UseAbility(w http.ResponseWriter, r *http.Request) {
	gameCode := middleware.GetGameCode(r.Context())
	playerID := middleware.GetPlayerID(r.Context())
	kind, ok := model.ParseAbility(mux.Vars(r)["ability"])
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown ability")
		return
	}

	var req TargetRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	res, err := h.gameSvc.UseAbility(r.Context(), gameCode, playerID, kind, req.TargetID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

// Vote handles POST /v1/me/votes
func (h *PlayerHandler) Vote(w http.ResponseWriter, r *http.Request) {
	gameCode := middleware.GetGameCode(r.Context())
	playerID := middleware.GetPlayerID(r.Context())

	var req TargetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.TargetID == "" {
		writeError(w, http.StatusBadRequest, "targetId is required")
		return
	}

	out, err := h.voteSvc.CastVote(r.Context(), gameCode, playerID, req.TargetID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, out)
}
