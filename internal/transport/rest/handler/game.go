package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"murdermystery/internal/model"
	"murdermystery/internal/service"
)

// GameHandler handles host-facing game endpoints
type GameHandler struct {
	gameSvc *service.GameService
	voteSvc *service.VoteService
}

// NewGameHandler creates a new game handler
func NewGameHandler(gameSvc *service.GameService, voteSvc *service.VoteService) *GameHandler {
	return &GameHandler{
		gameSvc: gameSvc,
		voteSvc: voteSvc,
	}
}

// CreateGameRequest is the request body for creating a lobby
type CreateGameRequest struct {
	Settings model.GameSettings `json:"settings"`
}

// Create handles POST /v1/games
func (h *GameHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateGameRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	g, err := h.gameSvc.CreateLobby(r.Context(), req.Settings)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"gameCode": g.Code,
		"gameId":   g.ID,
	})
}

// StartSessionRequest is the request body for a one-shot start
type StartSessionRequest struct {
	Players  []string           `json:"players"`
	Settings model.GameSettings `json:"settings"`
}

// StartSession handles POST /v1/games/start
func (h *GameHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	var req StartSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	start, err := h.gameSvc.StartSession(r.Context(), req.Players, req.Settings)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, start)
}

// List handles GET /v1/games
func (h *GameHandler) List(w http.ResponseWriter, r *http.Request) {
	games, err := h.gameSvc.ListGames(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"games": games})
}

// Get handles GET /v1/games/{code}
func (h *GameHandler) Get(w http.ResponseWriter, r *http.Request) {
	view, err := h.gameSvc.GetGame(r.Context(), mux.Vars(r)["code"])
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// Stats handles GET /v1/games/{code}/stats
func (h *GameHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.gameSvc.Stats(r.Context(), mux.Vars(r)["code"])
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

// Join handles POST /v1/games/{code}/join
func (h *GameHandler) Join(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	var req model.JoinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.gameSvc.JoinLobby(r.Context(), code, req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// Start handles POST /v1/games/{code}/start
func (h *GameHandler) Start(w http.ResponseWriter, r *http.Request) {
	g, err := h.gameSvc.StartGame(r.Context(), mux.Vars(r)["code"])
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": string(g.Status)})
}

// End handles POST /v1/games/{code}/end
func (h *GameHandler) End(w http.ResponseWriter, r *http.Request) {
	g, err := h.gameSvc.EndGame(r.Context(), mux.Vars(r)["code"])
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": string(g.Status)})
}

// Reset handles POST /v1/games/{code}/reset
func (h *GameHandler) Reset(w http.ResponseWriter, r *http.Request) {
	g, err := h.gameSvc.ResetSession(r.Context(), mux.Vars(r)["code"])
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status": string(g.Status),
		"gameId": g.ID,
	})
}

// Delete handles DELETE /v1/games/{code}
func (h *GameHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.gameSvc.DeleteGame(r.Context(), mux.Vars(r)["code"]); err != nil {
		writeServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// KillRequest is the request body for a host-recorded kill
type KillRequest struct {
	MurdererID string `json:"murdererId"`
	VictimID   string `json:"victimId"`
}

// Kill handles POST /v1/games/{code}/kill
func (h *GameHandler) Kill(w http.ResponseWriter, r *http.Request) {
	var req KillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.MurdererID == "" || req.VictimID == "" {
		writeError(w, http.StatusBadRequest, "murdererId and victimId are required")
		return
	}

	res, err := h.gameSvc.RecordKill(r.Context(), mux.Vars(r)["code"], req.MurdererID, req.VictimID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

// Votes handles GET /v1/games/{code}/votes
func (h *GameHandler) Votes(w http.ResponseWriter, r *http.Request) {
	results, err := h.voteSvc.Results(r.Context(), mux.Vars(r)["code"])
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"results": results})
}

// ResetVotes handles DELETE /v1/games/{code}/votes
func (h *GameHandler) ResetVotes(w http.ResponseWriter, r *http.Request) {
	if err := h.voteSvc.ResetVotes(r.Context(), mux.Vars(r)["code"]); err != nil {
		writeServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
