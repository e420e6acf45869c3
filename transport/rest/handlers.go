package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/tictactoe"
)

var errBadBody = errors.New("request body is invalid")

type moveRequest struct {
	Cell *int `json:"cell"`
}

type jumpRequest struct {
	Ply *int `json:"ply"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (that *Server) createGame(w http.ResponseWriter, r *http.Request) {
	view, err := that.uGame.CreateGame(r.Context())
	that.respond(w, http.StatusCreated, view, err)
}

func (that *Server) getGame(w http.ResponseWriter, r *http.Request) {
	view, err := that.uGame.GetViewState(r.Context(), chi.URLParam(r, "id"))
	that.respond(w, http.StatusOK, view, err)
}

func (that *Server) endGame(w http.ResponseWriter, r *http.Request) {
	if err := that.uGame.EndGame(r.Context(), chi.URLParam(r, "id")); err != nil {
		that.writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (that *Server) applyMove(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Cell == nil {
		that.writeError(w, errBadBody)
		return
	}

	view, err := that.uGame.ApplyMove(r.Context(), chi.URLParam(r, "id"), *req.Cell)
	that.respond(w, http.StatusOK, view, err)
}

func (that *Server) jumpTo(w http.ResponseWriter, r *http.Request) {
	var req jumpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Ply == nil {
		that.writeError(w, errBadBody)
		return
	}

	view, err := that.uGame.JumpTo(r.Context(), chi.URLParam(r, "id"), *req.Ply)
	that.respond(w, http.StatusOK, view, err)
}

func (that *Server) toggleOrder(w http.ResponseWriter, r *http.Request) {
	view, err := that.uGame.ToggleOrder(r.Context(), chi.URLParam(r, "id"))
	that.respond(w, http.StatusOK, view, err)
}

func (that *Server) respond(w http.ResponseWriter, status int, view tictactoe.ViewState, err error) {
	if err != nil {
		that.writeError(w, err)
		return
	}

	that.writeJSON(w, status, view)
}

func (that *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, apperror.ErrGameNotFound):
		status = http.StatusNotFound
	case errors.Is(err, errBadBody),
		errors.Is(err, apperror.ErrInvalidCell),
		errors.Is(err, apperror.ErrInvalidPly):
		status = http.StatusBadRequest
	default:
		that.logger.Error("request failed", "error", err)
	}

	that.writeJSON(w, status, errorResponse{Error: err.Error()})
}

func (that *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		that.logger.Error("failed to write response", "error", err)
	}
}
