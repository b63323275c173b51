package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"roadreport/internal/model"
	"roadreport/internal/service"
)

// SessionHandler handles dialogue session endpoints
type SessionHandler struct {
	sessionSvc *service.SessionService
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessionSvc *service.SessionService) *SessionHandler {
	return &SessionHandler{sessionSvc: sessionSvc}
}

// CreateSessionRequest is the request body for starting a session
type CreateSessionRequest struct {
	Mode string `json:"mode"`
}

// Create handles POST /v1/sessions
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	mode := model.Mode(strings.ToUpper(strings.TrimSpace(req.Mode)))
	resp, err := h.sessionSvc.CreateSession(r.Context(), mode)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

// Get handles GET /v1/sessions/{id}
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	state, err := h.sessionSvc.GetSession(r.Context(), id)
	if err != nil {
		writeSessionError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, state)
}

// TurnRequest is the request body for one user turn
type TurnRequest struct {
	Text string `json:"text"`
}

// Turn handles POST /v1/sessions/{id}/turns
func (h *SessionHandler) Turn(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req TurnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	reply, err := h.sessionSvc.HandleTurn(r.Context(), id, req.Text)
	if err != nil {
		writeSessionError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, reply)
}

// Review handles GET /v1/sessions/{id}/review
func (h *SessionHandler) Review(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	entries, err := h.sessionSvc.Review(r.Context(), id)
	if err != nil {
		writeSessionError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"fields": entries})
}

// ConfirmReviewRequest carries the review-table edits
type ConfirmReviewRequest struct {
	Edits map[model.SlotID]string `json:"edits"`
}

// ConfirmReview handles POST /v1/sessions/{id}/review
func (h *SessionHandler) ConfirmReview(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req ConfirmReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	reply, err := h.sessionSvc.ConfirmReview(r.Context(), id, req.Edits)
	if err != nil {
		writeSessionError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, reply)
}

// Reset handles POST /v1/sessions/{id}/reset
func (h *SessionHandler) Reset(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	resp, err := h.sessionSvc.Reset(r.Context(), id)
	if err != nil {
		writeSessionError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func writeSessionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, "session not found")
	case errors.Is(err, service.ErrSessionSubmitted):
		writeError(w, http.StatusConflict, "report already submitted, start a new session")
	case errors.Is(err, service.ErrNotInReview):
		writeError(w, http.StatusConflict, "session is not awaiting review")
	default:
		writeError(w, http.StatusInternalServerError, "something went wrong, please try again")
	}
}
