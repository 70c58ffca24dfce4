package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/shehryarbajwa/browserpilot/pkg/models"
)

// CreateSession handles POST /api/sessions
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req models.CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.ProfileID == "" {
		writeError(w, http.StatusBadRequest, "profileId is required")
		return
	}

	sess, err := h.sessions.Create(r.Context(), req)
	if err != nil {
		writeError(w, errorStatus(err, http.StatusBadRequest), err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, sess)
}

// GetSession handles GET /api/sessions/{id}
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	sess, err := h.sessions.Get(id)
	if err != nil {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

// ListSessions handles GET /api/sessions
func (h *Handler) ListSessions(w http.ResponseWriter, r *http.Request) {
	status := models.SessionStatus(r.URL.Query().Get("status"))

	sessions := h.sessions.List(userID(r), status)
	if sessions == nil {
		sessions = []*models.BrowseSession{}
	}
	writeJSON(w, http.StatusOK, sessions)
}

// DeleteSession handles DELETE /api/sessions/{id}
func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.sessions.Close(r.Context(), id); err != nil {
		writeError(w, errorStatus(err, http.StatusBadRequest), err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// NavigateSession handles POST /api/sessions/{id}/navigate
func (h *Handler) NavigateSession(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req models.NavigateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.URL == "" {
		writeError(w, http.StatusBadRequest, "url is required")
		return
	}

	item, err := h.sessions.Navigate(r.Context(), id, req.URL)
	if err != nil {
		writeError(w, errorStatus(err, http.StatusBadRequest), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "success",
		"url":     req.URL,
		"history": item,
	})
}

// ScrapeSession handles GET /api/sessions/{id}/scrape
func (h *Handler) ScrapeSession(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	content, err := h.sessions.Scrape(r.Context(), id)
	if err != nil {
		writeError(w, errorStatus(err, http.StatusBadRequest), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, content)
}

// GetSessionScreenshot handles GET /api/sessions/{id}/screenshot
func (h *Handler) GetSessionScreenshot(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	img, contentType, err := h.sessions.Screenshot(r.Context(), id)
	if err != nil {
		writeError(w, errorStatus(err, http.StatusBadRequest), err.Error())
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Write(img)
}
