package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/shehryarbajwa/browserpilot/pkg/models"
)

// SendChat handles POST /api/chat
func (h *Handler) SendChat(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}
	if req.UserID == "" {
		req.UserID = userID(r)
	}

	resp, err := h.chats.Send(r.Context(), req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetConversation handles GET /api/chat
func (h *Handler) GetConversation(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.chats.Conversation(userID(r)))
}

// ParseCommand handles POST /api/command
func (h *Handler) ParseCommand(w http.ResponseWriter, r *http.Request) {
	var req models.CommandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Transcript == "" {
		writeError(w, http.StatusBadRequest, "transcript is required")
		return
	}

	intent := h.chats.ParseCommand(r.Context(), req.Transcript)
	writeJSON(w, http.StatusOK, intent)
}

// ListLogs handles GET /api/logs
func (h *Handler) ListLogs(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	writeJSON(w, http.StatusOK, h.actions.List(limit))
}

// AppendLog handles POST /api/logs
func (h *Handler) AppendLog(w http.ResponseWriter, r *http.Request) {
	var req models.AppendLogRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Action == "" {
		writeError(w, http.StatusBadRequest, "action is required")
		return
	}
	if req.UserID == "" {
		req.UserID = userID(r)
	}

	h.actions.Append(&models.ActionLogEntry{
		UserID:  req.UserID,
		Action:  req.Action,
		Details: req.Details,
		URL:     req.URL,
	})
	writeJSON(w, http.StatusOK, map[string]bool{"logged": true})
}
