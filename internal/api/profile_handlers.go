package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/shehryarbajwa/browserpilot/pkg/models"
)

// CreateProfile handles POST /api/profiles
func (h *Handler) CreateProfile(w http.ResponseWriter, r *http.Request) {
	var req models.CreateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.UserID == "" {
		req.UserID = userID(r)
	}

	profile := h.store.Profiles.Create(&models.BrowserProfile{
		UserID:      req.UserID,
		Name:        req.Name,
		SessionData: req.SessionData,
		IsDefault:   req.IsDefault,
	})
	if profile.IsDefault {
		h.clearOtherDefaults(profile.UserID, profile.ID)
	}

	h.actions.Record(req.UserID, "profile_created", profile.Name, "")
	writeJSON(w, http.StatusCreated, profile)
}

// ListProfiles handles GET /api/profiles
func (h *Handler) ListProfiles(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	profiles := h.store.Profiles.List(func(p *models.BrowserProfile) bool {
		return p.UserID == uid
	})
	if profiles == nil {
		profiles = []*models.BrowserProfile{}
	}
	writeJSON(w, http.StatusOK, profiles)
}

// GetProfile handles GET /api/profiles/{id}
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	profile, err := h.store.Profiles.Get(id)
	if err != nil {
		writeError(w, http.StatusNotFound, "profile not found")
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// UpdateProfile handles PATCH /api/profiles/{id}
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req models.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	profile, err := h.store.Profiles.Update(id, func(p *models.BrowserProfile) {
		if req.Name != nil {
			p.Name = *req.Name
		}
		if req.SessionData != nil {
			p.SessionData = req.SessionData
		}
	})
	if err != nil {
		writeError(w, http.StatusNotFound, "profile not found")
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// DeleteProfile handles DELETE /api/profiles/{id}
func (h *Handler) DeleteProfile(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if !h.store.Profiles.Delete(id) {
		writeError(w, http.StatusNotFound, "profile not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetDefaultProfile handles POST /api/profiles/{id}/default
func (h *Handler) SetDefaultProfile(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	profile, err := h.store.Profiles.Update(id, func(p *models.BrowserProfile) {
		p.IsDefault = true
	})
	if err != nil {
		writeError(w, http.StatusNotFound, "profile not found")
		return
	}
	h.clearOtherDefaults(profile.UserID, profile.ID)
	writeJSON(w, http.StatusOK, profile)
}

// clearOtherDefaults keeps at most one default profile per user
func (h *Handler) clearOtherDefaults(uid, keepID string) {
	others := h.store.Profiles.List(func(p *models.BrowserProfile) bool {
		return p.UserID == uid && p.IsDefault && p.ID != keepID
	})
	for _, other := range others {
		h.store.Profiles.Update(other.ID, func(p *models.BrowserProfile) {
			p.IsDefault = false
		})
	}
}

// ListHistory handles GET /api/history
func (h *Handler) ListHistory(w http.ResponseWriter, r *http.Request) {
	profileID := r.URL.Query().Get("profileId")

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = parsed
	}

	items := h.store.History.List(func(item *models.BrowsingHistoryItem) bool {
		return profileID == "" || item.ProfileID == profileID
	})
	// most recent visit first
	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	if items == nil {
		items = []*models.BrowsingHistoryItem{}
	}
	writeJSON(w, http.StatusOK, items)
}
