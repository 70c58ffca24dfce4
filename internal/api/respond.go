package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/shehryarbajwa/browserpilot/internal/store"
)

// writeJSON writes v as a JSON response with the given status
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error body with the given status
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// errorStatus maps service errors onto the response taxonomy:
// not-found ids are 404, everything else is the caller's fallback status.
func errorStatus(err error, fallback int) int {
	if errors.Is(err, store.ErrNotFound) {
		return http.StatusNotFound
	}
	return fallback
}

// userID extracts the caller's user id. The demo model trusts the request;
// absent ids fall back to the single demo user.
func userID(r *http.Request) string {
	if id := r.URL.Query().Get("userId"); id != "" {
		return id
	}
	if id := r.Header.Get("X-User-ID"); id != "" {
		return id
	}
	return "demo-user"
}
