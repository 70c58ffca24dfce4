package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/shehryarbajwa/browserpilot/internal/actionlog"
	"github.com/shehryarbajwa/browserpilot/internal/chat"
	"github.com/shehryarbajwa/browserpilot/internal/ratelimit"
	"github.com/shehryarbajwa/browserpilot/internal/session"
	"github.com/shehryarbajwa/browserpilot/internal/store"
	"github.com/shehryarbajwa/browserpilot/internal/task"
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	store    *store.Store
	sessions *session.Manager
	tasks    *task.Tracker
	chats    *chat.Service
	actions  *actionlog.Log
}

// NewHandler creates a new HTTP handler
func NewHandler(st *store.Store, sessions *session.Manager, tasks *task.Tracker, chats *chat.Service, actions *actionlog.Log) *Handler {
	return &Handler{
		store:    st,
		sessions: sessions,
		tasks:    tasks,
		chats:    chats,
		actions:  actions,
	}
}

// SetupRoutes configures all HTTP routes
func (h *Handler) SetupRoutes(rateLimiter *ratelimit.Limiter, requestsPerHour int) *mux.Router {
	r := mux.NewRouter()

	api := r.PathPrefix("/api").Subrouter()

	// Mutating endpoints are rate limited per user
	limited := api.PathPrefix("").Subrouter()
	limited.Use(RateLimitMiddleware(rateLimiter, requestsPerHour))

	// Profiles
	limited.HandleFunc("/profiles", h.CreateProfile).Methods("POST")
	api.HandleFunc("/profiles", h.ListProfiles).Methods("GET")
	api.HandleFunc("/profiles/{id}", h.GetProfile).Methods("GET")
	limited.HandleFunc("/profiles/{id}", h.UpdateProfile).Methods("PATCH")
	limited.HandleFunc("/profiles/{id}", h.DeleteProfile).Methods("DELETE")
	limited.HandleFunc("/profiles/{id}/default", h.SetDefaultProfile).Methods("POST")

	// History
	api.HandleFunc("/history", h.ListHistory).Methods("GET")

	// Sessions
	limited.HandleFunc("/sessions", h.CreateSession).Methods("POST")
	api.HandleFunc("/sessions", h.ListSessions).Methods("GET")
	api.HandleFunc("/sessions/{id}", h.GetSession).Methods("GET")
	limited.HandleFunc("/sessions/{id}", h.DeleteSession).Methods("DELETE")
	limited.HandleFunc("/sessions/{id}/navigate", h.NavigateSession).Methods("POST", "OPTIONS")
	api.HandleFunc("/sessions/{id}/scrape", h.ScrapeSession).Methods("GET")

	// Screenshot endpoint (not rate limited - frequent polling)
	api.HandleFunc("/sessions/{id}/screenshot", h.GetSessionScreenshot).Methods("GET")

	// Templates
	limited.HandleFunc("/templates", h.CreateTemplate).Methods("POST")
	api.HandleFunc("/templates", h.ListTemplates).Methods("GET")
	api.HandleFunc("/templates/{id}", h.GetTemplate).Methods("GET")
	limited.HandleFunc("/templates/{id}", h.DeleteTemplate).Methods("DELETE")

	// Task executions
	limited.HandleFunc("/tasks/execute", h.ExecuteTask).Methods("POST")
	api.HandleFunc("/tasks/executions", h.ListExecutions).Methods("GET")
	api.HandleFunc("/tasks/executions/{id}", h.GetExecution).Methods("GET")
	limited.HandleFunc("/tasks/executions/{id}/cancel", h.CancelExecution).Methods("POST")
	api.HandleFunc("/tasks/executions/{id}/ws", h.StreamExecution).Methods("GET")

	// Action log
	api.HandleFunc("/logs", h.ListLogs).Methods("GET")
	api.HandleFunc("/logs", h.AppendLog).Methods("POST")

	// Chat and voice commands
	limited.HandleFunc("/chat", h.SendChat).Methods("POST")
	api.HandleFunc("/chat", h.GetConversation).Methods("GET")
	limited.HandleFunc("/command", h.ParseCommand).Methods("POST")

	api.HandleFunc("/health", h.Health).Methods("GET")

	// CORS middleware
	r.Use(corsMiddleware)

	return r
}

// Health handles GET /api/health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// corsMiddleware adds CORS headers
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-User-ID")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
