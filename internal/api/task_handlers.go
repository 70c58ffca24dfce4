package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/shehryarbajwa/browserpilot/internal/task"
	"github.com/shehryarbajwa/browserpilot/pkg/models"
)

// CreateTemplate handles POST /api/templates
func (h *Handler) CreateTemplate(w http.ResponseWriter, r *http.Request) {
	var req models.CreateTemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if len(req.Steps) == 0 {
		writeError(w, http.StatusBadRequest, "steps must not be empty")
		return
	}
	if req.UserID == "" {
		req.UserID = userID(r)
	}

	tmpl := h.store.Templates.Create(&models.TaskTemplate{
		UserID:    req.UserID,
		Name:      req.Name,
		Category:  req.Category,
		Steps:     req.Steps,
		Variables: req.Variables,
	})

	h.actions.Record(req.UserID, "template_created", tmpl.Name, "")
	writeJSON(w, http.StatusCreated, tmpl)
}

// ListTemplates handles GET /api/templates
func (h *Handler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	templates := h.store.Templates.List(func(t *models.TaskTemplate) bool {
		return t.UserID == uid
	})
	if templates == nil {
		templates = []*models.TaskTemplate{}
	}
	writeJSON(w, http.StatusOK, templates)
}

// GetTemplate handles GET /api/templates/{id}
func (h *Handler) GetTemplate(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	tmpl, err := h.store.Templates.Get(id)
	if err != nil {
		writeError(w, http.StatusNotFound, "template not found")
		return
	}
	writeJSON(w, http.StatusOK, tmpl)
}

// DeleteTemplate handles DELETE /api/templates/{id}
func (h *Handler) DeleteTemplate(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if !h.store.Templates.Delete(id) {
		writeError(w, http.StatusNotFound, "template not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ExecuteTask handles POST /api/tasks/execute
func (h *Handler) ExecuteTask(w http.ResponseWriter, r *http.Request) {
	var req models.ExecuteTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.TemplateID == "" {
		writeError(w, http.StatusBadRequest, "templateId is required")
		return
	}
	if req.UserID == "" {
		req.UserID = userID(r)
	}

	exec, err := h.tasks.Execute(r.Context(), req)
	if err != nil {
		status := errorStatus(err, http.StatusInternalServerError)
		if errors.Is(err, task.ErrTooManyExecutions) {
			status = http.StatusTooManyRequests
		}
		writeError(w, status, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, exec)
}

// ListExecutions handles GET /api/tasks/executions
func (h *Handler) ListExecutions(w http.ResponseWriter, r *http.Request) {
	execs := h.tasks.List(userID(r))
	if execs == nil {
		execs = []*models.TaskExecution{}
	}
	writeJSON(w, http.StatusOK, execs)
}

// GetExecution handles GET /api/tasks/executions/{id}
func (h *Handler) GetExecution(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	exec, err := h.tasks.Get(id)
	if err != nil {
		writeError(w, http.StatusNotFound, "execution not found")
		return
	}
	writeJSON(w, http.StatusOK, exec)
}

// CancelExecution handles POST /api/tasks/executions/{id}/cancel
func (h *Handler) CancelExecution(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.tasks.Cancel(id); err != nil {
		writeError(w, errorStatus(err, http.StatusConflict), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cancelling"})
}
