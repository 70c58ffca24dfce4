package models

import (
	"maps"
	"slices"
	"time"
)

// TemplateStep is one unit of work in a task template
type TemplateStep struct {
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
}

// TaskTemplate is a named, reusable, ordered list of automation steps
type TaskTemplate struct {
	Meta
	UserID    string            `json:"userId"`
	Name      string            `json:"name"`
	Category  string            `json:"category,omitempty"`
	Steps     []TemplateStep    `json:"steps"`
	Variables map[string]string `json:"variables,omitempty"`
}

// Clone returns an independent copy
func (t *TaskTemplate) Clone() *TaskTemplate {
	c := *t
	c.Steps = slices.Clone(t.Steps)
	c.Variables = maps.Clone(t.Variables)
	return &c
}

// CreateTemplateRequest is the payload for creating a template
type CreateTemplateRequest struct {
	UserID    string            `json:"userId"`
	Name      string            `json:"name"`
	Category  string            `json:"category,omitempty"`
	Steps     []TemplateStep    `json:"steps"`
	Variables map[string]string `json:"variables,omitempty"`
}

// ExecutionStatus represents the current state of a task execution
type ExecutionStatus string

const (
	ExecutionRunning   ExecutionStatus = "running"
	ExecutionCompleted ExecutionStatus = "completed"
	ExecutionFailed    ExecutionStatus = "failed"
	ExecutionCancelled ExecutionStatus = "cancelled"
)

// Terminal reports whether the status admits no further transitions
func (s ExecutionStatus) Terminal() bool {
	return s != ExecutionRunning
}

// TaskExecution tracks one run of a template's ordered steps.
// Progress is 0-100 and non-decreasing while running; CompletedAt is set
// only when the execution completes or fails.
type TaskExecution struct {
	ID          string            `json:"id"`
	TemplateID  string            `json:"templateId"`
	UserID      string            `json:"userId"`
	Status      ExecutionStatus   `json:"status"`
	Progress    int               `json:"progress"`
	Logs        []string          `json:"logs"`
	Result      map[string]any    `json:"result,omitempty"`
	Parameters  map[string]string `json:"parameters,omitempty"`
	StartedAt   time.Time         `json:"startedAt"`
	CompletedAt *time.Time        `json:"completedAt,omitempty"`
}

func (e *TaskExecution) SetMeta(id string, createdAt time.Time) {
	e.ID = id
	e.StartedAt = createdAt
}

// Clone returns an independent copy. The background step loop mutates the
// stored record, so readers must never share its logs or result memory.
func (e *TaskExecution) Clone() *TaskExecution {
	c := *e
	c.Logs = slices.Clone(e.Logs)
	c.Result = maps.Clone(e.Result)
	c.Parameters = maps.Clone(e.Parameters)
	if e.CompletedAt != nil {
		at := *e.CompletedAt
		c.CompletedAt = &at
	}
	return &c
}

// ExecuteTaskRequest is the payload for starting an execution
type ExecuteTaskRequest struct {
	TemplateID string            `json:"templateId"`
	UserID     string            `json:"userId,omitempty"`
	Parameters map[string]string `json:"parameters,omitempty"`
}
