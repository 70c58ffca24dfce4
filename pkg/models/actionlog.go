package models

import "time"

// ActionLogEntry is one audit-trail record of a user- or system-initiated action
type ActionLogEntry struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId,omitempty"`
	Action    string    `json:"action"`
	Details   string    `json:"details,omitempty"`
	URL       string    `json:"url,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// AppendLogRequest is the payload for recording an action
type AppendLogRequest struct {
	UserID  string `json:"userId,omitempty"`
	Action  string `json:"action"`
	Details string `json:"details,omitempty"`
	URL     string `json:"url,omitempty"`
}
