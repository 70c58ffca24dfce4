package models

import (
	"encoding/json"
	"time"
)

// BrowserProfile holds a user's saved browsing identity (cookies, settings)
// as an opaque blob the automation backend can restore.
type BrowserProfile struct {
	Meta
	UserID      string          `json:"userId"`
	Name        string          `json:"name"`
	SessionData json.RawMessage `json:"sessionData,omitempty"`
	IsDefault   bool            `json:"isDefault"`
}

// Clone returns an independent copy. SessionData is replaced wholesale on
// update, never mutated in place, so the blob may be shared.
func (p *BrowserProfile) Clone() *BrowserProfile {
	c := *p
	return &c
}

// CreateProfileRequest is the payload for creating a profile
type CreateProfileRequest struct {
	UserID      string          `json:"userId"`
	Name        string          `json:"name"`
	SessionData json.RawMessage `json:"sessionData,omitempty"`
	IsDefault   bool            `json:"isDefault,omitempty"`
}

// UpdateProfileRequest carries the fields a PATCH may change
type UpdateProfileRequest struct {
	Name        *string         `json:"name,omitempty"`
	SessionData json.RawMessage `json:"sessionData,omitempty"`
}

// BrowsingHistoryItem records one navigation made through a session.
// Items are immutable after creation.
type BrowsingHistoryItem struct {
	ID        string    `json:"id"`
	ProfileID string    `json:"profileId"`
	URL       string    `json:"url"`
	Title     string    `json:"title,omitempty"`
	Summary   string    `json:"summary,omitempty"`
	VisitedAt time.Time `json:"visitedAt"`
}

func (h *BrowsingHistoryItem) SetMeta(id string, createdAt time.Time) {
	h.ID = id
	h.VisitedAt = createdAt
}

// Clone returns an independent copy
func (h *BrowsingHistoryItem) Clone() *BrowsingHistoryItem {
	c := *h
	return &c
}
