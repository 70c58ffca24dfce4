package models

import "time"

// SessionStatus represents the current state of a browsing session
type SessionStatus string

const (
	StatusRunning   SessionStatus = "RUNNING"
	StatusCompleted SessionStatus = "COMPLETED"
	StatusError     SessionStatus = "ERROR"
	StatusTimedOut  SessionStatus = "TIMED_OUT"
)

// BrowseSession represents an active simulated browser instance
type BrowseSession struct {
	ID         string        `json:"id"`
	ProfileID  string        `json:"profileId"`
	UserID     string        `json:"userId"`
	Status     SessionStatus `json:"status"`
	CurrentURL string        `json:"currentUrl,omitempty"`
	StartedAt  time.Time     `json:"startedAt"`
	ExpiresAt  time.Time     `json:"expiresAt"`
	Timeout    int           `json:"timeout"`
	BackendID  string        `json:"-"` // automation backend handle, internal only
}

func (s *BrowseSession) SetMeta(id string, createdAt time.Time) {
	s.ID = id
	s.StartedAt = createdAt
}

// Clone returns an independent copy
func (s *BrowseSession) Clone() *BrowseSession {
	c := *s
	return &c
}

// CreateSessionRequest is the payload for creating a new session
type CreateSessionRequest struct {
	ProfileID string `json:"profileId"`
	Timeout   int    `json:"timeout,omitempty"`
}

// NavigateRequest is the payload for navigating a session
type NavigateRequest struct {
	URL string `json:"url"`
}

// PageContent is what a scrape of the current page returns
type PageContent struct {
	URL      string            `json:"url"`
	Title    string            `json:"title"`
	Text     string            `json:"text"`
	Links    []PageLink        `json:"links"`
	Images   []string          `json:"images"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// PageLink is one outbound link found on a page
type PageLink struct {
	Text string `json:"text"`
	URL  string `json:"url"`
}
