package models

import "time"

// Meta carries the identity fields the store stamps on every record.
type Meta struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
}

// SetMeta is called by the store when a record is created.
func (m *Meta) SetMeta(id string, createdAt time.Time) {
	m.ID = id
	m.CreatedAt = createdAt
}
