package actionlog

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/shehryarbajwa/browserpilot/pkg/models"
)

// DefaultCap bounds retained entries; oldest entries are evicted beyond it
const DefaultCap = 1000

// Log is an append-and-cap audit trail, most recent entry first
type Log struct {
	mu      sync.RWMutex
	entries []*models.ActionLogEntry
	cap     int
	now     func() time.Time
}

// New creates a log retaining at most capacity entries.
// capacity <= 0 falls back to DefaultCap.
func New(capacity int) *Log {
	if capacity <= 0 {
		capacity = DefaultCap
	}
	return &Log{
		cap: capacity,
		now: time.Now,
	}
}

// Append stamps the entry with an id and timestamp and inserts it at the
// head. Entries beyond the cap are discarded oldest-first.
func (l *Log) Append(entry *models.ActionLogEntry) *models.ActionLogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry.ID = uuid.New().String()
	entry.Timestamp = l.now()

	l.entries = append([]*models.ActionLogEntry{entry}, l.entries...)
	if len(l.entries) > l.cap {
		l.entries = l.entries[:l.cap]
	}
	return entry
}

// Record is shorthand for appending an action with details
func (l *Log) Record(userID, action, details, url string) {
	l.Append(&models.ActionLogEntry{
		UserID:  userID,
		Action:  action,
		Details: details,
		URL:     url,
	})
}

// List returns at most limit entries, most recent first
func (l *Log) List(limit int) []*models.ActionLogEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if limit <= 0 || limit > len(l.entries) {
		limit = len(l.entries)
	}
	out := make([]*models.ActionLogEntry, limit)
	copy(out, l.entries[:limit])
	return out
}

// Len returns the number of retained entries
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}
