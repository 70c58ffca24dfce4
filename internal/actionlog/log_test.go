package actionlog_test

import (
	"fmt"
	"testing"

	"github.com/shehryarbajwa/browserpilot/internal/actionlog"
	"github.com/shehryarbajwa/browserpilot/pkg/models"
)

func TestListMostRecentFirst(t *testing.T) {
	log := actionlog.New(0)

	for i := 0; i < 5; i++ {
		log.Append(&models.ActionLogEntry{Action: fmt.Sprintf("action-%d", i)})
	}

	entries := log.List(3)
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[0].Action != "action-4" {
		t.Fatalf("expected most recent entry first, got %q", entries[0].Action)
	}
	if entries[2].Action != "action-2" {
		t.Fatalf("expected descending recency, got %q", entries[2].Action)
	}
}

func TestListLimitLargerThanLog(t *testing.T) {
	log := actionlog.New(0)
	log.Append(&models.ActionLogEntry{Action: "only"})

	entries := log.List(100)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
}

func TestCapEvictsOldest(t *testing.T) {
	log := actionlog.New(10)

	for i := 0; i < 25; i++ {
		log.Append(&models.ActionLogEntry{Action: fmt.Sprintf("action-%d", i)})
	}

	if log.Len() != 10 {
		t.Fatalf("expected retained count capped at 10, got %d", log.Len())
	}

	entries := log.List(10)
	if entries[0].Action != "action-24" {
		t.Fatalf("expected newest entry retained, got %q", entries[0].Action)
	}
	if entries[9].Action != "action-15" {
		t.Fatalf("expected oldest retained entry to be action-15, got %q", entries[9].Action)
	}
}

func TestAppendStampsEntry(t *testing.T) {
	log := actionlog.New(0)
	entry := log.Append(&models.ActionLogEntry{Action: "navigate", URL: "https://example.test"})

	if entry.ID == "" {
		t.Fatalf("expected generated id")
	}
	if entry.Timestamp.IsZero() {
		t.Fatalf("expected timestamp to be set")
	}
}
