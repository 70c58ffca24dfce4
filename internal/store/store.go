package store

import "github.com/shehryarbajwa/browserpilot/pkg/models"

// Store aggregates one table per entity kind. All records are owned by the
// store for the process lifetime; nothing survives a restart.
type Store struct {
	Profiles      *Table[*models.BrowserProfile]
	History       *Table[*models.BrowsingHistoryItem]
	Templates     *Table[*models.TaskTemplate]
	Sessions      *Table[*models.BrowseSession]
	Executions    *Table[*models.TaskExecution]
	Conversations *Table[*models.ChatConversation]
}

// New creates an empty store
func New() *Store {
	return &Store{
		Profiles:      NewTable[*models.BrowserProfile](),
		History:       NewTable[*models.BrowsingHistoryItem](),
		Templates:     NewTable[*models.TaskTemplate](),
		Sessions:      NewTable[*models.BrowseSession](),
		Executions:    NewTable[*models.TaskExecution](),
		Conversations: NewTable[*models.ChatConversation](),
	}
}
