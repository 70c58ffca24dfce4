package models

import (
	"slices"
	"time"
)

// ChatMessage is one turn in a conversation
type ChatMessage struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// ChatConversation holds a user's message history with the assistant.
// The demo model keeps at most one conversation per user.
type ChatConversation struct {
	Meta
	UserID   string        `json:"userId"`
	Messages []ChatMessage `json:"messages"`
	Context  string        `json:"context,omitempty"`
}

// Clone returns an independent copy
func (c *ChatConversation) Clone() *ChatConversation {
	cp := *c
	cp.Messages = slices.Clone(c.Messages)
	return &cp
}

// ChatRequest is the payload for sending a chat message
type ChatRequest struct {
	UserID  string `json:"userId,omitempty"`
	Message string `json:"message"`
	Context string `json:"context,omitempty"`
}

// ChatResponse carries the assistant's reply
type ChatResponse struct {
	Reply        string            `json:"reply"`
	Conversation *ChatConversation `json:"conversation"`
}

// CommandRequest is the payload for parsing a voice-command transcript
type CommandRequest struct {
	Transcript string `json:"transcript"`
}

// CommandIntent is the structured interpretation of a voice command.
// Confidence 0 means the transcript could not be interpreted.
type CommandIntent struct {
	Action     string  `json:"action"`
	URL        string  `json:"url,omitempty"`
	Query      string  `json:"query,omitempty"`
	Confidence float64 `json:"confidence"`
}
