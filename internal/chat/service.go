// Package chat implements the assistant conversation and voice-command
// intent parsing on top of the completion generator.
package chat

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/shehryarbajwa/browserpilot/internal/actionlog"
	"github.com/shehryarbajwa/browserpilot/internal/ai"
	"github.com/shehryarbajwa/browserpilot/internal/store"
	"github.com/shehryarbajwa/browserpilot/pkg/models"
)

const systemPrompt = `You are a browsing assistant embedded in a dashboard.
Answer briefly and help the user navigate, summarize pages, and run saved tasks.`

const commandPrompt = `Interpret the user's voice command for a browser dashboard.
Respond with JSON only: {"action": "navigate|search|execute_task|chat", "url": "", "query": "", "confidence": 0.0-1.0}.`

// apologyReply is returned whenever the generator fails; upstream errors
// never reach the user as errors.
const apologyReply = "Sorry, I couldn't process that right now. Please try again."

// Service manages one conversation per user
type Service struct {
	store     *store.Store
	generator ai.Generator
	actions   *actionlog.Log
}

// NewService creates a chat service
func NewService(st *store.Store, generator ai.Generator, actions *actionlog.Log) *Service {
	return &Service{
		store:     st,
		generator: generator,
		actions:   actions,
	}
}

// Send appends the user's message to their conversation, asks the
// generator for a reply, and appends that too. Generator failures degrade
// to a fixed apology reply.
func (s *Service) Send(ctx context.Context, req models.ChatRequest) (*models.ChatResponse, error) {
	if strings.TrimSpace(req.Message) == "" {
		return nil, fmt.Errorf("message is required")
	}

	conv := s.conversationFor(req.UserID)
	now := time.Now()

	s.store.Conversations.Update(conv.ID, func(c *models.ChatConversation) {
		c.Messages = append(c.Messages, models.ChatMessage{
			Role:      "user",
			Content:   req.Message,
			Timestamp: now,
		})
		if req.Context != "" {
			c.Context = req.Context
		}
	})

	userPrompt := req.Message
	if conv.Context != "" || req.Context != "" {
		pageCtx := req.Context
		if pageCtx == "" {
			pageCtx = conv.Context
		}
		userPrompt = fmt.Sprintf("Current page context: %s\n\n%s", pageCtx, req.Message)
	}

	reply, err := s.generator.Complete(ctx, systemPrompt, userPrompt, nil)
	if err != nil {
		log.Printf("chat completion failed for user %s: %v", req.UserID, err)
		reply = apologyReply
	}

	updated, _ := s.store.Conversations.Update(conv.ID, func(c *models.ChatConversation) {
		c.Messages = append(c.Messages, models.ChatMessage{
			Role:      "assistant",
			Content:   reply,
			Timestamp: time.Now(),
		})
	})

	s.actions.Record(req.UserID, "chat_message", "", "")

	return &models.ChatResponse{Reply: reply, Conversation: updated}, nil
}

// Conversation returns the user's conversation, creating it if absent
func (s *Service) Conversation(userID string) *models.ChatConversation {
	return s.conversationFor(userID)
}

// ParseCommand interprets a voice transcript as a dashboard command.
// On any generator failure the intent degrades to empty with confidence 0.
func (s *Service) ParseCommand(ctx context.Context, transcript string) *models.CommandIntent {
	intent := &models.CommandIntent{}
	if strings.TrimSpace(transcript) == "" {
		return intent
	}

	if _, err := s.generator.Complete(ctx, commandPrompt, transcript, intent); err != nil {
		log.Printf("command parse failed: %v", err)
		return &models.CommandIntent{}
	}
	if intent.Confidence < 0 || intent.Confidence > 1 {
		intent.Confidence = 0
	}
	return intent
}

// conversationFor finds the user's single conversation or creates it
func (s *Service) conversationFor(userID string) *models.ChatConversation {
	existing := s.store.Conversations.List(func(c *models.ChatConversation) bool {
		return c.UserID == userID
	})
	if len(existing) > 0 {
		return existing[0]
	}
	return s.store.Conversations.Create(&models.ChatConversation{
		UserID:   userID,
		Messages: []models.ChatMessage{},
	})
}
