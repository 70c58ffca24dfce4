package chat_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/shehryarbajwa/browserpilot/internal/actionlog"
	"github.com/shehryarbajwa/browserpilot/internal/ai"
	"github.com/shehryarbajwa/browserpilot/internal/chat"
	"github.com/shehryarbajwa/browserpilot/internal/store"
	"github.com/shehryarbajwa/browserpilot/pkg/models"
)

func TestSendCreatesSingleConversation(t *testing.T) {
	ctx := context.Background()
	st := store.New()
	svc := chat.NewService(st, ai.NewMockGenerator("Here is your summary."), actionlog.New(0))

	resp, err := svc.Send(ctx, models.ChatRequest{UserID: "u1", Message: "Summarize this page"})
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if resp.Reply != "Here is your summary." {
		t.Fatalf("unexpected reply %q", resp.Reply)
	}
	if len(resp.Conversation.Messages) != 2 {
		t.Fatalf("expected user+assistant messages, got %d", len(resp.Conversation.Messages))
	}

	if _, err := svc.Send(ctx, models.ChatRequest{UserID: "u1", Message: "And the links?"}); err != nil {
		t.Fatalf("second Send failed: %v", err)
	}

	convs := st.Conversations.List(func(c *models.ChatConversation) bool { return c.UserID == "u1" })
	if len(convs) != 1 {
		t.Fatalf("expected one conversation per user, got %d", len(convs))
	}
	if len(convs[0].Messages) != 4 {
		t.Fatalf("expected 4 messages after two rounds, got %d", len(convs[0].Messages))
	}
}

func TestSendGeneratorFailureDegrades(t *testing.T) {
	ctx := context.Background()
	st := store.New()
	gen := &ai.MockGenerator{Err: fmt.Errorf("upstream timeout")}
	svc := chat.NewService(st, gen, actionlog.New(0))

	resp, err := svc.Send(ctx, models.ChatRequest{UserID: "u1", Message: "hello"})
	if err != nil {
		t.Fatalf("Send must not propagate generator errors, got %v", err)
	}
	if resp.Reply == "" {
		t.Fatalf("expected apology reply, got empty string")
	}
	msgs := resp.Conversation.Messages
	if msgs[len(msgs)-1].Role != "assistant" {
		t.Fatalf("expected assistant fallback message recorded")
	}
}

func TestSendEmptyMessage(t *testing.T) {
	st := store.New()
	svc := chat.NewService(st, ai.NewMockGenerator(""), actionlog.New(0))

	if _, err := svc.Send(context.Background(), models.ChatRequest{UserID: "u1", Message: "  "}); err == nil {
		t.Fatalf("expected validation error for empty message")
	}
}

func TestParseCommand(t *testing.T) {
	st := store.New()
	gen := ai.NewMockGenerator(`{"action":"navigate","url":"https://github.com","confidence":0.92}`)
	svc := chat.NewService(st, gen, actionlog.New(0))

	intent := svc.ParseCommand(context.Background(), "open github")
	if intent.Action != "navigate" || intent.URL != "https://github.com" {
		t.Fatalf("unexpected intent %+v", intent)
	}
	if intent.Confidence != 0.92 {
		t.Fatalf("expected confidence 0.92, got %v", intent.Confidence)
	}
}

func TestParseCommandFailureReturnsZeroConfidence(t *testing.T) {
	st := store.New()
	gen := &ai.MockGenerator{Reply: "not json at all"}
	svc := chat.NewService(st, gen, actionlog.New(0))

	intent := svc.ParseCommand(context.Background(), "do something")
	if intent.Action != "" || intent.Confidence != 0 {
		t.Fatalf("expected empty intent with zero confidence, got %+v", intent)
	}
}
