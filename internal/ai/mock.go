package ai

import (
	"context"
	"encoding/json"
	"fmt"
)

// MockGenerator is a Generator for tests and for running without an API key.
// Reply is returned verbatim; Err, when set, is returned instead.
type MockGenerator struct {
	Reply string
	Err   error

	Calls int
}

func NewMockGenerator(reply string) *MockGenerator {
	return &MockGenerator{Reply: reply}
}

func (m *MockGenerator) Complete(ctx context.Context, systemPrompt, userPrompt string, out any) (string, error) {
	m.Calls++
	if m.Err != nil {
		return "", m.Err
	}
	reply := m.Reply
	if reply == "" {
		reply = fmt.Sprintf("You said %q.", userPrompt)
	}
	if out != nil {
		if err := json.Unmarshal([]byte(reply), out); err != nil {
			return reply, fmt.Errorf("decode structured completion: %w", err)
		}
	}
	return reply, nil
}
