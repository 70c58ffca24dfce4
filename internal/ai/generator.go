// Package ai wraps the hosted completion API behind a small Generator
// interface so services can swap in a mock for tests.
package ai

import "context"

// Generator produces a completion for a system/user prompt pair.
// When out is non-nil the completion is expected to be JSON and is decoded
// into it; otherwise Complete returns the raw text. Callers must treat any
// error as recoverable and substitute a safe default response.
type Generator interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string, out any) (string, error)
}
