package newsroom

import "context"

// CompletionRequest is one call into the text-generation backend.
type CompletionRequest struct {
	Prompt      string
	Model       string
	MaxTokens   int
	Temperature float64
}

// Completer abstracts the raw text-generation backend so the selector and
// generator can be exercised against a test double with no network access.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}
