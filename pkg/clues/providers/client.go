package providers

import "context"

// LLMClient defines the interface the hint binder talks to. maxTokens
// caps the generation length to a small budget (e.g. ~20 tokens) per
// request, since a hint is a single short clue, not a long completion.
type LLMClient interface {
	Complete(ctx context.Context, prompt string, maxTokens int) (string, error)
}
