// Package llmorch implements C3 (LLM Orchestrator): the two-phase Plan+Code generation protocol
// against an LLMClient, with categorised transport-error handling and bounded exponential backoff.
package llmorch

import "context"

// LLMClient is the channel abstraction every provider adapter implements. Grounded on
// internal/perception/client_types.go's LLMClient interface, narrowed to the two call shapes C3
// actually needs.
type LLMClient interface {
	// Complete sends a single user-role prompt and returns the raw text response.
	Complete(ctx context.Context, prompt string, temperature float64) (string, error)
	// CompleteWithSystem sends a system+user prompt pair and returns the raw text response.
	CompleteWithSystem(ctx context.Context, system, prompt string, temperature float64) (string, error)
}
