package critic

import "context"

// Provider is a strategy pattern interface for hosted LLMs.
//
// Request is passed by value, but History shares its backing array with the
// caller's session. Providers must not modify existing elements.
type Provider interface {
	// Stream starts a chat-style streaming generation.
	Stream(ctx context.Context, req Request) (Stream, error)
	// Generate performs a single non-streaming generation.
	Generate(ctx context.Context, req Request) (Reply, error)
}

// Connector builds a Provider for an API key and model. The orchestrator
// calls it lazily so the key can be entered after startup.
type Connector func(ctx context.Context, apiKey, model string) (Provider, error)

// Request carries the conversation and generation parameters.
// The provider uses its own defaults when fields are zero/nil.
type Request struct {
	Model        string // model ID, provider-specific; empty = provider default
	SystemPrompt string
	History      []Turn
	Prompt       string   // the new user turn
	MaxTokens    int      // 0 = provider default
	Temperature  *float64 // nil = provider default
}
