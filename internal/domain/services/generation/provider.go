package generation

import "context"

// Generator is the text-generation boundary: it turns a prompt describing a
// project into build file text. Implementations wrap one remote provider.
type Generator interface {
	// Generate sends a single prompt and returns the provider's text verbatim.
	Generate(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error)

	// Name returns the provider name (e.g., "huggingface", "anthropic")
	Name() string

	// SupportsModel returns true if the provider accepts the given model.
	SupportsModel(model string) bool
}

// GenerateRequest contains the parameters for a single generation call.
type GenerateRequest struct {
	// Model is the provider's model identifier (e.g., "google/gemma-2-27b-it")
	Model string

	// System is an optional system instruction
	System string

	// Prompt is the user message
	Prompt string

	// MaxTokens caps the response length
	MaxTokens int
}

// GenerateResponse contains the provider's answer.
type GenerateResponse struct {
	// Content is the generated text, unmodified
	Content string

	// Model is the model that was used (may differ from request if aliased)
	Model string

	InputTokens  int
	OutputTokens int

	// StopReason indicates why generation stopped (e.g., "stop", "max_tokens")
	StopReason string
}
