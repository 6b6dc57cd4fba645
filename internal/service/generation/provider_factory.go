package generation

import (
	"fmt"

	"dockergen/internal/config"
	domaingen "dockergen/internal/domain/services/generation"
	"dockergen/internal/service/generation/providers/anthropic"
	"dockergen/internal/service/generation/providers/lorem"
	"dockergen/internal/service/generation/providers/openaicompat"
)

// ProviderFactory creates generation provider instances from configuration
type ProviderFactory struct {
	config *config.Config
}

// NewProviderFactory creates a new provider factory
func NewProviderFactory(cfg *config.Config) *ProviderFactory {
	return &ProviderFactory{
		config: cfg,
	}
}

// GetProvider returns a provider instance for the given provider name
//
// Supported providers:
//   - "huggingface" - Hugging Face inference router (OpenAI-compatible)
//   - "openai" - OpenAI chat completions
//   - "anthropic" - Claude models via Anthropic API
//   - "lorem" - Offline provider for development (no API key required)
func (f *ProviderFactory) GetProvider(providerName string) (domaingen.Generator, error) {
	switch providerName {
	case "huggingface":
		return f.createHuggingFaceProvider()

	case "openai":
		return f.createOpenAIProvider()

	case "anthropic":
		return f.createAnthropicProvider()

	case "lorem":
		return lorem.NewProvider(), nil

	default:
		return nil, fmt.Errorf("unsupported provider: %s", providerName)
	}
}

func (f *ProviderFactory) createHuggingFaceProvider() (domaingen.Generator, error) {
	if f.config.HuggingFaceAPIKey == "" {
		return nil, fmt.Errorf("HF_KEY environment variable not set")
	}

	provider, err := openaicompat.NewProvider("huggingface", f.config.HuggingFaceAPIKey, f.config.HuggingFaceBaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create Hugging Face provider: %w", err)
	}
	return provider, nil
}

func (f *ProviderFactory) createOpenAIProvider() (domaingen.Generator, error) {
	if f.config.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
	}

	provider, err := openaicompat.NewProvider("openai", f.config.OpenAIAPIKey, f.config.OpenAIBaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenAI provider: %w", err)
	}
	return provider, nil
}

func (f *ProviderFactory) createAnthropicProvider() (domaingen.Generator, error) {
	if f.config.AnthropicAPIKey == "" {
		return nil, fmt.Errorf("ANTHROPIC_API_KEY environment variable not set")
	}

	provider, err := anthropic.NewProvider(f.config.AnthropicAPIKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create Anthropic provider: %w", err)
	}
	return provider, nil
}

// Configured reports whether the credentials a provider needs are present.
func (f *ProviderFactory) Configured(providerName string) bool {
	switch providerName {
	case "huggingface":
		return f.config.HuggingFaceAPIKey != ""
	case "openai":
		return f.config.OpenAIAPIKey != ""
	case "anthropic":
		return f.config.AnthropicAPIKey != ""
	case "lorem":
		return true
	default:
		return false
	}
}
