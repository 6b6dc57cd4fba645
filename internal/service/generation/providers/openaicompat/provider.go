// Package openaicompat talks to any OpenAI-compatible chat completions
// endpoint. It backs both the Hugging Face router and OpenAI itself.
package openaicompat

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	domaingen "dockergen/internal/domain/services/generation"
)

// Provider implements the Generator interface over chat completions.
type Provider struct {
	name   string
	client *openai.Client
}

// NewProvider creates a provider named name. An empty baseURL uses the
// OpenAI default.
func NewProvider(name, apiKey, baseURL string) (*Provider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%s API key is required", name)
	}

	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	client := openai.NewClient(opts...)

	return &Provider{
		name:   name,
		client: &client,
	}, nil
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return p.name
}

// SupportsModel accepts any non-empty model id; the router resolves it.
func (p *Provider) SupportsModel(model string) bool {
	return strings.TrimSpace(model) != ""
}

// Generate sends the prompt as a single user message.
func (p *Provider) Generate(ctx context.Context, req *domaingen.GenerateRequest) (*domaingen.GenerateResponse, error) {
	if !p.SupportsModel(req.Model) {
		return nil, fmt.Errorf("model is required for %s provider", p.name)
	}

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if req.System != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}
	messages = append(messages, openai.UserMessage(req.Prompt))

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(req.Model),
		Messages: messages,
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}

	completion, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("%s API call failed: %w", p.name, err)
	}

	if len(completion.Choices) == 0 {
		return nil, fmt.Errorf("%s returned no choices", p.name)
	}
	choice := completion.Choices[0]
	if choice.Message.Content == "" {
		return nil, fmt.Errorf("%s returned an empty message", p.name)
	}

	return &domaingen.GenerateResponse{
		Content:      choice.Message.Content,
		Model:        completion.Model,
		InputTokens:  int(completion.Usage.PromptTokens),
		OutputTokens: int(completion.Usage.CompletionTokens),
		StopReason:   string(choice.FinishReason),
	}, nil
}
