// Package lorem adapts the offline lorem ipsum provider from meridian-llm-go
// so the service can run end to end without API keys.
package lorem

import (
	"context"
	"fmt"
	"strings"

	llmprovider "github.com/haowjy/meridian-llm-go"
	"github.com/haowjy/meridian-llm-go/providers/lorem"

	domaingen "dockergen/internal/domain/services/generation"
)

// Provider wraps the library's Lorem provider and implements the Generator interface.
type Provider struct {
	provider llmprovider.Provider
}

// NewProvider creates a new Lorem adapter using the library's provider.
// The library provider waits about ten seconds before answering to mimic a
// remote call, so GENERATION_TIMEOUT must stay above that.
func NewProvider() *Provider {
	return &Provider{
		provider: lorem.NewProvider(),
	}
}

// NewProviderWith wraps an existing library provider.
func NewProviderWith(provider llmprovider.Provider) *Provider {
	return &Provider{
		provider: provider,
	}
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "lorem"
}

// SupportsModel returns true if this provider supports the given model.
func (p *Provider) SupportsModel(model string) bool {
	return p.provider.SupportsModel(model)
}

// Generate converts the prompt to a library request and joins the text blocks of the reply.
func (p *Provider) Generate(ctx context.Context, req *domaingen.GenerateRequest) (*domaingen.GenerateResponse, error) {
	prompt := req.Prompt
	libReq := &llmprovider.GenerateRequest{
		Model: req.Model,
		Messages: []llmprovider.Message{
			{
				Role: "user",
				Blocks: []*llmprovider.Block{
					{BlockType: "text", TextContent: &prompt},
				},
			},
		},
	}

	libResp, err := p.provider.GenerateResponse(ctx, libReq)
	if err != nil {
		return nil, err
	}

	var text strings.Builder
	for _, block := range libResp.Blocks {
		if block.TextContent != nil {
			text.WriteString(*block.TextContent)
		}
	}
	if text.Len() == 0 {
		return nil, fmt.Errorf("lorem returned no text content")
	}

	return &domaingen.GenerateResponse{
		Content:      text.String(),
		Model:        libResp.Model,
		InputTokens:  libResp.InputTokens,
		OutputTokens: libResp.OutputTokens,
		StopReason:   libResp.StopReason,
	}, nil
}
