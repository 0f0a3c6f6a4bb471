package grok

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"ai-chat-relay/internal/config"
	"ai-chat-relay/internal/models"
	"ai-chat-relay/internal/provider"
	openaiProvider "ai-chat-relay/internal/provider/openai"
)

// Provider implements xAI Grok, which speaks the OpenAI chat completions
// dialect, by delegating to the OpenAI-compatible adapter.
type Provider struct {
	adapter *openaiProvider.Provider
}

// New constructs a provider that delegates to the OpenAI-compatible adapter.
func New(cfg config.ProviderConfig, apiKey string, client *http.Client) (*Provider, error) {
	if client == nil {
		return nil, errors.New("http client must not be nil")
	}
	desc, ok := provider.Describe(provider.IDGrok)
	if !ok {
		return nil, errors.New("grok descriptor missing from catalog")
	}

	adapter, err := openaiProvider.New(desc, cfg, apiKey, client)
	if err != nil {
		return nil, fmt.Errorf("initialize openai adapter: %w", err)
	}
	return &Provider{adapter: adapter}, nil
}

func (p *Provider) Name() string {
	return p.adapter.Name()
}

func (p *Provider) Descriptor() provider.Descriptor {
	return p.adapter.Descriptor()
}

func (p *Provider) Open(ctx context.Context, req models.ChatRequest) (provider.Stream, error) {
	return p.adapter.Open(ctx, req)
}
