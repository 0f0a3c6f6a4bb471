package claude

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"ai-chat-relay/internal/config"
	"ai-chat-relay/internal/models"
	"ai-chat-relay/internal/provider"
)

const userAgent = "ai-chat-relay/0.1"

// Provider streams chats from the Anthropic Messages API.
type Provider struct {
	desc      provider.Descriptor
	maxTokens int64
	client    anthropic.Client
}

// New constructs a Claude provider instance.
func New(cfg config.ProviderConfig, apiKey string, client *http.Client) (*Provider, error) {
	if client == nil {
		return nil, errors.New("http client must not be nil")
	}
	desc, ok := provider.Describe(provider.IDClaude)
	if !ok {
		return nil, errors.New("claude descriptor missing from catalog")
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = desc.DefaultBaseURL
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		return nil, errors.New("max tokens must be positive")
	}

	opts := []option.RequestOption{
		option.WithBaseURL(baseURL),
		option.WithAPIKey(apiKey),
		option.WithHTTPClient(client),
		option.WithMaxRetries(0),
		option.WithHeader("User-Agent", userAgent),
	}
	for k, v := range cfg.Headers {
		opts = append(opts, option.WithHeader(k, v))
	}

	return &Provider{
		desc:      desc,
		maxTokens: int64(maxTokens),
		client:    anthropic.NewClient(opts...),
	}, nil
}

func (p *Provider) Name() string {
	return p.desc.ID
}

func (p *Provider) Descriptor() provider.Descriptor {
	return p.desc
}

// Open sends the translated request. A transport failure or non-2xx status
// is reported before any event is written; later failures travel in-stream.
func (p *Provider) Open(ctx context.Context, req models.ChatRequest) (provider.Stream, error) {
	model := p.desc.ModelFor(req.Model, req.Tier)
	params, err := BuildRequest(req, model, p.maxTokens)
	if err != nil {
		return nil, err
	}

	events := p.client.Messages.NewStreaming(ctx, params)
	if err := events.Err(); err != nil {
		_ = events.Close()
		return nil, fmt.Errorf("%w: claude messages request: %v", provider.ErrUpstream, err)
	}
	return &stream{
		events: events,
		desc:   p.desc,
		model:  model,
	}, nil
}

type stream struct {
	events EventStream
	desc   provider.Descriptor
	model  string
}

func (s *stream) Relay(ctx context.Context, sink provider.Sink) {
	Normalize(ctx, s.events, s.desc, s.model, sink)
}

func (s *stream) Close() error {
	return s.events.Close()
}
