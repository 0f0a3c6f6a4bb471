package openai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"ai-chat-relay/internal/config"
	"ai-chat-relay/internal/models"
	"ai-chat-relay/internal/provider"
)

const (
	userAgent    = "ai-chat-relay/0.1"
	chatEndpoint = "chat/completions"
)

// Provider implements the Provider interface for OpenAI-compatible APIs.
type Provider struct {
	desc      provider.Descriptor
	maxTokens int64
	client    openai.Client
}

// New creates a provider for any upstream that speaks the OpenAI chat
// completions dialect; desc selects identity, models and default base URL.
func New(desc provider.Descriptor, cfg config.ProviderConfig, apiKey string, client *http.Client) (*Provider, error) {
	if client == nil {
		return nil, errors.New("http client must not be nil")
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = desc.DefaultBaseURL
	}
	if baseURL == "" {
		return nil, errors.New("base url must not be empty")
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
		maxTokens: int64(cfg.MaxTokens),
		client:    openai.NewClient(opts...),
	}, nil
}

func (p *Provider) Name() string {
	return p.desc.ID
}

func (p *Provider) Descriptor() provider.Descriptor {
	return p.desc
}

// Open posts a streaming chat completion and hands back the raw SSE body.
// Non-2xx statuses are reported before any event is written.
func (p *Provider) Open(ctx context.Context, req models.ChatRequest) (provider.Stream, error) {
	params, err := BuildRequest(req, p.desc.ModelFor(req.Model, req.Tier), p.maxTokens)
	if err != nil {
		return nil, err
	}

	var resp *http.Response
	err = p.client.Post(ctx, chatEndpoint, params, &resp,
		option.WithJSONSet("stream", true),
		option.WithHeader("Accept", "text/event-stream"),
	)
	if err != nil {
		if resp != nil && resp.Body != nil {
			resp.Body.Close()
		}
		return nil, fmt.Errorf("%w: %s chat request: %v", provider.ErrUpstream, p.desc.ID, err)
	}

	return &stream{body: resp.Body, providerID: p.desc.ID}, nil
}

type stream struct {
	body       io.ReadCloser
	providerID string
}

func (s *stream) Relay(ctx context.Context, sink provider.Sink) {
	Normalize(ctx, s.body, s.providerID, sink)
}

func (s *stream) Close() error {
	return s.body.Close()
}
