package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"

	"ai-chat-relay/internal/config"
	"ai-chat-relay/internal/models"
	"ai-chat-relay/internal/provider"
)

const (
	contentTypeJSON = "application/json"
	userAgent       = "ai-chat-relay/0.1"
)

// Provider implements the Provider interface for the Gemini REST API.
type Provider struct {
	desc      provider.Descriptor
	apiKey    string
	baseURL   string
	maxTokens int32
	headers   map[string]string
	client    *http.Client
}

// New creates a new Gemini provider.
func New(cfg config.ProviderConfig, apiKey string, client *http.Client) (*Provider, error) {
	if client == nil {
		return nil, errors.New("http client must not be nil")
	}
	desc, ok := provider.Describe(provider.IDGemini)
	if !ok {
		return nil, errors.New("gemini descriptor missing from catalog")
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = desc.DefaultBaseURL
	}
	if cfg.MaxTokens > math.MaxInt32 {
		return nil, fmt.Errorf("max tokens %d exceeds %d", cfg.MaxTokens, math.MaxInt32)
	}

	return &Provider{
		desc:      desc,
		apiKey:    apiKey,
		baseURL:   baseURL,
		maxTokens: int32(cfg.MaxTokens),
		headers:   cfg.Headers,
		client:    client,
	}, nil
}

func (p *Provider) Name() string {
	return p.desc.ID
}

func (p *Provider) Descriptor() provider.Descriptor {
	return p.desc
}

// Open posts to streamGenerateContent and hands back the response body,
// which arrives as one JSON array written progressively.
func (p *Provider) Open(ctx context.Context, req models.ChatRequest) (provider.Stream, error) {
	model := p.desc.ModelFor(req.Model, req.Tier)
	payload, err := BuildRequest(req, model, p.maxTokens)
	if err != nil {
		return nil, err
	}

	httpReq, err := p.newRequest(ctx, p.streamURL(model), payload)
	if err != nil {
		return nil, err
	}

	httpResp, err := p.client.Do(httpReq)
	if err != nil {
		// url.Error carries the request URL, which includes the key.
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return nil, fmt.Errorf("%w: gemini stream request: %v", provider.ErrUpstream, err)
	}

	if httpResp.StatusCode >= 400 {
		defer httpResp.Body.Close()
		return nil, fmt.Errorf("%w: %v", provider.ErrUpstream, parseAPIError(httpResp))
	}

	return &stream{body: httpResp.Body, providerID: p.desc.ID}, nil
}

func (p *Provider) streamURL(model string) string {
	q := url.Values{}
	q.Set("key", p.apiKey)
	return fmt.Sprintf("%s/models/%s:streamGenerateContent?%s", p.baseURL, url.PathEscape(model), q.Encode())
}

func (p *Provider) newRequest(ctx context.Context, target string, payload any) (*http.Request, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("construct request: %w", err)
	}

	req.Header.Set("Content-Type", contentTypeJSON)
	req.Header.Set("Accept", contentTypeJSON)
	req.Header.Set("User-Agent", userAgent)

	for k, v := range p.headers {
		req.Header.Set(k, v)
	}

	return req, nil
}

// parseAPIError accepts both the bare error object and the array-wrapped
// form the streaming endpoint sometimes returns.
func parseAPIError(resp *http.Response) error {
	body, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return fmt.Errorf("upstream error status %d and failed to read body: %w", resp.StatusCode, err)
	}

	for _, path := range []string{"error", "0.error"} {
		obj := gjson.GetBytes(body, path)
		if msg := obj.Get("message").String(); msg != "" {
			return fmt.Errorf("gemini error (%s): %s", obj.Get("status").String(), msg)
		}
	}

	return fmt.Errorf("upstream error status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
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
