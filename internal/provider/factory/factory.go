package factory

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"ai-chat-relay/internal/config"
	"ai-chat-relay/internal/provider"
	claudeProvider "ai-chat-relay/internal/provider/claude"
	geminiProvider "ai-chat-relay/internal/provider/gemini"
	grokProvider "ai-chat-relay/internal/provider/grok"
	openaiProvider "ai-chat-relay/internal/provider/openai"
)

const (
	defaultDialTimeout           = 10 * time.Second
	defaultKeepAlive             = 30 * time.Second
	defaultIdleConnTimeout       = 90 * time.Second
	defaultResponseHeaderTimeout = 60 * time.Second
)

// RegisterConfiguredProviders constructs every catalogued provider and stores it in the registry.
// Providers are registered even without a key; the router rejects them per request.
func RegisterConfiguredProviders(cfg config.Config, creds provider.Credentials, registry *provider.Registry) error {
	if registry == nil {
		return errors.New("registry must not be nil")
	}

	claude, err := claudeProvider.New(cfg.Providers.Claude, creds.Key(provider.IDClaude), newHTTPClient())
	if err != nil {
		return fmt.Errorf("initialise claude provider: %w", err)
	}
	if err := registry.RegisterProvider(claude); err != nil {
		return fmt.Errorf("register claude provider: %w", err)
	}

	openAIDesc, _ := provider.Describe(provider.IDOpenAI)
	openAI, err := openaiProvider.New(openAIDesc, cfg.Providers.OpenAI, creds.Key(provider.IDOpenAI), newHTTPClient())
	if err != nil {
		return fmt.Errorf("initialise openai provider: %w", err)
	}
	if err := registry.RegisterProvider(openAI); err != nil {
		return fmt.Errorf("register openai provider: %w", err)
	}

	gemini, err := geminiProvider.New(cfg.Providers.Gemini, creds.Key(provider.IDGemini), newHTTPClient())
	if err != nil {
		return fmt.Errorf("initialise gemini provider: %w", err)
	}
	if err := registry.RegisterProvider(gemini); err != nil {
		return fmt.Errorf("register gemini provider: %w", err)
	}

	grok, err := grokProvider.New(cfg.Providers.Grok, creds.Key(provider.IDGrok), newHTTPClient())
	if err != nil {
		return fmt.Errorf("initialise grok provider: %w", err)
	}
	if err := registry.RegisterProvider(grok); err != nil {
		return fmt.Errorf("register grok provider: %w", err)
	}

	return nil
}

// newHTTPClient has no overall timeout so long generations are not cut off;
// only connection setup and the wait for response headers are bounded.
func newHTTPClient() *http.Client {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: defaultDialTimeout, KeepAlive: defaultKeepAlive}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          50,
		IdleConnTimeout:       defaultIdleConnTimeout,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: defaultResponseHeaderTimeout,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &http.Client{
		Transport: transport,
	}
}
