package router

import (
	"context"
	"errors"
	"fmt"

	"ai-chat-relay/internal/models"
	"ai-chat-relay/internal/provider"
)

// Route describes where a request was dispatched.
type Route struct {
	Provider    string
	DisplayName string
	Model       string
}

// Router resolves a provider for each chat request and opens its upstream stream.
type Router struct {
	registry *provider.Registry
	creds    provider.Credentials
}

// New constructs a router backed by the registry and the injected credentials.
func New(registry *provider.Registry, creds provider.Credentials) (*Router, error) {
	if registry == nil {
		return nil, errors.New("registry must not be nil")
	}
	return &Router{
		registry: registry,
		creds:    creds,
	}, nil
}

// Open selects a provider, checks its credential and dispatches the request.
// No upstream call is made when the provider is unknown or has no key.
func (r *Router) Open(ctx context.Context, req models.ChatRequest) (provider.Stream, Route, error) {
	id := provider.Select(req.Provider, r.creds)

	impl, err := r.registry.Lookup(id)
	if err != nil {
		return nil, Route{}, err
	}

	desc := impl.Descriptor()
	if !r.creds.Has(id) {
		return nil, Route{}, fmt.Errorf("%s %w", desc.DisplayName, provider.ErrMissingCredential)
	}

	route := Route{
		Provider:    id,
		DisplayName: desc.DisplayName,
		Model:       desc.ModelFor(req.Model, req.Tier),
	}

	forwarded := req
	forwarded.Messages = cloneMessages(req.Messages)

	stream, err := impl.Open(ctx, forwarded)
	if err != nil {
		return nil, Route{}, fmt.Errorf("provider %s chat request: %w", id, err)
	}
	return stream, route, nil
}

// Configured reports which catalogued providers currently have a credential.
func (r *Router) Configured() map[string]bool {
	out := make(map[string]bool)
	for _, desc := range provider.Catalog() {
		out[desc.ID] = r.creds.Has(desc.ID)
	}
	return out
}

func cloneMessages(msgs []models.Message) []models.Message {
	if len(msgs) == 0 {
		return nil
	}
	out := make([]models.Message, len(msgs))
	copy(out, msgs)
	return out
}
