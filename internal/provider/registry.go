package provider

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"ai-chat-relay/internal/models"
)

// ErrUnknownProvider indicates the requested provider is not registered.
var ErrUnknownProvider = errors.New("unknown provider")

// ErrDuplicateProvider indicates an attempt to register the same provider twice.
var ErrDuplicateProvider = errors.New("provider already registered")

// ErrMissingCredential indicates the resolved provider has no API key configured.
var ErrMissingCredential = errors.New("API key not configured")

// ErrValidation indicates a request that cannot be sent upstream as given.
var ErrValidation = errors.New("invalid request")

// ErrUpstream indicates the upstream call failed before any event was streamed.
var ErrUpstream = errors.New("upstream request failed")

// Sink receives canonical events in the order they are produced.
type Sink interface {
	Send(event models.StreamEvent) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(models.StreamEvent) error

func (f SinkFunc) Send(event models.StreamEvent) error {
	return f(event)
}

// Stream is an open upstream response bound to its normalizer.
type Stream interface {
	// Relay forwards normalized events to sink and always ends with a done event.
	Relay(ctx context.Context, sink Sink)
	Close() error
}

// Provider translates a chat request for one upstream and opens its stream.
type Provider interface {
	Name() string
	Descriptor() Descriptor
	Open(ctx context.Context, req models.ChatRequest) (Stream, error)
}

// Registry maintains a mapping of provider IDs to providers.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]Provider
}

// NewRegistry constructs an empty provider registry.
func NewRegistry() *Registry {
	return &Registry{
		byName: make(map[string]Provider),
	}
}

// RegisterProvider adds the provider under its name.
func (r *Registry) RegisterProvider(p Provider) error {
	if p == nil {
		return errors.New("provider must not be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byName[p.Name()]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateProvider, p.Name())
	}
	r.byName[p.Name()] = p
	return nil
}

// Lookup returns the provider registered under id.
func (r *Registry) Lookup(id string) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.byName[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, id)
	}
	return p, nil
}

// Names lists registered provider IDs in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
