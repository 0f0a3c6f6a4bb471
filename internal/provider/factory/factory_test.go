package factory

import (
	"testing"

	"github.com/stretchr/testify/require"

	"ai-chat-relay/internal/config"
	"ai-chat-relay/internal/provider"
)

func TestRegisterConfiguredProvidersRegistersCatalog(t *testing.T) {
	registry := provider.NewRegistry()
	creds := provider.Credentials{provider.IDClaude: "sk-ant"}

	require.NoError(t, RegisterConfiguredProviders(config.Default(), creds, registry))
	require.Equal(t, []string{provider.IDClaude, provider.IDGemini, provider.IDGrok, provider.IDOpenAI}, registry.Names())

	for _, desc := range provider.Catalog() {
		p, err := registry.Lookup(desc.ID)
		require.NoError(t, err)
		require.Equal(t, desc.DisplayName, p.Descriptor().DisplayName)
	}
}

func TestRegisterConfiguredProvidersRejectsNilRegistry(t *testing.T) {
	require.Error(t, RegisterConfiguredProviders(config.Default(), nil, nil))
}

func TestRegisterConfiguredProvidersTwiceFails(t *testing.T) {
	registry := provider.NewRegistry()
	require.NoError(t, RegisterConfiguredProviders(config.Default(), nil, registry))
	require.ErrorIs(t, RegisterConfiguredProviders(config.Default(), nil, registry), provider.ErrDuplicateProvider)
}

func TestNewHTTPClientHasNoOverallTimeout(t *testing.T) {
	require.Zero(t, newHTTPClient().Timeout)
}
