package provider

import (
	"testing"

	"github.com/stretchr/testify/require"

	"ai-chat-relay/internal/models"
)

func TestSelectAutoWithoutCredentialsDefaultsToClaude(t *testing.T) {
	require.Equal(t, IDClaude, Select(IDAuto, Credentials{}))
	require.Equal(t, IDClaude, Select("", nil))
}

func TestSelectAutoPicksFirstAvailable(t *testing.T) {
	require.Equal(t, IDOpenAI, Select(IDAuto, Credentials{IDOpenAI: "sk-test"}))
	require.Equal(t, IDGemini, Select(IDAuto, Credentials{IDGrok: "x", IDGemini: "g"}))
	require.Equal(t, IDClaude, Select(IDAuto, Credentials{IDGrok: "x", IDClaude: "c", IDOpenAI: "o"}))
}

func TestSelectAutoIgnoresBlankKeys(t *testing.T) {
	require.Equal(t, IDGrok, Select(IDAuto, Credentials{IDClaude: "  ", IDGrok: "x"}))
}

func TestSelectExplicitIsUnchanged(t *testing.T) {
	require.Equal(t, IDGemini, Select(IDGemini, Credentials{}))
	require.Equal(t, IDGemini, Select(IDGemini, Credentials{IDClaude: "c"}))
	require.Equal(t, "mistral", Select("mistral", Credentials{IDClaude: "c"}))
}

func TestCredentialsAvailable(t *testing.T) {
	creds := Credentials{IDGrok: "x", IDClaude: "c"}
	require.Equal(t, []string{IDClaude, IDGrok}, creds.Available())
	require.Equal(t, "c", creds.Key(IDClaude))
	require.False(t, creds.Has(IDOpenAI))
}

func TestDescriptorModelFor(t *testing.T) {
	desc, ok := Describe(IDOpenAI)
	require.True(t, ok)

	require.Equal(t, "gpt-4o", desc.ModelFor("", ""))
	require.Equal(t, "gpt-4o", desc.ModelFor("", models.TierDefault))
	require.Equal(t, "gpt-4o-mini", desc.ModelFor("", models.TierFast))
	require.Equal(t, "o3", desc.ModelFor(" o3 ", models.TierFast))
}

func TestCatalogPriorityOrder(t *testing.T) {
	var ids []string
	for _, d := range Catalog() {
		ids = append(ids, d.ID)
		require.NotEmpty(t, d.DefaultModel)
		require.NotEmpty(t, d.CredentialEnvKey)
	}
	require.Equal(t, autoPriority, ids)
}
