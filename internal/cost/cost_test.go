package cost

import (
	"testing"

	"github.com/stretchr/testify/require"

	"ai-chat-relay/internal/models"
	"ai-chat-relay/internal/provider"
)

func TestComputeInputOnly(t *testing.T) {
	got := Compute(models.TokenCounts{InputTokens: 1_000_000}, models.Pricing{Input: "3.00", Output: "15.00"})

	require.Equal(t, "3.000000", got.Input)
	require.Equal(t, "0.000000", got.Output)
	require.Equal(t, "0.000000", got.CacheWrite)
	require.Equal(t, "0.000000", got.CacheRead)
	require.Equal(t, "3.000000", got.Total)
	require.Equal(t, "0.000000", got.Savings)
}

func TestComputeWithCache(t *testing.T) {
	tokens := models.TokenCounts{
		InputTokens:         10,
		OutputTokens:        2,
		CacheCreationTokens: 1000,
		CacheReadTokens:     2000,
	}
	pricing := models.Pricing{Input: "3.00", Output: "15.00", CacheWrite: "3.75", CacheRead: "0.30"}

	got := Compute(tokens, pricing)

	require.Equal(t, "0.000030", got.Input)
	require.Equal(t, "0.000030", got.Output)
	require.Equal(t, "0.003750", got.CacheWrite)
	require.Equal(t, "0.000600", got.CacheRead)
	require.Equal(t, "0.004410", got.Total)
	// 2000 tokens * (3.00 - 0.30) / 1M
	require.Equal(t, "0.005400", got.Savings)
}

func TestComputeMissingCachePrices(t *testing.T) {
	got := Compute(models.TokenCounts{CacheCreationTokens: 500, CacheReadTokens: 1_000_000}, models.Pricing{Input: "1.25", Output: "5"})

	require.Equal(t, "0.000000", got.CacheWrite)
	require.Equal(t, "0.000000", got.CacheRead)
	require.Equal(t, "1.250000", got.Savings)
}

func TestForModelFallsBackToDefaultPricing(t *testing.T) {
	desc, ok := provider.Describe(provider.IDClaude)
	require.True(t, ok)

	rec := ForModel(desc, "claude-unreleased", models.TokenCounts{InputTokens: 1_000_000, OutputTokens: 1_000_000})

	require.Equal(t, "claude-unreleased", rec.Model)
	require.Equal(t, "3.000000", rec.Cost.Input)
	require.Equal(t, "15.000000", rec.Cost.Output)
	require.Equal(t, "18.000000", rec.Cost.Total)
}

func TestForModelWithoutPricing(t *testing.T) {
	desc, ok := provider.Describe(provider.IDGrok)
	require.True(t, ok)

	rec := ForModel(desc, "grok-3", models.TokenCounts{InputTokens: 42})

	require.Equal(t, int64(42), rec.InputTokens)
	require.Equal(t, "0.000000", rec.Cost.Total)
}
