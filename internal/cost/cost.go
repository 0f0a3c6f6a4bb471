package cost

import (
	"github.com/shopspring/decimal"

	"ai-chat-relay/internal/models"
	"ai-chat-relay/internal/provider"
)

const places = 6

var perMillion = decimal.NewFromInt(1_000_000)

// Compute prices the token counters against one pricing row.
// Savings is what the cache-read tokens would have cost at the full input price.
func Compute(tokens models.TokenCounts, pricing models.Pricing) models.CostBreakdown {
	inputPrice := price(pricing.Input)
	cacheReadPrice := price(pricing.CacheRead)

	input := scale(tokens.InputTokens, inputPrice)
	output := scale(tokens.OutputTokens, price(pricing.Output))
	cacheWrite := scale(tokens.CacheCreationTokens, price(pricing.CacheWrite))
	cacheRead := scale(tokens.CacheReadTokens, cacheReadPrice)
	total := input.Add(output).Add(cacheWrite).Add(cacheRead)
	savings := scale(tokens.CacheReadTokens, inputPrice.Sub(cacheReadPrice))

	return models.CostBreakdown{
		Input:      input.StringFixed(places),
		Output:     output.StringFixed(places),
		CacheWrite: cacheWrite.StringFixed(places),
		CacheRead:  cacheRead.StringFixed(places),
		Total:      total.StringFixed(places),
		Savings:    savings.StringFixed(places),
	}
}

// ForModel builds the usage record for model, pricing it with the
// descriptor's row for model or, failing that, its default model's row.
// A provider without any pricing yields all-zero costs.
func ForModel(desc provider.Descriptor, model string, tokens models.TokenCounts) models.UsageRecord {
	pricing, _ := desc.PricingFor(model)
	return models.UsageRecord{
		InputTokens:         tokens.InputTokens,
		OutputTokens:        tokens.OutputTokens,
		CacheCreationTokens: tokens.CacheCreationTokens,
		CacheReadTokens:     tokens.CacheReadTokens,
		Model:               model,
		Cost:                Compute(tokens, pricing),
	}
}

func scale(tokens int64, pricePerMillion decimal.Decimal) decimal.Decimal {
	return decimal.NewFromInt(tokens).Div(perMillion).Mul(pricePerMillion)
}

func price(s string) decimal.Decimal {
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
