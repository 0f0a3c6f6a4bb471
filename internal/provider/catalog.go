package provider

import (
	"strings"

	"ai-chat-relay/internal/models"
)

const (
	IDAuto   = "auto"
	IDClaude = "claude"
	IDOpenAI = "openai"
	IDGemini = "gemini"
	IDGrok   = "grok"
)

// Descriptor is the static catalog entry of an upstream provider.
type Descriptor struct {
	ID               string
	DisplayName      string
	DefaultModel     string
	FastModel        string
	CredentialEnvKey string
	DefaultBaseURL   string
	Pricing          map[string]models.Pricing
}

var sonnetPricing = models.Pricing{
	Input:      "3.00",
	Output:     "15.00",
	CacheWrite: "3.75",
	CacheRead:  "0.30",
}

var catalog = []Descriptor{
	{
		ID:               IDClaude,
		DisplayName:      "Claude",
		DefaultModel:     "claude-sonnet-4-20250514",
		FastModel:        "claude-3-5-haiku-20241022",
		CredentialEnvKey: "ANTHROPIC_API_KEY",
		DefaultBaseURL:   "https://api.anthropic.com",
		Pricing: map[string]models.Pricing{
			"claude-sonnet-4-20250514":   sonnetPricing,
			"claude-sonnet-4-0":          sonnetPricing,
			"claude-sonnet-4-5":          sonnetPricing,
			"claude-sonnet-4-5-20250929": sonnetPricing,
			"claude-3-7-sonnet-20250219": sonnetPricing,
			"claude-3-5-haiku-20241022": {
				Input:      "0.80",
				Output:     "4.00",
				CacheWrite: "1.00",
				CacheRead:  "0.08",
			},
			"claude-opus-4-20250514": {
				Input:      "15.00",
				Output:     "75.00",
				CacheWrite: "18.75",
				CacheRead:  "1.50",
			},
		},
	},
	{
		ID:               IDOpenAI,
		DisplayName:      "OpenAI",
		DefaultModel:     "gpt-4o",
		FastModel:        "gpt-4o-mini",
		CredentialEnvKey: "OPENAI_API_KEY",
		DefaultBaseURL:   "https://api.openai.com/v1",
	},
	{
		ID:               IDGemini,
		DisplayName:      "Gemini",
		DefaultModel:     "gemini-2.0-flash",
		FastModel:        "gemini-2.0-flash-lite",
		CredentialEnvKey: "GEMINI_API_KEY",
		DefaultBaseURL:   "https://generativelanguage.googleapis.com/v1beta",
	},
	{
		ID:               IDGrok,
		DisplayName:      "Grok",
		DefaultModel:     "grok-3",
		FastModel:        "grok-3-mini",
		CredentialEnvKey: "XAI_API_KEY",
		DefaultBaseURL:   "https://api.x.ai/v1",
	},
}

// Catalog returns every known provider descriptor in priority order.
func Catalog() []Descriptor {
	out := make([]Descriptor, len(catalog))
	copy(out, catalog)
	return out
}

// Describe returns the descriptor for id.
func Describe(id string) (Descriptor, bool) {
	for _, d := range catalog {
		if d.ID == id {
			return d, true
		}
	}
	return Descriptor{}, false
}

// ModelFor resolves the model to call: an explicit override wins, then the
// requested tier.
func (d Descriptor) ModelFor(override string, tier models.Tier) string {
	if m := strings.TrimSpace(override); m != "" {
		return m
	}
	if tier == models.TierFast && d.FastModel != "" {
		return d.FastModel
	}
	return d.DefaultModel
}

// PricingFor returns the pricing row of model, falling back to the default
// model's row. The boolean is false when neither exists.
func (d Descriptor) PricingFor(model string) (models.Pricing, bool) {
	if p, ok := d.Pricing[model]; ok {
		return p, true
	}
	p, ok := d.Pricing[d.DefaultModel]
	return p, ok
}
