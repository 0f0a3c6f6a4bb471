package provider

import "strings"

// autoPriority is the order used when the caller asks for "auto".
var autoPriority = []string{IDClaude, IDOpenAI, IDGemini, IDGrok}

// Credentials maps provider IDs to their API keys.
type Credentials map[string]string

// Has reports whether a non-blank key is configured for id.
func (c Credentials) Has(id string) bool {
	return strings.TrimSpace(c[id]) != ""
}

// Key returns the configured key for id.
func (c Credentials) Key(id string) string {
	return strings.TrimSpace(c[id])
}

// Available lists provider IDs with a credential, in auto priority order.
func (c Credentials) Available() []string {
	var out []string
	for _, id := range autoPriority {
		if c.Has(id) {
			out = append(out, id)
		}
	}
	return out
}

// Select resolves the requested provider token to one concrete provider ID.
// Explicit IDs are returned unchanged; credentials are checked later.
func Select(requested string, creds Credentials) string {
	requested = strings.TrimSpace(requested)
	if requested != "" && requested != IDAuto {
		return requested
	}
	for _, id := range autoPriority {
		if creds.Has(id) {
			return id
		}
	}
	return IDClaude
}
