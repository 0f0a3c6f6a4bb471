package models

// Role identifies the author of a conversation message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Tier selects between a provider's default and fast model.
type Tier string

const (
	TierDefault Tier = "default"
	TierFast    Tier = "fast"
)

// Message represents a single conversational message in the unified schema.
type Message struct {
	Role    Role
	Content string
}

// ChatRequest is the canonical representation of a relay call.
// Messages are kept in conversation order.
type ChatRequest struct {
	Messages []Message
	System   string
	Provider string
	Model    string
	Tier     Tier
}

// EventType tags a StreamEvent.
type EventType string

const (
	EventText  EventType = "text"
	EventUsage EventType = "usage"
	EventError EventType = "error"
	EventDone  EventType = "done"
)

// StreamEvent is the only shape written to clients, whatever the upstream.
// EventDone is rendered as the literal [DONE] frame and never marshalled.
type StreamEvent struct {
	Type     EventType    `json:"type"`
	Content  string       `json:"content,omitempty"`
	Provider string       `json:"provider,omitempty"`
	Usage    *UsageRecord `json:"usage,omitempty"`
	Error    string       `json:"error,omitempty"`
}

// TextEvent builds a text delta tagged with the provider that produced it.
func TextEvent(provider, content string) StreamEvent {
	return StreamEvent{Type: EventText, Content: content, Provider: provider}
}

// UsageEvent wraps a usage record.
func UsageEvent(usage UsageRecord) StreamEvent {
	return StreamEvent{Type: EventUsage, Usage: &usage}
}

// ErrorEvent reports an in-stream failure.
func ErrorEvent(message string) StreamEvent {
	return StreamEvent{Type: EventError, Error: message}
}

// DoneEvent is the terminal marker.
func DoneEvent() StreamEvent {
	return StreamEvent{Type: EventDone}
}

// TokenCounts records the final token counters reported by an upstream.
type TokenCounts struct {
	InputTokens         int64
	OutputTokens        int64
	CacheCreationTokens int64
	CacheReadTokens     int64
}

// CostBreakdown holds monetary figures as fixed 6-decimal strings.
type CostBreakdown struct {
	Input      string `json:"input"`
	Output     string `json:"output"`
	CacheWrite string `json:"cacheWrite"`
	CacheRead  string `json:"cacheRead"`
	Total      string `json:"total"`
	Savings    string `json:"savings"`
}

// UsageRecord is the payload of a usage event.
type UsageRecord struct {
	InputTokens         int64         `json:"inputTokens"`
	OutputTokens        int64         `json:"outputTokens"`
	CacheCreationTokens int64         `json:"cacheCreationTokens,omitempty"`
	CacheReadTokens     int64         `json:"cacheReadTokens,omitempty"`
	Model               string        `json:"model"`
	Cost                CostBreakdown `json:"cost"`
}

// Pricing is a per-model price row in USD per million tokens.
// Empty cache prices mean the model has no cache billing.
type Pricing struct {
	Input      string
	Output     string
	CacheWrite string
	CacheRead  string
}
