package translator

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"ai-chat-relay/internal/models"
)

var (
	errEmptyMessages  = errors.New("at least one message is required")
	errInvalidRole    = errors.New("invalid role")
	errInvalidContent = errors.New("invalid message content")
	errInvalidSystem  = errors.New("invalid system prompt")
	errInvalidTier    = errors.New("invalid tier")
)

const providerAuto = "auto"

// ChatRequest models the inbound relay payload.
type ChatRequest struct {
	Messages []ChatMessage
	System   string
	Provider string
	Model    string
	Tier     models.Tier
}

// UnmarshalJSON enforces validation and normalises fields.
func (r *ChatRequest) UnmarshalJSON(data []byte) error {
	type alias struct {
		Messages []ChatMessage   `json:"messages"`
		System   json.RawMessage `json:"system"`
		Provider string          `json:"provider"`
		Model    string          `json:"model"`
		Tier     string          `json:"tier"`
	}

	var raw alias
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode chat request: %w", err)
	}

	system, err := parseSystem(raw.System)
	if err != nil {
		return err
	}

	tier, err := parseTier(raw.Tier)
	if err != nil {
		return err
	}

	r.Messages = raw.Messages
	r.System = system
	r.Provider = strings.ToLower(strings.TrimSpace(raw.Provider))
	if r.Provider == "" {
		r.Provider = providerAuto
	}
	r.Model = strings.TrimSpace(raw.Model)
	r.Tier = tier

	return r.validate()
}

func (r *ChatRequest) validate() error {
	if len(r.Messages) == 0 {
		return errEmptyMessages
	}
	for i, msg := range r.Messages {
		if err := msg.validate(); err != nil {
			return fmt.Errorf("messages[%d]: %w", i, err)
		}
	}
	return nil
}

// ToCanonical converts the inbound payload into the relay's request model.
func (r ChatRequest) ToCanonical() models.ChatRequest {
	msgs := make([]models.Message, 0, len(r.Messages))
	for _, m := range r.Messages {
		msgs = append(msgs, models.Message{
			Role:    models.Role(m.Role),
			Content: m.Content,
		})
	}

	return models.ChatRequest{
		Messages: msgs,
		System:   r.System,
		Provider: r.Provider,
		Model:    r.Model,
		Tier:     r.Tier,
	}
}

// ChatMessage represents a single message in the request payload.
type ChatMessage struct {
	Role    string
	Content string
}

// UnmarshalJSON accepts content either as a string or as a list of text blocks.
func (m *ChatMessage) UnmarshalJSON(data []byte) error {
	type alias struct {
		Role    string          `json:"role"`
		Content json.RawMessage `json:"content"`
	}

	var raw alias
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode chat message: %w", err)
	}

	content, err := extractContent(raw.Content)
	if err != nil {
		return err
	}

	m.Role = strings.TrimSpace(raw.Role)
	m.Content = content

	return m.validate()
}

func (m *ChatMessage) validate() error {
	switch models.Role(m.Role) {
	case models.RoleUser, models.RoleAssistant:
	default:
		return fmt.Errorf("%w: %s", errInvalidRole, m.Role)
	}

	if strings.TrimSpace(m.Content) == "" {
		return errInvalidContent
	}

	return nil
}

// extractContent keeps text verbatim; only blank content is rejected.
func extractContent(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", errInvalidContent
	}

	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return text, nil
	}

	var blocks []textBlock
	if err := json.Unmarshal(raw, &blocks); err == nil {
		var builder strings.Builder
		for _, block := range blocks {
			if block.Type != "" && block.Type != "text" {
				return "", fmt.Errorf("%w: unsupported block type %q", errInvalidContent, block.Type)
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(block.Text)
		}
		return builder.String(), nil
	}

	return "", errInvalidContent
}

type textBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// parseSystem accepts a string, a list of strings or a list of text blocks,
// joining multiple parts with a blank line.
func parseSystem(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", nil
	}

	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		return strings.TrimSpace(single), nil
	}

	var multiple []string
	if err := json.Unmarshal(raw, &multiple); err == nil {
		return joinNonEmpty(multiple), nil
	}

	var blocks []textBlock
	if err := json.Unmarshal(raw, &blocks); err == nil {
		parts := make([]string, 0, len(blocks))
		for _, block := range blocks {
			if block.Type != "" && block.Type != "text" {
				return "", fmt.Errorf("%w: unsupported block type %q", errInvalidSystem, block.Type)
			}
			parts = append(parts, block.Text)
		}
		return joinNonEmpty(parts), nil
	}

	return "", errInvalidSystem
}

func joinNonEmpty(parts []string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, "\n\n")
}

func parseTier(raw string) (models.Tier, error) {
	switch models.Tier(strings.ToLower(strings.TrimSpace(raw))) {
	case "", models.TierDefault:
		return models.TierDefault, nil
	case models.TierFast:
		return models.TierFast, nil
	default:
		return "", fmt.Errorf("%w: %s", errInvalidTier, raw)
	}
}
