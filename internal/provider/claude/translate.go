package claude

import (
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"

	"ai-chat-relay/internal/models"
	"ai-chat-relay/internal/provider"
)

// BuildRequest translates req into Messages API params.
//
// The whole system prompt is one cacheable block, and the second-to-last
// conversation message carries an ephemeral cache breakpoint.
func BuildRequest(req models.ChatRequest, model string, maxTokens int64) (anthropic.MessageNewParams, error) {
	if strings.TrimSpace(model) == "" {
		return anthropic.MessageNewParams{}, fmt.Errorf("%w: model must be provided", provider.ErrValidation)
	}
	if len(req.Messages) == 0 {
		return anthropic.MessageNewParams{}, fmt.Errorf("%w: at least one message is required", provider.ErrValidation)
	}

	cacheAt := len(req.Messages) - 2
	messages := make([]anthropic.MessageParam, 0, len(req.Messages))
	for i, msg := range req.Messages {
		block := anthropic.TextBlockParam{Text: msg.Content}
		if i == cacheAt {
			block.CacheControl = anthropic.NewCacheControlEphemeralParam()
		}
		content := []anthropic.ContentBlockParamUnion{{OfText: &block}}

		switch msg.Role {
		case models.RoleUser:
			messages = append(messages, anthropic.NewUserMessage(content...))
		case models.RoleAssistant:
			messages = append(messages, anthropic.NewAssistantMessage(content...))
		default:
			return anthropic.MessageNewParams{}, fmt.Errorf("%w: unsupported role %q", provider.ErrValidation, msg.Role)
		}
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: maxTokens,
		Messages:  messages,
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{
			Text:         req.System,
			CacheControl: anthropic.NewCacheControlEphemeralParam(),
		}}
	}
	return params, nil
}
