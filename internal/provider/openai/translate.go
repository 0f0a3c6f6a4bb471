package openai

import (
	"fmt"
	"strings"

	"github.com/openai/openai-go"

	"ai-chat-relay/internal/models"
	"ai-chat-relay/internal/provider"
)

// BuildRequest translates req into chat completion params. A system prompt
// becomes a leading system message. A positive maxTokens caps the completion.
func BuildRequest(req models.ChatRequest, model string, maxTokens int64) (openai.ChatCompletionNewParams, error) {
	if strings.TrimSpace(model) == "" {
		return openai.ChatCompletionNewParams{}, fmt.Errorf("%w: model must be provided", provider.ErrValidation)
	}
	if len(req.Messages) == 0 {
		return openai.ChatCompletionNewParams{}, fmt.Errorf("%w: at least one message is required", provider.ErrValidation)
	}

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages)+1)
	if req.System != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}
	for _, msg := range req.Messages {
		switch msg.Role {
		case models.RoleUser:
			messages = append(messages, openai.UserMessage(msg.Content))
		case models.RoleAssistant:
			messages = append(messages, openai.AssistantMessage(msg.Content))
		default:
			return openai.ChatCompletionNewParams{}, fmt.Errorf("%w: unsupported role %q", provider.ErrValidation, msg.Role)
		}
	}

	params := openai.ChatCompletionNewParams{
		Model:    model,
		Messages: messages,
	}
	if maxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(maxTokens)
	}
	return params, nil
}
