package gemini

import (
	"fmt"
	"strings"

	"google.golang.org/genai"

	"ai-chat-relay/internal/models"
	"ai-chat-relay/internal/provider"
)

// GenerateRequest is the streamGenerateContent request body.
type GenerateRequest struct {
	Contents          []*genai.Content        `json:"contents"`
	SystemInstruction *genai.Content          `json:"systemInstruction,omitempty"`
	GenerationConfig  *genai.GenerationConfig `json:"generationConfig,omitempty"`
}

// BuildRequest maps the conversation onto Gemini contents. Assistant turns
// use the "model" role; the system prompt travels as systemInstruction.
// A positive maxTokens becomes generationConfig.maxOutputTokens.
func BuildRequest(req models.ChatRequest, model string, maxTokens int32) (GenerateRequest, error) {
	if strings.TrimSpace(model) == "" {
		return GenerateRequest{}, fmt.Errorf("%w: model must not be empty", provider.ErrValidation)
	}
	if len(req.Messages) == 0 {
		return GenerateRequest{}, fmt.Errorf("%w: messages must not be empty", provider.ErrValidation)
	}

	contents := make([]*genai.Content, 0, len(req.Messages))
	for i, msg := range req.Messages {
		var role genai.Role
		switch msg.Role {
		case models.RoleUser:
			role = genai.RoleUser
		case models.RoleAssistant:
			role = genai.RoleModel
		default:
			return GenerateRequest{}, fmt.Errorf("%w: message %d has unsupported role %q", provider.ErrValidation, i, msg.Role)
		}
		contents = append(contents, genai.NewContentFromText(msg.Content, role))
	}

	out := GenerateRequest{Contents: contents}
	if strings.TrimSpace(req.System) != "" {
		out.SystemInstruction = &genai.Content{Parts: []*genai.Part{genai.NewPartFromText(req.System)}}
	}
	if maxTokens > 0 {
		out.GenerationConfig = &genai.GenerationConfig{MaxOutputTokens: maxTokens}
	}
	return out, nil
}
