package claude

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"ai-chat-relay/internal/models"
	"ai-chat-relay/internal/provider"
)

func conversation() []models.Message {
	return []models.Message{
		{Role: models.RoleUser, Content: "first question"},
		{Role: models.RoleAssistant, Content: "first answer"},
		{Role: models.RoleUser, Content: "  second question\n"},
	}
}

func TestBuildRequestPreservesOrderAndContent(t *testing.T) {
	msgs := conversation()
	params, err := BuildRequest(models.ChatRequest{Messages: msgs, System: "be brief"}, "claude-sonnet-4-20250514", 1024)
	require.NoError(t, err)

	body, err := json.Marshal(params)
	require.NoError(t, err)

	texts := gjson.GetBytes(body, "messages.#.content.0.text").Array()
	roles := gjson.GetBytes(body, "messages.#.role").Array()
	require.Len(t, texts, len(msgs))
	for i, msg := range msgs {
		require.Equal(t, msg.Content, texts[i].String())
		require.Equal(t, string(msg.Role), roles[i].String())
	}
	require.Equal(t, "claude-sonnet-4-20250514", gjson.GetBytes(body, "model").String())
	require.Equal(t, int64(1024), gjson.GetBytes(body, "max_tokens").Int())

	// caller's slice is untouched
	require.Equal(t, conversation(), msgs)
}

func TestBuildRequestCacheAnnotations(t *testing.T) {
	params, err := BuildRequest(models.ChatRequest{Messages: conversation(), System: "be brief"}, "m", 10)
	require.NoError(t, err)

	body, err := json.Marshal(params)
	require.NoError(t, err)

	require.Equal(t, "be brief", gjson.GetBytes(body, "system.0.text").String())
	require.Equal(t, "ephemeral", gjson.GetBytes(body, "system.0.cache_control.type").String())

	require.False(t, gjson.GetBytes(body, "messages.0.content.0.cache_control").Exists())
	require.Equal(t, "ephemeral", gjson.GetBytes(body, "messages.1.content.0.cache_control.type").String())
	require.False(t, gjson.GetBytes(body, "messages.2.content.0.cache_control").Exists())
}

func TestBuildRequestSingleMessageHasNoMessageBreakpoint(t *testing.T) {
	params, err := BuildRequest(models.ChatRequest{Messages: []models.Message{{Role: models.RoleUser, Content: "hi"}}}, "m", 10)
	require.NoError(t, err)

	body, err := json.Marshal(params)
	require.NoError(t, err)
	require.False(t, gjson.GetBytes(body, "messages.0.content.0.cache_control").Exists())
	require.False(t, gjson.GetBytes(body, "system").Exists())
}

func TestBuildRequestValidation(t *testing.T) {
	_, err := BuildRequest(models.ChatRequest{}, "m", 10)
	require.ErrorIs(t, err, provider.ErrValidation)

	_, err = BuildRequest(models.ChatRequest{Messages: conversation()}, " ", 10)
	require.ErrorIs(t, err, provider.ErrValidation)

	_, err = BuildRequest(models.ChatRequest{Messages: []models.Message{{Role: "system", Content: "x"}}}, "m", 10)
	require.ErrorIs(t, err, provider.ErrValidation)
}
