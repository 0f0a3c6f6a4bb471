package gemini

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"ai-chat-relay/internal/config"
	"ai-chat-relay/internal/models"
	"ai-chat-relay/internal/provider"
)

func TestBuildRequestMapsRolesAndSystem(t *testing.T) {
	req := models.ChatRequest{
		System: "be brief",
		Messages: []models.Message{
			{Role: models.RoleUser, Content: "hi"},
			{Role: models.RoleAssistant, Content: "hello"},
			{Role: models.RoleUser, Content: "again"},
		},
	}
	out, err := BuildRequest(req, "gemini-2.0-flash", 0)
	require.NoError(t, err)

	body, err := json.Marshal(out)
	require.NoError(t, err)

	roles := gjson.GetBytes(body, "contents.#.role").Array()
	require.Len(t, roles, 3)
	require.Equal(t, "user", roles[0].String())
	require.Equal(t, "model", roles[1].String())
	require.Equal(t, "user", roles[2].String())
	require.Equal(t, "hello", gjson.GetBytes(body, "contents.1.parts.0.text").String())
	require.Equal(t, "be brief", gjson.GetBytes(body, "systemInstruction.parts.0.text").String())

	// the caller's conversation is untouched
	require.Equal(t, models.RoleAssistant, req.Messages[1].Role)
}

func TestBuildRequestWithoutSystem(t *testing.T) {
	out, err := BuildRequest(models.ChatRequest{Messages: []models.Message{{Role: models.RoleUser, Content: "hi"}}}, "m", 0)
	require.NoError(t, err)
	require.Nil(t, out.SystemInstruction)
	require.Nil(t, out.GenerationConfig)
}

func TestOpenSendsMaxOutputTokens(t *testing.T) {
	var gotBody []byte
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		_, _ = io.WriteString(w, "[]")
	}))
	defer upstream.Close()

	p, err := New(config.ProviderConfig{BaseURL: upstream.URL, MaxTokens: 512}, "k", upstream.Client())
	require.NoError(t, err)

	st, err := p.Open(context.Background(), models.ChatRequest{
		Messages: []models.Message{{Role: models.RoleUser, Content: "hi"}},
	})
	require.NoError(t, err)
	require.NoError(t, st.Close())
	require.Equal(t, int64(512), gjson.GetBytes(gotBody, "generationConfig.maxOutputTokens").Int())
}

func TestBuildRequestValidation(t *testing.T) {
	_, err := BuildRequest(models.ChatRequest{}, "m", 0)
	require.ErrorIs(t, err, provider.ErrValidation)

	_, err = BuildRequest(models.ChatRequest{Messages: []models.Message{{Role: "system", Content: "x"}}}, "m", 0)
	require.ErrorIs(t, err, provider.ErrValidation)
}

func TestOpenStreamsFromUpstream(t *testing.T) {
	var gotPath, gotKey string
	var gotBody []byte
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("key")
		gotBody, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, "["+fragment("He")+",\n"+fragment("llo")+"]")
	}))
	defer upstream.Close()

	p, err := New(config.ProviderConfig{BaseURL: upstream.URL + "/v1beta"}, "g-key", upstream.Client())
	require.NoError(t, err)
	require.Equal(t, provider.IDGemini, p.Name())

	st, err := p.Open(context.Background(), models.ChatRequest{
		Messages: []models.Message{{Role: models.RoleUser, Content: "hi"}},
	})
	require.NoError(t, err)
	defer st.Close()

	var got []models.StreamEvent
	st.Relay(context.Background(), provider.SinkFunc(func(ev models.StreamEvent) error {
		got = append(got, ev)
		return nil
	}))

	require.Equal(t, "/v1beta/models/gemini-2.0-flash:streamGenerateContent", gotPath)
	require.Equal(t, "g-key", gotKey)
	require.Equal(t, "hi", gjson.GetBytes(gotBody, "contents.0.parts.0.text").String())
	require.Equal(t, []models.StreamEvent{
		models.TextEvent(provider.IDGemini, "He"),
		models.TextEvent(provider.IDGemini, "llo"),
		models.DoneEvent(),
	}, got)
}

func TestOpenFastTierUsesFastModel(t *testing.T) {
	var gotPath string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = io.WriteString(w, "[]")
	}))
	defer upstream.Close()

	p, err := New(config.ProviderConfig{BaseURL: upstream.URL}, "k", upstream.Client())
	require.NoError(t, err)

	st, err := p.Open(context.Background(), models.ChatRequest{
		Messages: []models.Message{{Role: models.RoleUser, Content: "hi"}},
		Tier:     models.TierFast,
	})
	require.NoError(t, err)
	require.NoError(t, st.Close())
	require.Equal(t, "/models/gemini-2.0-flash-lite:streamGenerateContent", gotPath)
}

func TestOpenReportsUpstreamError(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `[{"error":{"code":400,"message":"API key not valid","status":"INVALID_ARGUMENT"}}]`)
	}))
	defer upstream.Close()

	p, err := New(config.ProviderConfig{BaseURL: upstream.URL}, "secret-key", upstream.Client())
	require.NoError(t, err)

	_, err = p.Open(context.Background(), models.ChatRequest{
		Messages: []models.Message{{Role: models.RoleUser, Content: "hi"}},
	})
	require.ErrorIs(t, err, provider.ErrUpstream)
	require.Contains(t, err.Error(), "API key not valid")
	require.NotContains(t, err.Error(), "secret-key")
}

func TestNewRequiresClient(t *testing.T) {
	_, err := New(config.ProviderConfig{}, "k", nil)
	require.Error(t, err)
}
