package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/bizmatters/agent-builder/catalog-chatbot/internal/config"
)

func newOpenAITestServer(t *testing.T, body string, captured *map[string]any) *OpenAIClient {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		if captured != nil {
			raw, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(raw, captured)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)

	return NewOpenAIClient(config.LLMConfig{
		Provider: "openai",
		APIKey:   "test-key",
		Model:    "gpt-test",
		BaseURL:  srv.URL,
	}, zaptest.NewLogger(t))
}

func TestOpenAIGenerate_Text(t *testing.T) {
	var req map[string]any
	c := newOpenAITestServer(t,
		`{"id":"1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"Welcome!"},"finish_reason":"stop"}]}`, &req)

	resp, err := c.Generate(context.Background(), "hello", nil)
	require.NoError(t, err)
	assert.Equal(t, "Welcome!", resp.Text)
	assert.Nil(t, resp.ToolCall)
	assert.NotContains(t, req, "tools")
}

func TestOpenAIGenerate_ToolCall(t *testing.T) {
	var req map[string]any
	c := newOpenAITestServer(t,
		`{"id":"1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"","tool_calls":[{"id":"c1","type":"function","function":{"name":"get_product_details","arguments":"{\"product_id\":12}"}}]},"finish_reason":"tool_calls"}]}`, &req)

	tools := []Tool{{Name: "get_product_details", Description: "details", Parameters: map[string]any{"type": "object"}}}
	resp, err := c.Generate(context.Background(), "tell me about 12", tools)
	require.NoError(t, err)
	require.NotNil(t, resp.ToolCall)
	assert.Equal(t, "get_product_details", resp.ToolCall.Name)
	assert.Equal(t, json.Number("12"), resp.ToolCall.Args["product_id"])
	assert.Equal(t, "auto", req["tool_choice"])
}

func TestOpenAIGenerate_NoChoices(t *testing.T) {
	c := newOpenAITestServer(t, `{"id":"1","object":"chat.completion","choices":[]}`, nil)

	_, err := c.Generate(context.Background(), "hello", nil)
	assert.ErrorIs(t, err, ErrMalformedResponse)
}
