package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/bizmatters/agent-builder/catalog-chatbot/internal/config"
)

func newGeminiTestServer(t *testing.T, status int, body string, captured *map[string]any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/gemini-test:generateContent", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))
		if captured != nil {
			raw, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(raw, captured)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestGemini(t *testing.T, baseURL string) *GeminiClient {
	return NewGeminiClient(config.LLMConfig{
		Provider:          "gemini",
		APIKey:            "test-key",
		Model:             "gemini-test",
		BaseURL:           baseURL,
		SystemInstruction: "be a jeweller",
	}, zaptest.NewLogger(t))
}

func TestGeminiGenerate_Text(t *testing.T) {
	var req map[string]any
	srv := newGeminiTestServer(t, http.StatusOK,
		`{"candidates":[{"content":{"parts":[{"text":"Hello there"}]},"finishReason":"STOP"}]}`, &req)

	resp, err := newTestGemini(t, srv.URL).Generate(context.Background(), "hi", nil)
	require.NoError(t, err)
	assert.Equal(t, "Hello there", resp.Text)
	assert.Nil(t, resp.ToolCall)

	assert.NotContains(t, req, "tools")
	assert.Contains(t, req, "systemInstruction")
}

func TestGeminiGenerate_FunctionCall(t *testing.T) {
	var req map[string]any
	srv := newGeminiTestServer(t, http.StatusOK,
		`{"candidates":[{"content":{"parts":[{"functionCall":{"name":"get_products","args":{"limit":3}}}]}}]}`, &req)

	tools := []Tool{{
		Name:        "get_products",
		Description: "list products",
		Parameters:  map[string]any{"type": "object", "properties": map[string]any{}},
	}}
	resp, err := newTestGemini(t, srv.URL).Generate(context.Background(), "show me rings", tools)
	require.NoError(t, err)
	require.NotNil(t, resp.ToolCall)
	assert.Equal(t, "get_products", resp.ToolCall.Name)
	assert.Equal(t, json.Number("3"), resp.ToolCall.Args["limit"])

	require.Contains(t, req, "tools")
	decls := req["tools"].([]any)[0].(map[string]any)["functionDeclarations"].([]any)
	assert.Len(t, decls, 1)
}

func TestGeminiGenerate_Failures(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		malformed bool
	}{
		{"http error", http.StatusInternalServerError, `{"error":"boom"}`, false},
		{"api error object", http.StatusOK, `{"error":{"code":400,"message":"bad","status":"INVALID_ARGUMENT"}}`, false},
		{"no candidates", http.StatusOK, `{"candidates":[]}`, true},
		{"no parts", http.StatusOK, `{"candidates":[{"content":{"parts":[]}}]}`, true},
		{"invalid json", http.StatusOK, `not json`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newGeminiTestServer(t, tt.status, tt.body, nil)
			_, err := newTestGemini(t, srv.URL).Generate(context.Background(), "hi", nil)
			require.Error(t, err)
			assert.Equal(t, tt.malformed, errors.Is(err, ErrMalformedResponse))
		})
	}
}

func TestNew_Provider(t *testing.T) {
	m, err := New(config.LLMConfig{Provider: "gemini", APIKey: "k", Model: "m"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &GeminiClient{}, m)

	m, err = New(config.LLMConfig{Provider: "openai", APIKey: "k", Model: "m"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &OpenAIClient{}, m)

	_, err = New(config.LLMConfig{Provider: "claude"}, nil)
	assert.Error(t, err)
}

func TestDecodeArgs(t *testing.T) {
	args, err := decodeArgs(nil)
	require.NoError(t, err)
	assert.Empty(t, args)

	args, err = decodeArgs([]byte(`{"min_price":10.5,"category_id":"7"}`))
	require.NoError(t, err)
	assert.Equal(t, json.Number("10.5"), args["min_price"])
	assert.Equal(t, "7", args["category_id"])

	_, err = decodeArgs([]byte(`{`))
	assert.ErrorIs(t, err, ErrMalformedResponse)
}
