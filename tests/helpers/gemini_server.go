package helpers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// FunctionCall is what the fake model answers to a prompt that should become
// a tool call.
type FunctionCall struct {
	Name string                 `json:"name"`
	Args map[string]interface{} `json:"args,omitempty"`
}

// GeminiServer fakes the generateContent API. A request that declares tools
// is answered from the script, keyed by the user prompt: a scripted function
// call, or otherwise the scripted text. A request without tools is a
// grounding call and is answered with "Grounded: " plus the first line of
// its prompt, so tests can tell which operation was composed.
type GeminiServer struct {
	*httptest.Server

	mu       sync.Mutex
	calls    map[string]FunctionCall
	texts    map[string]string
	prompts  []string
	failNext bool
}

// NewGeminiServer starts a fake Gemini endpoint.
func NewGeminiServer(t *testing.T) *GeminiServer {
	t.Helper()
	gs := &GeminiServer{
		calls: map[string]FunctionCall{},
		texts: map[string]string{},
	}
	gs.Server = httptest.NewServer(http.HandlerFunc(gs.serve))
	t.Cleanup(gs.Close)
	return gs
}

// OnPrompt scripts a function call for prompt.
func (gs *GeminiServer) OnPrompt(prompt string, call FunctionCall) {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	gs.calls[prompt] = call
}

// OnPromptText scripts a plain-text answer for prompt.
func (gs *GeminiServer) OnPromptText(prompt, text string) {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	gs.texts[prompt] = text
}

// FailNext makes the next request fail with 500.
func (gs *GeminiServer) FailNext() {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	gs.failNext = true
}

// Prompts returns every prompt received, in order.
func (gs *GeminiServer) Prompts() []string {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	return append([]string(nil), gs.prompts...)
}

type fakeGenerateRequest struct {
	Contents []struct {
		Parts []struct {
			Text string `json:"text"`
		} `json:"parts"`
	} `json:"contents"`
	Tools []json.RawMessage `json:"tools"`
}

func (gs *GeminiServer) serve(w http.ResponseWriter, r *http.Request) {
	if !strings.HasSuffix(r.URL.Path, ":generateContent") {
		http.NotFound(w, r)
		return
	}

	var req fakeGenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Contents) == 0 || len(req.Contents[0].Parts) == 0 {
		http.Error(w, `{"error":{"code":400,"message":"bad request","status":"INVALID_ARGUMENT"}}`, http.StatusBadRequest)
		return
	}
	prompt := req.Contents[0].Parts[0].Text

	gs.mu.Lock()
	gs.prompts = append(gs.prompts, prompt)
	fail := gs.failNext
	gs.failNext = false
	call, hasCall := gs.calls[prompt]
	text := gs.texts[prompt]
	gs.mu.Unlock()

	if fail {
		http.Error(w, `{"error":{"code":500,"message":"internal","status":"INTERNAL"}}`, http.StatusInternalServerError)
		return
	}

	var part map[string]interface{}
	switch {
	case len(req.Tools) == 0:
		first := strings.SplitN(prompt, "\n", 2)[0]
		part = map[string]interface{}{"text": "Grounded: " + first}
	case hasCall:
		part = map[string]interface{}{"functionCall": call}
	default:
		part = map[string]interface{}{"text": text}
	}

	writeJSON(w, map[string]interface{}{
		"candidates": []interface{}{
			map[string]interface{}{
				"content":      map[string]interface{}{"role": "model", "parts": []interface{}{part}},
				"finishReason": "STOP",
			},
		},
	})
}
