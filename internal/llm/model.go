// Package llm adapts generative-language providers to the single capability
// the chat pipeline needs: one prompt in, optional tools, text and/or one
// structured tool call out.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/bizmatters/agent-builder/catalog-chatbot/internal/config"
)

// ErrMalformedResponse is returned when a provider answers with a shape the
// pipeline cannot interpret (no candidates, no content parts, unparsable
// tool arguments).
var ErrMalformedResponse = errors.New("malformed model response")

// Tool declares one callable operation to the model.
type Tool struct {
	Name        string
	Description string
	Parameters  map[string]any // JSON Schema object
}

// ToolCall is a structured intent returned by the model.
type ToolCall struct {
	Name string
	Args map[string]any
}

// Response is what the model produced for one prompt.
type Response struct {
	Text     string
	ToolCall *ToolCall
}

// Model generates a response. tools may be nil, in which case the model is
// expected to answer in plain text.
type Model interface {
	Generate(ctx context.Context, prompt string, tools []Tool) (*Response, error)
}

// New builds the adapter selected by cfg.Provider.
func New(cfg config.LLMConfig, log *zap.Logger) (Model, error) {
	switch cfg.Provider {
	case "gemini", "":
		return NewGeminiClient(cfg, log), nil
	case "openai":
		return NewOpenAIClient(cfg, log), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}

// decodeArgs decodes tool arguments keeping numbers as json.Number.
func decodeArgs(raw []byte) (map[string]any, error) {
	args := map[string]any{}
	if len(bytes.TrimSpace(raw)) == 0 {
		return args, nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&args); err != nil {
		return nil, fmt.Errorf("%w: tool arguments: %v", ErrMalformedResponse, err)
	}
	if args == nil {
		args = map[string]any{}
	}
	return args, nil
}
