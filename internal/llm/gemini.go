package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/bizmatters/agent-builder/catalog-chatbot/internal/config"
	"github.com/bizmatters/agent-builder/catalog-chatbot/internal/logger"
)

const defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// GeminiClient calls the Gemini generateContent REST API.
type GeminiClient struct {
	httpClient        *http.Client
	apiKey            string
	model             string
	baseURL           string
	systemInstruction string
	logger            *zap.Logger
	tracer            trace.Tracer
}

// NewGeminiClient creates a Gemini adapter from cfg.
func NewGeminiClient(cfg config.LLMConfig, log *zap.Logger) *GeminiClient {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultGeminiBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &GeminiClient{
		httpClient:        &http.Client{Timeout: timeout},
		apiKey:            cfg.APIKey,
		model:             cfg.Model,
		baseURL:           baseURL,
		systemInstruction: cfg.SystemInstruction,
		logger:            logger.OrNop(log).Named("gemini"),
		tracer:            otel.Tracer("gemini-client"),
	}
}

type geminiRequest struct {
	Contents          []geminiContent `json:"contents"`
	SystemInstruction *geminiContent  `json:"systemInstruction,omitempty"`
	Tools             []geminiTool    `json:"tools,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text         string              `json:"text,omitempty"`
	FunctionCall *geminiFunctionCall `json:"functionCall,omitempty"`
}

type geminiFunctionCall struct {
	Name string          `json:"name"`
	Args json.RawMessage `json:"args,omitempty"`
}

type geminiTool struct {
	FunctionDeclarations []geminiFunctionDeclaration `json:"functionDeclarations"`
}

type geminiFunctionDeclaration struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error,omitempty"`
}

// Generate sends one user turn. Only the first content part of the first
// candidate is inspected: a functionCall there becomes the ToolCall, its text
// becomes Text.
func (g *GeminiClient) Generate(ctx context.Context, prompt string, tools []Tool) (*Response, error) {
	ctx, span := g.tracer.Start(ctx, "gemini.generate")
	defer span.End()
	span.SetAttributes(
		attribute.String("llm.model", g.model),
		attribute.Int("llm.tools", len(tools)),
	)

	req := geminiRequest{
		Contents: []geminiContent{{Role: "user", Parts: []geminiPart{{Text: prompt}}}},
	}
	if g.systemInstruction != "" {
		req.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: g.systemInstruction}}}
	}
	if len(tools) > 0 {
		decls := make([]geminiFunctionDeclaration, len(tools))
		for i, t := range tools {
			decls[i] = geminiFunctionDeclaration{Name: t.Name, Description: t.Description, Parameters: t.Parameters}
		}
		req.Tools = []geminiTool{{FunctionDeclarations: decls}}
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("gemini: marshaling request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", g.baseURL, g.model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("gemini: creating HTTP request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", g.apiKey)

	start := time.Now()
	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("gemini: HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("gemini: reading response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gemini: API returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var apiResp geminiResponse
	if err := json.Unmarshal(raw, &apiResp); err != nil {
		return nil, fmt.Errorf("%w: gemini: %v", ErrMalformedResponse, err)
	}
	if apiResp.Error != nil {
		return nil, fmt.Errorf("gemini: API error [%d] %s: %s", apiResp.Error.Code, apiResp.Error.Status, apiResp.Error.Message)
	}
	if len(apiResp.Candidates) == 0 {
		return nil, fmt.Errorf("%w: gemini returned no candidates", ErrMalformedResponse)
	}
	parts := apiResp.Candidates[0].Content.Parts
	if len(parts) == 0 {
		return nil, fmt.Errorf("%w: gemini candidate has no content parts", ErrMalformedResponse)
	}

	first := parts[0]
	out := &Response{Text: first.Text}
	if first.FunctionCall != nil && first.FunctionCall.Name != "" {
		args, err := decodeArgs(first.FunctionCall.Args)
		if err != nil {
			return nil, err
		}
		out.ToolCall = &ToolCall{Name: first.FunctionCall.Name, Args: args}
		span.SetAttributes(attribute.String("llm.tool_call", first.FunctionCall.Name))
	}

	g.logger.Debug("received gemini response",
		zap.String("model", g.model),
		zap.Bool("tool_call", out.ToolCall != nil),
		zap.Int("text_len", len(out.Text)),
		zap.String("finish_reason", apiResp.Candidates[0].FinishReason),
		zap.Duration("duration", time.Since(start)))

	return out, nil
}
