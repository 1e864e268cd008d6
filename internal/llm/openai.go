package llm

import (
	"context"
	"fmt"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/bizmatters/agent-builder/catalog-chatbot/internal/config"
	"github.com/bizmatters/agent-builder/catalog-chatbot/internal/logger"
)

// OpenAIClient talks to any OpenAI-compatible chat completions endpoint,
// including Gemini's OpenAI compatibility layer.
type OpenAIClient struct {
	api               *openai.Client
	model             string
	systemInstruction string
	logger            *zap.Logger
	tracer            trace.Tracer
}

// NewOpenAIClient creates an OpenAI-compatible adapter from cfg.
func NewOpenAIClient(cfg config.LLMConfig, log *zap.Logger) *OpenAIClient {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	clientCfg.HTTPClient = &http.Client{Timeout: timeout}

	return &OpenAIClient{
		api:               openai.NewClientWithConfig(clientCfg),
		model:             cfg.Model,
		systemInstruction: cfg.SystemInstruction,
		logger:            logger.OrNop(log).Named("openai"),
		tracer:            otel.Tracer("openai-client"),
	}
}

// Generate sends one user turn. The first tool call, if any, becomes the
// ToolCall.
func (c *OpenAIClient) Generate(ctx context.Context, prompt string, tools []Tool) (*Response, error) {
	ctx, span := c.tracer.Start(ctx, "openai.generate")
	defer span.End()
	span.SetAttributes(
		attribute.String("llm.model", c.model),
		attribute.Int("llm.tools", len(tools)),
	)

	var msgs []openai.ChatCompletionMessage
	if c.systemInstruction != "" {
		msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: c.systemInstruction})
	}
	msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: prompt})

	req := openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: msgs,
	}
	if len(tools) > 0 {
		req.Tools = make([]openai.Tool, len(tools))
		for i, t := range tools {
			req.Tools[i] = openai.Tool{
				Type: openai.ToolTypeFunction,
				Function: &openai.FunctionDefinition{
					Name:        t.Name,
					Description: t.Description,
					Parameters:  t.Parameters,
				},
			}
		}
		req.ToolChoice = "auto"
	}

	start := time.Now()
	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("openai api error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: no choices in response", ErrMalformedResponse)
	}

	choice := resp.Choices[0].Message
	out := &Response{Text: choice.Content}
	if len(choice.ToolCalls) > 0 {
		tc := choice.ToolCalls[0]
		args, err := decodeArgs([]byte(tc.Function.Arguments))
		if err != nil {
			return nil, err
		}
		out.ToolCall = &ToolCall{Name: tc.Function.Name, Args: args}
		span.SetAttributes(attribute.String("llm.tool_call", tc.Function.Name))
	}

	c.logger.Debug("received chat completion",
		zap.String("model", c.model),
		zap.Bool("tool_call", out.ToolCall != nil),
		zap.Int("text_len", len(out.Text)),
		zap.Duration("duration", time.Since(start)))

	return out, nil
}
