// Package chat runs one customer turn through the tool-call pipeline: intent
// call, dispatch, then either a grounded second call or a passthrough.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/bizmatters/agent-builder/catalog-chatbot/internal/dispatch"
	"github.com/bizmatters/agent-builder/catalog-chatbot/internal/intent"
	"github.com/bizmatters/agent-builder/catalog-chatbot/internal/llm"
	"github.com/bizmatters/agent-builder/catalog-chatbot/internal/logger"
)

var (
	// ErrEmptyPrompt is returned for a blank prompt. No model call is made.
	ErrEmptyPrompt = errors.New("missing prompt")
	// ErrModelInvocation wraps any failure of either model call.
	ErrModelInvocation = errors.New("model invocation failed")
)

// NotUnderstood is returned when the model produced neither a usable intent
// nor any text.
const NotUnderstood = "Sorry, I don't understand your question. Please try again."

// Result is the answer to one prompt.
type Result struct {
	Text      string
	Redirect  string
	ProductID int
}

// Dispatcher resolves a model intent.
type Dispatcher interface {
	Dispatch(ctx context.Context, in intent.Intent) dispatch.Outcome
}

// Composer phrases a grounded answer.
type Composer interface {
	Compose(ctx context.Context, gc dispatch.GroundingContext) (string, error)
}

// Recorder receives pipeline observations.
type Recorder interface {
	RecordRequest(ctx context.Context, outcome string, d time.Duration)
	RecordToolCall(ctx context.Context, operation, outcome string)
	RecordModelCall(ctx context.Context, stage string, ok bool, d time.Duration)
}

// Service answers prompts.
type Service struct {
	model      llm.Model
	dispatcher Dispatcher
	composer   Composer
	tools      []llm.Tool
	recorder   Recorder
	logger     *zap.Logger
	tracer     trace.Tracer
}

// NewService wires the pipeline. recorder may be nil.
func NewService(model llm.Model, d Dispatcher, c Composer, recorder Recorder, log *zap.Logger) *Service {
	return &Service{
		model:      model,
		dispatcher: d,
		composer:   c,
		tools:      intent.ToolDeclarations(),
		recorder:   recorder,
		logger:     logger.OrNop(log).Named("chat"),
		tracer:     otel.Tracer("chat-service"),
	}
}

// Submit answers prompt. The only errors are ErrEmptyPrompt and wrapped
// ErrModelInvocation; every catalog or intent problem becomes apology text.
func (s *Service) Submit(ctx context.Context, prompt string) (Result, error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "chat.submit")
	defer span.End()

	res, outcome, err := s.submit(ctx, prompt)
	span.SetAttributes(attribute.String("chat.outcome", outcome))
	if err != nil {
		span.RecordError(err)
	}
	if s.recorder != nil {
		s.recorder.RecordRequest(ctx, outcome, time.Since(start))
	}
	return res, err
}

func (s *Service) submit(ctx context.Context, prompt string) (Result, string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return Result{}, "empty_prompt", ErrEmptyPrompt
	}
	s.logger.Info("received prompt", zap.Int("prompt_len", len(prompt)))

	resp, err := s.generate(ctx, "intent", prompt, s.tools)
	if err != nil {
		return Result{}, "model_error", err
	}

	if resp.ToolCall == nil {
		return Result{Text: orNotUnderstood(resp.Text)}, "direct_text", nil
	}

	call := resp.ToolCall
	s.logger.Info("model requested tool call",
		zap.String("operation", call.Name),
		zap.Any("arguments", call.Args))

	out := s.dispatcher.Dispatch(ctx, intent.Intent{Operation: call.Name, Arguments: call.Args})
	if s.recorder != nil {
		s.recorder.RecordToolCall(ctx, call.Name, out.Kind())
	}

	switch o := out.(type) {
	case dispatch.Grounded:
		text, err := s.compose(ctx, o.Context)
		if err != nil {
			return Result{}, "model_error", err
		}
		res := Result{Text: text}
		if o.Context.Operation == intent.GetProductDetails {
			res.ProductID, _ = o.Context.Extra[dispatch.ExtraProductID].(int)
		}
		return res, o.Kind(), nil
	case dispatch.Reply:
		return Result{Text: o.Text, Redirect: o.Redirect}, o.Kind(), nil
	case dispatch.Invalid:
		return Result{Text: o.Apology}, o.Kind(), nil
	case dispatch.Unavailable:
		return Result{Text: o.Apology}, o.Kind(), nil
	case dispatch.Unrecognized:
		return Result{Text: orNotUnderstood(resp.Text)}, o.Kind(), nil
	default:
		return Result{}, "internal_error", fmt.Errorf("unhandled dispatch outcome %T", out)
	}
}

func (s *Service) generate(ctx context.Context, stage, prompt string, tools []llm.Tool) (*llm.Response, error) {
	start := time.Now()
	resp, err := s.model.Generate(ctx, prompt, tools)
	if s.recorder != nil {
		s.recorder.RecordModelCall(ctx, stage, err == nil, time.Since(start))
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s call: %w", ErrModelInvocation, stage, err)
	}
	if resp == nil {
		return nil, fmt.Errorf("%w: %s call: %w", ErrModelInvocation, stage, llm.ErrMalformedResponse)
	}
	return resp, nil
}

func (s *Service) compose(ctx context.Context, gc dispatch.GroundingContext) (string, error) {
	start := time.Now()
	text, err := s.composer.Compose(ctx, gc)
	if s.recorder != nil {
		s.recorder.RecordModelCall(ctx, "compose", err == nil, time.Since(start))
	}
	if err != nil {
		return "", fmt.Errorf("%w: compose call: %w", ErrModelInvocation, err)
	}
	return text, nil
}

func orNotUnderstood(text string) string {
	if strings.TrimSpace(text) == "" {
		return NotUnderstood
	}
	return text
}
