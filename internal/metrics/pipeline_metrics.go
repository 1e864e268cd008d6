package metrics

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "catalog-chatbot"

// PipelineMetrics records chat pipeline activity
type PipelineMetrics struct {
	requestsCounter     metric.Int64Counter
	toolCallsCounter    metric.Int64Counter
	modelDuration       metric.Float64Histogram
	catalogCallsCounter metric.Int64Counter
	catalogCallDuration metric.Float64Histogram
	requestDuration     metric.Float64Histogram
}

// NewPipelineMetrics creates the pipeline instruments on provider. A nil
// provider uses the global one.
func NewPipelineMetrics(provider metric.MeterProvider) (*PipelineMetrics, error) {
	if provider == nil {
		provider = otel.GetMeterProvider()
	}
	meter := provider.Meter(meterName)

	requestsCounter, err := meter.Int64Counter(
		"chat.requests",
		metric.WithDescription("Total number of chat requests by outcome"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	requestDuration, err := meter.Float64Histogram(
		"chat.request.duration",
		metric.WithDescription("End-to-end duration of a chat request in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	toolCallsCounter, err := meter.Int64Counter(
		"chat.tool_calls",
		metric.WithDescription("Tool calls requested by the model, by operation and dispatch outcome"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}

	modelDuration, err := meter.Float64Histogram(
		"llm.duration",
		metric.WithDescription("Duration of model calls in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	catalogCallsCounter, err := meter.Int64Counter(
		"catalog.calls",
		metric.WithDescription("Calls made to the catalog backend"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}

	catalogCallDuration, err := meter.Float64Histogram(
		"catalog.call.duration",
		metric.WithDescription("Duration of catalog backend calls in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &PipelineMetrics{
		requestsCounter:     requestsCounter,
		toolCallsCounter:    toolCallsCounter,
		modelDuration:       modelDuration,
		catalogCallsCounter: catalogCallsCounter,
		catalogCallDuration: catalogCallDuration,
		requestDuration:     requestDuration,
	}, nil
}

// RecordRequest records one finished chat request
func (pm *PipelineMetrics) RecordRequest(ctx context.Context, outcome string, duration time.Duration) {
	attrs := metric.WithAttributes(attribute.String("outcome", outcome))
	pm.requestsCounter.Add(ctx, 1, attrs)
	pm.requestDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordToolCall records a model tool call and how dispatch resolved it
func (pm *PipelineMetrics) RecordToolCall(ctx context.Context, operation, outcome string) {
	pm.toolCallsCounter.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("operation", operation),
			attribute.String("outcome", outcome),
		),
	)
}

// RecordModelCall records one model invocation. stage is "intent" for the
// first call and "compose" for the grounding call.
func (pm *PipelineMetrics) RecordModelCall(ctx context.Context, stage string, ok bool, duration time.Duration) {
	pm.modelDuration.Record(ctx, duration.Seconds(),
		metric.WithAttributes(
			attribute.String("stage", stage),
			attribute.Bool("success", ok),
		),
	)
}

// RecordCatalogCall records one catalog backend call
func (pm *PipelineMetrics) RecordCatalogCall(ctx context.Context, method string, ok bool, duration time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("http.method", method),
		attribute.Bool("success", ok),
	)
	pm.catalogCallsCounter.Add(ctx, 1, attrs)
	pm.catalogCallDuration.Record(ctx, duration.Seconds(), attrs)
}
