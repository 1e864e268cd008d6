package metrics

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPipelineMetrics_Creation(t *testing.T) {
	t.Run("with the global provider", func(t *testing.T) {
		metrics, err := NewPipelineMetrics(nil)
		require.NoError(t, err)
		assert.NotNil(t, metrics.requestsCounter)
		assert.NotNil(t, metrics.toolCallsCounter)
		assert.NotNil(t, metrics.modelDuration)
		assert.NotNil(t, metrics.catalogCallsCounter)
		assert.NotNil(t, metrics.catalogCallDuration)
		assert.NotNil(t, metrics.requestDuration)
	})
}

func TestPipelineMetrics_RecordersDoNotPanic(t *testing.T) {
	metrics, err := NewPipelineMetrics(nil)
	require.NoError(t, err)
	ctx := context.Background()

	assert.NotPanics(t, func() {
		metrics.RecordRequest(ctx, "grounded", 150*time.Millisecond)
		metrics.RecordToolCall(ctx, "get_products", "grounded")
		metrics.RecordModelCall(ctx, "intent", true, time.Second)
		metrics.RecordModelCall(ctx, "compose", false, 2*time.Second)
		metrics.RecordCatalogCall(ctx, "GET", false, 10*time.Millisecond)
	})
}

func TestPrometheusProvider_ExposesPipelineMetrics(t *testing.T) {
	provider, handler, err := NewPrometheusProvider()
	require.NoError(t, err)
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	metrics, err := NewPipelineMetrics(provider)
	require.NoError(t, err)

	ctx := context.Background()
	metrics.RecordRequest(ctx, "reply", 20*time.Millisecond)
	metrics.RecordToolCall(ctx, "redirect_to_product", "reply")
	metrics.RecordCatalogCall(ctx, "GET", true, 5*time.Millisecond)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)

	out := string(body)
	assert.Contains(t, out, "chat_requests")
	assert.Contains(t, out, "chat_tool_calls")
	assert.Contains(t, out, `operation="redirect_to_product"`)
	assert.Contains(t, out, "catalog_calls")
	assert.Contains(t, out, "go_goroutines")
}
