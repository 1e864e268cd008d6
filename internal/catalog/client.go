// Package catalog is a thin client over the catalog backend. Every call makes
// exactly one attempt; any failure is reported as an absent result, never as
// an error, so callers decide how to apologise.
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/bizmatters/agent-builder/catalog-chatbot/internal/logger"
)

const pathPrefix = "/catalog"

// CallRecorder receives one observation per backend call.
type CallRecorder interface {
	RecordCatalogCall(ctx context.Context, method string, ok bool, d time.Duration)
}

// Client calls the catalog backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
	tracer     trace.Tracer
	breaker    *gobreaker.CircuitBreaker
	recorder   CallRecorder
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRecorder attaches a metrics recorder.
func WithRecorder(r CallRecorder) Option {
	return func(c *Client) { c.recorder = r }
}

// NewClient creates a catalog client rooted at baseURL (for example
// http://gateway:8000/api/v1). Endpoints are resolved under baseURL + "/catalog".
func NewClient(baseURL string, timeout time.Duration, log *zap.Logger, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	log = logger.OrNop(log).Named("catalog")

	// The breaker only short-circuits; it never retries. 4xx answers are the
	// backend working as intended and do not count against it.
	settings := gobreaker.Settings{
		Name:        "catalog-backend",
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
		IsSuccessful: func(err error) bool {
			var se *StatusError
			return err == nil || (errors.As(err, &se) && se.Code < http.StatusInternalServerError)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	}

	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     log,
		tracer:     otel.Tracer("catalog-client"),
		breaker:    gobreaker.NewCircuitBreaker(settings),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// StatusError reports a non-2xx answer from the backend.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("catalog backend returned status %d: %s", e.Code, e.Body)
}

// URL returns the absolute URL for endpoint.
func (c *Client) URL(endpoint string) string {
	return c.baseURL + pathPrefix + endpoint
}

// Call performs one request and returns the decoded JSON payload. ok is false
// on transport errors, non-2xx answers, malformed payloads, or while the
// breaker is open. Numbers are decoded as json.Number.
func (c *Client) Call(ctx context.Context, method, endpoint string, params url.Values, body any) (any, bool) {
	target := c.URL(endpoint)
	if len(params) > 0 {
		target += "?" + params.Encode()
	}

	ctx, span := c.tracer.Start(ctx, "catalog.call")
	defer span.End()
	span.SetAttributes(
		attribute.String("http.method", method),
		attribute.String("http.url", target),
	)

	c.logger.Info("calling catalog backend", zap.String("method", method), zap.String("url", target))

	start := time.Now()
	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.do(ctx, method, target, body)
	})
	if c.recorder != nil {
		c.recorder.RecordCatalogCall(ctx, method, err == nil, time.Since(start))
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "catalog call failed")
		c.logger.Error("catalog call failed",
			zap.String("method", method),
			zap.String("url", target),
			zap.Error(err))
		return nil, false
	}
	return result, true
}

func (c *Client) do(ctx context.Context, method, target string, body any) (any, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode, Body: truncate(string(raw), 256)}
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var out any
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return nil, errors.New("failed to decode response: trailing data after JSON value")
	}
	return out, nil
}

// Ping reports whether the backend answers at all. Any HTTP status counts.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL("/categories"), nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("catalog backend unreachable: %w", err)
	}
	resp.Body.Close()
	return nil
}

func (c *Client) list(ctx context.Context, endpoint string, params url.Values) ([]Entity, bool) {
	v, ok := c.Call(ctx, http.MethodGet, endpoint, params, nil)
	if !ok {
		return nil, false
	}
	items, ok := toEntities(v)
	if !ok {
		c.logger.Error("catalog payload is not a list", zap.String("endpoint", endpoint))
	}
	return items, ok
}

func (c *Client) one(ctx context.Context, endpoint string) (Entity, bool) {
	v, ok := c.Call(ctx, http.MethodGet, endpoint, nil, nil)
	if !ok {
		return nil, false
	}
	e, ok := toEntity(v)
	if !ok {
		c.logger.Error("catalog payload is not an object", zap.String("endpoint", endpoint))
	}
	return e, ok
}

// Products lists every product.
func (c *Client) Products(ctx context.Context) ([]Entity, bool) {
	return c.list(ctx, "/products", nil)
}

// Product fetches one product.
func (c *Client) Product(ctx context.Context, id int) (Entity, bool) {
	return c.one(ctx, "/products/"+strconv.Itoa(id))
}

// Categories lists every category.
func (c *Client) Categories(ctx context.Context) ([]Entity, bool) {
	return c.list(ctx, "/categories", nil)
}

// Category fetches one category.
func (c *Client) Category(ctx context.Context, id int) (Entity, bool) {
	return c.one(ctx, "/categories/"+strconv.Itoa(id))
}

// ProductsByCategory lists the products of one category.
func (c *Client) ProductsByCategory(ctx context.Context, categoryID int) ([]Entity, bool) {
	return c.list(ctx, "/products/category/"+strconv.Itoa(categoryID), nil)
}

// Bestselling lists the best-selling products.
func (c *Client) Bestselling(ctx context.Context) ([]Entity, bool) {
	return c.list(ctx, "/products/bestselling", nil)
}

// NewArrivals asks the backend for the newest limit products.
func (c *Client) NewArrivals(ctx context.Context, limit int) ([]Entity, bool) {
	return c.list(ctx, "/products/new-arrivals", url.Values{"limit": {strconv.Itoa(limit)}})
}

// ProductsByPriceRange lists products priced between min and max (VND).
// The backend takes whole amounts, so both bounds are truncated.
func (c *Client) ProductsByPriceRange(ctx context.Context, min, max float64) ([]Entity, bool) {
	endpoint := "/products/price/between/" + wholeAmount(min) + "/" + wholeAmount(max)
	return c.list(ctx, endpoint, nil)
}

func wholeAmount(f float64) string {
	return strconv.FormatFloat(math.Trunc(f), 'f', 0, 64)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
