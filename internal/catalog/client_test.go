package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(server.URL+"/api/v1", 5*time.Second, zaptest.NewLogger(t)), server
}

func TestClient_Call(t *testing.T) {
	tests := []struct {
		name           string
		serverResponse func(w http.ResponseWriter, r *http.Request)
		wantOK         bool
	}{
		{
			name: "successful_call",
			serverResponse: func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodGet, r.Method)
				assert.Equal(t, "/api/v1/catalog/products", r.URL.Path)
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(`[{"id": 1, "name": "Ring"}]`))
			},
			wantOK: true,
		},
		{
			name: "server_error",
			serverResponse: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte("boom"))
			},
		},
		{
			name: "not_found",
			serverResponse: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
			},
		},
		{
			name: "invalid_json_response",
			serverResponse: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("invalid json"))
			},
		},
		{
			name: "trailing_garbage",
			serverResponse: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`[{"id": 1}]garbage`))
			},
		},
		{
			name: "second_json_value",
			serverResponse: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`[{"id": 1}] [{"id": 2}]`))
			},
		},
		{
			name: "trailing_newline",
			serverResponse: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("[{\"id\": 1}]\n"))
			},
			wantOK: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, tt.serverResponse)

			result, ok := client.Call(context.Background(), http.MethodGet, "/products", nil, nil)

			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.NotNil(t, result)
			} else {
				assert.Nil(t, result)
			}
		})
	}
}

func TestClient_CallTransportError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	client := NewClient(url, time.Second, zaptest.NewLogger(t))
	_, ok := client.Call(context.Background(), http.MethodGet, "/products", nil, nil)
	assert.False(t, ok)
}

func TestClient_CallPost(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "gold", body["material"])
		w.Write([]byte(`{"ok": true}`))
	})

	result, ok := client.Call(context.Background(), http.MethodPost, "/search", nil, map[string]string{"material": "gold"})
	require.True(t, ok)
	assert.Equal(t, map[string]any{"ok": true}, result)
}

func TestClient_TypedEndpoints(t *testing.T) {
	var lastURI atomic.Value
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		lastURI.Store(r.URL.RequestURI())
		switch r.URL.Path {
		case "/api/v1/catalog/products/42", "/api/v1/catalog/categories/3":
			w.Write([]byte(`{"id": 42, "name": "Gold Ring", "price": 1500000}`))
		default:
			w.Write([]byte(`[{"id": 1, "name": "A"}, {"id": 2, "name": "B"}]`))
		}
	})
	ctx := context.Background()

	tests := []struct {
		name    string
		call    func() bool
		wantURI string
	}{
		{"products", func() bool { _, ok := client.Products(ctx); return ok }, "/api/v1/catalog/products"},
		{"product", func() bool { _, ok := client.Product(ctx, 42); return ok }, "/api/v1/catalog/products/42"},
		{"categories", func() bool { _, ok := client.Categories(ctx); return ok }, "/api/v1/catalog/categories"},
		{"category", func() bool { _, ok := client.Category(ctx, 3); return ok }, "/api/v1/catalog/categories/3"},
		{"by_category", func() bool { _, ok := client.ProductsByCategory(ctx, 3); return ok }, "/api/v1/catalog/products/category/3"},
		{"bestselling", func() bool { _, ok := client.Bestselling(ctx); return ok }, "/api/v1/catalog/products/bestselling"},
		{"new_arrivals", func() bool { _, ok := client.NewArrivals(ctx, 4); return ok }, "/api/v1/catalog/products/new-arrivals?limit=4"},
		{"price_range", func() bool { _, ok := client.ProductsByPriceRange(ctx, 1000000, 5000000); return ok }, "/api/v1/catalog/products/price/between/1000000/5000000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.call())
			assert.Equal(t, tt.wantURI, lastURI.Load())
		})
	}
}

func TestClient_ShapeMismatchIsAbsent(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/v1/catalog/products" {
			w.Write([]byte(`{"id": 1}`))
			return
		}
		w.Write([]byte(`[1, 2]`))
	})
	ctx := context.Background()

	_, ok := client.Products(ctx)
	assert.False(t, ok, "object where a list was expected")

	_, ok = client.Product(ctx, 1)
	assert.False(t, ok, "list where an object was expected")
}

func TestClient_NoRetries(t *testing.T) {
	var hits int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusBadGateway)
	})

	_, ok := client.Products(context.Background())
	assert.False(t, ok)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestClient_BreakerOpensAfterRepeatedFailures(t *testing.T) {
	var hits int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		_, ok := client.Products(ctx)
		assert.False(t, ok)
	}
	// Six consecutive failures trip the breaker; later calls never reach the server.
	assert.Equal(t, int32(6), atomic.LoadInt32(&hits))
}

func TestClient_NotFoundDoesNotTripBreaker(t *testing.T) {
	var hits int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusNotFound)
	})

	for i := 0; i < 10; i++ {
		_, ok := client.Product(context.Background(), 999)
		assert.False(t, ok)
	}
	assert.Equal(t, int32(10), atomic.LoadInt32(&hits))
}

type recorderStub struct {
	calls []bool
}

func (r *recorderStub) RecordCatalogCall(_ context.Context, _ string, ok bool, _ time.Duration) {
	r.calls = append(r.calls, ok)
}

func TestClient_RecordsCalls(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	rec := &recorderStub{}
	client := NewClient(server.URL, time.Second, zaptest.NewLogger(t), WithRecorder(rec))
	_, ok := client.Categories(context.Background())

	assert.True(t, ok)
	assert.Equal(t, []bool{true}, rec.calls)
}

func TestEntity_Field(t *testing.T) {
	e := Entity{
		"id":          json.Number("7"),
		"name":        "Silver Bracelet",
		"price":       1500000.0,
		"description": "   ",
		"color":       nil,
	}

	assert.Equal(t, "7", e.Field("id"))
	assert.Equal(t, "Silver Bracelet", e.Field("name"))
	assert.Equal(t, "1500000", e.Field("price"))
	assert.Equal(t, Placeholder, e.Field("description"))
	assert.Equal(t, Placeholder, e.Field("color"))
	assert.Equal(t, Placeholder, e.Field("size"))

	_, ok := e.Lookup("color")
	assert.False(t, ok)
}

func TestClient_PriceRangeUsesWholeAmounts(t *testing.T) {
	var got atomic.Value
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got.Store(r.URL.Path)
		w.Write([]byte(`[]`))
	})

	_, ok := client.ProductsByPriceRange(context.Background(), 999.9, 1e18)
	assert.True(t, ok)
	assert.Equal(t, "/api/v1/catalog/products/price/between/999/1000000000000000000", got.Load())
}
