package helpers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
)

// CatalogServer is an in-process stand-in for the catalog backend under
// /api/v1/catalog.
type CatalogServer struct {
	*httptest.Server

	hits atomic.Int32
	mu   sync.Mutex
	down bool
	log  []string
}

// NewCatalogServer starts a catalog backend serving the default fixtures.
func NewCatalogServer(t *testing.T) *CatalogServer {
	t.Helper()
	cs := &CatalogServer{}
	cs.Server = httptest.NewServer(http.HandlerFunc(cs.serve))
	t.Cleanup(cs.Close)
	return cs
}

// BaseURL is the value for catalog.base_url.
func (cs *CatalogServer) BaseURL() string {
	return cs.URL + "/api/v1"
}

// SetDown makes every request fail with 503.
func (cs *CatalogServer) SetDown(down bool) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.down = down
}

// Hits returns the number of requests served.
func (cs *CatalogServer) Hits() int {
	return int(cs.hits.Load())
}

// Requests returns the request URIs seen so far.
func (cs *CatalogServer) Requests() []string {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return append([]string(nil), cs.log...)
}

func (cs *CatalogServer) serve(w http.ResponseWriter, r *http.Request) {
	cs.hits.Add(1)
	cs.mu.Lock()
	cs.log = append(cs.log, r.URL.RequestURI())
	down := cs.down
	cs.mu.Unlock()

	if down {
		http.Error(w, `{"detail":"unavailable"}`, http.StatusServiceUnavailable)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/api/v1/catalog")
	parts := strings.Split(strings.Trim(path, "/"), "/")

	switch {
	case path == "/products":
		writeJSON(w, DefaultProducts)
	case path == "/products/bestselling":
		writeJSON(w, DefaultProducts[2:])
	case path == "/products/new-arrivals":
		limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
		if err != nil || limit > len(DefaultProducts) {
			limit = len(DefaultProducts)
		}
		writeJSON(w, DefaultProducts[len(DefaultProducts)-limit:])
	case len(parts) == 5 && parts[0] == "products" && parts[1] == "price" && parts[2] == "between":
		lo, _ := strconv.Atoi(parts[3])
		hi, _ := strconv.Atoi(parts[4])
		var out []map[string]interface{}
		for _, p := range DefaultProducts {
			if price := p["price"].(int); price >= lo && price <= hi {
				out = append(out, p)
			}
		}
		writeJSON(w, nonNil(out))
	case len(parts) == 3 && parts[0] == "products" && parts[1] == "category":
		writeJSON(w, DefaultProducts[:3])
	case len(parts) == 2 && parts[0] == "products":
		id, _ := strconv.Atoi(parts[1])
		if p := ProductByID(id); p != nil {
			writeJSON(w, p)
			return
		}
		http.Error(w, `{"detail":"Product not found"}`, http.StatusNotFound)
	case path == "/categories":
		writeJSON(w, DefaultCategories)
	case len(parts) == 2 && parts[0] == "categories":
		writeFirstWithID(w, DefaultCategories, parts[1])
	default:
		http.NotFound(w, r)
	}
}

func writeFirstWithID(w http.ResponseWriter, items []map[string]interface{}, rawID string) {
	id, _ := strconv.Atoi(rawID)
	for _, it := range items {
		if it["id"] == id {
			writeJSON(w, it)
			return
		}
	}
	http.Error(w, `{"detail":"not found"}`, http.StatusNotFound)
}

func nonNil(items []map[string]interface{}) []map[string]interface{} {
	if items == nil {
		return []map[string]interface{}{}
	}
	return items
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
