package catalog

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Placeholder is rendered for any field an entity does not carry.
const Placeholder = "N/A"

// Entity is a product or category record as returned by the
// backend. The pipeline only relies on "id" and "name"; everything else is
// read by field name.
type Entity map[string]any

// Lookup returns the field rendered as text, and false when it is missing,
// null or blank.
func (e Entity) Lookup(field string) (string, bool) {
	v, ok := e[field]
	if !ok || v == nil {
		return "", false
	}

	var s string
	switch x := v.(type) {
	case string:
		s = x
	case json.Number:
		s = x.String()
	case float64:
		s = strconv.FormatFloat(x, 'f', -1, 64)
	case map[string]any, []any:
		b, err := json.Marshal(x)
		if err != nil {
			return "", false
		}
		s = string(b)
	default:
		s = fmt.Sprint(x)
	}

	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	return s, true
}

// Field returns the field rendered as text, or Placeholder.
func (e Entity) Field(field string) string {
	if s, ok := e.Lookup(field); ok {
		return s
	}
	return Placeholder
}

func toEntity(v any) (Entity, bool) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, false
	}
	return Entity(m), true
}

func toEntities(v any) ([]Entity, bool) {
	items, ok := v.([]any)
	if !ok {
		return nil, false
	}
	out := make([]Entity, 0, len(items))
	for _, item := range items {
		e, ok := toEntity(item)
		if !ok {
			return nil, false
		}
		out = append(out, e)
	}
	return out, true
}
