package intent

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ArgumentError reports an argument that is missing or cannot be coerced to
// its declared type.
type ArgumentError struct {
	Operation Operation
	Argument  string
	Reason    string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("%s: argument %q %s", e.Operation, e.Argument, e.Reason)
}

// Values holds coerced arguments: int for Integer, float64 for Number and
// string for String.
type Values map[string]any

// Int returns the integer argument name, or 0.
func (v Values) Int(name string) int {
	i, _ := v[name].(int)
	return i
}

// Float returns the number argument name, or 0.
func (v Values) Float(name string) float64 {
	f, _ := v[name].(float64)
	return f
}

// Str returns the string argument name, or "".
func (v Values) Str(name string) string {
	s, _ := v[name].(string)
	return s
}

// Bind validates args against d and coerces them. Missing optional arguments
// take their default; arguments d does not declare are dropped.
func (d Definition) Bind(args map[string]any) (Values, error) {
	out := make(Values, len(d.Arguments))
	for _, arg := range d.Arguments {
		raw, present := args[arg.Name]
		if present && raw != nil {
			if s, ok := raw.(string); ok && strings.TrimSpace(s) == "" {
				present = false
			}
		} else {
			present = false
		}

		if !present {
			if arg.Required {
				return nil, &ArgumentError{Operation: d.Operation, Argument: arg.Name, Reason: "is required"}
			}
			if arg.Default != nil {
				out[arg.Name] = arg.Default
			}
			continue
		}

		v, err := coerce(arg.Type, raw)
		if err != nil {
			return nil, &ArgumentError{Operation: d.Operation, Argument: arg.Name, Reason: err.Error()}
		}
		out[arg.Name] = v
	}
	return out, nil
}

// int64Bound is 2^63. Integers and numbers must lie in [-int64Bound, int64Bound).
const int64Bound = float64(1 << 63)

func coerce(t ArgType, raw any) (any, error) {
	switch t {
	case Integer:
		return toInt(raw)
	case Number:
		return toFloat(raw)
	case String:
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("must be a string, got %T", raw)
		}
		return strings.TrimSpace(s), nil
	default:
		return nil, fmt.Errorf("has unsupported type %q", t)
	}
}

func toInt(raw any) (int, error) {
	switch v := raw.(type) {
	case int:
		return v, nil
	case int32:
		return int(v), nil
	case int64:
		return int(v), nil
	case float64:
		return integral(v)
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return int(i), nil
		}
		f, err := v.Float64()
		if err != nil {
			return 0, fmt.Errorf("must be an integer, got %q", v.String())
		}
		return integral(f)
	case string:
		s := strings.TrimSpace(v)
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return int(i), nil
		}
		return 0, fmt.Errorf("must be an integer, got %q", v)
	default:
		return 0, fmt.Errorf("must be an integer, got %T", raw)
	}
}

func integral(f float64) (int, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, fmt.Errorf("must be an integer, got %v", f)
	}
	if f < -int64Bound || f >= int64Bound {
		return 0, fmt.Errorf("is out of range, got %v", f)
	}
	return int(f), nil
}

func toFloat(raw any) (float64, error) {
	var f float64
	switch v := raw.(type) {
	case int:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case float64:
		f = v
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return 0, fmt.Errorf("must be a number, got %q", v.String())
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, fmt.Errorf("must be a number, got %q", v)
		}
		f = parsed
	default:
		return 0, fmt.Errorf("must be a number, got %T", raw)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("must be a finite number, got %v", f)
	}
	if f < -int64Bound || f >= int64Bound {
		return 0, fmt.Errorf("is out of range, got %v", f)
	}
	return f, nil
}
