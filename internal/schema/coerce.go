package schema

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// The coercions below run before type validation. Applying one twice gives the
// same result as applying it once. Each passes nil and values of kinds it does
// not handle through unchanged, except StrictFloat, which rejects them.

// Upper upper-cases strings.
func Upper(v any) (any, error) {
	if s, ok := v.(string); ok {
		return strings.ToUpper(s), nil
	}
	return v, nil
}

// TrimSpace trims surrounding whitespace from strings.
func TrimSpace(v any) (any, error) {
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s), nil
	}
	return v, nil
}

// UpperList normalizes a symbol list given as a comma-joined string or a
// slice: entries are trimmed, upper-cased, de-duplicated in first-seen order
// and joined with commas.
func UpperList(v any) (any, error) {
	var parts []string
	switch x := v.(type) {
	case string:
		parts = strings.Split(x, ",")
	case []string:
		parts = x
	case []any:
		for _, p := range x {
			s, ok := p.(string)
			if !ok {
				return nil, fmt.Errorf("expected list of strings, got element %T", p)
			}
			parts = append(parts, s)
		}
	default:
		return v, nil
	}
	seen := make(map[string]struct{}, len(parts))
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.ToUpper(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return strings.Join(out, ","), nil
}

// FlexibleDate parses strings into time.Time. A value with a time component
// keeps it; a plain date becomes midnight UTC.
func FlexibleDate(v any) (any, error) {
	s, ok := v.(string)
	if !ok {
		return v, nil
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if !strings.ContainsAny(s, "T :") {
		t, err := time.Parse(time.DateOnly, s)
		if err != nil {
			return nil, fmt.Errorf("unrecognized date %q", s)
		}
		return t, nil
	}
	return parseTime(s)
}

// StrictFloat accepts only values that are already floating point. Integers
// are rejected instead of being promoted.
func StrictFloat(v any) (any, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case json.Number:
		if strings.ContainsAny(x.String(), ".eE") {
			return x.Float64()
		}
	}
	return nil, fmt.Errorf("expected float, got %T %v", v, v)
}

// ForceInt turns numbers and numeric strings into int64, truncating any
// fractional part.
func ForceInt(v any) (any, error) {
	switch x := v.(type) {
	case nil, int64:
		return x, nil
	case int:
		return int64(x), nil
	case float64:
		return truncate(x)
	case float32:
		return truncate(float64(x))
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return n, nil
		}
		f, err := x.Float64()
		if err != nil {
			return nil, fmt.Errorf("expected int, got %q", x)
		}
		return truncate(f)
	case string:
		s := strings.TrimSpace(x)
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("expected int, got string %q", x)
		}
		return truncate(f)
	}
	return v, nil
}

func truncate(f float64) (any, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("expected int, got %v", f)
	}
	if outOfInt64(f) {
		return nil, fmt.Errorf("number %v overflows int64", f)
	}
	return int64(f), nil
}

// ZeroToNil replaces a numeric zero with nil.
func ZeroToNil(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	if _, ok := v.(string); ok {
		return v, nil
	}
	if _, ok := v.(bool); ok {
		return v, nil
	}
	if f, ok := toFloat(v); ok && f == 0 {
		return nil, nil
	}
	return v, nil
}

// EmptyToNil replaces blank strings with nil.
func EmptyToNil(v any) (any, error) {
	if s, ok := v.(string); ok && strings.TrimSpace(s) == "" {
		return nil, nil
	}
	return v, nil
}

// OneOf rejects strings outside the allowed set.
func OneOf(allowed ...string) Rule {
	return func(v any) (any, error) {
		s, ok := v.(string)
		if !ok {
			return v, nil
		}
		for _, a := range allowed {
			if s == a {
				return s, nil
			}
		}
		return nil, fmt.Errorf("%q is not one of %s", s, strings.Join(allowed, ", "))
	}
}

// PercentToRatio divides a percentage by 100. It is an After rule: it runs on
// the typed value once, so it is not idempotent.
func PercentToRatio(v any) (any, error) {
	switch x := v.(type) {
	case float64:
		return x / 100, nil
	case decimal.Decimal:
		return x.Div(decimal.NewFromInt(100)), nil
	case int64:
		return float64(x) / 100, nil
	}
	return v, nil
}
