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

// Kind is the declared value type of a field.
type Kind int

const (
	KindAny Kind = iota
	KindString
	KindFloat
	KindInt
	KindBool
	KindDate
	KindDateTime
	KindDecimal
)

func (k Kind) String() string {
	switch k {
	case KindAny:
		return "any"
	case KindString:
		return "string"
	case KindFloat:
		return "float"
	case KindInt:
		return "int"
	case KindBool:
		return "bool"
	case KindDate:
		return "date"
	case KindDateTime:
		return "datetime"
	case KindDecimal:
		return "decimal"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// convert checks v against k and returns the canonical Go value for the kind:
// string, float64, int64, bool, time.Time or decimal.Decimal.
// Numeric strings and json.Number are accepted where a vendor payload commonly
// carries them.
func convert(k Kind, v any) (any, error) {
	switch k {
	case KindAny:
		return v, nil
	case KindString:
		switch x := v.(type) {
		case string:
			return x, nil
		case json.Number:
			return x.String(), nil
		}
		return nil, typeError(k, v)
	case KindFloat:
		f, ok := toFloat(v)
		if !ok {
			return nil, typeError(k, v)
		}
		return f, nil
	case KindInt:
		return toInt(v)
	case KindBool:
		switch x := v.(type) {
		case bool:
			return x, nil
		case string:
			b, err := strconv.ParseBool(strings.TrimSpace(x))
			if err != nil {
				return nil, typeError(k, v)
			}
			return b, nil
		}
		return nil, typeError(k, v)
	case KindDate:
		t, err := toTime(v)
		if err != nil {
			return nil, err
		}
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
	case KindDateTime:
		return toTime(v)
	case KindDecimal:
		return toDecimal(v)
	}
	return nil, fmt.Errorf("unknown kind %v", k)
}

func typeError(k Kind, v any) error {
	return fmt.Errorf("expected %s, got %T", k, v)
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	case decimal.Decimal:
		return x.InexactFloat64(), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		return f, err == nil
	}
	return 0, false
}

func toInt(v any) (any, error) {
	switch x := v.(type) {
	case int64:
		return x, nil
	case int:
		return int64(x), nil
	case int32:
		return int64(x), nil
	case uint32:
		return int64(x), nil
	case uint:
		return int64(x), nil
	case uint64:
		if x > math.MaxInt64 {
			return nil, fmt.Errorf("integer %d overflows int64", x)
		}
		return int64(x), nil
	case float64:
		return integral(x)
	case float32:
		return integral(float64(x))
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return n, nil
		}
		f, err := x.Float64()
		if err != nil {
			return nil, typeError(KindInt, v)
		}
		return integral(f)
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(x), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("expected int, got string %q", x)
		}
		return n, nil
	}
	return nil, typeError(KindInt, v)
}

func integral(f float64) (any, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return nil, fmt.Errorf("expected int, got fractional number %v", f)
	}
	if outOfInt64(f) {
		return nil, fmt.Errorf("number %v overflows int64", f)
	}
	return int64(f), nil
}

// outOfInt64 reports whether f lies outside [-2^63, 2^63).
func outOfInt64(f float64) bool {
	return f >= 9.223372036854775807e18 || f < -9.223372036854775808e18
}

func toDecimal(v any) (any, error) {
	switch x := v.(type) {
	case decimal.Decimal:
		return x, nil
	case json.Number:
		d, err := decimal.NewFromString(x.String())
		if err != nil {
			return nil, typeError(KindDecimal, v)
		}
		return d, nil
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(x))
		if err != nil {
			return nil, fmt.Errorf("expected decimal, got string %q", x)
		}
		return d, nil
	case float64:
		return decimal.NewFromFloat(x), nil
	case float32:
		return decimal.NewFromFloat32(x), nil
	case int64:
		return decimal.NewFromInt(x), nil
	case int:
		return decimal.NewFromInt(int64(x)), nil
	}
	return nil, typeError(KindDecimal, v)
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.000Z0700",
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	time.DateOnly,
}

func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

func toTime(v any) (time.Time, error) {
	switch x := v.(type) {
	case time.Time:
		return x, nil
	case string:
		return parseTime(x)
	case json.Number, float64, int64, int:
		// epoch seconds, or milliseconds when the value is too large to be seconds
		f, ok := toFloat(x)
		if !ok {
			return time.Time{}, typeError(KindDateTime, v)
		}
		return epoch(int64(f)), nil
	}
	return time.Time{}, typeError(KindDateTime, v)
}

func epoch(n int64) time.Time {
	if n > 1_000_000_000_000 || n < -1_000_000_000_000 {
		return time.UnixMilli(n).UTC()
	}
	return time.Unix(n, 0).UTC()
}
