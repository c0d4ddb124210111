package schema

import (
	"bytes"
	"encoding/json"
	"maps"
	"slices"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Record is a validated value: the typed fields of its shape plus the raw
// keys the shape does not declare. Accessors never expose internal maps.
type Record struct {
	shape  *Shape
	values map[string]any
	extra  map[string]any
}

// IsZero reports whether r was never produced by a shape.
func (r Record) IsZero() bool { return r.shape == nil }

// ShapeName names the shape that produced r.
func (r Record) ShapeName() string {
	if r.shape == nil {
		return ""
	}
	return r.shape.name
}

// Get returns a declared value or, failing that, an extra.
func (r Record) Get(name string) (any, bool) {
	if v, ok := r.values[name]; ok {
		return cloneValue(v), true
	}
	v, ok := r.extra[name]
	return cloneValue(v), ok
}

func (r Record) String(name string) string {
	v, _ := r.Get(name)
	s, _ := v.(string)
	return s
}

func (r Record) Float(name string) (float64, bool) {
	v, _ := r.Get(name)
	if v == nil {
		return 0, false
	}
	return toFloat(v)
}

func (r Record) Int(name string) (int64, bool) {
	v, _ := r.Get(name)
	if v == nil {
		return 0, false
	}
	n, err := toInt(v)
	if err != nil {
		return 0, false
	}
	return n.(int64), true
}

func (r Record) Bool(name string) bool {
	v, _ := r.Get(name)
	b, _ := v.(bool)
	return b
}

func (r Record) Time(name string) (time.Time, bool) {
	v, _ := r.Get(name)
	t, ok := v.(time.Time)
	return t, ok
}

func (r Record) Decimal(name string) (decimal.Decimal, bool) {
	v, _ := r.Get(name)
	d, ok := v.(decimal.Decimal)
	return d, ok
}

// Extra returns a copy of the keys outside the shape.
func (r Record) Extra() map[string]any {
	out := make(map[string]any, len(r.extra))
	for k, v := range r.extra {
		out[k] = cloneValue(v)
	}
	return out
}

// Keys lists declared field names in order, then extra keys sorted.
func (r Record) Keys() []string {
	if r.shape == nil {
		return nil
	}
	out := make([]string, 0, len(r.shape.fields)+len(r.extra))
	for _, f := range r.shape.fields {
		out = append(out, f.Name)
	}
	return append(out, r.extraKeys()...)
}

func (r Record) extraKeys() []string {
	keys := make([]string, 0, len(r.extra))
	for k := range r.extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Map flattens r into a new map of declared values and extras.
func (r Record) Map() map[string]any {
	out := make(map[string]any, len(r.values)+len(r.extra))
	for k, v := range r.extra {
		out[k] = cloneValue(v)
	}
	for k, v := range r.values {
		out[k] = cloneValue(v)
	}
	return out
}

// cloneValue copies nested maps and slices so a Record shares no mutable
// state with its input or its callers.
func cloneValue(v any) any {
	switch x := v.(type) {
	case map[string]any:
		if x == nil {
			return x
		}
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = cloneValue(e)
		}
		return out
	case []any:
		if x == nil {
			return x
		}
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = cloneValue(e)
		}
		return out
	case []map[string]any:
		if x == nil {
			return x
		}
		out := make([]map[string]any, len(x))
		for i, e := range x {
			out[i], _ = cloneValue(e).(map[string]any)
		}
		return out
	case []string:
		return slices.Clone(x)
	case map[string]string:
		return maps.Clone(x)
	}
	return v
}

// MarshalJSON writes declared fields in declaration order followed by extras
// in key order. Date fields are written as YYYY-MM-DD.
func (r Record) MarshalJSON() ([]byte, error) {
	if r.shape == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	write := func(k string, v any) error {
		if !first {
			buf.WriteByte(',')
		}
		first = false
		kb, err := json.Marshal(k)
		if err != nil {
			return err
		}
		vb, err := json.Marshal(v)
		if err != nil {
			return err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
		return nil
	}
	for _, f := range r.shape.fields {
		v := r.values[f.Name]
		if t, ok := v.(time.Time); ok && f.Kind == KindDate {
			v = t.Format(time.DateOnly)
		}
		if err := write(f.Name, v); err != nil {
			return nil, err
		}
	}
	for _, k := range r.extraKeys() {
		if err := write(k, r.extra[k]); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
