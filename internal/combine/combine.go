// Package combine reshapes whole datasets: joins, pivots and the ordering
// rules applied to vendor results.
package combine

import (
	"cmp"
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"datafeed/internal/schema"
)

// SplitSymbols splits a comma-joined symbol list, trimming and upper-casing
// entries and dropping blanks and duplicates. Order is preserved.
func SplitSymbols(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, p := range parts {
		p = strings.ToUpper(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

// KeyString renders a join key so that equal dates and equal strings compare
// equal regardless of their Go type.
func KeyString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(x)
	case time.Time:
		if x.Hour() == 0 && x.Minute() == 0 && x.Second() == 0 && x.Nanosecond() == 0 {
			return x.Format(time.DateOnly)
		}
		return x.UTC().Format(time.RFC3339Nano)
	default:
		return fmt.Sprint(x)
	}
}

// InnerJoin keeps the left rows whose key also appears on the right and merges
// the first matching right row into a copy of each. Left values win on
// conflicting keys. Output follows left order.
func InnerJoin(left, right []map[string]any, key string) []map[string]any {
	index := make(map[string]map[string]any, len(right))
	for _, r := range right {
		k := KeyString(r[key])
		if k == "" {
			continue
		}
		if _, ok := index[k]; !ok {
			index[k] = r
		}
	}
	out := make([]map[string]any, 0, min(len(left), len(right)))
	for _, l := range left {
		r, ok := index[KeyString(l[key])]
		if !ok {
			continue
		}
		row := make(map[string]any, len(l)+len(r))
		for k, v := range r {
			row[k] = v
		}
		for k, v := range l {
			row[k] = v
		}
		out = append(out, row)
	}
	return out
}

// Pivot turns long rows (one value per key and column) into wide rows with one
// row per key, keyed by key and holding one entry per column. Rows are sorted
// by key ascending. When a key/column pair repeats, the last value wins.
func Pivot(rows []map[string]any, key, column, value string) []map[string]any {
	wide := make(map[string]map[string]any)
	for _, r := range rows {
		k := KeyString(r[key])
		col, _ := r[column].(string)
		if k == "" || col == "" {
			continue
		}
		row, ok := wide[k]
		if !ok {
			row = map[string]any{key: r[key]}
			wide[k] = row
		}
		row[col] = r[value]
	}
	keys := make([]string, 0, len(wide))
	for k := range wide {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]map[string]any, 0, len(keys))
	for _, k := range keys {
		out = append(out, wide[k])
	}
	return out
}

// SortBy stably sorts records ascending by the given fields. Missing values sort first.
func SortBy(recs []schema.Record, fields ...string) {
	slices.SortStableFunc(recs, func(a, b schema.Record) int {
		for _, f := range fields {
			av, _ := a.Get(f)
			bv, _ := b.Get(f)
			if c := Compare(av, bv); c != 0 {
				return c
			}
		}
		return 0
	})
}

// OrderBySymbols stably groups records by the position of their symbol in
// symbols. Records for unknown symbols go last. The relative order within a
// symbol is kept, so callers sort by date first.
func OrderBySymbols(recs []schema.Record, symbols []string, field string) {
	pos := make(map[string]int, len(symbols))
	for i, s := range symbols {
		pos[strings.ToUpper(s)] = i
	}
	rank := func(r schema.Record) int {
		if i, ok := pos[strings.ToUpper(r.String(field))]; ok {
			return i
		}
		return len(symbols)
	}
	slices.SortStableFunc(recs, func(a, b schema.Record) int {
		return cmp.Compare(rank(a), rank(b))
	})
}

// Compare orders two field values of the same kind. nil sorts before any value.
// Values of different kinds fall back to comparing their string form.
func Compare(a, b any) int {
	if a == nil || b == nil {
		switch {
		case a == nil && b == nil:
			return 0
		case a == nil:
			return -1
		default:
			return 1
		}
	}
	switch x := a.(type) {
	case time.Time:
		if y, ok := b.(time.Time); ok {
			return x.Compare(y)
		}
	case float64:
		if y, ok := b.(float64); ok {
			return cmp.Compare(x, y)
		}
	case int64:
		if y, ok := b.(int64); ok {
			return cmp.Compare(x, y)
		}
	case decimal.Decimal:
		if y, ok := b.(decimal.Decimal); ok {
			return x.Cmp(y)
		}
	case string:
		if y, ok := b.(string); ok {
			return strings.Compare(x, y)
		}
	}
	return strings.Compare(KeyString(a), KeyString(b))
}
