package provider

import "fmt"

// Rows converts a decoded JSON body into raw rows. A single object becomes one
// row; a list must contain only objects.
func Rows(body any) ([]map[string]any, error) {
	switch v := body.(type) {
	case nil:
		return nil, nil
	case map[string]any:
		return []map[string]any{v}, nil
	case []any:
		out := make([]map[string]any, 0, len(v))
		for i, item := range v {
			m, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("row %d: expected object, got %T", i, item)
			}
			out = append(out, m)
		}
		return out, nil
	}
	return nil, fmt.Errorf("expected object or list, got %T", body)
}
