package providertest

import (
	"encoding/json"
	"strings"
	"testing"
)

// DecodeJSON decodes s the way the HTTP transport does, with numbers kept as
// json.Number, so mocked responses look like real ones.
func DecodeJSON(t testing.TB, s string) any {
	t.Helper()
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		t.Fatalf("decode fixture: %v", err)
	}
	return v
}
