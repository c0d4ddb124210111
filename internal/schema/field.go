// Package schema declares record shapes: typed field tables with vendor alias
// tables, single inheritance, multi-parent composition and validation of raw
// vendor mappings into records.
package schema

import "slices"

// Rule transforms a field value. Coerce rules see the raw value, After rules
// see the typed value produced by the field's Kind.
type Rule func(v any) (any, error)

// Field describes one named value of a shape.
type Field struct {
	Name        string
	Kind        Kind
	Required    bool
	Default     any
	Coerce      []Rule
	After       []Rule
	Description string
}

// Required declares a mandatory field.
func Required(name string, kind Kind, coerce ...Rule) Field {
	return Field{Name: name, Kind: kind, Required: true, Coerce: coerce}
}

// Optional declares a field that is nil when absent.
func Optional(name string, kind Kind, coerce ...Rule) Field {
	return Field{Name: name, Kind: kind, Coerce: coerce}
}

// WithDefault returns a copy of f that falls back to v when the key is absent.
func (f Field) WithDefault(v any) Field {
	f.Default = v
	return f
}

// Then returns a copy of f with rules appended to its After chain.
func (f Field) Then(rules ...Rule) Field {
	f.After = append(slices.Clone(f.After), rules...)
	return f
}

// Describe returns a copy of f with a description.
func (f Field) Describe(s string) Field {
	f.Description = s
	return f
}

// AsOptional returns a copy of f that is no longer required.
func (f Field) AsOptional() Field {
	f.Required = false
	return f
}

// AsRequired returns a copy of f that must be present and non-null.
func (f Field) AsRequired() Field {
	f.Required = true
	return f
}

func (f Field) clone() Field {
	f.Coerce = slices.Clone(f.Coerce)
	f.After = slices.Clone(f.After)
	return f
}
