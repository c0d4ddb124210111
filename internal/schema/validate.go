package schema

import "errors"

// Validate builds a Record from a raw mapping keyed by wire or standard names.
// It never mutates raw. All failing fields are reported in one
// *ValidationError.
func (s *Shape) Validate(raw map[string]any) (Record, error) {
	rec, problems := s.validate(raw, 0)
	if len(problems) > 0 {
		return Record{}, &ValidationError{Shape: s.name, Problems: problems}
	}
	return rec, nil
}

// ValidateAll validates every row and aggregates all row failures into a
// single *ValidationError whose problems carry 1-based row numbers.
func (s *Shape) ValidateAll(rows []map[string]any) ([]Record, error) {
	out := make([]Record, 0, len(rows))
	var problems []FieldError
	for i, raw := range rows {
		rec, p := s.validate(raw, i+1)
		if len(p) > 0 {
			problems = append(problems, p...)
			continue
		}
		out = append(out, rec)
	}
	if len(problems) > 0 {
		return nil, &ValidationError{Shape: s.name, Problems: problems}
	}
	return out, nil
}

func (s *Shape) validate(raw map[string]any, row int) (Record, []FieldError) {
	in := s.resolveAliases(raw)
	values := make(map[string]any, len(s.fields))
	var problems []FieldError
	fail := func(f Field, msg string) {
		problems = append(problems, FieldError{Row: row, Field: f.Name, Message: msg})
	}

	for _, f := range s.fields {
		v, present := in[f.Name]
		delete(in, f.Name)

		if present {
			var err error
			if v, err = apply(f.Coerce, v); err != nil {
				fail(f, err.Error())
				continue
			}
		}
		if v == nil {
			if f.Required {
				fail(f, "field required")
				continue
			}
			if !present {
				v = f.Default
			}
			values[f.Name] = v
			continue
		}

		tv, err := convert(f.Kind, v)
		if err != nil {
			fail(f, err.Error())
			continue
		}
		if tv, err = apply(f.After, tv); err != nil {
			fail(f, err.Error())
			continue
		}
		values[f.Name] = tv
	}

	if len(problems) > 0 {
		return Record{}, problems
	}
	if len(in) == 0 {
		in = nil
	}
	return Record{shape: s, values: values, extra: in}, nil
}

// resolveAliases deep-copies raw, renaming wire keys to their standard names.
// The standard key wins when both are present; the wire key is dropped either way.
func (s *Shape) resolveAliases(raw map[string]any) map[string]any {
	in := make(map[string]any, len(raw))
	for k, v := range raw {
		in[k] = cloneValue(v)
	}
	for wire, std := range s.wires {
		if wire == std {
			continue
		}
		v, ok := in[wire]
		if !ok {
			continue
		}
		delete(in, wire)
		if _, has := raw[std]; !has {
			in[std] = v
		}
	}
	return in
}

var errNilRule = errors.New("nil rule")

func apply(rules []Rule, v any) (any, error) {
	for _, r := range rules {
		if r == nil {
			return nil, errNilRule
		}
		var err error
		if v, err = r(v); err != nil {
			return nil, err
		}
	}
	return v, nil
}
