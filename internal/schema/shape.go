package schema

import (
	"fmt"
	"slices"
	"sort"
)

// Shape is an ordered table of field descriptors plus an alias table mapping
// standard field names to the wire names a vendor uses for them.
// A Shape is immutable once built and safe for concurrent use.
type Shape struct {
	name    string
	fields  []Field
	index   map[string]int
	aliases map[string]string // standard name -> wire name
	wires   map[string]string // wire name -> standard name
}

func (s *Shape) Name() string { return s.name }

// Fields returns the descriptors in declaration order.
func (s *Shape) Fields() []Field {
	out := make([]Field, len(s.fields))
	for i, f := range s.fields {
		out[i] = f.clone()
	}
	return out
}

// Field looks up a descriptor by name.
func (s *Shape) Field(name string) (Field, bool) {
	i, ok := s.index[name]
	if !ok {
		return Field{}, false
	}
	return s.fields[i].clone(), true
}

// Alias returns the wire name declared for a standard field name.
func (s *Shape) Alias(name string) (string, bool) {
	w, ok := s.aliases[name]
	return w, ok
}

// Aliases returns a copy of the alias table.
func (s *Shape) Aliases() map[string]string {
	out := make(map[string]string, len(s.aliases))
	for k, v := range s.aliases {
		out[k] = v
	}
	return out
}

// Conforms reports an error when s lacks a field that std requires.
func (s *Shape) Conforms(std *Shape) error {
	var missing []string
	for _, f := range std.fields {
		if !f.Required {
			continue
		}
		if _, ok := s.index[f.Name]; !ok {
			missing = append(missing, f.Name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%s does not declare required fields of %s: %v", s.name, std.name, missing)
	}
	return nil
}

// Builder declares a Shape. Problems found while declaring are collected and
// reported together by Build.
type Builder struct {
	name     string
	fields   []Field
	index    map[string]int
	aliases  map[string]string
	problems []string
}

// New starts a shape with no fields.
func New(name string) *Builder {
	return &Builder{name: name, index: map[string]int{}, aliases: map[string]string{}}
}

// Extend starts a shape that inherits every field and alias of parent.
func Extend(name string, parent *Shape) *Builder {
	b := New(name)
	b.inherit(parent, false)
	return b
}

// Compose starts a shape from the union of several parents. Parents are
// merged in order: a field declared by more than one parent keeps the first
// declaration, provided every declaration agrees on the kind.
func Compose(name string, parents ...*Shape) *Builder {
	b := New(name)
	for _, p := range parents {
		b.inherit(p, true)
	}
	return b
}

func (b *Builder) inherit(p *Shape, merge bool) {
	if p == nil {
		b.problems = append(b.problems, "nil parent shape")
		return
	}
	for _, f := range p.fields {
		if i, ok := b.index[f.Name]; ok {
			if !merge {
				continue
			}
			if b.fields[i].Kind != f.Kind {
				b.problems = append(b.problems, fmt.Sprintf("field %q is %s in one parent and %s in %s", f.Name, b.fields[i].Kind, f.Kind, p.name))
			}
			continue
		}
		b.index[f.Name] = len(b.fields)
		b.fields = append(b.fields, f.clone())
	}
	for std, wire := range p.aliases {
		if cur, ok := b.aliases[std]; ok && cur != wire {
			b.problems = append(b.problems, fmt.Sprintf("field %q aliased to both %q and %q", std, cur, wire))
			continue
		}
		b.aliases[std] = wire
	}
}

// Field declares new fields. Declaring a name the shape already has is an
// error; use Override to replace an inherited field.
func (b *Builder) Field(fs ...Field) *Builder {
	for _, f := range fs {
		if f.Name == "" {
			b.problems = append(b.problems, "field with empty name")
			continue
		}
		if _, ok := b.index[f.Name]; ok {
			b.problems = append(b.problems, fmt.Sprintf("field %q declared twice", f.Name))
			continue
		}
		b.index[f.Name] = len(b.fields)
		b.fields = append(b.fields, f.clone())
	}
	return b
}

// Override replaces existing fields wholesale, keeping their position.
func (b *Builder) Override(fs ...Field) *Builder {
	for _, f := range fs {
		i, ok := b.index[f.Name]
		if !ok {
			b.problems = append(b.problems, fmt.Sprintf("override of undeclared field %q", f.Name))
			continue
		}
		b.fields[i] = f.clone()
	}
	return b
}

// Alias maps a standard field name to the vendor's wire name.
func (b *Builder) Alias(name, wire string) *Builder {
	if name == "" || wire == "" {
		b.problems = append(b.problems, fmt.Sprintf("empty alias %q -> %q", name, wire))
		return b
	}
	b.aliases[name] = wire
	return b
}

// Aliases adds every entry of m, keyed by standard name.
func (b *Builder) Aliases(m map[string]string) *Builder {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.Alias(k, m[k])
	}
	return b
}

// Build validates the declaration and returns the shape.
func (b *Builder) Build() (*Shape, error) {
	problems := slices.Clone(b.problems)

	fields := make([]Field, len(b.fields))
	for i, f := range b.fields {
		f = f.clone()
		if f.Default != nil {
			if f.Required {
				problems = append(problems, fmt.Sprintf("required field %q declares a default", f.Name))
			} else if d, err := convert(f.Kind, f.Default); err != nil {
				problems = append(problems, fmt.Sprintf("default of %q: %v", f.Name, err))
			} else {
				f.Default = d
			}
		}
		fields[i] = f
	}

	names := make([]string, 0, len(b.aliases))
	for k := range b.aliases {
		names = append(names, k)
	}
	sort.Strings(names)
	wires := make(map[string]string, len(b.aliases))
	for _, std := range names {
		wire := b.aliases[std]
		if _, ok := b.index[std]; !ok {
			problems = append(problems, fmt.Sprintf("alias %q -> %q names an undeclared field", std, wire))
			continue
		}
		if other, ok := wires[wire]; ok {
			problems = append(problems, fmt.Sprintf("fields %q and %q both alias wire key %q", other, std, wire))
			continue
		}
		if _, ok := b.index[wire]; ok && wire != std {
			problems = append(problems, fmt.Sprintf("alias %q of %q shadows a declared field", wire, std))
			continue
		}
		wires[wire] = std
	}

	if len(problems) > 0 {
		return nil, &DeclarationError{Shape: b.name, Problems: problems}
	}

	index := make(map[string]int, len(fields))
	for i, f := range fields {
		index[f.Name] = i
	}
	aliases := make(map[string]string, len(b.aliases))
	for k, v := range b.aliases {
		aliases[k] = v
	}
	return &Shape{name: b.name, fields: fields, index: index, aliases: aliases, wires: wires}, nil
}

// MustBuild is Build for package-level declarations; it panics on error.
func (b *Builder) MustBuild() *Shape {
	s, err := b.Build()
	if err != nil {
		panic(err)
	}
	return s
}
