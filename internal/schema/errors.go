package schema

import (
	"fmt"
	"strings"
)

// FieldError is one failing field of a validation.
type FieldError struct {
	// Row is the 1-based row number when the problem came from ValidateAll,
	// zero otherwise.
	Row     int    `json:"row,omitempty"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) String() string {
	if e.Row > 0 {
		return fmt.Sprintf("row %d: %s: %s", e.Row, e.Field, e.Message)
	}
	return e.Field + ": " + e.Message
}

// ValidationError reports every field that failed to validate against a shape,
// in field declaration order.
type ValidationError struct {
	Shape    string
	Problems []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		parts[i] = p.String()
	}
	return fmt.Sprintf("%d validation error(s) for %s: %s", len(e.Problems), e.Shape, strings.Join(parts, "; "))
}

// Fields lists the names of the failing fields.
func (e *ValidationError) Fields() []string {
	out := make([]string, 0, len(e.Problems))
	for _, p := range e.Problems {
		out = append(out, p.Field)
	}
	return out
}

// DeclarationError is returned by Builder.Build when a shape declaration is
// inconsistent.
type DeclarationError struct {
	Shape    string
	Problems []string
}

func (e *DeclarationError) Error() string {
	return fmt.Sprintf("invalid shape %s: %s", e.Shape, strings.Join(e.Problems, "; "))
}
