package domain

import (
	"fmt"
	"math"
	"strings"
)

// Violations collects field-level validation failures in the order found.
type Violations struct {
	fields map[string]string
	order  []string
}

// Add records a problem with field. The first problem per field wins.
func (v *Violations) Add(field, message string) {
	if v.fields == nil {
		v.fields = make(map[string]string)
	}
	if _, exists := v.fields[field]; exists {
		return
	}
	v.fields[field] = message
	v.order = append(v.order, field)
}

// Check records message for field when ok is false.
func (v *Violations) Check(ok bool, field, message string) {
	if !ok {
		v.Add(field, message)
	}
}

// Finite records a problem when f is NaN or infinite.
func (v *Violations) Finite(f float64, field string) {
	v.Check(!math.IsNaN(f) && !math.IsInf(f, 0), field, "must be a finite number")
}

// Empty reports whether nothing was recorded
func (v *Violations) Empty() bool {
	return len(v.order) == 0
}

// Err returns nil when empty, otherwise a validation *Error listing every field.
func (v *Violations) Err() error {
	if v.Empty() {
		return nil
	}
	parts := make([]string, 0, len(v.order))
	for _, field := range v.order {
		parts = append(parts, fmt.Sprintf("%s: %s", field, v.fields[field]))
	}
	return NewValidationError("Invalid input: "+strings.Join(parts, "; "), v.fields)
}
