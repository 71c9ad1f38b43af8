package service

import (
	"fmt"
	"sort"
	"strings"
)

// ValidationError collects per-field messages for a rejected admin form.
type ValidationError struct {
	Fields map[string]string
}

func NewValidationError(field, message string) *ValidationError {
	v := &ValidationError{}
	v.Add(field, message)
	return v
}

func (v *ValidationError) Add(field, message string) {
	if v.Fields == nil {
		v.Fields = make(map[string]string)
	}
	if _, exists := v.Fields[field]; !exists {
		v.Fields[field] = message
	}
}

func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.Fields) > 0
}

func (v *ValidationError) Error() string {
	names := make([]string, 0, len(v.Fields))
	for name := range v.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s: %s", name, v.Fields[name])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
