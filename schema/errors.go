package schema

import (
	"fmt"
	"strings"
)

// CompileError indicates that a schema declaration is invalid. It is caught
// once at first use of a definition, not at every invocation.
type CompileError struct {
	Reason string
	Err    error
}

// Error implements the error interface.
func (e *CompileError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("schema compilation error: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("schema compilation error: %s", e.Reason)
}

// Unwrap returns the underlying cause, if any.
func (e *CompileError) Unwrap() error { return e.Err }

// Problem describes a single failing field.
type Problem struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (p Problem) String() string { return p.Field + ": " + p.Message }

// ValidationFailure reports that model output does not satisfy the declared
// schema. It carries one Problem per failing field and is an expected,
// recoverable outcome rather than a crash: callers decide whether to retry,
// repair or surface it.
type ValidationFailure struct {
	Problems []Problem
}

// Error implements the error interface.
func (e *ValidationFailure) Error() string {
	parts := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		parts[i] = p.String()
	}
	return "output validation failed: " + strings.Join(parts, "; ")
}

// FieldNames returns the distinct failing field names in order.
func (e *ValidationFailure) FieldNames() []string {
	seen := map[string]bool{}
	var names []string
	for _, p := range e.Problems {
		if !seen[p.Field] {
			seen[p.Field] = true
			names = append(names, p.Field)
		}
	}
	return names
}
