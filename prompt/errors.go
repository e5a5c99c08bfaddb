package prompt

import "fmt"

// ResolutionError indicates that an included fragment could not be resolved
// in the fragment registry. It is fatal: rendering must not silently drop
// shared content.
type ResolutionError struct {
	Fragment string
}

// Error implements the error interface.
func (e *ResolutionError) Error() string {
	return fmt.Sprintf("template resolution error: fragment %q not found in registry", e.Fragment)
}

// SyntaxError indicates malformed template markup, such as an unbalanced
// conditional block.
type SyntaxError struct {
	Detail string
	Err    error
}

// Error implements the error interface.
func (e *SyntaxError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("template syntax error: %s: %v", e.Detail, e.Err)
	}
	return fmt.Sprintf("template syntax error: %s", e.Detail)
}

// Unwrap returns the underlying cause, if any.
func (e *SyntaxError) Unwrap() error { return e.Err }
