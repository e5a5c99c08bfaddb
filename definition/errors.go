package definition

import "fmt"

// MalformedError indicates that a document does not conform to the agent
// definition grammar. It is never retryable; the document must be fixed.
type MalformedError struct {
	Reason string
	Err    error
}

// Error implements the error interface.
func (e *MalformedError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed agent definition: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("malformed agent definition: %s", e.Reason)
}

// Unwrap returns the underlying cause, if any.
func (e *MalformedError) Unwrap() error { return e.Err }

func malformed(reason string) error { return &MalformedError{Reason: reason} }

func malformedf(format string, args ...any) error {
	return &MalformedError{Reason: fmt.Sprintf(format, args...)}
}
