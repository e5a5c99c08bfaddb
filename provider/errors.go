package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownModel is returned when a model identifier does not resolve
// against the registry.
var ErrUnknownModel = errors.New("unknown model")

// TransientError marks a failure worth retrying: rate limits, timeouts and
// 5xx-class provider errors.
type TransientError struct {
	Model string
	Err   error
}

// Error implements the error interface.
func (e *TransientError) Error() string {
	return fmt.Sprintf("transient provider failure (%s): %v", e.Model, e.Err)
}

// Unwrap returns the underlying cause.
func (e *TransientError) Unwrap() error { return e.Err }

// FatalError marks a failure that retrying cannot fix: authentication,
// malformed requests, or a schema the provider cannot honor. It bypasses
// retry and fallback entirely, because retrying it wastes calls and hides a
// configuration bug.
type FatalError struct {
	Model string
	Err   error
}

// Error implements the error interface.
func (e *FatalError) Error() string {
	return fmt.Sprintf("fatal provider failure (%s): %v", e.Model, e.Err)
}

// Unwrap returns the underlying cause.
func (e *FatalError) Unwrap() error { return e.Err }

// ExhaustedError is raised only after every model in the chain, including
// the original, has exhausted its retries.
type ExhaustedError struct {
	Models   []string
	Attempts int
	Causes   []error
}

// Error implements the error interface.
func (e *ExhaustedError) Error() string {
	parts := make([]string, len(e.Causes))
	for i, c := range e.Causes {
		parts[i] = c.Error()
	}
	return fmt.Sprintf("all providers exhausted after %d attempts (%s): [%s]",
		e.Attempts, strings.Join(e.Models, " -> "), strings.Join(parts, "; "))
}

// IsTransient reports whether err should be retried.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}

// IsFatal reports whether err must bypass retry and fallback.
func IsFatal(err error) bool {
	var fe *FatalError
	return errors.As(err, &fe)
}

// ClassifyStatus wraps an HTTP-style provider error as transient or fatal
// based on its status code. Unknown codes are treated as transient so that
// sporadic infrastructure failures still fall through the chain.
func ClassifyStatus(model string, status int, err error) error {
	switch {
	case status == 408 || status == 429 || status >= 500:
		return &TransientError{Model: model, Err: err}
	case status >= 400:
		return &FatalError{Model: model, Err: err}
	default:
		return &TransientError{Model: model, Err: err}
	}
}

// classify normalizes an arbitrary provider error. Context errors pass
// through untouched so cancellation is never misread as a provider fault;
// already-classified errors keep their class; everything else (connection
// resets, DNS hiccups) is transient.
func classify(model string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if IsTransient(err) || IsFatal(err) {
		return err
	}
	return &TransientError{Model: model, Err: err}
}
