package engine

import (
	"fmt"
	"time"
)

// TimeoutError is returned when an execution's context deadline expires
// before a model reply is accepted.
type TimeoutError struct {
	Agent   string
	Elapsed time.Duration
}

// Error implements the error interface.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("execution of %q timed out after %s", e.Agent, e.Elapsed)
}
