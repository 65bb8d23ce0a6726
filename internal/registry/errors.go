package registry

import (
	"errors"
	"fmt"
)

// ErrNotFound is wrapped by errors for resources the API does not have.
var ErrNotFound = errors.New("not found")

// NetworkError is a transport failure or an unexpected upstream status.
// Status is 0 when no response was received.
type NetworkError struct {
	Method string
	URL    string
	Status int
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ValidationError is a rejected request, either by the upstream API or by
// local checks before sending it.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Message
	}
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Message)
}
