package platform

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when the platform reports no bot under the
// requested id.
var ErrNotFound = errors.New("bot not found")

// APIError is a non-2xx platform response. Message carries the
// server's structured error text when the body had one, so callers
// can surface it verbatim.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("platform returned %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("platform returned %d", e.Status)
}

// ServerMessage extracts the platform's own error text from err, or
// returns "" when err is a transport-level failure without one.
func ServerMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return ""
}
