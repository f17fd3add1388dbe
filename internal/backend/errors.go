package backend

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthorized = errors.New("backend: unauthorized")
	ErrNoBaseURL    = errors.New("backend: base url is required")
)

// StatusError is returned for non-2xx responses other than 401.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("backend: %s %s: status %d", e.Method, e.Path, e.Code)
	}
	return fmt.Sprintf("backend: %s %s: status %d: %s", e.Method, e.Path, e.Code, e.Body)
}
