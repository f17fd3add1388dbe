package notification

import "errors"

var (
	ErrMissingTitle   = errors.New("notification: title is required")
	ErrMissingMessage = errors.New("notification: message is required")
	ErrInvalidKind    = errors.New("notification: invalid kind")
	ErrInvalidOrigin  = errors.New("notification: invalid origin")
)
