package realtime

import "errors"

var (
	// ErrMalformedFrame marks a frame that is not a valid Envelope. The read
	// loop skips such frames instead of dropping the connection.
	ErrMalformedFrame = errors.New("realtime: malformed frame")

	// ErrConnClosed is returned by a Conn after Close.
	ErrConnClosed = errors.New("realtime: connection closed")
)
