package gateway

import "errors"

var (
	// ErrInvalidChannel is returned when a Redis channel does not match the layout
	ErrInvalidChannel = errors.New("invalid channel")

	// ErrInvalidPayload is returned when a published payload cannot be decoded
	ErrInvalidPayload = errors.New("invalid payload")

	// ErrInvalidConnection is returned when Register is given something other than a socket
	ErrInvalidConnection = errors.New("invalid connection type")

	// ErrMaxConnectionsReached is returned when max connections limit is reached
	ErrMaxConnectionsReached = errors.New("maximum connections reached")

	// ErrShuttingDown is returned when the hub no longer accepts connections
	ErrShuttingDown = errors.New("gateway shutting down")
)
