package realtime

import (
	"encoding/json"
	"time"
)

// State is the lifecycle state of a channel connection.
type State string

const (
	StateDisconnected State = "disconnected"
	StateConnecting   State = "connecting"
	StateConnected    State = "connected"
)

// Envelope is one JSON text frame on the socket.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Client to server events.
const (
	EventAuthenticate = "authenticate"
)

// Server to client control events.
const (
	EventAuthenticated = "authenticated"
	EventError         = "error"
)

// NewEnvelope marshals data into an envelope for event.
func NewEnvelope(event string, data any) (Envelope, error) {
	if data == nil {
		return Envelope{Event: event}, nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{Event: event, Data: raw}, nil
}

// Defaults for Config.
const (
	DefaultReconnectDelay       = time.Second
	DefaultMaxReconnectAttempts = 5
	DefaultHandshakeTimeout     = 10 * time.Second
	DefaultWriteWait            = 10 * time.Second
	DefaultReadTimeout          = 70 * time.Second
)

// Config describes one logical channel.
type Config struct {
	// Name identifies the channel in logs, e.g. "notifications".
	Name string
	// URL is the full ws:// or wss:// address of the channel.
	URL string
	// RequireSubscriber keeps the channel idle until Connect is given a
	// non-empty subscriber id.
	RequireSubscriber bool
	// ReconnectDelay is the fixed pause between reconnection attempts.
	ReconnectDelay time.Duration
	// MaxReconnectAttempts bounds consecutive reconnection attempts.
	MaxReconnectAttempts int
}

func (c *Config) setDefaults() {
	if c.Name == "" {
		c.Name = "channel"
	}
	if c.ReconnectDelay <= 0 {
		c.ReconnectDelay = DefaultReconnectDelay
	}
	if c.MaxReconnectAttempts < 0 {
		c.MaxReconnectAttempts = 0
	} else if c.MaxReconnectAttempts == 0 {
		c.MaxReconnectAttempts = DefaultMaxReconnectAttempts
	}
}
