package usecase

import (
	"time"

	"uob-realtime/internal/gateway"
)

// ParsedChannel represents the components extracted from a Redis channel string.
type ParsedChannel struct {
	ChannelType  gateway.ChannelType
	SubscriberID string // empty for broadcast and price channels
}

// Config holds the connection settings applied to every socket.
type Config struct {
	MaxConnections int
	PongWait       time.Duration
	PingPeriod     time.Duration
	WriteWait      time.Duration
	MaxMessageSize int64
	SendBuffer     int
}

func (c *Config) setDefaults() {
	if c.MaxConnections <= 0 {
		c.MaxConnections = 10000
	}
	if c.PongWait <= 0 {
		c.PongWait = 60 * time.Second
	}
	if c.PingPeriod <= 0 || c.PingPeriod >= c.PongWait {
		c.PingPeriod = c.PongWait * 9 / 10
	}
	if c.WriteWait <= 0 {
		c.WriteWait = 10 * time.Second
	}
	if c.MaxMessageSize <= 0 {
		c.MaxMessageSize = 512
	}
	if c.SendBuffer <= 0 {
		c.SendBuffer = 256
	}
}

// authRequest binds a notification socket to a subscriber id.
type authRequest struct {
	conn         *Connection
	subscriberID string
}
