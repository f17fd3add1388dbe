package gateway

import (
	"encoding/json"
	"time"
)

// --- Streams ---

// Stream is one socket endpoint of the gateway.
type Stream string

const (
	StreamNotifications Stream = "notifications"
	StreamGoldPrice     Stream = "gold-price"
)

// --- Channel Types ---
type ChannelType string

const (
	ChannelTypeUser      ChannelType = "user"
	ChannelTypeAdmin     ChannelType = "admin"
	ChannelTypeBroadcast ChannelType = "broadcast"
	ChannelTypePrice     ChannelType = "price"
)

// Redis channel layout.
const (
	NotificationPattern = "uob:noti:*"
	BroadcastChannel    = "uob:noti:broadcast"
	PriceChannel        = "uob:gold:price"
	// PriceKey holds the last published price so a restarted gateway can
	// replay it.
	PriceKey = "uob:gold:price:last"

	userChannelPrefix  = "uob:noti:user:"
	adminChannelPrefix = "uob:noti:admin:"
)

// UserChannel is the personal channel of subscriberID.
func UserChannel(subscriberID string) string { return userChannelPrefix + subscriberID }

// AdminChannel is the admin-targeted channel of subscriberID.
func AdminChannel(subscriberID string) string { return adminChannelPrefix + subscriberID }

// --- UseCase Inputs ---

// ProcessMessageInput is the raw input from Redis
type ProcessMessageInput struct {
	Channel string
	Payload []byte
}

// ConnectionInput represents an upgraded socket
type ConnectionInput struct {
	Stream     Stream
	RemoteAddr string
	Conn       any // *websocket.Conn
}

// --- UseCase Outputs ---

type HubStats struct {
	ActiveConnections     int   `json:"active_connections"`
	Subscribers           int   `json:"subscribers"`
	PriceConnections      int   `json:"price_connections"`
	TotalMessagesSent     int64 `json:"total_messages_sent"`
	TotalMessagesReceived int64 `json:"total_messages_received"`
	TotalMessagesFailed   int64 `json:"total_messages_failed"`
}

// CachedPrice is the last price seen on PriceChannel.
type CachedPrice struct {
	Payload    json.RawMessage
	ReceivedAt time.Time
}
