package usecase

import (
	"encoding/json"
	"strings"

	"uob-realtime/internal/gateway"
	"uob-realtime/internal/realtime"
)

// parseChannel parses a Redis channel string into a ParsedChannel struct.
// Supported formats:
// - uob:noti:user:{subscriber_id}
// - uob:noti:admin:{subscriber_id}
// - uob:noti:broadcast
// - uob:gold:price
func parseChannel(channel string) (ParsedChannel, error) {
	switch channel {
	case gateway.BroadcastChannel:
		return ParsedChannel{ChannelType: gateway.ChannelTypeBroadcast}, nil
	case gateway.PriceChannel:
		return ParsedChannel{ChannelType: gateway.ChannelTypePrice}, nil
	}

	parts := strings.SplitN(channel, ":", 4)
	if len(parts) != 4 || parts[0] != "uob" || parts[1] != "noti" || parts[3] == "" {
		return ParsedChannel{}, gateway.ErrInvalidChannel
	}

	switch parts[2] {
	case "user":
		return ParsedChannel{ChannelType: gateway.ChannelTypeUser, SubscriberID: parts[3]}, nil
	case "admin":
		return ParsedChannel{ChannelType: gateway.ChannelTypeAdmin, SubscriberID: parts[3]}, nil
	default:
		return ParsedChannel{}, gateway.ErrInvalidChannel
	}
}

// encodeEnvelope renders one outbound frame.
func encodeEnvelope(event string, data any) ([]byte, error) {
	env, err := realtime.NewEnvelope(event, data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(env)
}

// mustEnvelope is for control frames whose data always marshals.
func mustEnvelope(event string, data any) []byte {
	b, err := encodeEnvelope(event, data)
	if err != nil {
		panic(err)
	}
	return b
}
