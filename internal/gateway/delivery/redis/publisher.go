package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"uob-realtime/internal/gateway"
	"uob-realtime/internal/goldprice"
	"uob-realtime/internal/notification"
)

// PublishClient is the part of the Redis client the publisher needs.
type PublishClient interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// Publisher writes notifications and prices onto the channels the gateway
// listens on. The backend does the same from its side; notifyctl uses this
// for operator pushes.
type Publisher struct {
	client PublishClient
}

func NewPublisher(client PublishClient) *Publisher {
	return &Publisher{client: client}
}

// PublishNotification publishes p on channel, which must be one of the
// uob:noti:* channels. It returns the number of gateways that received it.
func (p *Publisher) PublishNotification(ctx context.Context, channel string, payload notification.Payload) (int64, error) {
	if !strings.HasPrefix(channel, strings.TrimSuffix(gateway.NotificationPattern, "*")) {
		return 0, fmt.Errorf("%w: %s", gateway.ErrInvalidChannel, channel)
	}
	if strings.TrimSpace(payload.Title) == "" && strings.TrimSpace(payload.Message) == "" {
		return 0, gateway.ErrInvalidPayload
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, err
	}
	return p.client.Publish(ctx, channel, body).Result()
}

// PublishPrice stores price as the last known value and publishes it.
func (p *Publisher) PublishPrice(ctx context.Context, price goldprice.Price) (int64, error) {
	if price.Price <= 0 {
		return 0, gateway.ErrInvalidPayload
	}
	body, err := json.Marshal(price)
	if err != nil {
		return 0, err
	}
	if err := p.client.Set(ctx, gateway.PriceKey, body, 0).Err(); err != nil {
		return 0, fmt.Errorf("failed to store last price: %w", err)
	}
	return p.client.Publish(ctx, gateway.PriceChannel, body).Result()
}
