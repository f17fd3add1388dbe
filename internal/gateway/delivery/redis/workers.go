package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"uob-realtime/internal/gateway"
)

func (s *subscriber) handleMessage(ctx context.Context, msg *redis.Message) {
	s.mu.Lock()
	s.lastMessageAt = time.Now()
	s.mu.Unlock()

	input := gateway.ProcessMessageInput{
		Channel: msg.Channel,
		Payload: []byte(msg.Payload),
	}
	if err := s.uc.ProcessMessage(ctx, input); err != nil {
		s.logger.Warnf(ctx, "process message failed: channel=%s err=%v", msg.Channel, err)
		return
	}
	s.logger.Debugf(ctx, "Routed message from %s", msg.Channel)
}
