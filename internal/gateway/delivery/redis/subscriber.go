package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"uob-realtime/internal/gateway"
)

func (s *subscriber) Start() error {
	s.restorePrice(s.ctx)

	pubsub := s.client.PSubscribe(s.ctx, s.channels...)
	// Wait for confirmation that subscription is created
	if _, err := pubsub.Receive(s.ctx); err != nil {
		_ = pubsub.Close()
		return fmt.Errorf("failed to subscribe: %w", err)
	}
	s.setPubSub(pubsub)
	s.isActive.Store(true)

	go s.listen()

	s.logger.Infof(s.ctx, "Redis subscriber started on channels: %v", s.channels)
	return nil
}

// restorePrice seeds the price cache from the last published value so
// gold-price sockets get a frame before the next publish.
func (s *subscriber) restorePrice(ctx context.Context) {
	payload, err := s.client.Get(ctx, gateway.PriceKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return
	}
	if err != nil {
		s.logger.Warnf(ctx, "Failed to read last gold price: %v", err)
		return
	}
	if err := s.uc.RestorePrice(ctx, payload); err != nil {
		s.logger.Warnf(ctx, "Ignoring stored gold price: %v", err)
		return
	}
	s.logger.Info(ctx, "Restored last gold price from Redis")
}

func (s *subscriber) listen() {
	defer close(s.done)

	ch := s.currentPubSub().Channel()
	for {
		select {
		case <-s.ctx.Done():
			s.logger.Info(context.Background(), "Redis subscriber shutting down...")
			return

		case msg, ok := <-ch:
			if !ok {
				if s.ctx.Err() != nil {
					return
				}
				s.logger.Error(s.ctx, "Redis pub/sub channel closed, attempting to reconnect...")
				if err := s.reconnect(); err != nil {
					s.isActive.Store(false)
					s.logger.Errorf(s.ctx, "Failed to reconnect to Redis: %v", err)
					return
				}
				ch = s.currentPubSub().Channel()
				continue
			}
			s.handleMessage(s.ctx, msg)
		}
	}
}

// reconnect resubscribes up to maxRetries times, waiting retryDelay
// between attempts.
func (s *subscriber) reconnect() error {
	for i := 0; i < s.maxRetries; i++ {
		s.logger.Infof(s.ctx, "Reconnecting to Redis (attempt %d/%d)...", i+1, s.maxRetries)

		pubsub := s.client.PSubscribe(s.ctx, s.channels...)
		if _, err := pubsub.Receive(s.ctx); err == nil {
			s.setPubSub(pubsub)
			s.logger.Info(s.ctx, "Successfully reconnected to Redis")
			return nil
		}
		_ = pubsub.Close()

		select {
		case <-s.ctx.Done():
			return s.ctx.Err()
		case <-time.After(s.retryDelay):
		}
	}
	return fmt.Errorf("failed to reconnect to Redis after %d attempts", s.maxRetries)
}

func (s *subscriber) setPubSub(p *redis.PubSub) {
	s.psMu.Lock()
	old := s.pubsub
	s.pubsub = p
	s.psMu.Unlock()
	if old != nil {
		_ = old.Close()
	}
}

func (s *subscriber) currentPubSub() *redis.PubSub {
	s.psMu.Lock()
	defer s.psMu.Unlock()
	return s.pubsub
}

// GetHealthInfo returns the current health info of the subscriber
func (s *subscriber) GetHealthInfo() (active bool, lastMessageAt time.Time, pattern string) {
	s.mu.RLock()
	lastMsg := s.lastMessageAt
	s.mu.RUnlock()

	return s.isActive.Load(), lastMsg, strings.Join(s.channels, ",")
}

func (s *subscriber) Shutdown(ctx context.Context) error {
	s.isActive.Store(false)
	s.cancel()

	pubsub := s.currentPubSub()
	if pubsub == nil {
		return nil
	}
	if err := pubsub.Close(); err != nil {
		s.logger.Errorf(ctx, "failed to close pubsub: %v", err)
	}

	select {
	case <-s.done:
		s.logger.Infof(ctx, "Redis subscriber stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
