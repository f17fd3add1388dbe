package redis

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"uob-realtime/internal/gateway"
	"uob-realtime/pkg/log"
)

const (
	defaultMaxRetries = 5
	defaultRetryDelay = time.Second
)

// Client is the part of the Redis client the delivery layer needs.
// *pkg/redis.Client satisfies it.
type Client interface {
	PSubscribe(ctx context.Context, channels ...string) *redis.PubSub
	Get(ctx context.Context, key string) *redis.StringCmd
}

type Subscriber interface {
	Start() error
	Shutdown(ctx context.Context) error
	GetHealthInfo() (active bool, lastMessageAt time.Time, pattern string)
}

type subscriber struct {
	client   Client
	uc       gateway.UseCase
	logger   log.Logger
	channels []string

	// Lifecycle fields
	pubsub *redis.PubSub
	psMu   sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	// Reconnection settings
	maxRetries int
	retryDelay time.Duration

	// Health tracking
	mu            sync.RWMutex
	lastMessageAt time.Time
	isActive      atomic.Bool
}

// Option configures the subscriber.
type Option func(*subscriber)

// WithRetry overrides the reconnect budget.
func WithRetry(maxRetries int, delay time.Duration) Option {
	return func(s *subscriber) {
		s.maxRetries = maxRetries
		s.retryDelay = delay
	}
}

func New(client Client, uc gateway.UseCase, logger log.Logger, opts ...Option) Subscriber {
	ctx, cancel := context.WithCancel(context.Background())
	s := &subscriber{
		client:     client,
		uc:         uc,
		logger:     logger,
		channels:   []string{gateway.NotificationPattern, gateway.PriceChannel},
		ctx:        ctx,
		cancel:     cancel,
		done:       make(chan struct{}),
		maxRetries: defaultMaxRetries,
		retryDelay: defaultRetryDelay,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}
