package httpserver

import (
	"context"
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	"uob-realtime/internal/gateway"
	wshttp "uob-realtime/internal/gateway/delivery/http"
	"uob-realtime/internal/gateway/delivery/redis"
	"uob-realtime/pkg/discord"
	"uob-realtime/pkg/log"
)

const defaultShutdownTimeout = 10 * time.Second

// RedisPinger reports Redis round-trip latency. *pkg/redis.Client
// satisfies it.
type RedisPinger interface {
	PingLatency(ctx context.Context) (time.Duration, error)
}

// HTTPServer represents the HTTP server with all dependencies.
// New() only wires dependencies and validates them.
// Run() (in httpserver.go) is responsible for starting background services and HTTP serving.
type HTTPServer struct {
	// Server configuration
	gin             *gin.Engine
	logger          log.Logger
	host            string
	port            int
	environment     string
	shutdownTimeout time.Duration
	startedAt       time.Time

	// Gateway core
	uc         gateway.UseCase
	subscriber redis.Subscriber
	wsConfig   wshttp.WSConfig
	wsHandler  *wshttp.Handler

	// External services
	redis   RedisPinger
	discord discord.IDiscord
}

// Config is the constructor input for HTTPServer.
type Config struct {
	// Server configuration
	Host            string
	Port            int
	Environment     string
	ShutdownTimeout time.Duration

	// Gateway
	UseCase    gateway.UseCase
	Subscriber redis.Subscriber
	WSConfig   wshttp.WSConfig

	// External services
	Redis   RedisPinger
	Discord discord.IDiscord // optional
}

// New creates a new HTTPServer instance with the provided configuration.
// Note: This does NOT start any goroutines. Use (*HTTPServer).Run() to start the service.
func New(logger log.Logger, cfg Config) (*HTTPServer, error) {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}

	srv := &HTTPServer{
		gin:             gin.New(),
		logger:          logger,
		host:            cfg.Host,
		port:            cfg.Port,
		environment:     cfg.Environment,
		shutdownTimeout: cfg.ShutdownTimeout,
		startedAt:       time.Now(),

		uc:         cfg.UseCase,
		subscriber: cfg.Subscriber,
		wsConfig:   cfg.WSConfig,

		redis:   cfg.Redis,
		discord: cfg.Discord,
	}

	if err := srv.validate(); err != nil {
		return nil, err
	}

	return srv, nil
}

// validate ensures all required dependencies are provided.
func (s *HTTPServer) validate() error {
	if s.logger == nil {
		return errors.New("logger is required")
	}
	if s.port == 0 {
		return errors.New("port is required")
	}
	if s.uc == nil {
		return errors.New("gateway UseCase is required")
	}
	if s.subscriber == nil {
		return errors.New("Redis subscriber is required")
	}
	if s.redis == nil {
		return errors.New("Redis client is required")
	}

	return nil
}
