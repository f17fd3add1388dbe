package http

import (
	"context"

	"github.com/gorilla/websocket"

	"uob-realtime/internal/gateway"
	"uob-realtime/pkg/log"
)

// WSConfig holds the upgrade settings.
type WSConfig struct {
	ReadBufferSize  int
	WriteBufferSize int
	AllowedOrigins  []string
	UpgradeRate     float64
	UpgradeBurst    int
}

type Handler struct {
	uc          gateway.UseCase
	logger      log.Logger
	environment string
	upgrader    websocket.Upgrader
	limiter     *upgradeLimiter
}

func New(uc gateway.UseCase, logger log.Logger, wsCfg WSConfig, env string) *Handler {
	if env == "" {
		env = "production"
	}
	if env == "production" {
		logger.Infof(context.Background(), "CORS mode: production (strict origins only)")
	} else {
		logger.Infof(context.Background(), "CORS mode: %s (permissive - allows localhost and private networks)", env)
	}

	return &Handler{
		uc:          uc,
		logger:      logger,
		environment: env,
		upgrader:    newUpgrader(env, wsCfg),
		limiter:     newUpgradeLimiter(wsCfg.UpgradeRate, wsCfg.UpgradeBurst),
	}
}

// Close stops background housekeeping.
func (h *Handler) Close() {
	h.limiter.Stop()
}
