package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v9"
)

// ClientConfig configures notifyctl.
type ClientConfig struct {
	// API origin; both socket channels are derived from it.
	APIURL string `env:"UOB_API_URL" envDefault:"http://localhost:5000/api"`
	Token  string `env:"UOB_API_TOKEN"`

	Realtime RealtimeConfig
	Logger   ClientLoggerConfig
	Redis    ClientRedisConfig
}

// RealtimeConfig is the configuration for the socket channels and the
// presentation queue
type RealtimeConfig struct {
	NotificationsPath    string        `env:"UOB_WS_NOTIFICATIONS_PATH" envDefault:"/ws/notifications"`
	PricePath            string        `env:"UOB_WS_GOLD_PRICE_PATH" envDefault:"/ws/gold-price"`
	ReconnectDelay       time.Duration `env:"UOB_RECONNECT_DELAY" envDefault:"1s"`
	MaxReconnectAttempts int           `env:"UOB_MAX_RECONNECT_ATTEMPTS" envDefault:"5"`
	HandshakeTimeout     time.Duration `env:"UOB_HANDSHAKE_TIMEOUT" envDefault:"10s"`
	ToastTTL             time.Duration `env:"UOB_TOAST_TTL" envDefault:"3s"`
}

// ClientLoggerConfig is the configuration for the client logger
type ClientLoggerConfig struct {
	Level        string `env:"UOB_LOGGER_LEVEL" envDefault:"info"`
	Mode         string `env:"UOB_LOGGER_MODE" envDefault:"development"`
	Encoding     string `env:"UOB_LOGGER_ENCODING" envDefault:"console"`
	ColorEnabled bool   `env:"UOB_LOGGER_COLOR_ENABLED" envDefault:"true"`
}

// ClientRedisConfig is used by the operator commands that publish directly
// to the gateway's channels.
// Note: Only standalone mode is supported
type ClientRedisConfig struct {
	Host     string `env:"REDIS_HOST" envDefault:"localhost"`
	Port     int    `env:"REDIS_PORT" envDefault:"6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
	UseTLS   bool   `env:"REDIS_USE_TLS" envDefault:"false"`
}

// LoadClient loads the client configuration from environment variables.
func LoadClient() (*ClientConfig, error) {
	cfg := &ClientConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config.LoadClient: %w", err)
	}
	return cfg, nil
}

// Endpoints resolves both channel URLs from APIURL.
func (c *ClientConfig) Endpoints() (notifications, price string, err error) {
	base, err := ResolveEndpoint(c.APIURL)
	if err != nil {
		return "", "", err
	}
	return base + c.Realtime.NotificationsPath, base + c.Realtime.PricePath, nil
}
