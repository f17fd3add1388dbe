package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"uob-realtime/internal/gateway"
	"uob-realtime/pkg/response"
)

const pingTimeout = 2 * time.Second

// HealthResponse represents the health check response
type HealthResponse struct {
	Status     string            `json:"status"`
	Timestamp  time.Time         `json:"timestamp"`
	Redis      *RedisHealth      `json:"redis"`
	WebSocket  *gateway.HubStats `json:"websocket"`
	GoldPrice  *GoldPriceHealth  `json:"gold_price,omitempty"`
	Subscriber *SubscriberHealth `json:"subscriber,omitempty"`
	Uptime     int64             `json:"uptime_seconds"`
}

// RedisHealth represents Redis health status
type RedisHealth struct {
	Status string  `json:"status"`
	PingMs float64 `json:"ping_ms,omitempty"`
	Error  string  `json:"error,omitempty"`
}

// SubscriberHealth represents Redis subscriber health status
type SubscriberHealth struct {
	Active        bool      `json:"active"`
	LastMessageAt time.Time `json:"last_message_at,omitempty"`
	Pattern       string    `json:"pattern"`
}

// GoldPriceHealth reports how fresh the cached price is.
type GoldPriceHealth struct {
	ReceivedAt time.Time `json:"received_at"`
}

func (srv *HTTPServer) pingRedis(ctx context.Context) *RedisHealth {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	d, err := srv.redis.PingLatency(ctx)
	if err != nil {
		srv.logger.Errorf(ctx, "Redis health check failed: %v", err)
		return &RedisHealth{Status: "disconnected", Error: err.Error()}
	}
	return &RedisHealth{Status: "connected", PingMs: float64(d.Microseconds()) / 1000.0}
}

// healthCheck reports Redis, hub and subscriber state. Any broken
// dependency degrades the service to 503.
func (srv *HTTPServer) healthCheck(c *gin.Context) {
	ctx := c.Request.Context()

	stats := srv.uc.GetStats(ctx)
	resp := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
		Redis:     srv.pingRedis(ctx),
		WebSocket: &stats,
		Uptime:    int64(time.Since(srv.startedAt).Seconds()),
	}
	if resp.Redis.Status != "connected" {
		resp.Status = "degraded"
	}

	if cached, ok := srv.uc.LastPrice(); ok {
		resp.GoldPrice = &GoldPriceHealth{ReceivedAt: cached.ReceivedAt}
	}

	active, lastMessageAt, pattern := srv.subscriber.GetHealthInfo()
	resp.Subscriber = &SubscriberHealth{
		Active:        active,
		LastMessageAt: lastMessageAt,
		Pattern:       pattern,
	}
	if !active {
		resp.Status = "degraded"
	}

	statusCode := http.StatusOK
	if resp.Status == "degraded" {
		statusCode = http.StatusServiceUnavailable
	}
	c.JSON(statusCode, resp)
}

func (srv *HTTPServer) readyCheck(c *gin.Context) {
	if h := srv.pingRedis(c.Request.Context()); h.Status != "connected" {
		response.Error(c, http.StatusServiceUnavailable, "Redis connection not available")
		return
	}
	if active, _, _ := srv.subscriber.GetHealthInfo(); !active {
		response.Error(c, http.StatusServiceUnavailable, "Redis subscriber not running")
		return
	}
	response.OK(c, gin.H{
		"status":  "ready",
		"service": "notifyd",
	})
}

func (srv *HTTPServer) liveCheck(c *gin.Context) {
	response.OK(c, gin.H{
		"status":  "alive",
		"service": "notifyd",
	})
}
