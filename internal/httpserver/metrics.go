package httpserver

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// MetricsResponse represents the metrics response
type MetricsResponse struct {
	Service     string             `json:"service"`
	Timestamp   time.Time          `json:"timestamp"`
	Uptime      int64              `json:"uptime_seconds"`
	Connections *ConnectionMetrics `json:"connections"`
	Messages    *MessageMetrics    `json:"messages"`
}

// ConnectionMetrics represents connection-related metrics
type ConnectionMetrics struct {
	Active      int `json:"active"`
	Subscribers int `json:"subscribers"`
	GoldPrice   int `json:"gold_price"`
}

// MessageMetrics represents message-related metrics
type MessageMetrics struct {
	ReceivedFromRedis int64 `json:"received_from_redis"`
	SentToClients     int64 `json:"sent_to_clients"`
	Failed            int64 `json:"failed"`
}

func (srv *HTTPServer) metrics(c *gin.Context) {
	stats := srv.uc.GetStats(c.Request.Context())

	c.JSON(http.StatusOK, MetricsResponse{
		Service:   "notifyd",
		Timestamp: time.Now(),
		Uptime:    int64(time.Since(srv.startedAt).Seconds()),
		Connections: &ConnectionMetrics{
			Active:      stats.ActiveConnections,
			Subscribers: stats.Subscribers,
			GoldPrice:   stats.PriceConnections,
		},
		Messages: &MessageMetrics{
			ReceivedFromRedis: stats.TotalMessagesReceived,
			SentToClients:     stats.TotalMessagesSent,
			Failed:            stats.TotalMessagesFailed,
		},
	})
}
