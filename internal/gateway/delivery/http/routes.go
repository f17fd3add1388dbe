package http

import (
	"github.com/gin-gonic/gin"

	"uob-realtime/internal/gateway"
)

// RegisterRoutes registers the socket endpoints.
func (h *Handler) RegisterRoutes(r gin.IRouter) {
	ws := r.Group("/ws")
	{
		ws.GET("/notifications", h.upgrade(gateway.StreamNotifications))
		ws.GET("/gold-price", h.upgrade(gateway.StreamGoldPrice))
	}
}
