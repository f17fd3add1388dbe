package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"uob-realtime/internal/gateway"
	"uob-realtime/pkg/response"
)

// upgrade turns the request into a socket on stream. Subscribers identify
// themselves after the upgrade with an authenticate frame.
func (h *Handler) upgrade(stream gateway.Stream) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		if !h.limiter.Allow(c.ClientIP()) {
			h.logger.Warnf(ctx, "Socket upgrade throttled: stream=%s ip=%s", stream, c.ClientIP())
			response.Error(c, http.StatusTooManyRequests, "too many connection attempts")
			return
		}

		conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			// The upgrader has already written the HTTP error.
			h.logger.Warnf(ctx, "Socket upgrade failed: stream=%s origin=%q: %v", stream, c.GetHeader("Origin"), err)
			return
		}

		input := gateway.ConnectionInput{
			Stream:     stream,
			RemoteAddr: c.ClientIP(),
			Conn:       conn,
		}
		if err := h.uc.Register(ctx, input); err != nil {
			h.logger.Errorf(ctx, "register failed: %v", err)
			_ = conn.Close()
		}
	}
}
