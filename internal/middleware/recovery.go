package middleware

import (
	"github.com/gin-gonic/gin"

	"uob-realtime/pkg/discord"
	"uob-realtime/pkg/log"
	"uob-realtime/pkg/response"
)

// Recovery turns a handler panic into a 500 and reports it.
func Recovery(logger log.Logger, discordClient discord.IDiscord) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.Errorf(c.Request.Context(), "Panic recovered: %v | Method: %s | Path: %s",
					rec, c.Request.Method, c.Request.URL.Path)
				response.PanicError(c, rec, discordClient)
			}
		}()
		c.Next()
	}
}
