package httpserver

import (
	wshttp "uob-realtime/internal/gateway/delivery/http"
	"uob-realtime/internal/middleware"
)

func (srv *HTTPServer) mapHandlers() {
	srv.gin.Use(middleware.Recovery(srv.logger, srv.discord))
	srv.gin.Use(middleware.CORS(middleware.DefaultCORSConfig(srv.wsConfig.AllowedOrigins)))

	// Health check endpoints
	srv.gin.GET("/health", srv.healthCheck)
	srv.gin.GET("/ready", srv.readyCheck)
	srv.gin.GET("/live", srv.liveCheck)
	srv.gin.GET("/metrics", srv.metrics)

	// Socket endpoints
	srv.wsHandler = wshttp.New(srv.uc, srv.logger, srv.wsConfig, srv.environment)
	srv.wsHandler.RegisterRoutes(srv.gin)
}
