package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
)

// Run starts the HTTP server and all background services, then blocks
// until ctx is cancelled:
//  1. Map HTTP handlers and routes
//  2. Start the hub
//  3. Start the Redis subscriber
//  4. Serve HTTP
//  5. On cancellation, drain everything within shutdownTimeout
func (srv *HTTPServer) Run(ctx context.Context) error {
	srv.mapHandlers()

	go srv.uc.Run()
	srv.logger.Info(ctx, "Gateway hub started")

	if err := srv.subscriber.Start(); err != nil {
		_ = srv.uc.Shutdown(context.Background())
		srv.wsHandler.Close()
		return fmt.Errorf("start Redis subscriber: %w", err)
	}

	httpSrv := &http.Server{
		Addr:    net.JoinHostPort(srv.host, strconv.Itoa(srv.port)),
		Handler: srv.gin,
	}
	errCh := make(chan error, 1)
	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	srv.logger.Infof(ctx, "HTTP server started on %s", httpSrv.Addr)

	var serveErr error
	select {
	case <-ctx.Done():
		srv.logger.Info(context.Background(), "Stopping gateway...")
	case serveErr = <-errCh:
		srv.logger.Errorf(context.Background(), "HTTP server error: %v", serveErr)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), srv.shutdownTimeout)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		srv.logger.Errorf(shutdownCtx, "HTTP server shutdown error: %v", err)
	}
	if err := srv.subscriber.Shutdown(shutdownCtx); err != nil {
		srv.logger.Errorf(shutdownCtx, "Redis subscriber shutdown error: %v", err)
	}
	if err := srv.uc.Shutdown(shutdownCtx); err != nil {
		srv.logger.Errorf(shutdownCtx, "Gateway hub shutdown error: %v", err)
	}
	srv.wsHandler.Close()

	return serveErr
}
