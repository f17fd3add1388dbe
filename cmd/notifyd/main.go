package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"uob-realtime/config"
	configRedis "uob-realtime/config/redis"
	wshttp "uob-realtime/internal/gateway/delivery/http"
	"uob-realtime/internal/gateway/delivery/redis"
	"uob-realtime/internal/gateway/usecase"
	"uob-realtime/internal/httpserver"
	"uob-realtime/internal/notification/effect"
	"uob-realtime/pkg/discord"
	"uob-realtime/pkg/log"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Failed to load config:", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := log.Init(log.ZapConfig{
		Level:        cfg.Logger.Level,
		Mode:         cfg.Logger.Mode,
		Encoding:     cfg.Logger.Encoding,
		ColorEnabled: cfg.Logger.ColorEnabled,
	})

	// Create context with signal handling for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info(ctx, "Starting UOB realtime gateway...")

	// Discord webhook (optional): panic reports and admin notification mirror
	var discordClient discord.IDiscord
	var ucOpts []usecase.Option
	if cfg.Discord.Enabled() {
		discordClient, err = discord.New(logger, cfg.Discord.WebhookID, cfg.Discord.WebhookToken)
		if err != nil {
			logger.Warnf(ctx, "Failed to initialize Discord webhook: %v", err)
			discordClient = nil
		} else {
			defer discordClient.Close()
			ucOpts = append(ucOpts, usecase.WithAdminListener(effect.NewDiscordMirror(discordClient, logger, "notifyd")))
			logger.Info(ctx, "Discord webhook initialized")
		}
	}

	// Redis - Pub/Sub fan-in and the price cache
	redisClient, err := configRedis.Connect(ctx, cfg.Redis)
	if err != nil {
		logger.Errorf(ctx, "Failed to connect to Redis: %v", err)
		os.Exit(1)
	}
	defer configRedis.Disconnect()
	logger.Info(ctx, "Redis client initialized")

	uc := usecase.New(logger, usecase.Config{
		MaxConnections: cfg.WebSocket.MaxConnections,
		PongWait:       cfg.WebSocket.PongWait,
		PingPeriod:     cfg.WebSocket.PingInterval,
		WriteWait:      cfg.WebSocket.WriteWait,
		MaxMessageSize: cfg.WebSocket.MaxMessageSize,
	}, ucOpts...)

	subscriber := redis.New(redisClient, uc, logger)

	srv, err := httpserver.New(logger, httpserver.Config{
		Host:        cfg.Server.Host,
		Port:        cfg.Server.Port,
		Environment: cfg.Environment.Name,
		UseCase:     uc,
		Subscriber:  subscriber,
		WSConfig: wshttp.WSConfig{
			ReadBufferSize:  cfg.WebSocket.ReadBufferSize,
			WriteBufferSize: cfg.WebSocket.WriteBufferSize,
			AllowedOrigins:  cfg.WebSocket.AllowedOrigins,
			UpgradeRate:     cfg.WebSocket.UpgradeRate,
			UpgradeBurst:    cfg.WebSocket.UpgradeBurst,
		},
		Redis:   redisClient,
		Discord: discordClient,
	})
	if err != nil {
		logger.Errorf(ctx, "Failed to initialize HTTP server: %v", err)
		os.Exit(1)
	}

	if err := srv.Run(ctx); err != nil {
		logger.Errorf(ctx, "Gateway stopped with error: %v", err)
		os.Exit(1)
	}
	logger.Info(ctx, "Gateway stopped gracefully")
}
