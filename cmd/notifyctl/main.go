package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"uob-realtime/config"
	"uob-realtime/pkg/log"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &cli.Command{
		Name:  "notifyctl",
		Usage: "Realtime notification client and operator tool for UOB Security House",
		Commands: []*cli.Command{
			listenCommand(),
			priceCommand(),
			emitCommand(),
			pushPriceCommand(),
			apiCommand(),
		},
	}

	if err := app.Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup loads the client configuration and its logger.
func setup() (*config.ClientConfig, log.Logger, error) {
	cfg, err := config.LoadClient()
	if err != nil {
		return nil, nil, err
	}
	logger := log.Init(log.ZapConfig{
		Level:        cfg.Logger.Level,
		Mode:         cfg.Logger.Mode,
		Encoding:     cfg.Logger.Encoding,
		ColorEnabled: cfg.Logger.ColorEnabled,
	})
	return cfg, logger, nil
}
