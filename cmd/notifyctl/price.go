package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"uob-realtime/internal/goldprice"
	"uob-realtime/internal/realtime"
)

// priceCommand follows the gold price channel only; it needs no
// subscriber id.
func priceCommand() *cli.Command {
	return &cli.Command{
		Name:  "price",
		Usage: "Stream gold price ticks",
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			_, priceURL, err := cfg.Endpoints()
			if err != nil {
				return err
			}

			dialer := realtime.NewWSDialer()
			dialer.HandshakeTimeout = cfg.Realtime.HandshakeTimeout
			m := realtime.New(realtime.Config{
				Name:                 "gold-price",
				URL:                  priceURL,
				ReconnectDelay:       cfg.Realtime.ReconnectDelay,
				MaxReconnectAttempts: cfg.Realtime.MaxReconnectAttempts,
			}, dialer, logger)

			feed := goldprice.NewFeed(logger)
			goldprice.Bind(m, feed)
			unsubscribe := feed.Subscribe(func(_ context.Context, p goldprice.Price) {
				fmt.Println(formatPrice(p))
			})
			defer unsubscribe()

			m.Connect("")
			defer m.Disconnect()

			<-ctx.Done()
			return nil
		},
	}
}
