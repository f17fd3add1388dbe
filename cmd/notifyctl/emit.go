package main

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	configRedis "uob-realtime/config/redis"
	"uob-realtime/internal/gateway"
	"uob-realtime/internal/gateway/delivery/redis"
	"uob-realtime/internal/goldprice"
	"uob-realtime/internal/notification"
)

// emitCommand publishes a notification the way the backend does, straight
// onto the gateway's Redis channels.
func emitCommand() *cli.Command {
	return &cli.Command{
		Name:  "emit",
		Usage: "Publish a notification to a subscriber, an admin or everyone",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "to", Usage: "Subscriber id (omit with --broadcast)"},
			&cli.BoolFlag{Name: "admin", Usage: "Send as admin_notification"},
			&cli.BoolFlag{Name: "broadcast", Usage: "Send as an announcement to every connected subscriber"},
			&cli.StringFlag{Name: "type", Value: string(notification.KindInfo), Usage: "success, error, warning or info"},
			&cli.StringFlag{Name: "title", Required: true},
			&cli.StringFlag{Name: "message"},
			&cli.StringFlag{Name: "action-label"},
			&cli.StringFlag{Name: "action-url", Usage: "In-app path opened when the action is taken"},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			channel, err := emitChannel(c.String("to"), c.Bool("admin"), c.Bool("broadcast"))
			if err != nil {
				return err
			}

			payload := notification.Payload{
				Type:      c.String("type"),
				Title:     c.String("title"),
				Message:   c.String("message"),
				Timestamp: time.Now().UTC().Format(time.RFC3339),
			}
			if target := c.String("action-url"); target != "" {
				payload.Action = &notification.Action{Label: c.String("action-label"), Target: target}
			}

			pub, closeFn, err := publisher()
			if err != nil {
				return err
			}
			defer closeFn()

			n, err := pub.PublishNotification(ctx, channel, payload)
			if err != nil {
				return err
			}
			fmt.Printf("published to %s (%d gateway(s))\n", channel, n)
			return nil
		},
	}
}

func emitChannel(to string, admin, broadcast bool) (string, error) {
	switch {
	case broadcast && (admin || to != ""):
		return "", fmt.Errorf("--broadcast cannot be combined with --to or --admin")
	case broadcast:
		return gateway.BroadcastChannel, nil
	case to == "":
		return "", fmt.Errorf("--to is required unless --broadcast is set")
	case admin:
		return gateway.AdminChannel(to), nil
	default:
		return gateway.UserChannel(to), nil
	}
}

// pushPriceCommand publishes a gold price tick and stores it as the last
// known price.
func pushPriceCommand() *cli.Command {
	return &cli.Command{
		Name:  "push-price",
		Usage: "Publish a gold price tick",
		Flags: []cli.Flag{
			&cli.FloatFlag{Name: "price", Usage: "USD per gram", Required: true},
			&cli.FloatFlag{Name: "per-ounce", Usage: "USD per troy ounce (derived from --price when omitted)"},
			&cli.FloatFlag{Name: "previous", Usage: "Previous USD per gram, drives the up/down indicator"},
			&cli.FloatFlag{Name: "change", Usage: "24h change in percent"},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			p := goldprice.Price{
				Price:         c.Float("price"),
				PricePerOunce: c.Float("per-ounce"),
				PreviousPrice: c.Float("previous"),
				Change24h:     c.Float("change"),
				Timestamp:     time.Now().UTC(),
			}
			if p.PricePerOunce == 0 {
				p.PricePerOunce = p.Price * gramsPerTroyOunce
			}

			pub, closeFn, err := publisher()
			if err != nil {
				return err
			}
			defer closeFn()

			n, err := pub.PublishPrice(ctx, p)
			if err != nil {
				return err
			}
			fmt.Printf("published %s (%d gateway(s))\n", formatPrice(p), n)
			return nil
		},
	}
}

const gramsPerTroyOunce = 31.1034768

func publisher() (*redis.Publisher, func(), error) {
	cfg, _, err := setup()
	if err != nil {
		return nil, nil, err
	}
	client, err := configRedis.ConnectClient(cfg.Redis)
	if err != nil {
		return nil, nil, err
	}
	return redis.NewPublisher(client), func() { _ = client.Close() }, nil
}
