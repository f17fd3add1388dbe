package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"uob-realtime/internal/goldprice"
	"uob-realtime/internal/notification"
	"uob-realtime/internal/realtime"
	"uob-realtime/internal/session"
)

// listenCommand runs a full session: both channels, the queue and the
// chime, printing the visible notifications whenever they change.
func listenCommand() *cli.Command {
	return &cli.Command{
		Name:  "listen",
		Usage: "Connect as a subscriber and print notifications and gold prices as they arrive",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "subscriber",
				Aliases:  []string{"s"},
				Usage:    "Subscriber id sent in the authenticate event",
				Required: true,
			},
			&cli.BoolFlag{
				Name:  "quiet",
				Usage: "Do not ring the terminal bell",
			},
			&cli.BoolFlag{
				Name:  "no-price",
				Usage: "Do not print gold price ticks",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			notisURL, priceURL, err := cfg.Endpoints()
			if err != nil {
				return err
			}

			var bell io.Writer = os.Stdout
			if c.Bool("quiet") {
				bell = nil
			}
			dialer := realtime.NewWSDialer()
			dialer.HandshakeTimeout = cfg.Realtime.HandshakeTimeout

			s := session.New(session.Deps{
				Config: session.Config{
					NotificationsURL:     notisURL,
					PriceURL:             priceURL,
					ReconnectDelay:       cfg.Realtime.ReconnectDelay,
					MaxReconnectAttempts: cfg.Realtime.MaxReconnectAttempts,
					ToastTTL:             cfg.Realtime.ToastTTL,
				},
				Dialer: dialer,
				Logger: logger,
				Navigator: notification.NavigatorFunc(func(_ context.Context, path string) error {
					fmt.Printf("-> navigate to %s\n", path)
					return nil
				}),
				Bell:     bell,
				OnChange: printQueue,
			})
			defer s.Close()

			if !c.Bool("no-price") {
				unsubscribe := s.Prices().Subscribe(func(_ context.Context, p goldprice.Price) {
					fmt.Println(formatPrice(p))
				})
				defer unsubscribe()
			}

			s.Start(c.String("subscriber"))
			if _, err := s.Notify(ctx, notification.KindInfo, "Connected", "Listening as "+c.String("subscriber")); err != nil {
				return err
			}

			<-ctx.Done()
			return nil
		},
	}
}

func printQueue(items []notification.Notification) {
	if len(items) == 0 {
		fmt.Println("(no notifications)")
		return
	}
	var b strings.Builder
	for _, n := range items {
		fmt.Fprintf(&b, "[%s] %-7s %s: %s", n.Timestamp.Format("15:04:05"), n.Kind, n.Title, n.Message)
		if n.HasAction() {
			fmt.Fprintf(&b, " (%s -> %s)", n.Action.Label, n.Action.Target)
		}
		b.WriteByte('\n')
	}
	fmt.Print(b.String())
}

func formatPrice(p goldprice.Price) string {
	arrow := "="
	switch p.Direction() {
	case 1:
		arrow = "▲"
	case -1:
		arrow = "▼"
	}
	return fmt.Sprintf("gold %s %.2f USD/g (%.2f USD/oz, 24h %+.2f%%)", arrow, p.Price, p.PricePerOunce, p.Change24h)
}
