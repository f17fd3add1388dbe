package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"uob-realtime/internal/backend"
	"uob-realtime/internal/notification"
)

// apiCommand performs one authenticated REST call against UOB_API_URL.
func apiCommand() *cli.Command {
	return &cli.Command{
		Name:      "api",
		Usage:     "Call the backend REST API with the session token",
		ArgsUsage: "METHOD PATH [JSON-BODY]",
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.NArg() < 2 {
				return fmt.Errorf("usage: notifyctl api METHOD PATH [JSON-BODY]")
			}
			cfg, logger, err := setup()
			if err != nil {
				return err
			}

			tokens := backend.NewMemoryTokenStore(cfg.Token)
			client, err := backend.New(cfg.APIURL, tokens, logger,
				backend.WithNavigator(notification.NavigatorFunc(func(_ context.Context, path string) error {
					fmt.Fprintf(os.Stderr, "session expired, sign in again at %s\n", path)
					return nil
				})),
			)
			if err != nil {
				return err
			}

			var in any
			if body := c.Args().Get(2); body != "" {
				in = json.RawMessage(body)
			}
			var out json.RawMessage
			method := strings.ToUpper(c.Args().Get(0))
			if method == "" {
				method = http.MethodGet
			}
			if err := client.Do(ctx, method, c.Args().Get(1), in, &out); err != nil {
				return err
			}
			if len(out) > 0 {
				fmt.Println(string(out))
			}
			return nil
		},
	}
}
