package discord

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"uob-realtime/pkg/log"
)

var (
	errWebhookRequired = errors.New("discord: webhook id and token are required")
	errInvalidURL      = errors.New("discord: webhook URL must be .../webhooks/{id}/{token}")
)

// IDiscord sends messages to a single Discord webhook.
type IDiscord interface {
	SendMessage(ctx context.Context, content string) error
	SendEmbed(ctx context.Context, options MessageOptions) error
	Close() error
}

// ParseWebhookURL splits https://discord.com/api/webhooks/{id}/{token}.
func ParseWebhookURL(webhookURL string) (id, token string, err error) {
	webhookURL = strings.TrimSpace(webhookURL)
	idx := strings.Index(webhookURL, "/webhooks/")
	if idx < 0 {
		return "", "", errInvalidURL
	}
	parts := strings.SplitN(webhookURL[idx+len("/webhooks/"):], "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", errInvalidURL
	}
	return parts[0], parts[1], nil
}

// New creates a webhook client from an id/token pair.
func New(l log.Logger, id, token string, opts ...func(*Config)) (IDiscord, error) {
	if id == "" || token == "" {
		return nil, errWebhookRequired
	}
	cfg := DefaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	if l == nil {
		l = log.NewNop()
	}
	return &discordImpl{
		l:       l,
		webhook: webhookInfo{id: id, token: token},
		config:  cfg,
		client:  newHTTPClient(cfg.Timeout),
	}, nil
}

// NewFromURL creates a webhook client from a full webhook URL.
func NewFromURL(l log.Logger, webhookURL string, opts ...func(*Config)) (IDiscord, error) {
	id, token, err := ParseWebhookURL(webhookURL)
	if err != nil {
		return nil, fmt.Errorf("discord.NewFromURL: %w", err)
	}
	return New(l, id, token, opts...)
}
