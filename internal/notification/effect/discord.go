package effect

import (
	"context"
	"time"

	"uob-realtime/internal/notification"
	"uob-realtime/pkg/discord"
	"uob-realtime/pkg/log"
)

// DiscordMirror copies notifications to a Discord channel. Sends happen in
// the background; failures are logged only.
type DiscordMirror struct {
	client  discord.IDiscord
	logger  log.Logger
	timeout time.Duration
	source  string
}

// NewDiscordMirror mirrors into client. source is shown in the embed footer.
func NewDiscordMirror(client discord.IDiscord, logger log.Logger, source string) *DiscordMirror {
	if logger == nil {
		logger = log.NewNop()
	}
	return &DiscordMirror{client: client, logger: logger, timeout: 15 * time.Second, source: source}
}

func (m *DiscordMirror) Receive(ctx context.Context, n notification.Notification) error {
	if m.client == nil {
		return nil
	}
	opts := embedFor(n, m.source)
	go func() {
		sendCtx, cancel := context.WithTimeout(context.Background(), m.timeout)
		defer cancel()
		if err := m.client.SendEmbed(sendCtx, opts); err != nil {
			m.logger.Warnf(ctx, "effect.DiscordMirror: notification %s not mirrored: %v", n.ID, err)
		}
	}()
	return nil
}

func embedFor(n notification.Notification, source string) discord.MessageOptions {
	opts := discord.MessageOptions{
		Type:        messageType(n.Kind),
		Title:       n.Title,
		Description: n.Message,
		Timestamp:   n.Timestamp,
	}
	if source != "" {
		opts.Footer = &discord.EmbedFooter{Text: source}
	}
	if n.HasAction() {
		opts.Fields = append(opts.Fields, discord.EmbedField{Name: n.Action.Label, Value: n.Action.Target})
	}
	if len(n.RawPayload) > 0 {
		opts.Fields = append(opts.Fields, discord.EmbedField{Name: "data", Value: "```json\n" + string(n.RawPayload) + "\n```"})
	}
	return opts
}

func messageType(k notification.Kind) discord.MessageType {
	switch k {
	case notification.KindSuccess:
		return discord.MessageTypeSuccess
	case notification.KindError:
		return discord.MessageTypeError
	case notification.KindWarning:
		return discord.MessageTypeWarning
	default:
		return discord.MessageTypeInfo
	}
}
