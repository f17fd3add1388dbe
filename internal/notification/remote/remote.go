// Package remote turns server-pushed socket events into remote-origin
// notifications and dispatches them.
package remote

import (
	"context"
	"encoding/json"
	"time"

	"uob-realtime/internal/notification"
	"uob-realtime/pkg/log"
)

// Router is the part of realtime.Manager that Bind needs.
type Router interface {
	Handle(event string, fn func(ctx context.Context, data json.RawMessage))
}

// Dispatcher receives normalised notifications, typically a
// bus.Registry[notification.Notification].
type Dispatcher interface {
	Dispatch(ctx context.Context, n notification.Notification)
}

// Bind routes every notification-carrying event (personal, broadcast and
// admin-targeted) through the same decode-and-dispatch path.
func Bind(r Router, d Dispatcher, logger log.Logger, now func() time.Time) {
	if logger == nil {
		logger = log.NewNop()
	}
	if now == nil {
		now = time.Now
	}
	for _, event := range notification.Events {
		event := event
		r.Handle(event, func(ctx context.Context, data json.RawMessage) {
			n, err := notification.DecodePayload(data, now())
			if err != nil {
				logger.Warnf(ctx, "remote.Bind: dropping %s event: %v", event, err)
				return
			}
			logger.Debugf(ctx, "remote.Bind: %s %q", event, n.Title)
			d.Dispatch(ctx, n)
		})
	}
}
