package effect

import (
	"context"
	"io"
	"sync"

	"uob-realtime/internal/notification"
)

const bell = "\a"

// Chime plays a short audible cue for every notification by ringing the
// terminal bell. Playback is cosmetic: write errors are swallowed.
type Chime struct {
	mu sync.Mutex
	w  io.Writer
}

// NewChime rings the bell on w. A nil writer makes the chime silent.
func NewChime(w io.Writer) *Chime {
	return &Chime{w: w}
}

func (c *Chime) Receive(ctx context.Context, n notification.Notification) error {
	if c == nil || c.w == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	_, _ = io.WriteString(c.w, bell)
	return nil
}
