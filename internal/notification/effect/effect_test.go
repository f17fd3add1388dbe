package effect

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uob-realtime/internal/notification"
	"uob-realtime/pkg/discord"
)

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) { return 0, errors.New("no audio device") }

func TestChime(t *testing.T) {
	var buf bytes.Buffer
	n, err := notification.New(notification.OriginLocal, notification.KindInfo, "t", "m")
	require.NoError(t, err)

	require.NoError(t, NewChime(&buf).Receive(context.Background(), n))
	assert.Equal(t, "\a", buf.String())

	assert.NoError(t, NewChime(failingWriter{}).Receive(context.Background(), n))
	assert.NoError(t, NewChime(nil).Receive(context.Background(), n))
}

type fakeDiscord struct {
	mu   sync.Mutex
	sent []discord.MessageOptions
	err  error
}

func (f *fakeDiscord) SendMessage(ctx context.Context, content string) error { return nil }
func (f *fakeDiscord) Close() error                                          { return nil }
func (f *fakeDiscord) SendEmbed(ctx context.Context, options discord.MessageOptions) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, options)
	return f.err
}

func (f *fakeDiscord) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func TestDiscordMirror(t *testing.T) {
	fd := &fakeDiscord{err: errors.New("rate limited")}
	m := NewDiscordMirror(fd, nil, "notifyd")

	n, err := notification.New(notification.OriginRemote, notification.KindError, "Withdrawal flagged", "Manual review required",
		notification.WithAction("Review", "/admin/withdrawals/w-3"),
		notification.WithPayload(json.RawMessage(`{"id":"w-3"}`)))
	require.NoError(t, err)

	// Errors from Discord never reach the dispatcher.
	require.NoError(t, m.Receive(context.Background(), n))
	require.Eventually(t, func() bool { return fd.count() == 1 }, time.Second, 5*time.Millisecond)

	fd.mu.Lock()
	got := fd.sent[0]
	fd.mu.Unlock()
	assert.Equal(t, discord.MessageTypeError, got.Type)
	assert.Equal(t, "Withdrawal flagged", got.Title)
	assert.Equal(t, "notifyd", got.Footer.Text)
	require.Len(t, got.Fields, 2)
	assert.Equal(t, "/admin/withdrawals/w-3", got.Fields[0].Value)
}
