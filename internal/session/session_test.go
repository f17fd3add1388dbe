package session

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uob-realtime/internal/goldprice"
	"uob-realtime/internal/notification"
	"uob-realtime/internal/realtime"
)

const (
	notisURL = "ws://gateway.test/ws/notifications"
	priceURL = "ws://gateway.test/ws/gold-price"
)

type pipeConn struct {
	in        chan realtime.Envelope
	closed    chan struct{}
	closeOnce sync.Once

	mu      sync.Mutex
	written []realtime.Envelope
}

func (c *pipeConn) ReadEnvelope() (realtime.Envelope, error) {
	select {
	case env := <-c.in:
		return env, nil
	case <-c.closed:
		return realtime.Envelope{}, io.EOF
	}
}

func (c *pipeConn) WriteEnvelope(env realtime.Envelope) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.written = append(c.written, env)
	return nil
}

func (c *pipeConn) Close() error {
	c.closeOnce.Do(func() { close(c.closed) })
	return nil
}

func (c *pipeConn) writes() []realtime.Envelope {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]realtime.Envelope(nil), c.written...)
}

func (c *pipeConn) push(t *testing.T, event string, data any) {
	t.Helper()
	env, err := realtime.NewEnvelope(event, data)
	require.NoError(t, err)
	c.in <- env
}

// urlDialer keeps the latest conn per URL.
type urlDialer struct {
	mu    sync.Mutex
	conns map[string]*pipeConn
	dials map[string]int
}

func newURLDialer() *urlDialer {
	return &urlDialer{conns: map[string]*pipeConn{}, dials: map[string]int{}}
}

func (d *urlDialer) Dial(ctx context.Context, url string) (realtime.Conn, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if url == "" {
		return nil, errors.New("no url")
	}
	c := &pipeConn{in: make(chan realtime.Envelope, 8), closed: make(chan struct{})}
	d.conns[url] = c
	d.dials[url]++
	return c, nil
}

func (d *urlDialer) conn(url string) *pipeConn {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.conns[url]
}

func (d *urlDialer) dialCount(url string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dials[url]
}

type recorder struct {
	mu    sync.Mutex
	paths []string
}

func (r *recorder) Navigate(ctx context.Context, path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths = append(r.paths, path)
	return nil
}

func newService(t *testing.T, ttl time.Duration) (*Service, *urlDialer, *recorder) {
	t.Helper()
	d := newURLDialer()
	nav := &recorder{}
	s := New(Deps{
		Config: Config{
			NotificationsURL: notisURL,
			PriceURL:         priceURL,
			ReconnectDelay:   10 * time.Millisecond,
			ToastTTL:         ttl,
		},
		Dialer:    d,
		Navigator: nav,
	})
	t.Cleanup(s.Logout)
	return s, d, nav
}

func waitConnected(t *testing.T, m *realtime.Manager) {
	t.Helper()
	require.Eventually(t, func() bool {
		return m.State() == realtime.StateConnected
	}, time.Second, 5*time.Millisecond)
}

func TestStartAuthenticatesNotificationChannelOnly(t *testing.T) {
	s, d, _ := newService(t, time.Hour)
	s.Start("user-42")
	waitConnected(t, s.Notifications())
	waitConnected(t, s.GoldPrice())

	w := d.conn(notisURL).writes()
	require.Len(t, w, 1)
	assert.Equal(t, realtime.EventAuthenticate, w[0].Event)
	assert.JSONEq(t, `"user-42"`, string(w[0].Data))
	assert.Empty(t, d.conn(priceURL).writes())

	s.Start("user-42")
	assert.Equal(t, 1, d.dialCount(notisURL))
}

func TestRemoteAndLocalShareOneQueue(t *testing.T) {
	s, d, nav := newService(t, time.Hour)
	s.Start("user-42")
	waitConnected(t, s.Notifications())

	d.conn(notisURL).push(t, notification.EventPersonal, notification.Payload{
		Type:    "success",
		Title:   "Withdrawal Approved",
		Message: "Your BTC withdrawal has been approved.",
		Action:  &notification.Action{Label: "View", Target: "/wallet"},
	})
	require.Eventually(t, func() bool { return s.Queue().Len() == 1 }, time.Second, 5*time.Millisecond)

	local, err := s.Notify(context.Background(), notification.KindInfo, "Withdrawal submitted", "We are processing your request.")
	require.NoError(t, err)
	assert.Equal(t, notification.OriginLocal, local.Origin)

	items := s.Queue().Items()
	require.Len(t, items, 2)
	assert.Equal(t, notification.OriginLocal, items[0].Origin)
	assert.Equal(t, notification.OriginRemote, items[1].Origin)
	assert.Equal(t, "Withdrawal Approved", items[1].Title)

	require.NoError(t, s.Queue().OnAction(context.Background(), items[1].ID))
	assert.Equal(t, []string{"/wallet"}, nav.paths)
	assert.Equal(t, 1, s.Queue().Len())
}

func TestBothOriginsExpire(t *testing.T) {
	s, d, _ := newService(t, 30*time.Millisecond)
	s.Start("user-42")
	waitConnected(t, s.Notifications())

	d.conn(notisURL).push(t, notification.EventBroadcast, notification.Payload{Title: "Maintenance", Message: "Tonight 22:00"})
	_, err := s.Notify(context.Background(), notification.KindWarning, "Low balance", "Top up to continue.")
	require.NoError(t, err)

	require.Eventually(t, func() bool { return s.Queue().Len() == 0 }, time.Second, 5*time.Millisecond)
	assert.False(t, s.Queue().Visible())
}

func TestNotifyRejectsInvalidInput(t *testing.T) {
	s, _, _ := newService(t, time.Hour)
	_, err := s.Notify(context.Background(), notification.KindInfo, "", "body")
	assert.ErrorIs(t, err, notification.ErrMissingTitle)
	assert.Equal(t, 0, s.Queue().Len())
}

func TestPricesFlowIntoFeed(t *testing.T) {
	s, d, _ := newService(t, time.Hour)
	s.Start("user-42")
	waitConnected(t, s.GoldPrice())

	d.conn(priceURL).push(t, "gold_price", map[string]any{"price": 75.42, "previousPrice": 75.1})
	require.Eventually(t, func() bool {
		_, ok := s.Prices().Last()
		return ok
	}, time.Second, 5*time.Millisecond)

	var got float64
	s.Prices().Subscribe(func(ctx context.Context, p goldprice.Price) { got = p.Price })
	assert.Equal(t, 75.42, got)
}

func TestLogoutTearsDown(t *testing.T) {
	s, d, _ := newService(t, time.Hour)
	s.Start("user-42")
	waitConnected(t, s.Notifications())
	waitConnected(t, s.GoldPrice())
	_, err := s.Notify(context.Background(), notification.KindInfo, "Hello", "World")
	require.NoError(t, err)

	s.Logout()
	s.Logout()

	assert.Equal(t, 0, s.Queue().Len())
	assert.Equal(t, realtime.StateDisconnected, s.Notifications().State())
	assert.Equal(t, realtime.StateDisconnected, s.GoldPrice().State())
	select {
	case <-d.conn(notisURL).closed:
	default:
		t.Fatal("notification connection left open")
	}
}

func TestChimeRingsForBothOrigins(t *testing.T) {
	var bell bytes.Buffer
	var mu sync.Mutex
	s := New(Deps{
		Config: Config{NotificationsURL: notisURL, PriceURL: priceURL, ToastTTL: time.Hour},
		Dialer: newURLDialer(),
		Bell:   &lockedWriter{mu: &mu, w: &bell},
	})
	defer s.Logout()

	_, err := s.Notify(context.Background(), notification.KindSuccess, "Saved", "Profile updated")
	require.NoError(t, err)
	s.Remote().Dispatch(context.Background(), mustRemote(t))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "\a\a", bell.String())
}

type lockedWriter struct {
	mu *sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}

func mustRemote(t *testing.T) notification.Notification {
	t.Helper()
	n, err := notification.New(notification.OriginRemote, notification.KindInfo, "Hi", "There")
	require.NoError(t, err)
	return n
}
