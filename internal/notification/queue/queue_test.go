package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uob-realtime/internal/notification"
)

type fakeTimer struct {
	d       time.Duration
	f       func()
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	was := !t.stopped
	t.stopped = true
	return was
}

type fakeClock struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{d: d, f: f}
	c.timers = append(c.timers, t)
	return t
}

// fire runs a timer callback even if it was stopped, mimicking a timer
// that already fired when Stop was called.
func (c *fakeClock) fire(i int) {
	c.mu.Lock()
	t := c.timers[i]
	c.mu.Unlock()
	t.f()
}

func mustNotification(t *testing.T, title string, opts ...notification.Option) notification.Notification {
	t.Helper()
	n, err := notification.New(notification.OriginRemote, notification.KindSuccess, title, "body", opts...)
	require.NoError(t, err)
	return n
}

func TestAddIsImmediateAndNewestFirst(t *testing.T) {
	clock := &fakeClock{}
	q := New(Options{AfterFunc: clock.AfterFunc})

	a := q.Add(mustNotification(t, "first"))
	b := q.Add(mustNotification(t, "second"))

	items := q.Items()
	require.Len(t, items, 2)
	assert.Equal(t, b.ID, items[0].ID)
	assert.Equal(t, a.ID, items[1].ID)
	assert.True(t, q.Visible())

	require.Len(t, clock.timers, 2)
	assert.Equal(t, DefaultTTL, clock.timers[0].d)
	assert.Equal(t, 3000*time.Millisecond, DefaultTTL)
}

func TestExpiryRemovesEntry(t *testing.T) {
	clock := &fakeClock{}
	q := New(Options{AfterFunc: clock.AfterFunc})

	q.Add(mustNotification(t, "Withdrawal Approved"))
	clock.fire(0)

	assert.Equal(t, 0, q.Len())
	assert.False(t, q.Visible())
}

func TestRemoveCancelsTimerAndLateTimerIsHarmless(t *testing.T) {
	clock := &fakeClock{}
	q := New(Options{AfterFunc: clock.AfterFunc})

	first := q.Add(mustNotification(t, "dismiss me", notification.WithID("n-1")))
	q.Remove(first.ID)
	assert.True(t, clock.timers[0].stopped)
	assert.Equal(t, 0, q.Len())

	// Same id shown again, then the stale timer of the first entry fires.
	second := q.Add(mustNotification(t, "again", notification.WithID("n-1")))
	assert.Equal(t, "n-1", second.ID)
	clock.fire(0)

	items := q.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "again", items[0].Title)

	q.Remove("n-1")
	q.Remove("n-1")
	assert.Equal(t, 0, q.Len())
}

func TestAddReplacesCollidingID(t *testing.T) {
	q := New(Options{AfterFunc: (&fakeClock{}).AfterFunc})

	a := q.Add(mustNotification(t, "a", notification.WithID("dup")))
	b := q.Add(mustNotification(t, "b", notification.WithID("dup")))
	assert.Equal(t, "dup", a.ID)
	assert.NotEqual(t, "dup", b.ID)

	empty := mustNotification(t, "c")
	empty.ID = ""
	c := q.Add(empty)
	assert.NotEmpty(t, c.ID)
}

type recordingNavigator struct {
	paths []string
	err   error
}

func (r *recordingNavigator) Navigate(ctx context.Context, path string) error {
	r.paths = append(r.paths, path)
	return r.err
}

func TestOnAction(t *testing.T) {
	nav := &recordingNavigator{}
	q := New(Options{Navigator: nav, AfterFunc: (&fakeClock{}).AfterFunc})

	withAction := q.Add(mustNotification(t, "approved", notification.WithAction("View", "/withdrawals/w-9")))
	plain := q.Add(mustNotification(t, "plain"))

	require.NoError(t, q.OnAction(context.Background(), withAction.ID))
	assert.Equal(t, []string{"/withdrawals/w-9"}, nav.paths)

	require.NoError(t, q.OnAction(context.Background(), plain.ID))
	assert.Len(t, nav.paths, 1)
	assert.Equal(t, 0, q.Len())

	assert.ErrorIs(t, q.OnAction(context.Background(), "missing"), ErrNotFound)
}

func TestOnActionRemovesEvenWhenNavigationFails(t *testing.T) {
	nav := &recordingNavigator{err: errors.New("no route")}
	q := New(Options{Navigator: nav, AfterFunc: (&fakeClock{}).AfterFunc})

	n := q.Add(mustNotification(t, "x", notification.WithAction("Go", "/x")))
	require.NoError(t, q.OnAction(context.Background(), n.ID))
	assert.Equal(t, 0, q.Len())
}

func TestChangeHookAndClear(t *testing.T) {
	clock := &fakeClock{}
	var sizes []int
	q := New(Options{
		AfterFunc: clock.AfterFunc,
		OnChange:  func(items []notification.Notification) { sizes = append(sizes, len(items)) },
	})

	q.Add(mustNotification(t, "a"))
	q.Add(mustNotification(t, "b"))
	q.Clear()
	q.Clear()

	assert.Equal(t, []int{1, 2, 0}, sizes)
	assert.True(t, clock.timers[0].stopped)
	assert.True(t, clock.timers[1].stopped)
	assert.False(t, q.Visible())
}

func TestRealTimerExpiry(t *testing.T) {
	q := New(Options{TTL: 30 * time.Millisecond})
	q.Add(mustNotification(t, "short lived"))
	assert.Equal(t, 1, q.Len())

	assert.Eventually(t, func() bool { return q.Len() == 0 }, time.Second, 5*time.Millisecond)
}

func TestSlowHookEndsOnLatestState(t *testing.T) {
	clock := &fakeClock{}
	entered := make(chan struct{})
	release := make(chan struct{})

	var mu sync.Mutex
	var last []notification.Notification
	q := New(Options{
		AfterFunc: clock.AfterFunc,
		OnChange: func(items []notification.Notification) {
			if len(items) == 0 {
				close(entered)
				<-release
			}
			mu.Lock()
			last = items
			mu.Unlock()
		},
	})

	q.Add(mustNotification(t, "a"))

	// Expiry renders the empty queue slowly; an Add lands meanwhile.
	go clock.fire(0)
	<-entered
	nb := mustNotification(t, "b")
	added := make(chan notification.Notification, 1)
	go func() { added <- q.Add(nb) }()
	require.Eventually(t, func() bool { return q.Len() == 1 }, time.Second, time.Millisecond)
	close(release)

	b := <-added
	mu.Lock()
	defer mu.Unlock()
	require.Len(t, last, 1)
	assert.Equal(t, b.ID, last[0].ID)
	assert.Equal(t, q.Items(), last)
}
