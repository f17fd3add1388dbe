// Package queue holds the notifications currently shown to the user and
// enforces their lifetime.
//
// Every entry moves created -> visible -> {expired | dismissed | action-taken}
// -> removed, and never comes back once removed.
package queue

import (
	"context"
	"errors"
	"sync"
	"time"

	"uob-realtime/internal/notification"
	"uob-realtime/pkg/log"
)

// DefaultTTL is how long a notification stays visible unless dismissed.
const DefaultTTL = 3000 * time.Millisecond

// ErrNotFound is returned by OnAction for an id that is not active.
var ErrNotFound = errors.New("queue: notification not found")

// Timer is the subset of *time.Timer the queue needs.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f after d. time.AfterFunc in production.
type AfterFunc func(d time.Duration, f func()) Timer

// ChangeHook is called with a newest-first snapshot after every change.
type ChangeHook func(items []notification.Notification)

// Options configures a Queue.
type Options struct {
	TTL       time.Duration
	Navigator notification.Navigator
	Logger    log.Logger
	OnChange  ChangeHook
	AfterFunc AfterFunc
}

type entry struct {
	n     notification.Notification
	timer Timer
}

// Queue is safe for concurrent use. Hooks and navigation run outside the
// lock. The change hook is called from one goroutine at a time, always
// with a snapshot newer than the previous one, and must not modify the
// queue itself.
type Queue struct {
	ttl       time.Duration
	navigator notification.Navigator
	logger    log.Logger
	onChange  ChangeHook
	afterFunc AfterFunc

	mu      sync.Mutex
	items   []*entry
	visible bool
	seq     uint64

	// Serializes hook calls. delivered is the seq of the last snapshot
	// handed to the hook; older snapshots are dropped.
	notifyMu  sync.Mutex
	delivered uint64
}

// New creates an empty queue.
func New(opts Options) *Queue {
	q := &Queue{
		ttl:       opts.TTL,
		navigator: opts.Navigator,
		logger:    opts.Logger,
		onChange:  opts.OnChange,
		afterFunc: opts.AfterFunc,
	}
	if q.ttl <= 0 {
		q.ttl = DefaultTTL
	}
	if q.logger == nil {
		q.logger = log.NewNop()
	}
	if q.afterFunc == nil {
		q.afterFunc = func(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }
	}
	return q
}

// Receive lets the queue be subscribed to a bus.Registry.
func (q *Queue) Receive(ctx context.Context, n notification.Notification) error {
	q.Add(n)
	return nil
}

// Add shows n and arms its expiry timer. A missing id, or one that collides
// with an active entry, is replaced with a fresh id. The stored notification
// is returned.
func (q *Queue) Add(n notification.Notification) notification.Notification {
	q.mu.Lock()
	if n.ID == "" || q.indexLocked(n.ID) >= 0 {
		n.ID = notification.NewID()
	}
	e := &entry{n: n}
	q.items = append([]*entry{e}, q.items...)
	q.visible = true
	e.timer = q.afterFunc(q.ttl, func() { q.expire(e) })
	seq, snapshot := q.snapshotLocked()
	q.mu.Unlock()

	q.notify(seq, snapshot)
	return n
}

// Remove dismisses the notification with id. Unknown ids are ignored.
func (q *Queue) Remove(id string) {
	q.mu.Lock()
	i := q.indexLocked(id)
	if i < 0 {
		q.mu.Unlock()
		return
	}
	e := q.items[i]
	if e.timer != nil {
		e.timer.Stop()
	}
	q.dropLocked(i)
	seq, snapshot := q.snapshotLocked()
	q.mu.Unlock()

	q.notify(seq, snapshot)
}

// OnAction navigates to the notification's action target, if any, then
// removes it.
func (q *Queue) OnAction(ctx context.Context, id string) error {
	q.mu.Lock()
	i := q.indexLocked(id)
	if i < 0 {
		q.mu.Unlock()
		return ErrNotFound
	}
	n := q.items[i].n
	q.mu.Unlock()

	if n.HasAction() && q.navigator != nil {
		if err := q.navigator.Navigate(ctx, n.Action.Target); err != nil {
			q.logger.Warnf(ctx, "queue.OnAction: navigate to %s failed: %v", n.Action.Target, err)
		}
	}
	q.Remove(id)
	return nil
}

// Items returns the active notifications, newest first.
func (q *Queue) Items() []notification.Notification {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]notification.Notification, len(q.items))
	for i, e := range q.items {
		out[i] = e.n
	}
	return out
}

// Len returns the number of active notifications.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Visible reports whether the toast area should be rendered.
func (q *Queue) Visible() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.visible
}

// Clear drops every notification and stops all timers.
func (q *Queue) Clear() {
	q.mu.Lock()
	if len(q.items) == 0 {
		q.mu.Unlock()
		return
	}
	for _, e := range q.items {
		if e.timer != nil {
			e.timer.Stop()
		}
	}
	q.items = nil
	q.visible = false
	seq, snapshot := q.snapshotLocked()
	q.mu.Unlock()

	q.notify(seq, snapshot)
}

// expire removes e only if it is still active. Matching on the entry rather
// than the id keeps a late timer from removing a newer entry.
func (q *Queue) expire(e *entry) {
	q.mu.Lock()
	idx := -1
	for i, x := range q.items {
		if x == e {
			idx = i
			break
		}
	}
	if idx < 0 {
		q.mu.Unlock()
		return
	}
	q.dropLocked(idx)
	seq, snapshot := q.snapshotLocked()
	q.mu.Unlock()

	q.notify(seq, snapshot)
}

func (q *Queue) indexLocked(id string) int {
	for i, e := range q.items {
		if e.n.ID == id {
			return i
		}
	}
	return -1
}

func (q *Queue) dropLocked(i int) {
	q.items = append(q.items[:i], q.items[i+1:]...)
	if len(q.items) == 0 {
		q.visible = false
	}
}

// snapshotLocked copies the active entries and stamps the copy with the
// next change number.
func (q *Queue) snapshotLocked() (uint64, []notification.Notification) {
	q.seq++
	out := make([]notification.Notification, len(q.items))
	for i, e := range q.items {
		out[i] = e.n
	}
	return q.seq, out
}

func (q *Queue) notify(seq uint64, items []notification.Notification) {
	if q.onChange == nil {
		return
	}
	q.notifyMu.Lock()
	defer q.notifyMu.Unlock()
	if seq <= q.delivered {
		return
	}
	q.delivered = seq
	defer func() {
		if rec := recover(); rec != nil {
			q.logger.Errorf(context.Background(), "queue: change hook panicked: %v", rec)
		}
	}()
	q.onChange(items)
}
