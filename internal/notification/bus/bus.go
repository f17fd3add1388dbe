// Package bus is the listener registry that decouples event producers (the
// socket channel, in-process callers) from consumers (the presentation
// queue, side effects).
//
// Dispatch is synchronous and runs in the caller's goroutine. A listener
// that returns an error or panics is logged and skipped; the others still
// receive the event.
package bus

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"time"

	"uob-realtime/pkg/log"
)

// Listener receives dispatched values.
type Listener[T any] interface {
	Receive(ctx context.Context, v T) error
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc[T any] func(ctx context.Context, v T) error

func (f ListenerFunc[T]) Receive(ctx context.Context, v T) error { return f(ctx, v) }

type entry[T any] struct {
	id           uint64
	listener     Listener[T]
	registeredAt time.Time
}

// Registry holds the listeners of one producer.
type Registry[T any] struct {
	name   string
	logger log.Logger

	mu      sync.RWMutex
	seq     uint64
	entries []*entry[T]
}

// New creates an empty registry. name appears in log lines.
func New[T any](name string, logger log.Logger) *Registry[T] {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Registry[T]{name: name, logger: logger}
}

// Subscribe registers l and returns a handle that removes exactly this
// registration. Calling the handle more than once is harmless.
func (r *Registry[T]) Subscribe(l Listener[T]) (unsubscribe func()) {
	r.mu.Lock()
	r.seq++
	e := &entry[T]{id: r.seq, listener: l, registeredAt: time.Now()}
	r.entries = append(r.entries, e)
	r.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { r.remove(func(x *entry[T]) bool { return x.id == e.id }) })
	}
}

// SubscribeFunc is Subscribe for a plain function.
func (r *Registry[T]) SubscribeFunc(fn func(ctx context.Context, v T) error) (unsubscribe func()) {
	return r.Subscribe(ListenerFunc[T](fn))
}

// Unsubscribe removes every registration of l, compared by reference.
// Listeners whose dynamic type is not comparable (plain funcs) can only be
// removed through the handle returned by Subscribe.
func (r *Registry[T]) Unsubscribe(l Listener[T]) {
	if l == nil || !reflect.TypeOf(l).Comparable() {
		return
	}
	r.remove(func(x *entry[T]) bool {
		return reflect.TypeOf(x.listener) == reflect.TypeOf(l) && x.listener == l
	})
}

func (r *Registry[T]) remove(match func(*entry[T]) bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.entries[:0]
	for _, e := range r.entries {
		if !match(e) {
			kept = append(kept, e)
		}
	}
	for i := len(kept); i < len(r.entries); i++ {
		r.entries[i] = nil
	}
	r.entries = kept
}

// Len returns the number of registered listeners.
func (r *Registry[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Dispatch delivers v to every listener registered when the call starts.
func (r *Registry[T]) Dispatch(ctx context.Context, v T) {
	r.mu.RLock()
	snapshot := make([]*entry[T], len(r.entries))
	copy(snapshot, r.entries)
	r.mu.RUnlock()

	for _, e := range snapshot {
		if err := r.deliver(ctx, e, v); err != nil {
			r.logger.Warnf(ctx, "bus.%s.Dispatch: listener #%d failed: %v", r.name, e.id, err)
		}
	}
}

func (r *Registry[T]) deliver(ctx context.Context, e *entry[T], v T) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
		}
	}()
	return e.listener.Receive(ctx, v)
}
