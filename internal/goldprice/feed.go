// Package goldprice holds the latest gold price and fans new ticks out to
// subscribers.
package goldprice

import (
	"context"
	"encoding/json"
	"sync"

	"uob-realtime/internal/notification/bus"
	"uob-realtime/pkg/log"
)

// Feed caches the last price it saw. A subscriber that joins after a push
// receives the cached value first, so it never has to wait for the next
// tick to render something.
type Feed struct {
	reg    *bus.Registry[Price]
	logger log.Logger

	// Held across cache+dispatch and subscribe+replay so a subscriber sees
	// each tick once, in publish order.
	deliverMu sync.Mutex

	mu   sync.RWMutex
	last *Price
}

// NewFeed creates an empty feed.
func NewFeed(logger log.Logger) *Feed {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Feed{reg: bus.New[Price]("goldprice", logger), logger: logger}
}

// Subscribe registers fn. When a price is cached, fn is called with it
// before Subscribe returns. fn must not call Subscribe or Publish.
func (f *Feed) Subscribe(fn func(ctx context.Context, p Price)) (unsubscribe func()) {
	f.deliverMu.Lock()
	defer f.deliverMu.Unlock()

	unsubscribe = f.reg.SubscribeFunc(func(ctx context.Context, p Price) error {
		fn(ctx, p)
		return nil
	})
	if p, ok := f.Last(); ok {
		fn(context.Background(), p)
	}
	return unsubscribe
}

// Publish caches p and delivers it to every subscriber.
func (f *Feed) Publish(ctx context.Context, p Price) {
	f.deliverMu.Lock()
	defer f.deliverMu.Unlock()

	f.mu.Lock()
	f.last = &p
	f.mu.Unlock()
	f.reg.Dispatch(ctx, p)
}

// Last returns the cached price, if any.
func (f *Feed) Last() (Price, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.last == nil {
		return Price{}, false
	}
	return *f.last, true
}

// Len reports the number of subscribers.
func (f *Feed) Len() int { return f.reg.Len() }

// Router is the part of realtime.Manager that Bind needs.
type Router interface {
	Handle(event string, fn func(ctx context.Context, data json.RawMessage))
}

// Bind routes the gold_price event into f.
func Bind(r Router, f *Feed) {
	r.Handle(EventPrice, func(ctx context.Context, data json.RawMessage) {
		var p Price
		if err := json.Unmarshal(data, &p); err != nil {
			f.logger.Warnf(ctx, "goldprice.Bind: malformed price: %v", err)
			return
		}
		f.Publish(ctx, p)
	})
}
