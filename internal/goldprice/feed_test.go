package goldprice

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapRouter map[string]func(ctx context.Context, data json.RawMessage)

func (r mapRouter) Handle(event string, fn func(ctx context.Context, data json.RawMessage)) {
	r[event] = fn
}

func TestSubscribeBeforeAnyPush(t *testing.T) {
	f := NewFeed(nil)
	var got []Price
	f.Subscribe(func(ctx context.Context, p Price) { got = append(got, p) })
	assert.Empty(t, got)

	f.Publish(context.Background(), Price{Price: 75.1})
	require.Len(t, got, 1)
	assert.Equal(t, 75.1, got[0].Price)
}

func TestLateSubscriberGetsCachedPriceFirst(t *testing.T) {
	f := NewFeed(nil)
	f.Publish(context.Background(), Price{Price: 75.1})

	var got []float64
	f.Subscribe(func(ctx context.Context, p Price) { got = append(got, p.Price) })
	require.Equal(t, []float64{75.1}, got)

	f.Publish(context.Background(), Price{Price: 75.4, PreviousPrice: 75.1})
	assert.Equal(t, []float64{75.1, 75.4}, got)
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	f := NewFeed(nil)
	var n int
	unsub := f.Subscribe(func(ctx context.Context, p Price) { n++ })
	f.Publish(context.Background(), Price{Price: 1})
	unsub()
	unsub()
	f.Publish(context.Background(), Price{Price: 2})

	assert.Equal(t, 1, n)
	assert.Equal(t, 0, f.Len())
	last, ok := f.Last()
	require.True(t, ok)
	assert.Equal(t, 2.0, last.Price)
}

func TestBindDecodesServerEvent(t *testing.T) {
	r := mapRouter{}
	f := NewFeed(nil)
	Bind(r, f)

	r[EventPrice](context.Background(), json.RawMessage(`{
		"price": 75.42, "pricePerOunce": 2345.6, "eurPrice": 69.1,
		"change24h": -0.4, "timestamp": "2026-05-05T12:00:00Z", "previousPrice": 75.5
	}`))

	last, ok := f.Last()
	require.True(t, ok)
	assert.Equal(t, 75.42, last.Price)
	require.NotNil(t, last.EURPrice)
	assert.Equal(t, 69.1, *last.EURPrice)
	assert.Nil(t, last.GBPPrice)
	assert.True(t, last.Timestamp.Equal(time.Date(2026, 5, 5, 12, 0, 0, 0, time.UTC)))
	assert.Equal(t, -1, last.Direction())
}

func TestBindDropsMalformedPrice(t *testing.T) {
	r := mapRouter{}
	f := NewFeed(nil)
	Bind(r, f)

	r[EventPrice](context.Background(), json.RawMessage(`"not a price"`))
	_, ok := f.Last()
	assert.False(t, ok)
}

func TestSubscribeDuringPublishSeesEachTickOnceInOrder(t *testing.T) {
	for i := 0; i < 200; i++ {
		f := NewFeed(nil)
		f.Publish(context.Background(), Price{Price: 1})

		done := make(chan struct{})
		go func() {
			defer close(done)
			for p := 2; p <= 20; p++ {
				f.Publish(context.Background(), Price{Price: float64(p)})
			}
		}()

		var mu sync.Mutex
		var got []float64
		f.Subscribe(func(ctx context.Context, p Price) {
			mu.Lock()
			got = append(got, p.Price)
			mu.Unlock()
		})
		<-done

		mu.Lock()
		require.NotEmpty(t, got)
		for j := 1; j < len(got); j++ {
			require.Greater(t, got[j], got[j-1], "ticks %v", got)
		}
		assert.Equal(t, 20.0, got[len(got)-1])
		mu.Unlock()
	}
}
