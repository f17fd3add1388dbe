// Package session wires the realtime fan-out for one signed-in user: two
// socket channels, the remote and local notification registries, the
// presentation queue that both feed, and the gold price feed.
//
// A Service is created when the session starts and torn down on logout.
// Nothing in it is package-level state.
package session

import (
	"context"
	"io"
	"sync"
	"time"

	"uob-realtime/internal/goldprice"
	"uob-realtime/internal/notification"
	"uob-realtime/internal/notification/bus"
	"uob-realtime/internal/notification/effect"
	"uob-realtime/internal/notification/queue"
	"uob-realtime/internal/notification/remote"
	"uob-realtime/internal/realtime"
	"uob-realtime/pkg/log"
)

// Config carries the per-session settings.
type Config struct {
	NotificationsURL     string
	PriceURL             string
	ReconnectDelay       time.Duration
	MaxReconnectAttempts int
	ToastTTL             time.Duration
}

// Deps are the collaborators a Service is built from. Only Config is
// required; everything else has a working default.
type Deps struct {
	Config    Config
	Dialer    realtime.Dialer
	Logger    log.Logger
	Navigator notification.Navigator
	// Bell receives the audible cue. Nil disables it.
	Bell     io.Writer
	OnChange queue.ChangeHook
	Now      func() time.Time
}

// Service is the session-scoped owner of the realtime components.
type Service struct {
	l      log.Logger
	now    func() time.Time
	remote *bus.Registry[notification.Notification]
	local  *bus.Registry[notification.Notification]
	queue  *queue.Queue
	prices *goldprice.Feed
	notis  *realtime.Manager
	gold   *realtime.Manager

	mu     sync.Mutex
	closed bool
}

// New builds and binds every component. No connection is opened until
// Start.
func New(d Deps) *Service {
	if d.Logger == nil {
		d.Logger = log.NewNop()
	}
	if d.Dialer == nil {
		d.Dialer = realtime.NewWSDialer()
	}
	if d.Now == nil {
		d.Now = time.Now
	}

	s := &Service{
		l:      d.Logger,
		now:    d.Now,
		remote: bus.New[notification.Notification]("remote", d.Logger),
		local:  bus.New[notification.Notification]("local", d.Logger),
		prices: goldprice.NewFeed(d.Logger),
	}
	s.queue = queue.New(queue.Options{
		TTL:       d.Config.ToastTTL,
		Navigator: d.Navigator,
		Logger:    d.Logger,
		OnChange:  d.OnChange,
	})

	// Two producers, one consumer queue.
	for _, reg := range []*bus.Registry[notification.Notification]{s.remote, s.local} {
		reg.Subscribe(s.queue)
		if d.Bell != nil {
			reg.Subscribe(effect.NewChime(d.Bell))
		}
	}

	s.notis = realtime.New(realtime.Config{
		Name:                 "notifications",
		URL:                  d.Config.NotificationsURL,
		RequireSubscriber:    true,
		ReconnectDelay:       d.Config.ReconnectDelay,
		MaxReconnectAttempts: d.Config.MaxReconnectAttempts,
	}, d.Dialer, d.Logger)
	remote.Bind(s.notis, s.remote, d.Logger, d.Now)

	s.gold = realtime.New(realtime.Config{
		Name:                 "gold-price",
		URL:                  d.Config.PriceURL,
		ReconnectDelay:       d.Config.ReconnectDelay,
		MaxReconnectAttempts: d.Config.MaxReconnectAttempts,
	}, d.Dialer, d.Logger)
	goldprice.Bind(s.gold, s.prices)

	return s
}

// Start connects the notification channel as subscriberID and the price
// channel anonymously. Calling it again with the same id is a no-op; a
// different id replaces the notification connection.
func (s *Service) Start(subscriberID string) {
	s.mu.Lock()
	s.closed = false
	s.mu.Unlock()

	s.notis.Connect(subscriberID)
	s.gold.Connect("")
}

// Notify raises a local notification. It goes through the local registry
// and ends up in the same queue as server-pushed ones.
func (s *Service) Notify(ctx context.Context, kind notification.Kind, title, message string, opts ...notification.Option) (notification.Notification, error) {
	opts = append([]notification.Option{notification.WithTimestamp(s.now())}, opts...)
	n, err := notification.New(notification.OriginLocal, kind, title, message, opts...)
	if err != nil {
		return notification.Notification{}, err
	}
	s.local.Dispatch(ctx, n)
	return n, nil
}

// Logout disconnects both channels and drops every visible notification.
func (s *Service) Logout() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.notis.Disconnect()
	s.gold.Disconnect()
	s.queue.Clear()
	s.l.Info(context.Background(), "session.Logout: realtime channels closed")
}

// Close implements io.Closer.
func (s *Service) Close() error {
	s.Logout()
	return nil
}

func (s *Service) Queue() *queue.Queue { return s.queue }
func (s *Service) Prices() *goldprice.Feed { return s.prices }
func (s *Service) Notifications() *realtime.Manager { return s.notis }
func (s *Service) GoldPrice() *realtime.Manager { return s.gold }
func (s *Service) Local() *bus.Registry[notification.Notification] { return s.local }
func (s *Service) Remote() *bus.Registry[notification.Notification] { return s.remote }
