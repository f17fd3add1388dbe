package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"uob-realtime/internal/gateway"
	"uob-realtime/internal/goldprice"
	"uob-realtime/internal/notification"
	"uob-realtime/internal/notification/bus"
	"uob-realtime/pkg/log"
)

// implUseCase implements gateway.UseCase.
type implUseCase struct {
	hub    *Hub
	logger log.Logger
	cfg    Config
	now    func() time.Time

	// Side effects for admin-targeted notifications (Discord mirror).
	admin *bus.Registry[notification.Notification]

	priceMu sync.RWMutex
	price   *gateway.CachedPrice
}

// Option configures the use case.
type Option func(*implUseCase)

// WithAdminListener adds a consumer of admin-targeted notifications.
func WithAdminListener(l bus.Listener[notification.Notification]) Option {
	return func(uc *implUseCase) { uc.admin.Subscribe(l) }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(uc *implUseCase) { uc.now = now }
}

// New creates a new gateway UseCase.
func New(logger log.Logger, cfg Config, opts ...Option) gateway.UseCase {
	if logger == nil {
		logger = log.NewNop()
	}
	cfg.setDefaults()
	uc := &implUseCase{
		hub:    newHub(logger, cfg.MaxConnections),
		logger: logger,
		cfg:    cfg,
		now:    time.Now,
		admin:  bus.New[notification.Notification]("admin", logger),
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

func (uc *implUseCase) Run() {
	uc.hub.Run()
}

func (uc *implUseCase) Shutdown(ctx context.Context) error {
	return uc.hub.Shutdown(ctx)
}

func (uc *implUseCase) Register(ctx context.Context, input gateway.ConnectionInput) error {
	conn, ok := input.Conn.(*websocket.Conn)
	if !ok {
		return gateway.ErrInvalidConnection
	}

	client := newConnection(uc.hub, conn, input, uc.cfg, uc.logger)

	if !enqueue(uc.hub, uc.hub.register, client) {
		return gateway.ErrShuttingDown
	}
	client.Start()
	return nil
}

func (uc *implUseCase) GetStats(ctx context.Context) gateway.HubStats {
	return uc.hub.Stats()
}

func (uc *implUseCase) ProcessMessage(ctx context.Context, input gateway.ProcessMessageInput) error {
	// 1. Parse channel
	parsed, err := parseChannel(input.Channel)
	if err != nil {
		return fmt.Errorf("%w: %s", err, input.Channel)
	}

	// 2. Price ticks bypass notification normalisation
	if parsed.ChannelType == gateway.ChannelTypePrice {
		return uc.publishPrice(input.Payload)
	}

	// 3. Validate & normalise
	n, err := notification.DecodePayload(input.Payload, uc.now())
	if err != nil {
		return fmt.Errorf("%w: %v", gateway.ErrInvalidPayload, err)
	}

	event := notification.EventPersonal
	switch parsed.ChannelType {
	case gateway.ChannelTypeAdmin:
		event = notification.EventAdmin
	case gateway.ChannelTypeBroadcast:
		event = notification.EventBroadcast
	}
	frame, err := encodeEnvelope(event, n.ToPayload())
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}

	// 4. Route to sockets
	var sent int
	if parsed.ChannelType == gateway.ChannelTypeBroadcast {
		sent = uc.hub.Broadcast(gateway.StreamNotifications, frame)
	} else {
		sent = uc.hub.SendToSubscriber(parsed.SubscriberID, frame)
	}
	uc.logger.Debugf(ctx, "Routed %s %q to %d sockets", event, n.Title, sent)

	// 5. Side effects
	if parsed.ChannelType == gateway.ChannelTypeAdmin {
		uc.admin.Dispatch(ctx, n)
	}
	return nil
}

func (uc *implUseCase) publishPrice(payload []byte) error {
	frame, err := uc.priceFrame(payload)
	if err != nil {
		return err
	}
	uc.hub.PublishPrice(frame)
	return nil
}

// priceFrame validates and caches payload and returns its gold_price frame.
func (uc *implUseCase) priceFrame(payload []byte) ([]byte, error) {
	raw, err := uc.cachePrice(payload)
	if err != nil {
		return nil, err
	}
	frame, err := encodeEnvelope(goldprice.EventPrice, raw)
	if err != nil {
		return nil, fmt.Errorf("marshal output: %w", err)
	}
	return frame, nil
}

func (uc *implUseCase) cachePrice(payload []byte) (json.RawMessage, error) {
	var p goldprice.Price
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", gateway.ErrInvalidPayload, err)
	}
	raw := json.RawMessage(append([]byte(nil), payload...))

	uc.priceMu.Lock()
	uc.price = &gateway.CachedPrice{Payload: raw, ReceivedAt: uc.now()}
	uc.priceMu.Unlock()
	return raw, nil
}

func (uc *implUseCase) LastPrice() (gateway.CachedPrice, bool) {
	uc.priceMu.RLock()
	defer uc.priceMu.RUnlock()
	if uc.price == nil {
		return gateway.CachedPrice{}, false
	}
	return *uc.price, true
}

// RestorePrice seeds the cache without broadcasting, e.g. from PriceKey at
// startup.
func (uc *implUseCase) RestorePrice(ctx context.Context, payload []byte) error {
	frame, err := uc.priceFrame(payload)
	if err != nil {
		return err
	}
	uc.hub.SetPriceFrame(frame)
	return nil
}
