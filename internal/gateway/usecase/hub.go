package usecase

import (
	"context"
	"sync"
	"sync/atomic"

	"uob-realtime/internal/gateway"
	"uob-realtime/internal/realtime"
	"uob-realtime/pkg/log"
)

// Hub maintains the set of active connections and routes frames to them.
type Hub struct {
	// Registered connections.
	clients map[*Connection]bool

	// Authenticated notification sockets (subscriberID -> connections, one per tab).
	subscribers map[string]map[*Connection]bool

	mu sync.RWMutex

	// Channels for connection management
	register     chan *Connection
	unregister   chan *Connection
	authenticate chan authRequest

	// Metrics
	totalMessagesSent     atomic.Int64
	totalMessagesReceived atomic.Int64
	totalMessagesFailed   atomic.Int64

	// Last gold_price frame; replayed to each gold-price socket on
	// registration.
	priceFrame []byte

	maxConnections int
	logger         log.Logger

	// Context for graceful shutdown
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

func newHub(logger log.Logger, maxConnections int) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		clients:        make(map[*Connection]bool),
		subscribers:    make(map[string]map[*Connection]bool),
		register:       make(chan *Connection, 100),
		unregister:     make(chan *Connection, 100),
		authenticate:   make(chan authRequest, 100),
		maxConnections: maxConnections,
		logger:         logger,
		ctx:            ctx,
		cancel:         cancel,
		done:           make(chan struct{}),
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	defer close(h.done)

	for {
		select {
		case <-h.ctx.Done():
			h.logger.Info(context.Background(), "Hub shutting down...")
			h.closeAllConnections()
			return

		case conn := <-h.register:
			h.registerConnection(conn)

		case conn := <-h.unregister:
			h.unregisterConnection(conn)

		case req := <-h.authenticate:
			h.bindSubscriber(req.conn, req.subscriberID)
		}
	}
}

func (h *Hub) registerConnection(conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.clients) >= h.maxConnections {
		h.logger.Warnf(context.Background(), "Max connections reached, rejecting %s socket from %s", conn.stream, conn.remoteAddr)
		go conn.Close()
		return
	}

	h.clients[conn] = true
	if conn.stream == gateway.StreamGoldPrice && h.priceFrame != nil {
		h.trySendLocked(conn, h.priceFrame)
	}
	if conn.registered != nil {
		close(conn.registered)
	}
	h.logger.Infof(context.Background(), "Socket connected: stream=%s remote=%s (total connections: %d)",
		conn.stream, conn.remoteAddr, len(h.clients))
}

func (h *Hub) unregisterConnection(conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[conn]; !ok {
		return
	}
	delete(h.clients, conn)
	close(conn.send)

	if conn.subscriberID == "" {
		return
	}
	h.dropSubscriberLocked(conn)
	if conns := h.subscribers[conn.subscriberID]; len(conns) > 0 {
		h.logger.Infof(context.Background(), "Subscriber connection closed: %s (remaining connections: %d)", conn.subscriberID, len(conns))
	} else {
		h.logger.Infof(context.Background(), "Subscriber disconnected (all tabs closed): %s", conn.subscriberID)
	}
}

// bindSubscriber attaches conn to subscriberID, moving it when the socket
// re-authenticates under a different id, and acknowledges.
func (h *Hub) bindSubscriber(conn *Connection, subscriberID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[conn]; !ok {
		return
	}
	if conn.subscriberID != "" && conn.subscriberID != subscriberID {
		h.dropSubscriberLocked(conn)
	}
	conn.subscriberID = subscriberID
	if _, ok := h.subscribers[subscriberID]; !ok {
		h.subscribers[subscriberID] = make(map[*Connection]bool)
	}
	h.subscribers[subscriberID][conn] = true

	select {
	case conn.send <- mustEnvelope(realtime.EventAuthenticated, subscriberID):
	default:
		h.totalMessagesFailed.Add(1)
	}
	h.logger.Infof(context.Background(), "Subscriber authenticated: %s (subscriber connections: %d)",
		subscriberID, len(h.subscribers[subscriberID]))
}

func (h *Hub) dropSubscriberLocked(conn *Connection) {
	conns, ok := h.subscribers[conn.subscriberID]
	if !ok {
		return
	}
	delete(conns, conn)
	if len(conns) == 0 {
		delete(h.subscribers, conn.subscriberID)
	}
}

// SendToSubscriber delivers message to every authenticated socket of
// subscriberID. Subscribers that are not connected are skipped silently.
func (h *Hub) SendToSubscriber(subscriberID string, message []byte) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	conns := h.subscribers[subscriberID]
	if len(conns) == 0 {
		return 0
	}
	sent := 0
	for conn := range conns {
		if h.trySendLocked(conn, message) {
			sent++
		}
	}
	h.totalMessagesSent.Add(int64(sent))
	if sent > 0 {
		h.totalMessagesReceived.Add(1)
	}
	return sent
}

// Broadcast delivers message to every socket on stream.
func (h *Hub) Broadcast(stream gateway.Stream, message []byte) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.broadcastLocked(stream, message)
}

// PublishPrice stores frame as the replay for new gold-price sockets and
// sends it to the current ones. Registration takes the same lock, so a
// socket gets either the replay or the broadcast, never both or neither.
func (h *Hub) PublishPrice(frame []byte) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.priceFrame = frame
	return h.broadcastLocked(gateway.StreamGoldPrice, frame)
}

// SetPriceFrame stores the replay frame without sending it.
func (h *Hub) SetPriceFrame(frame []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.priceFrame = frame
}

func (h *Hub) broadcastLocked(stream gateway.Stream, message []byte) int {
	sent := 0
	for conn := range h.clients {
		if conn.stream != stream {
			continue
		}
		if h.trySendLocked(conn, message) {
			sent++
		}
	}
	h.totalMessagesSent.Add(int64(sent))
	if sent > 0 {
		h.totalMessagesReceived.Add(1)
	}
	return sent
}

// trySendLocked never blocks: a full buffer means a stalled client, which
// loses the frame rather than holding up everyone else.
func (h *Hub) trySendLocked(conn *Connection, message []byte) bool {
	select {
	case conn.send <- message:
		return true
	default:
		h.logger.Warnf(context.Background(), "Failed to send to %s socket %s (buffer full)", conn.stream, conn.remoteAddr)
		h.totalMessagesFailed.Add(1)
		return false
	}
}

func (h *Hub) closeAllConnections() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.clients {
		conn.Close()
	}
	h.clients = make(map[*Connection]bool)
	h.subscribers = make(map[string]map[*Connection]bool)
}

// Stats returns hub statistics
func (h *Hub) Stats() gateway.HubStats {
	h.mu.RLock()
	defer h.mu.RUnlock()

	price := 0
	for conn := range h.clients {
		if conn.stream == gateway.StreamGoldPrice {
			price++
		}
	}
	return gateway.HubStats{
		ActiveConnections:     len(h.clients),
		Subscribers:           len(h.subscribers),
		PriceConnections:      price,
		TotalMessagesSent:     h.totalMessagesSent.Load(),
		TotalMessagesReceived: h.totalMessagesReceived.Load(),
		TotalMessagesFailed:   h.totalMessagesFailed.Load(),
	}
}

// enqueue hands a request to the hub loop unless the hub is stopping.
func enqueue[T any](h *Hub, ch chan<- T, v T) bool {
	if h.ctx.Err() != nil {
		return false
	}
	select {
	case ch <- v:
		return true
	case <-h.ctx.Done():
		return false
	}
}

// Shutdown gracefully shuts down the hub
func (h *Hub) Shutdown(ctx context.Context) error {
	h.cancel()

	select {
	case <-h.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
