package usecase

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"uob-realtime/internal/gateway"
	"uob-realtime/internal/realtime"
	"uob-realtime/pkg/log"
)

// Connection is one upgraded socket on a stream.
type Connection struct {
	hub        *Hub
	conn       *websocket.Conn
	stream     gateway.Stream
	remoteAddr string

	// Set by the hub loop only.
	subscriberID string

	// Buffered channel of outbound frames
	send chan []byte

	pongWait       time.Duration
	pingPeriod     time.Duration
	writeWait      time.Duration
	maxMessageSize int64

	logger log.Logger

	// Closed by the hub once the connection is registered.
	registered chan struct{}
	done       chan struct{}
	closeOnce  sync.Once
}

func newConnection(hub *Hub, conn *websocket.Conn, input gateway.ConnectionInput, cfg Config, logger log.Logger) *Connection {
	return &Connection{
		hub:            hub,
		conn:           conn,
		stream:         input.Stream,
		remoteAddr:     input.RemoteAddr,
		send:           make(chan []byte, cfg.SendBuffer),
		pongWait:       cfg.PongWait,
		pingPeriod:     cfg.PingPeriod,
		writeWait:      cfg.WriteWait,
		maxMessageSize: cfg.MaxMessageSize,
		logger:         logger,
		registered:     make(chan struct{}),
		done:           make(chan struct{}),
	}
}

// readPump reads client frames until the socket fails.
//
// The only client event is authenticate, and only on the notifications
// stream. Reading also keeps pong handling alive.
func (c *Connection) readPump() {
	defer func() {
		enqueue(c.hub, c.hub.unregister, c)
		c.Close()
	}()

	// Frames are not read until the hub knows the connection, so an early
	// authenticate cannot overtake the registration.
	select {
	case <-c.registered:
	case <-c.done:
		return
	case <-c.hub.ctx.Done():
		return
	}

	c.conn.SetReadLimit(c.maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(c.pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.pongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				c.logger.Warnf(context.Background(), "WebSocket read error on %s socket %s: %v", c.stream, c.remoteAddr, err)
			}
			return
		}
		c.handleFrame(message)
	}
}

func (c *Connection) handleFrame(message []byte) {
	var env realtime.Envelope
	if err := json.Unmarshal(message, &env); err != nil {
		c.logger.Debugf(context.Background(), "Ignoring malformed frame from %s: %v", c.remoteAddr, err)
		return
	}

	switch env.Event {
	case realtime.EventAuthenticate:
		if c.stream != gateway.StreamNotifications {
			return
		}
		var subscriberID string
		if err := json.Unmarshal(env.Data, &subscriberID); err != nil || subscriberID == "" {
			c.reply(mustEnvelope(realtime.EventError, "authenticate requires a subscriber id"))
			return
		}
		enqueue(c.hub, c.hub.authenticate, authRequest{conn: c, subscriberID: subscriberID})
	default:
		c.logger.Debugf(context.Background(), "Ignoring %q from %s socket %s", env.Event, c.stream, c.remoteAddr)
	}
}

// reply queues a frame from the read goroutine. The hub owns closing send,
// so this goes through the same lock the hub uses.
func (c *Connection) reply(frame []byte) {
	c.hub.mu.RLock()
	defer c.hub.mu.RUnlock()
	if c.hub.clients[c] {
		c.hub.trySendLocked(c, frame)
	}
}

// writePump writes queued frames, one JSON document per frame, and pings
// the peer every pingPeriod.
func (c *Connection) writePump() {
	ticker := time.NewTicker(c.pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.writeWait))
			if !ok {
				// The hub closed the channel
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			return
		}
	}
}

// Start starts the connection's read and write pumps
func (c *Connection) Start() {
	go c.writePump()
	go c.readPump()
}

// Close closes the underlying socket once.
func (c *Connection) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		if c.conn != nil {
			_ = c.conn.Close()
		}
	})
}
