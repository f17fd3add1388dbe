package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Conn is a live socket that speaks Envelopes.
type Conn interface {
	ReadEnvelope() (Envelope, error)
	WriteEnvelope(env Envelope) error
	Close() error
}

// Dialer opens Conns.
type Dialer interface {
	Dial(ctx context.Context, url string) (Conn, error)
}

// WSDialer dials with gorilla/websocket.
type WSDialer struct {
	HandshakeTimeout time.Duration
	WriteWait        time.Duration
	// ReadTimeout drops the connection when neither a frame nor a server
	// ping arrives within the window. Zero disables it.
	ReadTimeout time.Duration
	Header      http.Header
}

// NewWSDialer returns a WSDialer with the package defaults.
func NewWSDialer() *WSDialer {
	return &WSDialer{
		HandshakeTimeout: DefaultHandshakeTimeout,
		WriteWait:        DefaultWriteWait,
		ReadTimeout:      DefaultReadTimeout,
	}
}

func (d *WSDialer) Dial(ctx context.Context, rawURL string) (Conn, error) {
	dialer := websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: d.HandshakeTimeout,
	}
	c, _, err := dialer.DialContext(ctx, rawURL, d.Header)
	if err != nil {
		return nil, fmt.Errorf("realtime: dial %s: %w", rawURL, err)
	}

	wc := &wsConn{conn: c, writeWait: d.WriteWait, readTimeout: d.ReadTimeout}
	if wc.writeWait <= 0 {
		wc.writeWait = DefaultWriteWait
	}
	if wc.readTimeout > 0 {
		wc.extendReadDeadline()
		c.SetPingHandler(func(appData string) error {
			wc.extendReadDeadline()
			err := c.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(wc.writeWait))
			if errors.Is(err, websocket.ErrCloseSent) {
				return nil
			}
			return err
		})
	}
	return wc, nil
}

type wsConn struct {
	conn        *websocket.Conn
	writeWait   time.Duration
	readTimeout time.Duration

	// gorilla allows one concurrent writer.
	wmu       sync.Mutex
	closeOnce sync.Once
}

func (c *wsConn) extendReadDeadline() {
	_ = c.conn.SetReadDeadline(time.Now().Add(c.readTimeout))
}

func (c *wsConn) ReadEnvelope() (Envelope, error) {
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		return Envelope{}, err
	}
	if c.readTimeout > 0 {
		c.extendReadDeadline()
	}
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil || env.Event == "" {
		return Envelope{}, fmt.Errorf("%w: %q", ErrMalformedFrame, truncateFrame(data))
	}
	return env, nil
}

func (c *wsConn) WriteEnvelope(env Envelope) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	if err := c.conn.SetWriteDeadline(time.Now().Add(c.writeWait)); err != nil {
		return err
	}
	return c.conn.WriteJSON(env)
}

func (c *wsConn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		err = c.conn.Close()
	})
	return err
}

func truncateFrame(b []byte) string {
	const limit = 128
	if len(b) > limit {
		return string(b[:limit]) + "..."
	}
	return string(b)
}

// JoinURL appends path to a ws base URL, keeping any base path.
func JoinURL(base, path string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("realtime.JoinURL: %w", err)
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/" + strings.TrimLeft(path, "/")
	return u.String(), nil
}
