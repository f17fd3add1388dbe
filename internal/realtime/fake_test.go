package realtime

import (
	"context"
	"errors"
	"io"
	"sync"
)

type fakeConn struct {
	in        chan Envelope
	closed    chan struct{}
	closeOnce sync.Once

	mu      sync.Mutex
	written []Envelope
}

func newFakeConn() *fakeConn {
	return &fakeConn{in: make(chan Envelope, 16), closed: make(chan struct{})}
}

func (c *fakeConn) ReadEnvelope() (Envelope, error) {
	select {
	case env, ok := <-c.in:
		if !ok {
			return Envelope{}, io.EOF
		}
		return env, nil
	case <-c.closed:
		return Envelope{}, ErrConnClosed
	}
}

func (c *fakeConn) WriteEnvelope(env Envelope) error {
	select {
	case <-c.closed:
		return ErrConnClosed
	default:
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.written = append(c.written, env)
	return nil
}

func (c *fakeConn) Close() error {
	c.closeOnce.Do(func() { close(c.closed) })
	return nil
}

func (c *fakeConn) isClosed() bool {
	select {
	case <-c.closed:
		return true
	default:
		return false
	}
}

func (c *fakeConn) writes() []Envelope {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Envelope, len(c.written))
	copy(out, c.written)
	return out
}

// fakeDialer hands out a fresh fakeConn per dial, or fails when failing is set.
type fakeDialer struct {
	mu      sync.Mutex
	failing bool
	conns   []*fakeConn
	dials   int
}

func (d *fakeDialer) Dial(ctx context.Context, url string) (Conn, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dials++
	if d.failing {
		return nil, errors.New("connection refused")
	}
	c := newFakeConn()
	d.conns = append(d.conns, c)
	return c, nil
}

func (d *fakeDialer) dialCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dials
}

func (d *fakeDialer) conn(i int) *fakeConn {
	d.mu.Lock()
	defer d.mu.Unlock()
	if i >= len(d.conns) {
		return nil
	}
	return d.conns[i]
}

func (d *fakeDialer) setFailing(v bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.failing = v
}
