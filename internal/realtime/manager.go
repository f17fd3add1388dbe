package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"uob-realtime/pkg/log"
)

// HandlerFunc handles the data of one inbound event. Handlers run in the
// channel's read goroutine, so events reach them in transport order.
type HandlerFunc = func(ctx context.Context, data json.RawMessage)

// Manager owns at most one live connection for a channel.
//
// Connect and Disconnect never block on the network and never report
// failures to the caller: dialling, authentication and reconnection happen
// in a background goroutine and failures are logged.
type Manager struct {
	cfg    Config
	dialer Dialer
	logger log.Logger

	hmu      sync.RWMutex
	handlers map[string]HandlerFunc

	mu    sync.Mutex
	state State
	sess  *session
}

type session struct {
	subscriberID string
	ctx          context.Context
	cancel       context.CancelFunc
	done         chan struct{}

	mu   sync.Mutex
	conn Conn
}

// New creates an idle manager. A nil dialer uses NewWSDialer.
func New(cfg Config, dialer Dialer, logger log.Logger) *Manager {
	cfg.setDefaults()
	if dialer == nil {
		dialer = NewWSDialer()
	}
	if logger == nil {
		logger = log.NewNop()
	}
	return &Manager{
		cfg:      cfg,
		dialer:   dialer,
		logger:   logger,
		handlers: make(map[string]HandlerFunc),
		state:    StateDisconnected,
	}
}

// Name returns the channel name.
func (m *Manager) Name() string { return m.cfg.Name }

// Handle routes inbound event to fn, replacing any previous handler.
func (m *Manager) Handle(event string, fn HandlerFunc) {
	m.hmu.Lock()
	defer m.hmu.Unlock()
	m.handlers[event] = fn
}

// State returns the current connection state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// SubscriberID returns the identity of the current session, if any.
func (m *Manager) SubscriberID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sess == nil {
		return ""
	}
	return m.sess.subscriberID
}

// Connect starts a session for subscriberID.
//
// Calling it again with the same id while a session is live or still
// connecting is a no-op. A different id tears the current session down
// first. An empty id on a channel that requires one leaves the channel idle.
func (m *Manager) Connect(subscriberID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.sess != nil && m.sess.subscriberID == subscriberID && m.state != StateDisconnected {
		return
	}
	if m.sess != nil {
		m.stopLocked()
	}
	if subscriberID == "" && m.cfg.RequireSubscriber {
		m.logger.Debugf(context.Background(), "realtime.%s.Connect: no subscriber id, staying idle", m.cfg.Name)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &session{
		subscriberID: subscriberID,
		ctx:          m.logger.WithFields(ctx, "channel", m.cfg.Name),
		cancel:       cancel,
		done:         make(chan struct{}),
	}
	m.sess = s
	m.state = StateConnecting
	go m.run(s)
}

// Disconnect tears the current session down immediately. It is a no-op
// when nothing is connected.
func (m *Manager) Disconnect() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sess == nil {
		return
	}
	m.stopLocked()
}

func (m *Manager) stopLocked() {
	s := m.sess
	s.cancel()
	s.closeConn()
	m.sess = nil
	m.state = StateDisconnected
	m.logger.Infof(s.ctx, "realtime.%s: disconnected", m.cfg.Name)
}

func (m *Manager) setState(s *session, st State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sess == s {
		m.state = st
	}
}

func (m *Manager) run(s *session) {
	defer close(s.done)

	attempts := 0
	for {
		if s.ctx.Err() != nil {
			return
		}
		m.setState(s, StateConnecting)

		conn, err := m.dialer.Dial(s.ctx, m.cfg.URL)
		if err != nil {
			m.logger.Warnf(s.ctx, "realtime.%s: connect failed: %v", m.cfg.Name, err)
		} else {
			attempts = 0
			err = m.serve(s, conn)
			if s.ctx.Err() == nil {
				m.logger.Warnf(s.ctx, "realtime.%s: connection lost: %v", m.cfg.Name, err)
			}
		}

		if s.ctx.Err() != nil {
			return
		}
		if attempts >= m.cfg.MaxReconnectAttempts {
			m.logger.Errorf(s.ctx, "realtime.%s: giving up after %d reconnection attempts", m.cfg.Name, attempts)
			m.setState(s, StateDisconnected)
			return
		}
		attempts++
		m.setState(s, StateConnecting)
		m.logger.Infof(s.ctx, "realtime.%s: reconnecting in %s (attempt %d/%d)",
			m.cfg.Name, m.cfg.ReconnectDelay, attempts, m.cfg.MaxReconnectAttempts)

		timer := time.NewTimer(m.cfg.ReconnectDelay)
		select {
		case <-s.ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

// serve authenticates and pumps inbound events until the connection fails
// or the session is stopped.
func (m *Manager) serve(s *session, conn Conn) error {
	if !s.setConn(conn) {
		_ = conn.Close()
		return context.Canceled
	}
	defer s.closeConn()

	if s.subscriberID != "" {
		env, err := NewEnvelope(EventAuthenticate, s.subscriberID)
		if err != nil {
			return err
		}
		if err := conn.WriteEnvelope(env); err != nil {
			return err
		}
	}
	m.setState(s, StateConnected)
	m.logger.Infof(s.ctx, "realtime.%s: connected to %s", m.cfg.Name, m.cfg.URL)

	for {
		env, err := conn.ReadEnvelope()
		if err != nil {
			if errors.Is(err, ErrMalformedFrame) {
				m.logger.Warnf(s.ctx, "realtime.%s: skipping frame: %v", m.cfg.Name, err)
				continue
			}
			return err
		}
		m.route(s.ctx, env)
	}
}

func (m *Manager) route(ctx context.Context, env Envelope) {
	m.hmu.RLock()
	fn := m.handlers[env.Event]
	m.hmu.RUnlock()

	if fn == nil {
		switch env.Event {
		case EventAuthenticated:
			m.logger.Debugf(ctx, "realtime.%s: subscriber authenticated", m.cfg.Name)
		case EventError:
			m.logger.Warnf(ctx, "realtime.%s: server error: %s", m.cfg.Name, string(env.Data))
		default:
			m.logger.Debugf(ctx, "realtime.%s: unhandled event %q", m.cfg.Name, env.Event)
		}
		return
	}

	defer func() {
		if rec := recover(); rec != nil {
			m.logger.Errorf(ctx, "realtime.%s: handler for %q panicked: %v", m.cfg.Name, env.Event, rec)
		}
	}()
	fn(ctx, env.Data)
}

func (s *session) setConn(c Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ctx.Err() != nil {
		return false
	}
	s.conn = c
	return true
}

func (s *session) closeConn() {
	s.mu.Lock()
	c := s.conn
	s.conn = nil
	s.mu.Unlock()
	if c != nil {
		_ = c.Close()
	}
}
