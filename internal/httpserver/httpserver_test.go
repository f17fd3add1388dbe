package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uob-realtime/internal/gateway/usecase"
	"uob-realtime/pkg/log"
)

func init() { gin.SetMode(gin.TestMode) }

type fakePinger struct{ err error }

func (p fakePinger) PingLatency(context.Context) (time.Duration, error) {
	return 1500 * time.Microsecond, p.err
}

type fakeSubscriber struct{ active atomic.Bool }

func (s *fakeSubscriber) Start() error                   { s.active.Store(true); return nil }
func (s *fakeSubscriber) Shutdown(context.Context) error { s.active.Store(false); return nil }
func (s *fakeSubscriber) GetHealthInfo() (bool, time.Time, string) {
	return s.active.Load(), time.Time{}, "uob:noti:*,uob:gold:price"
}

func newTestServer(t *testing.T, ping error, active bool) *HTTPServer {
	t.Helper()
	uc := usecase.New(log.NewNop(), usecase.Config{})
	sub := &fakeSubscriber{}
	sub.active.Store(active)
	srv, err := New(log.NewNop(), Config{
		Port:        5000,
		Environment: "development",
		UseCase:     uc,
		Subscriber:  sub,
		Redis:       fakePinger{err: ping},
	})
	require.NoError(t, err)
	srv.mapHandlers()
	t.Cleanup(srv.wsHandler.Close)
	return srv
}

func get(srv *HTTPServer, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	srv.gin.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestNewValidates(t *testing.T) {
	_, err := New(log.NewNop(), Config{})
	assert.EqualError(t, err, "port is required")

	_, err = New(log.NewNop(), Config{Port: 5000})
	assert.EqualError(t, err, "gateway UseCase is required")
}

func TestHealthy(t *testing.T) {
	srv := newTestServer(t, nil, true)
	require.NoError(t, srv.uc.RestorePrice(context.Background(), []byte(`{"price":75.42}`)))

	w := get(srv, "/health")
	require.Equal(t, http.StatusOK, w.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "connected", resp.Redis.Status)
	assert.Equal(t, 1.5, resp.Redis.PingMs)
	assert.NotNil(t, resp.GoldPrice)
	assert.True(t, resp.Subscriber.Active)
}

func TestDegradedWhenRedisDown(t *testing.T) {
	srv := newTestServer(t, errors.New("dial tcp: connection refused"), true)

	w := get(srv, "/health")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "connection refused")

	assert.Equal(t, http.StatusServiceUnavailable, get(srv, "/ready").Code)
	assert.Equal(t, http.StatusOK, get(srv, "/live").Code)
}

func TestNotReadyWithoutSubscriber(t *testing.T) {
	srv := newTestServer(t, nil, false)
	assert.Equal(t, http.StatusServiceUnavailable, get(srv, "/ready").Code)
	assert.Equal(t, http.StatusServiceUnavailable, get(srv, "/health").Code)
}

func TestRunStopsOnCancel(t *testing.T) {
	uc := usecase.New(log.NewNop(), usecase.Config{})
	sub := &fakeSubscriber{}
	srv, err := New(log.NewNop(), Config{
		Host:       "127.0.0.1",
		Port:       freePort(t),
		UseCase:    uc,
		Subscriber: sub,
		Redis:      fakePinger{},
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	require.Eventually(t, func() bool {
		active, _, _ := sub.GetHealthInfo()
		return active
	}, time.Second, 10*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}

func TestMetrics(t *testing.T) {
	srv := newTestServer(t, nil, true)

	w := get(srv, "/metrics")
	require.Equal(t, http.StatusOK, w.Code)

	var resp MetricsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "notifyd", resp.Service)
	assert.Zero(t, resp.Connections.Active)
	assert.Zero(t, resp.Messages.Failed)
}
