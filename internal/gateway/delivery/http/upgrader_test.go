package http

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsListedOrigin(t *testing.T) {
	allowed := []string{"https://app.uob.example", "https://*.uob-security.example"}

	tests := []struct {
		origin string
		want   bool
	}{
		{"https://app.uob.example", true},
		{"https://admin.uob-security.example", true},
		{"http://admin.uob-security.example", false},
		{"https://uob.example", false},
		{"https://evil.example", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, isListedOrigin(tt.origin, allowed), tt.origin)
	}
}

func TestIsLocalOrigin(t *testing.T) {
	assert.True(t, isLocalOrigin("http://localhost:3000"))
	assert.True(t, isLocalOrigin("http://127.0.0.1:5173"))
	assert.True(t, isLocalOrigin("http://10.0.0.8"))
	assert.False(t, isLocalOrigin("https://8.8.8.8"))
	assert.False(t, isLocalOrigin("not a url"))
}

func TestSameHostWithoutAllowList(t *testing.T) {
	u := newUpgrader("production", WSConfig{})

	r := httptest.NewRequest("GET", "http://gateway.uob.example:5000/ws/notifications", nil)
	r.Header.Set("Origin", "https://gateway.uob.example")
	assert.True(t, u.CheckOrigin(r))

	r.Header.Set("Origin", "https://other.example")
	assert.False(t, u.CheckOrigin(r))

	r.Header.Del("Origin")
	assert.True(t, u.CheckOrigin(r))
}

func TestLimiterSweepsIdleVisitors(t *testing.T) {
	l := newUpgradeLimiter(1, 1)
	defer l.Stop()

	assert.True(t, l.Allow("10.0.0.1"))
	assert.False(t, l.Allow("10.0.0.1"))
	assert.True(t, l.Allow("10.0.0.2"))

	l.sweep(time.Now().Add(limiterIdleTTL + time.Second))
	l.mu.Lock()
	assert.Empty(t, l.visitors)
	l.mu.Unlock()

	assert.True(t, l.Allow("10.0.0.1"))
}
