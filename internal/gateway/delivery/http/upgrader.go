package http

import (
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"
)

func originHost(origin string) (string, bool) {
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return "", false
	}
	return u.Hostname(), true
}

// isLocalOrigin accepts localhost, loopback and private-network addresses.
func isLocalOrigin(origin string) bool {
	host, ok := originHost(origin)
	if !ok {
		return false
	}
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && (ip.IsLoopback() || ip.IsPrivate())
}

func isListedOrigin(origin string, allowed []string) bool {
	for _, a := range allowed {
		if a == origin {
			return true
		}
		// Wildcard subdomains, e.g. "https://*.uob.example".
		if i := strings.Index(a, "*."); i >= 0 {
			prefix, suffix := a[:i], a[i+1:]
			if strings.HasPrefix(origin, prefix) && strings.HasSuffix(origin, suffix) {
				return true
			}
		}
	}
	return false
}

// newUpgrader creates a WebSocket upgrader with environment-aware origin
// validation. Requests without an Origin header come from non-browser
// clients and are accepted.
func newUpgrader(environment string, cfg WSConfig) websocket.Upgrader {
	allowed := append([]string(nil), cfg.AllowedOrigins...)
	production := environment == "production"

	return websocket.Upgrader{
		ReadBufferSize:  cfg.ReadBufferSize,
		WriteBufferSize: cfg.WriteBufferSize,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			if isListedOrigin(origin, allowed) {
				return true
			}
			if !production && isLocalOrigin(origin) {
				return true
			}
			host, ok := originHost(origin)
			return ok && len(allowed) == 0 && strings.EqualFold(host, hostOnly(r.Host))
		},
	}
}

func hostOnly(hostport string) string {
	if h, _, err := net.SplitHostPort(hostport); err == nil {
		return h
	}
	return hostport
}
