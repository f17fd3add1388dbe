package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

var ErrInvalidAPIURL = errors.New("config: invalid api url")

// ResolveEndpoint turns the REST API origin into the realtime origin:
// trailing slashes and a trailing /api segment are dropped and http(s)
// becomes ws(s).
//
//	http://localhost:5000/api/ -> ws://localhost:5000
func ResolveEndpoint(apiURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(apiURL))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidAPIURL, err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("%w: unsupported scheme %q", ErrInvalidAPIURL, u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("%w: missing host", ErrInvalidAPIURL)
	}

	p := strings.TrimRight(u.Path, "/")
	p = strings.TrimSuffix(p, "/api")
	u.Path = strings.TrimRight(p, "/")
	u.RawPath = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u.String(), nil
}
