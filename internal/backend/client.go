// Package backend is the thin REST edge to the UOB API. It only carries
// the behaviour the realtime session depends on: bearer auth from the
// session token and the sign-out redirect on 401.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"uob-realtime/internal/notification"
	"uob-realtime/pkg/log"
)

const (
	// LoginPath is where the client is sent when the API rejects the token.
	LoginPath      = "/login"
	defaultTimeout = 15 * time.Second
	maxErrorBody   = 512
)

// Client calls the API origin.
type Client struct {
	baseURL   string
	http      *http.Client
	tokens    TokenStore
	navigator notification.Navigator
	l         log.Logger
}

// Option configures a Client.
type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithNavigator(n notification.Navigator) Option {
	return func(c *Client) { c.navigator = n }
}

// New creates a Client for baseURL, e.g. http://localhost:5000/api.
func New(baseURL string, tokens TokenStore, l log.Logger, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(baseURL, "/")
	if baseURL == "" {
		return nil, ErrNoBaseURL
	}
	if tokens == nil {
		tokens = NewMemoryTokenStore("")
	}
	if l == nil {
		l = log.NewNop()
	}
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: defaultTimeout},
		tokens:  tokens,
		l:       l,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Do sends in as JSON (when non-nil) and decodes the response into out
// (when non-nil). A 401 clears the session token, navigates to LoginPath
// and returns ErrUnauthorized.
func (c *Client) Do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("backend.Do: encode: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/"+strings.TrimLeft(path, "/"), body)
	if err != nil {
		return fmt.Errorf("backend.Do: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := c.tokens.Token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("backend.Do: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		c.signOut(ctx)
		return ErrUnauthorized
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{Method: method, Path: path, Code: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && err != io.EOF {
		return fmt.Errorf("backend.Do: decode: %w", err)
	}
	return nil
}

func (c *Client) signOut(ctx context.Context) {
	c.tokens.Clear()
	c.l.Warn(ctx, "backend.Do: session rejected, signing out")
	if c.navigator == nil {
		return
	}
	if err := c.navigator.Navigate(ctx, LoginPath); err != nil {
		c.l.Errorf(ctx, "backend.Do: navigate to login: %v", err)
	}
}
