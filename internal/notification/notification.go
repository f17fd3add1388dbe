package notification

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Option customises a Notification built with New.
type Option func(*Notification)

// WithID pins the id instead of generating one.
func WithID(id string) Option {
	return func(n *Notification) { n.ID = id }
}

// WithAction attaches a navigation affordance.
func WithAction(label, target string) Option {
	return func(n *Notification) { n.Action = &Action{Label: label, Target: target} }
}

// WithPayload attaches arbitrary data that is passed through untouched.
func WithPayload(raw json.RawMessage) Option {
	return func(n *Notification) { n.RawPayload = raw }
}

// WithTimestamp overrides the creation time.
func WithTimestamp(t time.Time) Option {
	return func(n *Notification) { n.Timestamp = t }
}

// NewID returns a fresh notification id.
func NewID() string {
	return uuid.NewString()
}

// ParseKind maps a wire type to a Kind.
func ParseKind(s string) (Kind, bool) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindSuccess:
		return KindSuccess, true
	case KindError:
		return KindError, true
	case KindWarning:
		return KindWarning, true
	case KindInfo:
		return KindInfo, true
	}
	return "", false
}

// New builds a validated notification stamped with the current time.
func New(origin Origin, kind Kind, title, message string, opts ...Option) (Notification, error) {
	if origin != OriginRemote && origin != OriginLocal {
		return Notification{}, fmt.Errorf("%w: %q", ErrInvalidOrigin, origin)
	}
	if _, ok := ParseKind(string(kind)); !ok {
		return Notification{}, fmt.Errorf("%w: %q", ErrInvalidKind, kind)
	}
	if strings.TrimSpace(title) == "" {
		return Notification{}, ErrMissingTitle
	}
	if strings.TrimSpace(message) == "" {
		return Notification{}, ErrMissingMessage
	}

	n := Notification{
		ID:        NewID(),
		Origin:    origin,
		Kind:      kind,
		Title:     title,
		Message:   message,
		Timestamp: time.Now(),
	}
	for _, opt := range opts {
		opt(&n)
	}
	return n, nil
}

// FromPayload normalises a server payload into a remote notification.
// Unknown or empty types degrade to info; the server timestamp wins when it
// parses as RFC 3339, otherwise now is used.
func FromPayload(p Payload, now time.Time) (Notification, error) {
	kind, ok := ParseKind(p.Type)
	if !ok {
		kind = KindInfo
	}

	ts := now
	if p.Timestamp != "" {
		if parsed, err := time.Parse(time.RFC3339Nano, p.Timestamp); err == nil {
			ts = parsed
		}
	}

	opts := []Option{WithTimestamp(ts)}
	if len(p.Data) > 0 && string(p.Data) != "null" {
		opts = append(opts, WithPayload(p.Data))
	}
	if p.Action != nil && p.Action.Target != "" {
		opts = append(opts, WithAction(p.Action.Label, p.Action.Target))
	}
	return New(OriginRemote, kind, p.Title, p.Message, opts...)
}

// DecodePayload parses a raw event body and normalises it.
func DecodePayload(raw []byte, now time.Time) (Notification, error) {
	var p Payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return Notification{}, fmt.Errorf("notification.DecodePayload: %w", err)
	}
	return FromPayload(p, now)
}

// ToPayload renders n back into the wire shape.
func (n Notification) ToPayload() Payload {
	p := Payload{
		Type:    string(n.Kind),
		Title:   n.Title,
		Message: n.Message,
		Data:    n.RawPayload,
		Action:  n.Action,
	}
	if !n.Timestamp.IsZero() {
		p.Timestamp = n.Timestamp.UTC().Format(time.RFC3339Nano)
	}
	return p
}
