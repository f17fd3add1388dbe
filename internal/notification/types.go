package notification

import (
	"encoding/json"
	"time"
)

// Origin tells whether a notification was pushed by the backend or raised
// by in-process code.
type Origin string

const (
	OriginRemote Origin = "remote"
	OriginLocal  Origin = "local"
)

// Kind drives icon and colour only.
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindWarning Kind = "warning"
	KindInfo    Kind = "info"
)

// Action is an optional navigation affordance attached to a notification.
type Action struct {
	Label  string `json:"label"`
	Target string `json:"url"`
}

// Notification is a transient, immutable record shown to the user.
type Notification struct {
	ID         string          `json:"id"`
	Origin     Origin          `json:"origin"`
	Kind       Kind            `json:"type"`
	Title      string          `json:"title"`
	Message    string          `json:"message"`
	Timestamp  time.Time       `json:"timestamp"`
	Action     *Action         `json:"action,omitempty"`
	RawPayload json.RawMessage `json:"data,omitempty"`
}

// HasAction reports whether rendering n should offer navigation.
func (n Notification) HasAction() bool {
	return n.Action != nil && n.Action.Target != ""
}

// Payload is the wire shape of a server-pushed notification event.
type Payload struct {
	Type      string          `json:"type"`
	Title     string          `json:"title"`
	Message   string          `json:"message"`
	Timestamp string          `json:"timestamp,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
	Action    *Action         `json:"action,omitempty"`
}

// Server event names. All three are handled identically by clients; the
// name only decides who receives the event.
const (
	EventPersonal  = "notification"
	EventBroadcast = "announcement"
	EventAdmin     = "admin_notification"
)

// Events lists every server event that carries a Payload.
var Events = []string{EventPersonal, EventBroadcast, EventAdmin}
