// Package bus carries platform lifecycle events from the chat client to the
// session controller.
package bus

import "time"

// EventKind identifies a platform lifecycle notification.
type EventKind string

// Lifecycle event kinds, in the order a fresh session normally sees them.
const (
	EventPairingCode   EventKind = "pairing_code"
	EventAuthenticated EventKind = "authenticated"
	EventReady         EventKind = "ready"
	EventAuthFailure   EventKind = "auth_failure"
	EventDisconnected  EventKind = "disconnected"
	EventMessage       EventKind = "message"
)

// IncomingMessage is a single group message as observed on the platform.
// It is transient: built per event, never persisted.
type IncomingMessage struct {
	GroupID     string
	SenderID    string
	SenderName  string
	Body        string
	SentAt      time.Time
	Kind        string
	HasMedia    bool
	IsForwarded bool
}

// Event is one platform notification. Code is set for pairing events, Reason
// for auth failures and disconnects, Message for incoming group messages.
type Event struct {
	Kind    EventKind
	Code    string
	Reason  string
	Message *IncomingMessage
}

// EventBus is a single-producer-side, single-consumer event queue. Lifecycle
// events are consumed strictly in publish order, which is what keeps the
// session state machine free of re-entrant transitions.
type EventBus struct {
	events chan Event
}

// NewEventBus creates an event bus with a bounded buffer.
func NewEventBus() *EventBus {
	return &EventBus{events: make(chan Event, 100)}
}

// PublishPairingCode announces a freshly issued pairing code.
func (b *EventBus) PublishPairingCode(code string) {
	b.events <- Event{Kind: EventPairingCode, Code: code}
}

// PublishAuthenticated announces a confirmed pairing.
func (b *EventBus) PublishAuthenticated() {
	b.events <- Event{Kind: EventAuthenticated}
}

// PublishReady announces that the session is usable.
func (b *EventBus) PublishReady() {
	b.events <- Event{Kind: EventReady}
}

// PublishAuthFailure announces an authentication failure.
func (b *EventBus) PublishAuthFailure(reason string) {
	b.events <- Event{Kind: EventAuthFailure, Reason: reason}
}

// PublishDisconnected announces a dropped connection.
func (b *EventBus) PublishDisconnected(reason string) {
	b.events <- Event{Kind: EventDisconnected, Reason: reason}
}

// PublishMessage delivers an incoming group message.
func (b *EventBus) PublishMessage(msg *IncomingMessage) {
	if msg.SentAt.IsZero() {
		msg.SentAt = time.Now()
	}
	b.events <- Event{Kind: EventMessage, Message: msg}
}

// Events returns the consumer side of the bus.
func (b *EventBus) Events() <-chan Event {
	return b.events
}

// Size returns the number of pending events.
func (b *EventBus) Size() int {
	return len(b.events)
}
