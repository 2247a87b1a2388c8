package events

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Event is a domain event scoped to a shopping session.
type Event struct {
	Topic      string    `json:"topic"`
	SessionID  string    `json:"sessionId"`
	Payload    any       `json:"payload,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

// Notifier reacts to emitted events (logging, metrics, etc.).
type Notifier interface {
	Notify(ctx context.Context, event Event) error
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(ctx context.Context, event Event) error

// Notify implements Notifier.
func (f NotifierFunc) Notify(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Bus fans emitted events out to downstream notifiers. Domain state is
// never persisted, so unlike a brokered bus this one is purely in-process.
type Bus struct {
	Notifiers []Notifier
	Now       func() time.Time
}

func (b *Bus) now() time.Time {
	if b != nil && b.Now != nil {
		return b.Now()
	}
	return time.Now()
}

// Emit dispatches the event to all configured notifiers, joining their
// errors. A nil bus is a no-op so callers can leave eventing unwired.
func (b *Bus) Emit(ctx context.Context, topic, sessionID string, payload any) (Event, error) {
	if b == nil {
		return Event{}, nil
	}
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return Event{}, errors.New("events: topic is required")
	}
	if strings.TrimSpace(sessionID) == "" {
		return Event{}, errors.New("events: session id is required")
	}
	ev := Event{
		Topic:      topic,
		SessionID:  sessionID,
		Payload:    payload,
		OccurredAt: b.now(),
	}
	var joined error
	for _, notifier := range b.Notifiers {
		if notifier == nil {
			continue
		}
		if err := notifier.Notify(ctx, ev); err != nil {
			joined = errors.Join(joined, fmt.Errorf("events: notifier: %w", err))
		}
	}
	return ev, joined
}
