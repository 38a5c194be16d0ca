// AngelaMos | 2026
// broker.go

package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

const (
	EventMessageCreated      = "message.created"
	EventUnreadUpdated       = "unread.updated"
	EventNotificationCreated = "notification.created"
	EventTransactionUpdated  = "transaction.updated"
)

type Event struct {
	Type    string          `json:"type"`
	Topic   string          `json:"topic,omitempty"`
	Payload json.RawMessage `json:"payload"`
	At      time.Time       `json:"at"`
}

func NewEvent(eventType string, payload any) (Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}
	return Event{
		Type:    eventType,
		Payload: raw,
		At:      time.Now().UTC(),
	}, nil
}

func UserTopic(userID string) string {
	return "user:" + userID
}

// Broker fans events out to subscribers of a topic. Delivery is at most
// once and per-topic order follows the backing transport.
type Broker interface {
	Publish(ctx context.Context, topic string, evt Event) error
	Subscribe(ctx context.Context, topics ...string) (*Subscription, error)
	Close() error
}

// Subscription is a live stream of events. Events is closed once the
// subscription ends, either through Close or cancellation of the context
// passed to Subscribe. Close is safe to call more than once.
type Subscription struct {
	events  chan Event
	done    chan struct{}
	once    sync.Once
	dropped atomic.Int64
}

func newSubscription(buffer int) *Subscription {
	if buffer < 1 {
		buffer = 1
	}
	return &Subscription{
		events: make(chan Event, buffer),
		done:   make(chan struct{}),
	}
}

func (s *Subscription) Events() <-chan Event {
	return s.events
}

func (s *Subscription) Close() {
	s.once.Do(func() {
		close(s.done)
	})
}

// Dropped counts events discarded because the subscriber fell behind.
func (s *Subscription) Dropped() int64 {
	return s.dropped.Load()
}

// offer delivers without blocking the publisher.
func (s *Subscription) offer(evt Event) {
	select {
	case s.events <- evt:
	default:
		s.dropped.Add(1)
	}
}

// PublishJSON builds and publishes an event in one call.
func PublishJSON(
	ctx context.Context,
	b Broker,
	topic, eventType string,
	payload any,
) error {
	evt, err := NewEvent(eventType, payload)
	if err != nil {
		return err
	}
	return b.Publish(ctx, topic, evt)
}
