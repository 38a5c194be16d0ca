// AngelaMos | 2026
// memory.go

package realtime

import (
	"context"
	"errors"
	"sync"
)

var ErrBrokerClosed = errors.New("broker closed")

// MemoryBroker delivers events within a single process.
type MemoryBroker struct {
	mu     sync.RWMutex
	topics map[string]map[*Subscription]struct{}
	buffer int
	closed bool
	wg     sync.WaitGroup
}

func NewMemoryBroker(buffer int) *MemoryBroker {
	return &MemoryBroker{
		topics: make(map[string]map[*Subscription]struct{}),
		buffer: buffer,
	}
}

func (b *MemoryBroker) Publish(_ context.Context, topic string, evt Event) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return ErrBrokerClosed
	}

	evt.Topic = topic
	for sub := range b.topics[topic] {
		sub.offer(evt)
	}

	return nil
}

func (b *MemoryBroker) Subscribe(
	ctx context.Context,
	topics ...string,
) (*Subscription, error) {
	sub := newSubscription(b.buffer)

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil, ErrBrokerClosed
	}
	for _, topic := range topics {
		subs, ok := b.topics[topic]
		if !ok {
			subs = make(map[*Subscription]struct{})
			b.topics[topic] = subs
		}
		subs[sub] = struct{}{}
	}
	b.wg.Add(1)
	b.mu.Unlock()

	go func() {
		defer b.wg.Done()

		select {
		case <-ctx.Done():
		case <-sub.done:
		}

		b.mu.Lock()
		for _, topic := range topics {
			if subs, ok := b.topics[topic]; ok {
				delete(subs, sub)
				if len(subs) == 0 {
					delete(b.topics, topic)
				}
			}
		}
		b.mu.Unlock()

		sub.Close()
		close(sub.events)
	}()

	return sub, nil
}

// Close ends every live subscription and waits for them to unwind.
func (b *MemoryBroker) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	var live []*Subscription
	for _, subs := range b.topics {
		for sub := range subs {
			live = append(live, sub)
		}
	}
	b.mu.Unlock()

	for _, sub := range live {
		sub.Close()
	}
	b.wg.Wait()

	return nil
}

// SubscriberCount reports how many subscriptions listen on topic.
func (b *MemoryBroker) SubscriberCount(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.topics[topic])
}
