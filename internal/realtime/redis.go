// AngelaMos | 2026
// redis.go

package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/redis/go-redis/v9"
)

const channelPrefix = "rt:"

// RedisBroker fans events out across API replicas through Redis pub/sub.
type RedisBroker struct {
	client *redis.Client
	buffer int
	wg     sync.WaitGroup

	mu     sync.Mutex
	live   map[*Subscription]struct{}
	closed bool
}

func NewRedisBroker(client *redis.Client, buffer int) *RedisBroker {
	return &RedisBroker{
		client: client,
		buffer: buffer,
		live:   make(map[*Subscription]struct{}),
	}
}

func (b *RedisBroker) Publish(ctx context.Context, topic string, evt Event) error {
	evt.Topic = topic

	raw, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	if err := b.client.Publish(ctx, channelPrefix+topic, raw).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}

	return nil
}

func (b *RedisBroker) Subscribe(
	ctx context.Context,
	topics ...string,
) (*Subscription, error) {
	channels := make([]string, 0, len(topics))
	for _, t := range topics {
		channels = append(channels, channelPrefix+t)
	}

	ps := b.client.Subscribe(ctx, channels...)
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close() //nolint:errcheck // cleanup after failed subscribe
		return nil, fmt.Errorf("subscribe: %w", err)
	}

	sub := newSubscription(b.buffer)

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		_ = ps.Close() //nolint:errcheck // broker already closed
		return nil, ErrBrokerClosed
	}
	b.live[sub] = struct{}{}
	b.wg.Add(1)
	b.mu.Unlock()

	go b.pump(ctx, ps, sub)

	return sub, nil
}

func (b *RedisBroker) pump(ctx context.Context, ps *redis.PubSub, sub *Subscription) {
	defer b.wg.Done()
	defer func() {
		b.mu.Lock()
		delete(b.live, sub)
		b.mu.Unlock()

		if err := ps.Close(); err != nil {
			slog.Debug("close pubsub", "error", err)
		}
		sub.Close()
		close(sub.events)
	}()

	msgs := ps.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case <-sub.done:
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}

			var evt Event
			if err := json.Unmarshal([]byte(msg.Payload), &evt); err != nil {
				slog.Warn("discarding malformed realtime event",
					"channel", msg.Channel,
					"error", err,
				)
				continue
			}
			sub.offer(evt)
		}
	}
}

func (b *RedisBroker) Close() error {
	b.mu.Lock()
	b.closed = true
	live := make([]*Subscription, 0, len(b.live))
	for sub := range b.live {
		live = append(live, sub)
	}
	b.mu.Unlock()

	for _, sub := range live {
		sub.Close()
	}
	b.wg.Wait()

	return nil
}
