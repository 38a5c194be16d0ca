// AngelaMos | 2026
// realtime_test.go

package realtime

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/carterperez-dev/classifieds/internal/config"
	"github.com/carterperez-dev/classifieds/internal/middleware"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func receive(t *testing.T, sub *Subscription) Event {
	t.Helper()
	select {
	case evt, ok := <-sub.Events():
		require.True(t, ok, "subscription closed")
		return evt
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func TestMemoryBrokerRoutesByTopic(t *testing.T) {
	b := NewMemoryBroker(4)
	defer b.Close()
	ctx := context.Background()

	alice, err := b.Subscribe(ctx, UserTopic("alice"))
	require.NoError(t, err)
	bob, err := b.Subscribe(ctx, UserTopic("bob"))
	require.NoError(t, err)

	require.NoError(t, PublishJSON(ctx, b, UserTopic("alice"), EventNotificationCreated,
		map[string]string{"title": "hi"}))

	evt := receive(t, alice)
	assert.Equal(t, EventNotificationCreated, evt.Type)
	assert.Equal(t, UserTopic("alice"), evt.Topic)
	assert.JSONEq(t, `{"title":"hi"}`, string(evt.Payload))

	select {
	case <-bob.Events():
		t.Fatal("bob received alice's event")
	default:
	}
}

func TestSlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	b := NewMemoryBroker(1)
	defer b.Close()
	ctx := context.Background()

	sub, err := b.Subscribe(ctx, "t")
	require.NoError(t, err)

	for range 5 {
		require.NoError(t, PublishJSON(ctx, b, "t", "x", 1))
	}
	assert.Equal(t, int64(4), sub.Dropped())
}

func TestCancelledSubscriptionUnregisters(t *testing.T) {
	b := NewMemoryBroker(1)
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	sub, err := b.Subscribe(ctx, "t")
	require.NoError(t, err)
	assert.Equal(t, 1, b.SubscriberCount("t"))

	cancel()
	_, ok := <-sub.Events()
	assert.False(t, ok)
	assert.Equal(t, 0, b.SubscriberCount("t"))
}

func TestClosedBrokerRejects(t *testing.T) {
	b := NewMemoryBroker(1)
	sub, err := b.Subscribe(context.Background(), "t")
	require.NoError(t, err)
	require.NoError(t, b.Close())

	_, ok := <-sub.Events()
	assert.False(t, ok)

	assert.ErrorIs(t, b.Publish(context.Background(), "t", Event{}), ErrBrokerClosed)
	_, err = b.Subscribe(context.Background(), "t")
	assert.ErrorIs(t, err, ErrBrokerClosed)
}

func TestStreamDeliversUserEvents(t *testing.T) {
	b := NewMemoryBroker(8)
	defer b.Close()

	h := NewHandler(b, config.RealtimeConfig{
		PingInterval: time.Second,
		WriteTimeout: time.Second,
	}, middleware.OriginCheck(middleware.NewCORS(config.CORSConfig{
		AllowedOrigins: []string{"*"},
	})), slog.Default())

	withUser := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := middleware.WithSession(r.Context(), &middleware.Session{UserID: "u1"})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}

	srv := httptest.NewServer(withUser(http.HandlerFunc(h.Stream)))
	defer srv.Close()

	conn, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Eventually(t, func() bool {
		return b.SubscriberCount(UserTopic("u1")) == 1
	}, time.Second, 10*time.Millisecond)

	require.NoError(t, PublishJSON(context.Background(), b, UserTopic("u1"),
		EventUnreadUpdated, map[string]int{"total": 3}))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var evt Event
	require.NoError(t, conn.ReadJSON(&evt))
	assert.Equal(t, EventUnreadUpdated, evt.Type)
	assert.JSONEq(t, `{"total":3}`, string(evt.Payload))

	h.Shutdown()
	_ = conn.Close()
}

func TestStreamRequiresSession(t *testing.T) {
	h := NewHandler(NewMemoryBroker(1), config.RealtimeConfig{}, nil, slog.Default())
	defer h.Shutdown()

	rec := httptest.NewRecorder()
	h.Stream(rec, httptest.NewRequest(http.MethodGet, "/realtime", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
