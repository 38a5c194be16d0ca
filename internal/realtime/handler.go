// AngelaMos | 2026
// handler.go

package realtime

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/carterperez-dev/classifieds/internal/config"
	"github.com/carterperez-dev/classifieds/internal/core"
	"github.com/carterperez-dev/classifieds/internal/middleware"
)

const maxClientFrame = 4096

// Handler upgrades authenticated requests to a WebSocket that streams the
// caller's user topic until either side goes away.
type Handler struct {
	broker   Broker
	upgrader websocket.Upgrader
	cfg      config.RealtimeConfig
	logger   *slog.Logger

	base   context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewHandler(
	broker Broker,
	cfg config.RealtimeConfig,
	checkOrigin func(*http.Request) bool,
	logger *slog.Logger,
) *Handler {
	base, cancel := context.WithCancel(context.Background())

	if cfg.PingInterval <= 0 {
		cfg.PingInterval = 30 * time.Second
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 10 * time.Second
	}

	return &Handler{
		broker: broker,
		cfg:    cfg,
		logger: logger,
		base:   base,
		cancel: cancel,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.With(authenticator).Get("/realtime", h.Stream)
}

func (h *Handler) Stream(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		core.Unauthorized(w, "authentication required")
		return
	}

	ctx, cancel := context.WithCancel(h.base)
	sub, err := h.broker.Subscribe(ctx, UserTopic(userID))
	if err != nil {
		cancel()
		core.Fail(w, err, "subscription")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		cancel()
		sub.Close()
		h.logger.Debug("websocket upgrade failed", "error", err)
		return
	}

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		defer cancel()
		h.serve(ctx, cancel, conn, sub, userID)
	}()
}

func (h *Handler) serve(
	ctx context.Context,
	cancel context.CancelFunc,
	conn *websocket.Conn,
	sub *Subscription,
	userID string,
) {
	defer func() {
		sub.Close()
		//nolint:errcheck // connection is going away regardless
		_ = conn.Close()
	}()

	pongWait := h.cfg.PingInterval * 2
	conn.SetReadLimit(maxClientFrame)
	//nolint:errcheck // deadline errors surface on the next read
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	// Reader only drains control frames and notices disconnects.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(h.cfg.PingInterval)
	defer ticker.Stop()

	h.logger.Debug("realtime stream opened", "user_id", userID)

	for {
		select {
		case <-ctx.Done():
			h.writeClose(conn)
			return

		case evt, ok := <-sub.Events():
			if !ok {
				h.writeClose(conn)
				return
			}
			//nolint:errcheck // write failure is caught by WriteJSON
			_ = conn.SetWriteDeadline(time.Now().Add(h.cfg.WriteTimeout))
			if err := conn.WriteJSON(evt); err != nil {
				h.logger.Debug("realtime write failed",
					"user_id", userID,
					"error", err,
				)
				return
			}

		case <-ticker.C:
			deadline := time.Now().Add(h.cfg.WriteTimeout)
			if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				return
			}
		}
	}
}

func (h *Handler) writeClose(conn *websocket.Conn) {
	msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server closing")
	//nolint:errcheck // peer may already be gone
	_ = conn.WriteControl(
		websocket.CloseMessage,
		msg,
		time.Now().Add(h.cfg.WriteTimeout),
	)
}

// Shutdown closes every open stream and waits for their goroutines.
func (h *Handler) Shutdown() {
	h.cancel()
	h.wg.Wait()
}
