// AngelaMos | 2026
// handler.go

package admin

import (
	"context"
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/carterperez-dev/classifieds/internal/core"
)

type HandlerConfig struct {
	DBStats    func() sql.DBStats
	RedisStats func() *redis.PoolStats
	DBPing     func(ctx context.Context) error
	RedisPing  func(ctx context.Context) error
	Counters   Counters
}

// Handler serves the moderator dashboard and the operator view of the
// process and its backing stores.
type Handler struct {
	cfg HandlerConfig
}

func NewHandler(cfg HandlerConfig) *Handler {
	return &Handler{cfg: cfg}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator, adminOnly func(http.Handler) http.Handler,
) {
	r.Route("/admin", func(r chi.Router) {
		r.Use(authenticator, adminOnly)

		r.Get("/dashboard", h.GetDashboard)
		r.Get("/system", h.GetSystem)
		r.Get("/system/runtime", h.GetRuntime)
	})
}

func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.cfg.Counters.collect(r.Context())
	if err != nil {
		core.Fail(w, err, "dashboard")
		return
	}
	core.OK(w, d)
}

func (h *Handler) GetSystem(w http.ResponseWriter, r *http.Request) {
	core.OK(w, SystemStatus{
		Dependencies: []Dependency{
			probe(r.Context(), "postgres", h.cfg.DBPing, h.postgresPool),
			probe(r.Context(), "redis", h.cfg.RedisPing, h.redisPool),
		},
		Runtime: readRuntime(),
	})
}

func (h *Handler) GetRuntime(w http.ResponseWriter, _ *http.Request) {
	core.OK(w, readRuntime())
}
