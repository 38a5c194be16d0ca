// AngelaMos | 2026
// server.go

package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/carterperez-dev/classifieds/internal/config"
	"github.com/carterperez-dev/classifieds/internal/middleware"
)

// Probes is the health surface the server drives across its lifecycle.
type Probes interface {
	MarkServing()
	Drain()
}

type Config struct {
	ServerConfig  config.ServerConfig
	HealthHandler Probes
	Logger        *slog.Logger
}

type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	health     Probes
	logger     *slog.Logger
}

func New(cfg Config) *Server {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Server{
		httpServer: &http.Server{
			Addr:              cfg.ServerConfig.Address(),
			Handler:           router,
			ReadTimeout:       cfg.ServerConfig.ReadTimeout,
			ReadHeaderTimeout: 10 * time.Second,
			WriteTimeout:      cfg.ServerConfig.WriteTimeout,
			IdleTimeout:       cfg.ServerConfig.IdleTimeout,
		},
		router: router,
		health: cfg.HealthHandler,
		logger: logger,
	}
}

func (s *Server) Router() *chi.Mux {
	return s.router
}

// OnShutdown registers fn to run when Shutdown begins. Hijacked
// connections such as WebSockets are not tracked by http.Server and must
// close themselves from here.
func (s *Server) OnShutdown(fn func()) {
	s.httpServer.RegisterOnShutdown(fn)
}

func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.httpServer.Addr, err)
	}
	s.logger.Info("http server listening", "address", ln.Addr().String())

	if s.health != nil {
		s.health.MarkServing()
	}
	if err := s.httpServer.Serve(ln); err != nil &&
		!errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}

	return nil
}

// Shutdown flips readiness off, gives load balancers drainDelay to notice,
// then stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context, drainDelay time.Duration) error {
	if s.health != nil {
		s.health.Drain()
	}

	if drainDelay > 0 {
		s.logger.Info("draining before shutdown", "delay", drainDelay.String())
		select {
		case <-time.After(drainDelay):
		case <-ctx.Done():
		}
	}

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}

	return nil
}
