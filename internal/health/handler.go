// AngelaMos | 2026
// handler.go

package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"
)

const probeTimeout = 5 * time.Second

type Checker interface {
	Ping(ctx context.Context) error
}

type CheckFunc func(ctx context.Context) error

func (f CheckFunc) Ping(ctx context.Context) error { return f(ctx) }

type phase int32

const (
	phaseStarting phase = iota
	phaseServing
	phaseDraining
)

var phaseNames = [...]string{"starting", "ok", "shutting_down"}

// Handler answers orchestrator probes. Liveness only fails while
// draining; readiness also fails before MarkServing and whenever a
// registered dependency does not answer.
type Handler struct {
	deps  []dependency
	phase atomic.Int32
}

type dependency struct {
	name string
	ping Checker
}

func NewHandler() *Handler {
	return &Handler{}
}

// Register adds a dependency probed by /readyz. Call before serving.
func (h *Handler) Register(name string, c Checker) *Handler {
	h.deps = append(h.deps, dependency{name: name, ping: c})
	return h
}

// MarkServing is called once the listener is up.
func (h *Handler) MarkServing() {
	h.phase.CompareAndSwap(int32(phaseStarting), int32(phaseServing))
}

// Drain makes every probe fail so load balancers stop routing here.
func (h *Handler) Drain() {
	h.phase.Store(int32(phaseDraining))
}

func (h *Handler) current() phase {
	return phase(h.phase.Load())
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/healthz", h.Liveness)
	r.Get("/livez", h.Liveness)
	r.Get("/readyz", h.Readiness)
}

func (h *Handler) Liveness(w http.ResponseWriter, _ *http.Request) {
	if p := h.current(); p == phaseDraining {
		reply(w, http.StatusServiceUnavailable, StatusResponse{Status: phaseNames[p]})
		return
	}
	reply(w, http.StatusOK, StatusResponse{Status: phaseNames[phaseServing]})
}

func (h *Handler) Readiness(w http.ResponseWriter, r *http.Request) {
	if p := h.current(); p != phaseServing {
		reply(w, http.StatusServiceUnavailable, StatusResponse{Status: phaseNames[p]})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), probeTimeout)
	defer cancel()

	checks := h.probeAll(ctx)
	out := ReadinessResponse{Status: "ok", Checks: checks}
	code := http.StatusOK
	for _, c := range checks {
		if !c.Healthy {
			out.Status, code = "degraded", http.StatusServiceUnavailable
			break
		}
	}
	reply(w, code, out)
}

func (h *Handler) probeAll(ctx context.Context) []HealthCheck {
	out := make([]HealthCheck, len(h.deps))
	var g errgroup.Group
	for i, d := range h.deps {
		g.Go(func() error {
			out[i] = d.probe(ctx)
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func (d dependency) probe(ctx context.Context) HealthCheck {
	if d.ping == nil {
		return HealthCheck{Name: d.name, Message: "not configured"}
	}
	start := time.Now()
	err := d.ping.Ping(ctx)
	hc := HealthCheck{
		Name:    d.name,
		Healthy: err == nil,
		Latency: time.Since(start).String(),
	}
	if err != nil {
		hc.Message = "ping failed"
	}
	return hc
}

func reply(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

type StatusResponse struct {
	Status string `json:"status"`
}

type ReadinessResponse struct {
	Status string        `json:"status"`
	Checks []HealthCheck `json:"checks"`
}

type HealthCheck struct {
	Name    string `json:"name"`
	Healthy bool   `json:"healthy"`
	Latency string `json:"latency,omitempty"`
	Message string `json:"message,omitempty"`
}
