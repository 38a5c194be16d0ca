// AngelaMos | 2026
// system.go

package admin

import (
	"context"
	"runtime"
	"time"
)

type SystemStatus struct {
	Dependencies []Dependency `json:"dependencies"`
	Runtime      RuntimeStats `json:"runtime"`
}

type Dependency struct {
	Name      string `json:"name"`
	Healthy   bool   `json:"healthy"`
	LatencyMS int64  `json:"latency_ms"`
	Error     string `json:"error,omitempty"`
	Pool      *Pool  `json:"pool,omitempty"`
}

// Pool is the connection pool view shared by Postgres and Redis.
type Pool struct {
	Open     int   `json:"open"`
	InUse    int   `json:"in_use"`
	Idle     int   `json:"idle"`
	Waits    int64 `json:"waits"`
	Timeouts int64 `json:"timeouts"`
}

type RuntimeStats struct {
	GoVersion  string `json:"go_version"`
	Goroutines int    `json:"goroutines"`
	CPUs       int    `json:"cpus"`
	HeapBytes  uint64 `json:"heap_bytes"`
	SysBytes   uint64 `json:"sys_bytes"`
	GCRuns     uint32 `json:"gc_runs"`
}

func probe(
	ctx context.Context,
	name string,
	ping func(context.Context) error,
	pool func() *Pool,
) Dependency {
	dep := Dependency{Name: name, Healthy: true, Pool: pool()}
	if ping == nil {
		return dep
	}

	start := time.Now()
	err := ping(ctx)
	dep.LatencyMS = time.Since(start).Milliseconds()
	if err != nil {
		dep.Healthy = false
		dep.Error = err.Error()
	}
	return dep
}

func (h *Handler) postgresPool() *Pool {
	if h.cfg.DBStats == nil {
		return nil
	}
	s := h.cfg.DBStats()
	return &Pool{
		Open:  s.OpenConnections,
		InUse: s.InUse,
		Idle:  s.Idle,
		Waits: s.WaitCount,
	}
}

func (h *Handler) redisPool() *Pool {
	if h.cfg.RedisStats == nil {
		return nil
	}
	s := h.cfg.RedisStats()
	return &Pool{
		Open:     int(s.TotalConns),
		InUse:    int(s.TotalConns - s.IdleConns),
		Idle:     int(s.IdleConns),
		Waits:    int64(s.Misses),
		Timeouts: int64(s.Timeouts),
	}
}

func readRuntime() RuntimeStats {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return RuntimeStats{
		GoVersion:  runtime.Version(),
		Goroutines: runtime.NumGoroutine(),
		CPUs:       runtime.NumCPU(),
		HeapBytes:  m.HeapAlloc,
		SysBytes:   m.Sys,
		GCRuns:     m.NumGC,
	}
}
