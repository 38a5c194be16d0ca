// AngelaMos | 2026
// ratelimit.go

package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	redis_rate "github.com/go-redis/redis_rate/v10"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/carterperez-dev/classifieds/internal/core"
)

// Policy is one named request budget. Key picks the bucket a request
// draws from; requests sharing a key share the budget.
type Policy struct {
	Name     string
	Limit    redis_rate.Limit
	Key      func(*http.Request) string
	FailOpen bool
}

// Throttle enforces policies against Redis. When Redis cannot answer it
// falls back to per-process token buckets so a cache outage degrades
// limits instead of disabling them.
type Throttle struct {
	remote *redis_rate.Limiter
	local  *localBuckets
	logger *slog.Logger
}

func NewThrottle(rdb *redis.Client, logger *slog.Logger) *Throttle {
	if logger == nil {
		logger = slog.Default()
	}
	return &Throttle{
		remote: redis_rate.NewLimiter(rdb),
		local:  newLocalBuckets(10 * time.Minute),
		logger: logger,
	}
}

func (t *Throttle) Limit(p Policy) func(http.Handler) http.Handler {
	if p.Key == nil {
		p.Key = ByIP
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := "ratelimit:" + p.Name + ":" + p.Key(r)
			if !t.admit(w, r, key, p.Limit, p.FailOpen) {
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ByTier gives paying sellers a larger budget on the routes it guards.
// Anonymous callers and unknown tiers use the free budget. It must run
// after a middleware that attaches the session.
func (t *Throttle) ByTier(name string, budgets map[string]redis_rate.Limit) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tier := GetUserTier(r.Context())
			limit, ok := budgets[tier]
			if !ok {
				tier = core.TierFree
				limit = budgets[core.TierFree]
			}

			w.Header().Set("X-RateLimit-Tier", tier)
			key := "ratelimit:" + name + ":" + ByPrincipalRoute(r)
			if !t.admit(w, r, key, limit, true) {
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (t *Throttle) admit(
	w http.ResponseWriter,
	r *http.Request,
	key string,
	limit redis_rate.Limit,
	failOpen bool,
) bool {
	res, err := t.take(r.Context(), key, limit)
	if err != nil {
		if failOpen {
			t.logger.Warn("rate limit check failed, admitting request",
				"key", key,
				"error", err,
			)
			return true
		}
		core.JSONError(w, core.NewAppError(err,
			"rate limiter unavailable",
			http.StatusServiceUnavailable,
			"SERVICE_UNAVAILABLE",
		))
		return false
	}

	writeBudgetHeaders(w.Header(), res, limit)
	if res.Allowed > 0 {
		return true
	}

	wait := max(int(res.RetryAfter.Seconds()), 1)
	w.Header().Set("Retry-After", strconv.Itoa(wait))
	core.JSONError(w, core.NewAppError(nil,
		fmt.Sprintf("too many requests, retry in %ds", wait),
		http.StatusTooManyRequests,
		"RATE_LIMITED",
	))
	return false
}

func (t *Throttle) take(
	ctx context.Context,
	key string,
	limit redis_rate.Limit,
) (*redis_rate.Result, error) {
	res, err := t.remote.Allow(ctx, key, limit)
	if err == nil {
		return res, nil
	}
	return t.local.take(key, limit, time.Now())
}

func writeBudgetHeaders(h http.Header, res *redis_rate.Result, limit redis_rate.Limit) {
	h.Set("X-RateLimit-Limit", strconv.Itoa(limit.Rate))
	h.Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
	h.Set("X-RateLimit-Reset",
		strconv.FormatInt(time.Now().Add(res.ResetAfter).Unix(), 10))
	h.Set("RateLimit-Policy",
		fmt.Sprintf("%d;w=%d", limit.Rate, int(limit.Period.Seconds())))
}

// ClientIP trusts the last X-Forwarded-For hop, which is the one appended
// by our own proxy.
func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		hops := strings.Split(fwd, ",")
		return strings.TrimSpace(hops[len(hops)-1])
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func ByIP(r *http.Request) string {
	return "ip:" + ClientIP(r)
}

// ByPrincipal keys signed-in callers by user id and everyone else by IP.
func ByPrincipal(r *http.Request) string {
	if id := GetUserID(r.Context()); id != "" {
		return "user:" + id
	}
	return ByIP(r)
}

// ByPrincipalRoute separates budgets per endpoint so that, say, screenshot
// captures do not eat into the image upload allowance.
func ByPrincipalRoute(r *http.Request) string {
	return ByPrincipal(r) + ":" + routeShape(r.URL.Path)
}

// routeShape collapses identifiers out of a path so every listing id maps
// onto the same bucket.
func routeShape(path string) string {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	for i, seg := range segments {
		if looksLikeID(seg) {
			segments[i] = ":id"
		}
	}
	return "/" + strings.Join(segments, "/")
}

func looksLikeID(seg string) bool {
	if len(seg) == 36 && seg[8] == '-' && seg[13] == '-' && seg[18] == '-' && seg[23] == '-' {
		return true
	}
	if seg == "" {
		return false
	}
	for _, c := range seg {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func Window(requests, burst int, period time.Duration) redis_rate.Limit {
	return redis_rate.Limit{Rate: requests, Burst: burst, Period: period}
}

func PerMinute(requests, burst int) redis_rate.Limit {
	return Window(requests, burst, time.Minute)
}

// TierBudgets sizes the per-tier allowance for expensive seller actions.
func TierBudgets(free redis_rate.Limit) map[string]redis_rate.Limit {
	scale := func(n int) redis_rate.Limit {
		return Window(free.Rate*n, free.Burst*n, free.Period)
	}
	return map[string]redis_rate.Limit{
		core.TierFree:  free,
		core.TierBasic: scale(4),
		core.TierPro:   scale(15),
	}
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// localBuckets is the in-process fallback. Idle buckets are swept lazily
// on access so no background goroutine outlives the server.
type localBuckets struct {
	mu        sync.Mutex
	buckets   map[string]*bucket
	idle      time.Duration
	lastSweep time.Time
}

func newLocalBuckets(idle time.Duration) *localBuckets {
	return &localBuckets{
		buckets: make(map[string]*bucket),
		idle:    idle,
	}
}

func (l *localBuckets) take(
	key string,
	limit redis_rate.Limit,
	now time.Time,
) (*redis_rate.Result, error) {
	if limit.Rate <= 0 || limit.Period <= 0 {
		return nil, fmt.Errorf("invalid limit %q for %s", limit.String(), key)
	}
	perSecond := float64(limit.Rate) / limit.Period.Seconds()
	refill := time.Duration(float64(time.Second) / perSecond)

	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) > l.idle {
		for k, b := range l.buckets {
			if now.Sub(b.lastSeen) > l.idle {
				delete(l.buckets, k)
			}
		}
		l.lastSweep = now
	}

	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(rate.Limit(perSecond), max(limit.Burst, 1))}
		l.buckets[key] = b
	}
	b.lastSeen = now

	res := &redis_rate.Result{
		Limit:      limit,
		RetryAfter: -1,
		ResetAfter: refill,
	}
	if b.limiter.AllowN(now, 1) {
		res.Allowed = 1
	} else {
		res.RetryAfter = refill
	}
	res.Remaining = max(int(b.limiter.TokensAt(now)), 0)
	return res, nil
}
