// AngelaMos | 2026
// security.go

package middleware

import (
	"net/http"

	"github.com/rs/cors"

	"github.com/carterperez-dev/classifieds/internal/config"
)

func SecurityHeaders(production bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
			h.Set("Cross-Origin-Opener-Policy", "same-origin")
			if production {
				h.Set(
					"Strict-Transport-Security",
					"max-age=63072000; includeSubDomains",
				)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// NewCORS builds the cross-origin policy shared by the HTTP router and
// the WebSocket upgrader.
func NewCORS(cfg config.CORSConfig) *cors.Cors {
	return cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   cfg.AllowedMethods,
		AllowedHeaders:   cfg.AllowedHeaders,
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           cfg.MaxAge,
	})
}

// OriginCheck adapts policy for websocket.Upgrader.CheckOrigin. Clients
// that send no Origin header are not browsers and pass.
func OriginCheck(policy *cors.Cors) func(*http.Request) bool {
	return func(r *http.Request) bool {
		return r.Header.Get("Origin") == "" || policy.OriginAllowed(r)
	}
}
