// AngelaMos | 2026
// security_test.go

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/carterperez-dev/classifieds/internal/config"
)

var testCORS = config.CORSConfig{
	AllowedOrigins:   []string{"https://market.example"},
	AllowedMethods:   []string{http.MethodGet, http.MethodPost},
	AllowedHeaders:   []string{"Authorization", "Content-Type"},
	AllowCredentials: true,
	MaxAge:           600,
}

func preflight(origin string) *http.Request {
	req := httptest.NewRequest(http.MethodOptions, "/v1/listings", nil)
	req.Header.Set("Origin", origin)
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	return req
}

func TestCORSPreflight(t *testing.T) {
	reached := false
	h := NewCORS(testCORS).Handler(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		reached = true
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, preflight("https://market.example"))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://market.example", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
	assert.Equal(t, "600", rec.Header().Get("Access-Control-Max-Age"))
	assert.False(t, reached)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, preflight("https://evil.example"))

	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	assert.False(t, reached)
}

func TestCORSSimpleRequest(t *testing.T) {
	h := NewCORS(testCORS).Handler(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/v1/listings", nil)
	req.Header.Set("Origin", "https://market.example")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://market.example", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Values("Vary"), "Origin")
}

func TestOriginCheckMatchesCORSPolicy(t *testing.T) {
	check := OriginCheck(NewCORS(testCORS))

	tests := []struct {
		origin string
		want   bool
	}{
		{"https://market.example", true},
		{"https://evil.example", false},
		{"", true},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/v1/realtime", nil)
		if tt.origin != "" {
			req.Header.Set("Origin", tt.origin)
		}
		assert.Equal(t, tt.want, check(req), tt.origin)
	}
}

func TestSecurityHeaders(t *testing.T) {
	next := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})

	rec := httptest.NewRecorder()
	SecurityHeaders(true)(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, rec.Header().Get("Strict-Transport-Security"))

	rec = httptest.NewRecorder()
	SecurityHeaders(false)(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Empty(t, rec.Header().Get("Strict-Transport-Security"))
}
