// AngelaMos | 2026
// auth.go

package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/carterperez-dev/classifieds/internal/core"
)

type TokenVerifier interface {
	VerifyAccessToken(ctx context.Context, token string) (*Session, error)
}

var errNoToken = errors.New("no bearer token")

func authenticate(v TokenVerifier, r *http.Request) (*Session, error) {
	token := ExtractToken(r)
	if token == "" {
		return nil, errNoToken
	}
	return v.VerifyAccessToken(r.Context(), token)
}

// Authenticator rejects requests without a valid access token.
func Authenticator(v TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, err := authenticate(v, r)
			if err != nil {
				core.JSONError(w, rejection(err))
				return
			}
			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), s)))
		})
	}
}

// OptionalAuth attaches a session when the token checks out and lets the
// request through as anonymous otherwise.
func OptionalAuth(v TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if s, err := authenticate(v, r); err == nil {
				r = r.WithContext(WithSession(r.Context(), s))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin must run after Authenticator.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := SessionFrom(r.Context())
		switch {
		case s == nil:
			core.JSONError(w, core.UnauthorizedError("authentication required"))
		case !s.IsAdmin():
			core.JSONError(w, core.ForbiddenError("admin only"))
		default:
			next.ServeHTTP(w, r)
		}
	})
}

// ExtractToken reads a bearer token. Browsers cannot set headers on a
// WebSocket handshake, so upgrade requests may pass access_token instead.
func ExtractToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if !ok || !strings.EqualFold(scheme, "bearer") {
			return ""
		}
		return strings.TrimSpace(token)
	}
	if strings.EqualFold(r.Header.Get("Upgrade"), "websocket") {
		return r.URL.Query().Get("access_token")
	}
	return ""
}

func rejection(err error) error {
	switch {
	case core.IsAppError(err):
		return err
	case errors.Is(err, errNoToken):
		return core.UnauthorizedError("missing authorization token")
	case errors.Is(err, core.ErrTokenExpired):
		return core.TokenExpiredError()
	case errors.Is(err, core.ErrTokenRevoked):
		return core.TokenRevokedError()
	case errors.Is(err, core.ErrForbidden):
		return core.ForbiddenError("account suspended")
	}
	return core.TokenInvalidError()
}
