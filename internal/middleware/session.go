// AngelaMos | 2026
// session.go

package middleware

import (
	"context"
	"time"

	"github.com/carterperez-dev/classifieds/internal/core"
)

type sessionKey struct{}

// Session is the authenticated caller for one request.
type Session struct {
	UserID       string
	Role         string
	Tier         string
	TokenVersion int
	TokenID      string
	ExpiresAt    time.Time
}

func (s *Session) IsAdmin() bool {
	return s != nil && s.Role == core.RoleAdmin
}

func WithSession(ctx context.Context, s *Session) context.Context {
	if entry, ok := ctx.Value(accessLogKey{}).(*accessLog); ok && s != nil {
		entry.userID = s.UserID
	}
	return context.WithValue(ctx, sessionKey{}, s)
}

func SessionFrom(ctx context.Context) *Session {
	s, _ := ctx.Value(sessionKey{}).(*Session)
	return s
}

func GetUserID(ctx context.Context) string {
	if s := SessionFrom(ctx); s != nil {
		return s.UserID
	}
	return ""
}

func GetUserTier(ctx context.Context) string {
	if s := SessionFrom(ctx); s != nil {
		return s.Tier
	}
	return ""
}

func IsAdmin(ctx context.Context) bool {
	return SessionFrom(ctx).IsAdmin()
}
