// AngelaMos | 2026
// auth_test.go

package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/carterperez-dev/classifieds/internal/core"
)

type stubVerifier map[string]*Session

func (s stubVerifier) VerifyAccessToken(_ context.Context, token string) (*Session, error) {
	switch token {
	case "expired":
		return nil, core.ErrTokenExpired
	case "banned":
		return nil, core.ErrForbidden
	}
	if sess, ok := s[token]; ok {
		return sess, nil
	}
	return nil, core.ErrTokenInvalid
}

var verifier = stubVerifier{
	"user-token":  {UserID: "u1", Role: core.RoleUser, Tier: core.TierBasic},
	"admin-token": {UserID: "a1", Role: core.RoleAdmin, Tier: core.TierFree},
}

func echoUser(w http.ResponseWriter, r *http.Request) {
	id := GetUserID(r.Context())
	if id == "" {
		id = "anonymous"
	}
	_, _ = w.Write([]byte(id))
}

func do(h http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestAuthenticator(t *testing.T) {
	h := Authenticator(verifier)(http.HandlerFunc(echoUser))

	rec := do(h, "user-token")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u1", rec.Body.String())

	assert.Equal(t, http.StatusUnauthorized, do(h, "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(h, "forged").Code)
	assert.Equal(t, http.StatusUnauthorized, do(h, "expired").Code)
	assert.Equal(t, http.StatusForbidden, do(h, "banned").Code)
}

func TestOptionalAuthAllowsAnonymous(t *testing.T) {
	h := OptionalAuth(verifier)(http.HandlerFunc(echoUser))

	assert.Equal(t, "anonymous", do(h, "").Body.String())
	assert.Equal(t, "u1", do(h, "user-token").Body.String())
}

func TestRequireAdmin(t *testing.T) {
	h := Authenticator(verifier)(RequireAdmin(http.HandlerFunc(echoUser)))

	assert.Equal(t, http.StatusForbidden, do(h, "user-token").Code)
	assert.Equal(t, http.StatusOK, do(h, "admin-token").Code)
}

func TestExtractTokenFromWebSocketQuery(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/v1/realtime?access_token=abc", nil)
	assert.Empty(t, ExtractToken(req))

	req.Header.Set("Upgrade", "websocket")
	assert.Equal(t, "abc", ExtractToken(req))
}

func TestSessionHelpersAreNilSafe(t *testing.T) {
	ctx := context.Background()
	assert.Nil(t, SessionFrom(ctx))
	assert.Empty(t, GetUserID(ctx))
	assert.False(t, IsAdmin(ctx))

	ctx = WithSession(ctx, &Session{UserID: "a1", Role: core.RoleAdmin, Tier: core.TierPro})
	assert.True(t, IsAdmin(ctx))
	assert.Equal(t, core.TierPro, GetUserTier(ctx))
}
