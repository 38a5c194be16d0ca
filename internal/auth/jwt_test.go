// AngelaMos | 2026
// jwt_test.go

package auth

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/classifieds/internal/config"
	"github.com/carterperez-dev/classifieds/internal/core"
)

func newTestJWT(t *testing.T, ttl time.Duration) *JWTManager {
	t.Helper()
	dir := t.TempDir()
	priv := filepath.Join(dir, "private.pem")
	pub := filepath.Join(dir, "public.pem")
	require.NoError(t, GenerateKeyPair(priv, pub))

	m, err := NewJWTManager(config.JWTConfig{
		PrivateKeyPath:     priv,
		PublicKeyPath:      pub,
		AccessTokenExpire:  ttl,
		RefreshTokenExpire: time.Hour,
		Issuer:             "classifieds",
		Audience:           "classifieds-api",
	})
	require.NoError(t, err)
	return m
}

func TestAccessTokenRoundTrip(t *testing.T) {
	m := newTestJWT(t, time.Minute)

	token, err := m.CreateAccessToken(AccessTokenClaims{
		UserID:       "u1",
		Role:         core.RoleUser,
		Tier:         core.TierPro,
		TokenVersion: 3,
	})
	require.NoError(t, err)

	session, err := m.ParseAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", session.UserID)
	assert.Equal(t, core.TierPro, session.Tier)
	assert.Equal(t, 3, session.TokenVersion)
	assert.NotEmpty(t, session.TokenID)
}

func TestParseRejectsForeignKey(t *testing.T) {
	a := newTestJWT(t, time.Minute)
	b := newTestJWT(t, time.Minute)

	token, err := a.CreateAccessToken(AccessTokenClaims{UserID: "u1", Role: "user", Tier: "free"})
	require.NoError(t, err)

	_, err = b.ParseAccessToken(token)
	assert.ErrorIs(t, err, core.ErrTokenInvalid)

	_, err = a.ParseAccessToken("not-a-token")
	assert.ErrorIs(t, err, core.ErrTokenInvalid)
}

type memBlacklist struct {
	mu      sync.Mutex
	revoked map[string]bool
}

func (b *memBlacklist) Revoke(_ context.Context, jti string, _ time.Time) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.revoked[jti] = true
	return nil
}

func (b *memBlacklist) IsRevoked(_ context.Context, jti string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.revoked[jti], nil
}

type stubUsers struct {
	UserProvider
	users map[string]*UserInfo
}

func (s stubUsers) GetByID(_ context.Context, id string) (*UserInfo, error) {
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return nil, core.ErrNotFound
}

func TestVerifyAccessTokenAppliesAccountState(t *testing.T) {
	m := newTestJWT(t, time.Minute)
	users := stubUsers{users: map[string]*UserInfo{
		"u1":     {ID: "u1", Role: core.RoleUser, Tier: core.TierBasic, TokenVersion: 1},
		"banned": {ID: "banned", Role: core.RoleUser, Tier: core.TierFree, Banned: true},
	}}
	bl := &memBlacklist{revoked: map[string]bool{}}
	svc := NewService(nil, m, users, bl, nil)
	ctx := context.Background()

	mint := func(id string, version int) string {
		tok, err := m.CreateAccessToken(AccessTokenClaims{
			UserID: id, Role: core.RoleUser, Tier: core.TierFree, TokenVersion: version,
		})
		require.NoError(t, err)
		return tok
	}

	session, err := svc.VerifyAccessToken(ctx, mint("u1", 1))
	require.NoError(t, err)
	assert.Equal(t, core.TierBasic, session.Tier, "tier is refreshed from the user record")

	_, err = svc.VerifyAccessToken(ctx, mint("u1", 0))
	assert.ErrorIs(t, err, core.ErrTokenRevoked)

	_, err = svc.VerifyAccessToken(ctx, mint("banned", 0))
	assert.ErrorIs(t, err, core.ErrForbidden)

	_, err = svc.VerifyAccessToken(ctx, mint("ghost", 0))
	assert.ErrorIs(t, err, core.ErrTokenInvalid)

	tok := mint("u1", 1)
	parsed, err := m.ParseAccessToken(tok)
	require.NoError(t, err)
	require.NoError(t, bl.Revoke(ctx, parsed.TokenID, parsed.ExpiresAt))
	_, err = svc.VerifyAccessToken(ctx, tok)
	assert.ErrorIs(t, err, core.ErrTokenRevoked)
}
