// AngelaMos | 2026
// service_test.go

package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/classifieds/internal/core"
	"github.com/carterperez-dev/classifieds/internal/middleware"
)

type memGrants struct {
	mu     sync.Mutex
	grants map[string]*Grant
}

func newMemGrants() *memGrants {
	return &memGrants{grants: map[string]*Grant{}}
}

func (m *memGrants) Insert(_ context.Context, g *Grant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	g.CreatedAt = time.Now()
	cp := *g
	m.grants[g.ID] = &cp
	return nil
}

func (m *memGrants) ByHash(_ context.Context, hash string) (*Grant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, g := range m.grants {
		if g.TokenHash == hash {
			cp := *g
			return &cp, nil
		}
	}
	return nil, core.ErrNotFound
}

func (m *memGrants) ByID(_ context.Context, id string) (*Grant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if g, ok := m.grants[id]; ok {
		cp := *g
		return &cp, nil
	}
	return nil, core.ErrNotFound
}

func (m *memGrants) Consume(_ context.Context, id, successor string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.grants[id]
	if !ok || g.Consumed || g.RevokedAt != nil {
		return false, nil
	}
	g.Consumed = true
	g.SuccessorID = &successor
	return true, nil
}

func (m *memGrants) Revoke(_ context.Context, scope Scope, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	hit := false
	for _, g := range m.grants {
		var match bool
		switch scope {
		case ScopeGrant:
			match = g.ID == key
		case ScopeFamily:
			match = g.FamilyID == key
		case ScopeUser:
			match = g.UserID == key
		}
		if match && g.RevokedAt == nil {
			g.RevokedAt = &now
			hit = true
		}
	}
	if scope == ScopeGrant && !hit {
		return core.ErrNotFound
	}
	return nil
}

func (m *memGrants) ListActive(_ context.Context, userID string) ([]Grant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Grant
	for _, g := range m.grants {
		if g.UserID == userID && g.state(time.Now()) == grantActive {
			out = append(out, *g)
		}
	}
	return out, nil
}

func (m *memGrants) DeleteExpired(context.Context, time.Time) (int64, error) {
	return 0, nil
}

type memUsers struct {
	mu    sync.Mutex
	users map[string]*UserInfo
}

func (u *memUsers) GetByEmail(_ context.Context, email string) (*UserInfo, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	for _, info := range u.users {
		if info.Email == email {
			cp := *info
			return &cp, nil
		}
	}
	return nil, core.ErrNotFound
}

func (u *memUsers) GetByID(_ context.Context, id string) (*UserInfo, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if info, ok := u.users[id]; ok {
		cp := *info
		return &cp, nil
	}
	return nil, core.ErrNotFound
}

func (u *memUsers) Create(_ context.Context, email, hash, name string) (*UserInfo, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	for _, info := range u.users {
		if info.Email == email {
			return nil, core.ErrDuplicateKey
		}
	}
	info := &UserInfo{
		ID: "u-" + email, Email: email, Name: name, PasswordHash: hash,
		Role: core.RoleUser, Tier: core.TierFree,
	}
	u.users[info.ID] = info
	cp := *info
	return &cp, nil
}

func (u *memUsers) UpsertGoogle(context.Context, GoogleProfile) (*UserInfo, error) {
	return nil, core.ErrUnavailable
}

func (u *memUsers) IncrementTokenVersion(_ context.Context, id string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.users[id].TokenVersion++
	return nil
}

func (u *memUsers) UpdatePassword(_ context.Context, id, hash string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.users[id].PasswordHash = hash
	return nil
}

func newTestAuth(t *testing.T) (*Service, *memGrants, *memUsers) {
	t.Helper()
	grants := newMemGrants()
	users := &memUsers{users: map[string]*UserInfo{}}
	svc := NewService(grants, newTestJWT(t, time.Minute), users,
		&memBlacklist{revoked: map[string]bool{}}, nil)
	return svc, grants, users
}

var laptop = device{userAgent: "test-agent", ip: "10.0.0.1"}

func TestSignUpThenSignIn(t *testing.T) {
	svc, _, _ := newTestAuth(t)
	ctx := context.Background()
	creds := SignInRequest{Email: "seller@x.io", Password: "correct horse"}

	_, err := svc.SignUp(ctx, SignUpRequest{SignInRequest: creds, Name: "Seller"}, laptop)
	require.NoError(t, err)

	_, err = svc.SignUp(ctx, SignUpRequest{SignInRequest: creds, Name: "Again"}, laptop)
	assert.ErrorIs(t, err, ErrEmailExists)

	resp, err := svc.SignIn(ctx, creds, laptop)
	require.NoError(t, err)
	assert.Equal(t, "Seller", resp.User.Name)
	assert.Equal(t, "Bearer", resp.Tokens.TokenType)
	assert.NotEmpty(t, resp.Tokens.RefreshToken)

	_, err = svc.SignIn(ctx, SignInRequest{Email: creds.Email, Password: "wrong password"}, laptop)
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.SignIn(ctx, SignInRequest{Email: "nobody@x.io", Password: "whatever1"}, laptop)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRefreshRotatesAndDetectsReplay(t *testing.T) {
	svc, grants, _ := newTestAuth(t)
	ctx := context.Background()

	first, err := svc.SignUp(ctx, SignUpRequest{
		SignInRequest: SignInRequest{Email: "b@x.io", Password: "password1"},
		Name:          "B",
	}, laptop)
	require.NoError(t, err)

	second, err := svc.Refresh(ctx, first.Tokens.RefreshToken, laptop)
	require.NoError(t, err)
	assert.NotEqual(t, first.Tokens.RefreshToken, second.Tokens.RefreshToken)

	_, err = svc.Refresh(ctx, first.Tokens.RefreshToken, laptop)
	assert.ErrorIs(t, err, ErrTokenReuse)

	_, err = svc.Refresh(ctx, second.Tokens.RefreshToken, laptop)
	assert.ErrorIs(t, err, core.ErrTokenRevoked, "replay revokes the successor too")

	active, err := grants.ListActive(ctx, first.User.ID)
	require.NoError(t, err)
	assert.Empty(t, active)

	_, err = svc.Refresh(ctx, "never-issued", laptop)
	assert.ErrorIs(t, err, core.ErrTokenInvalid)
}

func TestSignOutEverywhereInvalidatesAccessTokens(t *testing.T) {
	svc, _, users := newTestAuth(t)
	ctx := context.Background()

	resp, err := svc.SignUp(ctx, SignUpRequest{
		SignInRequest: SignInRequest{Email: "c@x.io", Password: "password1"},
		Name:          "C",
	}, laptop)
	require.NoError(t, err)

	_, err = svc.VerifyAccessToken(ctx, resp.Tokens.AccessToken)
	require.NoError(t, err)

	require.NoError(t, svc.SignOutEverywhere(ctx, resp.User.ID))
	assert.Equal(t, 1, users.users[resp.User.ID].TokenVersion)

	_, err = svc.VerifyAccessToken(ctx, resp.Tokens.AccessToken)
	assert.ErrorIs(t, err, core.ErrTokenRevoked)
}

func TestSignOutRevokesOnlyOwnGrant(t *testing.T) {
	svc, _, _ := newTestAuth(t)
	ctx := context.Background()

	alice, err := svc.SignUp(ctx, SignUpRequest{
		SignInRequest: SignInRequest{Email: "a@x.io", Password: "password1"}, Name: "A",
	}, laptop)
	require.NoError(t, err)
	bob, err := svc.SignUp(ctx, SignUpRequest{
		SignInRequest: SignInRequest{Email: "bob@x.io", Password: "password1"}, Name: "Bob",
	}, laptop)
	require.NoError(t, err)

	session, err := svc.VerifyAccessToken(ctx, alice.Tokens.AccessToken)
	require.NoError(t, err)

	err = svc.SignOut(ctx, session, bob.Tokens.RefreshToken)
	assert.ErrorIs(t, err, core.ErrForbidden)

	other := &middleware.Session{UserID: session.UserID, TokenID: "other-jti", ExpiresAt: time.Now().Add(time.Minute)}
	require.NoError(t, svc.SignOut(ctx, other, alice.Tokens.RefreshToken))

	devices, err := svc.Devices(ctx, alice.User.ID)
	require.NoError(t, err)
	assert.Empty(t, devices)
}

func TestChangePasswordRequiresCurrent(t *testing.T) {
	svc, _, _ := newTestAuth(t)
	ctx := context.Background()

	resp, err := svc.SignUp(ctx, SignUpRequest{
		SignInRequest: SignInRequest{Email: "d@x.io", Password: "password1"}, Name: "D",
	}, laptop)
	require.NoError(t, err)

	err = svc.ChangePassword(ctx, resp.User.ID, PasswordChangeRequest{
		CurrentPassword: "nope-nope", NewPassword: "password2",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	require.NoError(t, svc.ChangePassword(ctx, resp.User.ID, PasswordChangeRequest{
		CurrentPassword: "password1", NewPassword: "password2",
	}))

	_, err = svc.SignIn(ctx, SignInRequest{Email: "d@x.io", Password: "password2"}, laptop)
	assert.NoError(t, err)
}
