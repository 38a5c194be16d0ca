// AngelaMos | 2026
// service.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/carterperez-dev/classifieds/internal/core"
	"github.com/carterperez-dev/classifieds/internal/middleware"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenReuse         = errors.New("refresh token replayed")
	ErrEmailExists        = errors.New("email already registered")
	ErrAccountBanned      = errors.New("account suspended")
)

// UserInfo is the slice of a user account that sign-in needs.
type UserInfo struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	Role         string
	Tier         string
	TokenVersion int
	Banned       bool
}

// UserProvider is implemented by the user service. It lives here so the
// user package can depend on auth and not the other way round.
type UserProvider interface {
	GetByEmail(ctx context.Context, email string) (*UserInfo, error)
	GetByID(ctx context.Context, id string) (*UserInfo, error)
	Create(ctx context.Context, email, passwordHash, name string) (*UserInfo, error)
	UpsertGoogle(ctx context.Context, profile GoogleProfile) (*UserInfo, error)
	IncrementTokenVersion(ctx context.Context, userID string) error
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
}

type Service struct {
	grants    Repository
	jwt       *JWTManager
	users     UserProvider
	blacklist TokenBlacklist
	google    *GoogleVerifier
	now       func() time.Time
	logger    *slog.Logger
}

func NewService(
	grants Repository,
	jwt *JWTManager,
	users UserProvider,
	blacklist TokenBlacklist,
	google *GoogleVerifier,
) *Service {
	return &Service{
		grants:    grants,
		jwt:       jwt,
		users:     users,
		blacklist: blacklist,
		google:    google,
		now:       time.Now,
		logger:    slog.Default(),
	}
}

func (s *Service) SignIn(ctx context.Context, req SignInRequest, dev device) (*SignInResponse, error) {
	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil && !errors.Is(err, core.ErrNotFound) {
		return nil, fmt.Errorf("load account: %w", err)
	}

	var stored *string
	if user != nil {
		stored = &user.PasswordHash
	}
	ok, upgraded, err := core.CheckPassword(req.Password, stored)
	if err != nil {
		return nil, fmt.Errorf("check password: %w", err)
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}
	if user.Banned {
		return nil, ErrAccountBanned
	}

	if upgraded != "" {
		if err := s.users.UpdatePassword(ctx, user.ID, upgraded); err != nil {
			s.logger.WarnContext(ctx, "password rehash not saved",
				"user_id", user.ID,
				"error", err,
			)
		}
	}

	return s.issue(ctx, user, dev, "")
}

func (s *Service) SignUp(ctx context.Context, req SignUpRequest, dev device) (*SignInResponse, error) {
	hash, err := core.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.Create(ctx, req.Email, hash, req.Name)
	if errors.Is(err, core.ErrDuplicateKey) {
		return nil, ErrEmailExists
	}
	if err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}

	return s.issue(ctx, user, dev, "")
}

// SignInWithGoogle trades a verified Google ID token for a session. The
// local account is matched by Google subject, then by email, and created
// when neither exists.
func (s *Service) SignInWithGoogle(ctx context.Context, idToken string, dev device) (*SignInResponse, error) {
	profile, err := s.google.Verify(ctx, idToken)
	if err != nil {
		return nil, err
	}

	user, err := s.users.UpsertGoogle(ctx, *profile)
	if err != nil {
		return nil, fmt.Errorf("link google account: %w", err)
	}
	if user.Banned {
		return nil, ErrAccountBanned
	}

	return s.issue(ctx, user, dev, "")
}

// Refresh consumes the presented grant and issues its successor. A grant
// can be consumed once; presenting it again revokes the whole family.
func (s *Service) Refresh(ctx context.Context, token string, dev device) (*SignInResponse, error) {
	grant, err := s.grants.ByHash(ctx, core.HashToken(token))
	if errors.Is(err, core.ErrNotFound) {
		return nil, fmt.Errorf("refresh: %w", core.ErrTokenInvalid)
	}
	if err != nil {
		return nil, fmt.Errorf("refresh: %w", err)
	}

	switch grant.state(s.now()) {
	case grantConsumed:
		return nil, s.replayed(ctx, grant)
	case grantRevoked:
		return nil, fmt.Errorf("refresh: %w", core.ErrTokenRevoked)
	case grantExpired:
		return nil, fmt.Errorf("refresh: %w", core.ErrTokenExpired)
	}

	user, err := s.users.GetByID(ctx, grant.UserID)
	if err != nil {
		return nil, fmt.Errorf("refresh: load account: %w", err)
	}
	if user.Banned {
		return nil, ErrAccountBanned
	}

	successor := uuid.NewString()
	claimed, err := s.grants.Consume(ctx, grant.ID, successor)
	if err != nil {
		return nil, fmt.Errorf("refresh: %w", err)
	}
	if !claimed {
		return nil, s.replayed(ctx, grant)
	}

	return s.issueAs(ctx, user, dev, grant.FamilyID, successor)
}

func (s *Service) replayed(ctx context.Context, grant *Grant) error {
	s.logger.WarnContext(ctx, "refresh token replay, revoking family",
		"user_id", grant.UserID,
		"family_id", grant.FamilyID,
	)
	if err := s.grants.Revoke(ctx, ScopeFamily, grant.FamilyID); err != nil {
		return fmt.Errorf("revoke replayed family: %w", err)
	}
	return ErrTokenReuse
}

// SignOut blacklists the calling access token and, when given, revokes
// the caller's refresh token as well.
func (s *Service) SignOut(ctx context.Context, session *middleware.Session, refreshToken string) error {
	if err := s.blacklist.Revoke(ctx, session.TokenID, session.ExpiresAt); err != nil {
		return fmt.Errorf("sign out: %w", err)
	}
	if refreshToken == "" {
		return nil
	}

	grant, err := s.grants.ByHash(ctx, core.HashToken(refreshToken))
	if errors.Is(err, core.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("sign out: %w", err)
	}
	if grant.UserID != session.UserID {
		return fmt.Errorf("sign out: %w", core.ErrForbidden)
	}

	if err := s.grants.Revoke(ctx, ScopeGrant, grant.ID); err != nil &&
		!errors.Is(err, core.ErrNotFound) {
		return fmt.Errorf("sign out: %w", err)
	}
	return nil
}

// SignOutEverywhere revokes every grant and bumps the token version so
// outstanding access tokens fail verification too.
func (s *Service) SignOutEverywhere(ctx context.Context, userID string) error {
	if err := s.grants.Revoke(ctx, ScopeUser, userID); err != nil {
		return fmt.Errorf("sign out everywhere: %w", err)
	}
	if err := s.users.IncrementTokenVersion(ctx, userID); err != nil {
		return fmt.Errorf("sign out everywhere: %w", err)
	}
	return nil
}

// VerifyAccessToken backs the Authenticator middleware. On top of the
// signature it rejects blacklisted tokens, tokens older than the last
// sign-out-everywhere, and banned accounts. Role and tier come from the
// account so a lapsed subscription applies without a new token.
func (s *Service) VerifyAccessToken(ctx context.Context, token string) (*middleware.Session, error) {
	session, err := s.jwt.ParseAccessToken(token)
	if err != nil {
		return nil, err
	}

	revoked, err := s.blacklist.IsRevoked(ctx, session.TokenID)
	switch {
	case err != nil:
		return nil, fmt.Errorf("verify token: %w", err)
	case revoked:
		return nil, fmt.Errorf("verify token: %w", core.ErrTokenRevoked)
	}

	user, err := s.users.GetByID(ctx, session.UserID)
	switch {
	case errors.Is(err, core.ErrNotFound):
		return nil, fmt.Errorf("verify token: %w", core.ErrTokenInvalid)
	case err != nil:
		return nil, fmt.Errorf("verify token: %w", err)
	case user.Banned:
		return nil, fmt.Errorf("verify token: %w", core.ErrForbidden)
	case session.TokenVersion < user.TokenVersion:
		return nil, fmt.Errorf("verify token: %w", core.ErrTokenRevoked)
	}

	session.Role = user.Role
	session.Tier = user.Tier
	return session, nil
}

func (s *Service) Devices(ctx context.Context, userID string) ([]Device, error) {
	grants, err := s.grants.ListActive(ctx, userID)
	if err != nil {
		return nil, err
	}

	devices := make([]Device, len(grants))
	for i, g := range grants {
		devices[i] = Device{
			ID:         g.ID,
			UserAgent:  g.UserAgent,
			IPAddress:  g.IPAddress,
			SignedInAt: g.CreatedAt,
			ExpiresAt:  g.ExpiresAt,
		}
	}
	return devices, nil
}

func (s *Service) RevokeDevice(ctx context.Context, userID, grantID string) error {
	grant, err := s.grants.ByID(ctx, grantID)
	if err != nil {
		return err
	}
	if grant.UserID != userID {
		return fmt.Errorf("revoke device: %w", core.ErrNotFound)
	}
	return s.grants.Revoke(ctx, ScopeGrant, grantID)
}

// ChangePassword signs the account out everywhere once the new hash is
// stored, including the session that made the change.
func (s *Service) ChangePassword(ctx context.Context, userID string, req PasswordChangeRequest) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("change password: %w", err)
	}

	ok, _, err := core.CheckPassword(req.CurrentPassword, &user.PasswordHash)
	if err != nil {
		return fmt.Errorf("change password: %w", err)
	}
	if !ok {
		return ErrInvalidCredentials
	}

	hash, err := core.HashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("change password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		return fmt.Errorf("change password: %w", err)
	}
	return s.SignOutEverywhere(ctx, userID)
}

func (s *Service) Me(ctx context.Context, userID string) (*Account, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	acct := accountOf(user)
	return &acct, nil
}

func (s *Service) issue(ctx context.Context, user *UserInfo, dev device, familyID string) (*SignInResponse, error) {
	return s.issueAs(ctx, user, dev, familyID, uuid.NewString())
}

// issueAs mints an access token and stores a new grant with the given
// id. An empty familyID starts a new family.
func (s *Service) issueAs(
	ctx context.Context,
	user *UserInfo,
	dev device,
	familyID, grantID string,
) (*SignInResponse, error) {
	access, err := s.jwt.CreateAccessToken(AccessTokenClaims{
		UserID:       user.ID,
		Role:         user.Role,
		Tier:         user.Tier,
		TokenVersion: user.TokenVersion,
	})
	if err != nil {
		return nil, err
	}

	refresh, err := core.NewOpaqueToken()
	if err != nil {
		return nil, fmt.Errorf("mint refresh token: %w", err)
	}
	if familyID == "" {
		familyID = uuid.NewString()
	}

	now := s.now()
	err = s.grants.Insert(ctx, &Grant{
		ID:        grantID,
		UserID:    user.ID,
		TokenHash: core.HashToken(refresh),
		FamilyID:  familyID,
		ExpiresAt: now.Add(s.jwt.RefreshTokenTTL()),
		UserAgent: dev.userAgent,
		IPAddress: dev.ip,
	})
	if err != nil {
		return nil, err
	}

	ttl := s.jwt.AccessTokenTTL()
	return &SignInResponse{
		User: accountOf(user),
		Tokens: Tokens{
			AccessToken:  access,
			RefreshToken: refresh,
			TokenType:    "Bearer",
			ExpiresIn:    int(ttl.Seconds()),
			ExpiresAt:    now.Add(ttl),
		},
	}, nil
}
