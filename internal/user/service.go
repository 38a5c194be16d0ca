// AngelaMos | 2026
// service.go

package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/carterperez-dev/classifieds/internal/auth"
	"github.com/carterperez-dev/classifieds/internal/core"
)

// Service owns member accounts. It also serves as auth's UserProvider, so
// the tier it reports there is the effective tier at call time.
type Service struct {
	repo   Repository
	logger *slog.Logger
	now    func() time.Time
}

var _ auth.UserProvider = (*Service)(nil)

func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger, now: time.Now}
}

func canonicalEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *Service) credentials(u *User) *auth.UserInfo {
	return &auth.UserInfo{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		PasswordHash: u.PasswordHash,
		Role:         u.Role,
		Tier:         u.EffectiveTier(s.now()),
		TokenVersion: u.TokenVersion,
		Banned:       u.Banned,
	}
}

func (s *Service) view(u *User) UserResponse {
	return ToUserResponse(u, s.now())
}

func (s *Service) GetByID(ctx context.Context, id string) (*auth.UserInfo, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.credentials(u), nil
}

func (s *Service) GetByEmail(ctx context.Context, email string) (*auth.UserInfo, error) {
	u, err := s.repo.GetByEmail(ctx, canonicalEmail(email))
	if err != nil {
		return nil, err
	}
	return s.credentials(u), nil
}

func (s *Service) Create(ctx context.Context, email, passwordHash, name string) (*auth.UserInfo, error) {
	u := newMember(canonicalEmail(email), strings.TrimSpace(name))
	u.PasswordHash = passwordHash
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return s.credentials(u), nil
}

func newMember(email, name string) *User {
	return &User{
		ID:    uuid.NewString(),
		Email: email,
		Name:  name,
		Role:  core.RoleUser,
		Tier:  core.TierFree,
	}
}

// UpsertGoogle maps a Google identity onto a member: by subject, then by
// email (recording the subject), else a new account with no password.
func (s *Service) UpsertGoogle(ctx context.Context, profile auth.GoogleProfile) (*auth.UserInfo, error) {
	if u, err := s.repo.GetByGoogleSub(ctx, profile.Subject); !errors.Is(err, core.ErrNotFound) {
		if err != nil {
			return nil, err
		}
		return s.credentials(u), nil
	}

	email := canonicalEmail(profile.Email)
	u, err := s.repo.GetByEmail(ctx, email)
	if err == nil {
		if err := s.repo.LinkGoogle(ctx, u.ID, profile.Subject); err != nil {
			return nil, err
		}
		return s.credentials(u), nil
	}
	if !errors.Is(err, core.ErrNotFound) {
		return nil, err
	}

	sub := profile.Subject
	u = newMember(email, profile.Name)
	u.GoogleSub = &sub
	u.AvatarURL = profile.AvatarURL

	err = s.repo.Create(ctx, u)
	if errors.Is(err, core.ErrDuplicateKey) {
		// a concurrent first sign-in created it
		u, err = s.repo.GetByGoogleSub(ctx, sub)
	}
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "member joined via google", "user_id", u.ID)
	return s.credentials(u), nil
}

func (s *Service) IncrementTokenVersion(ctx context.Context, userID string) error {
	return s.repo.IncrementTokenVersion(ctx, userID)
}

func (s *Service) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	return s.repo.UpdatePassword(ctx, userID, passwordHash)
}

func (s *Service) Get(ctx context.Context, id string) (*UserResponse, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	v := s.view(u)
	return &v, nil
}

func (s *Service) UpdateProfile(ctx context.Context, id string, req UpdateProfileRequest) (*UserResponse, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	trimmed := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	trimmed(&u.Name, req.Name)
	trimmed(&u.Phone, req.Phone)
	trimmed(&u.AvatarURL, req.AvatarURL)
	trimmed(&u.Bio, req.Bio)
	trimmed(&u.Location, req.Location)

	if err := s.repo.UpdateProfile(ctx, u); err != nil {
		return nil, err
	}
	v := s.view(u)
	return &v, nil
}

// PublicProfile is what buyers see on a seller page. Banned members are
// hidden as if they did not exist.
func (s *Service) PublicProfile(ctx context.Context, id string) (*PublicProfileResponse, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u.Banned {
		return nil, fmt.Errorf("public profile %s: %w", id, core.ErrNotFound)
	}

	stats, err := s.repo.Stats(ctx, id)
	if err != nil {
		return nil, err
	}
	p := ToPublicProfile(u, *stats, s.now())
	return &p, nil
}

func (s *Service) UpdateUserRole(ctx context.Context, id, role string) (*UserResponse, error) {
	if role != core.RoleUser && role != core.RoleAdmin {
		return nil, fmt.Errorf("role %q: %w", role, core.ErrInvalidInput)
	}
	if err := s.repo.UpdateRole(ctx, id, role); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "member role changed", "user_id", id, "role", role)
	return s.Get(ctx, id)
}

// UpdateUserTier grants a tier outside the wallet flow. Free clears the
// expiry; a paid tier with no expiresAt never lapses.
func (s *Service) UpdateUserTier(ctx context.Context, id, tier string, expiresAt *time.Time) (*UserResponse, error) {
	if !core.ValidTier(tier) {
		return nil, fmt.Errorf("tier %q: %w", tier, core.ErrInvalidInput)
	}
	if !core.IsPaidTier(tier) {
		expiresAt = nil
	}
	if err := s.repo.UpdateTier(ctx, id, tier, expiresAt); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// protectedTarget refuses moderation actions aimed at the acting admin
// or at another admin.
func (s *Service) protectedTarget(ctx context.Context, actorID, targetID string) error {
	if actorID == targetID {
		return fmt.Errorf("act on own account: %w", core.ErrForbidden)
	}
	target, err := s.repo.GetByID(ctx, targetID)
	if err != nil {
		return err
	}
	if target.IsAdmin() {
		return fmt.Errorf("act on admin %s: %w", targetID, core.ErrForbidden)
	}
	return nil
}

func (s *Service) SetBanned(ctx context.Context, actorID, targetID string, banned bool) (*UserResponse, error) {
	if err := s.protectedTarget(ctx, actorID, targetID); err != nil {
		return nil, err
	}
	if err := s.repo.SetBanned(ctx, targetID, banned); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "member ban changed",
		"user_id", targetID,
		"banned", banned,
		"admin_id", actorID,
	)
	return s.Get(ctx, targetID)
}

func (s *Service) SetVerified(ctx context.Context, id string, verified bool) (*UserResponse, error) {
	if err := s.repo.SetVerified(ctx, id, verified); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Remove soft-deletes an account. Members may remove themselves; admins
// may remove any non-admin.
func (s *Service) Remove(ctx context.Context, actorID, targetID string, actorIsAdmin bool) error {
	if actorID != targetID {
		if !actorIsAdmin {
			return fmt.Errorf("remove %s: %w", targetID, core.ErrForbidden)
		}
		if err := s.protectedTarget(ctx, actorID, targetID); err != nil {
			return err
		}
	}
	return s.repo.SoftDelete(ctx, targetID)
}

func (s *Service) ListUsers(ctx context.Context, params ListUsersParams) ([]UserResponse, int, error) {
	users, total, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, 0, err
	}
	return ToUserResponseList(users, s.now()), total, nil
}

func (s *Service) CountUsers(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}
