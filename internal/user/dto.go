// AngelaMos | 2026
// dto.go

package user

import (
	"time"
)

type UpdateProfileRequest struct {
	Name      *string `json:"name,omitempty"       validate:"omitempty,min=1,max=100"`
	Phone     *string `json:"phone,omitempty"      validate:"omitempty,max=32"`
	AvatarURL *string `json:"avatar_url,omitempty" validate:"omitempty,url,max=1024"`
	Bio       *string `json:"bio,omitempty"        validate:"omitempty,max=1000"`
	Location  *string `json:"location,omitempty"   validate:"omitempty,max=120"`
}

type UpdateUserRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=user admin"`
}

type UpdateUserTierRequest struct {
	Tier      string     `json:"tier"       validate:"required,oneof=free basic pro"`
	ExpiresAt *time.Time `json:"expires_at"`
}

type SetFlagRequest struct {
	Value bool `json:"value"`
}

type UserResponse struct {
	ID                    string     `json:"id"`
	Email                 string     `json:"email"`
	Name                  string     `json:"name"`
	Phone                 string     `json:"phone"`
	AvatarURL             string     `json:"avatar_url"`
	Bio                   string     `json:"bio"`
	Location              string     `json:"location"`
	Role                  string     `json:"role"`
	Tier                  string     `json:"tier"`
	SubscriptionExpiresAt *time.Time `json:"subscription_expires_at,omitempty"`
	WalletBalance         int64      `json:"wallet_balance"`
	Verified              bool       `json:"verified"`
	Banned                bool       `json:"banned"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
}

type PublicProfileResponse struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	AvatarURL string      `json:"avatar_url"`
	Bio       string      `json:"bio"`
	Location  string      `json:"location"`
	Tier      string      `json:"tier"`
	Verified  bool        `json:"verified"`
	CreatedAt time.Time   `json:"created_at"`
	Stats     PublicStats `json:"stats"`
}

type ListUsersParams struct {
	Page     int
	PageSize int
	Search   string
	Role     string
	Tier     string
	Banned   *bool
}

func (p ListUsersParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

func ToUserResponse(u *User, now time.Time) UserResponse {
	return UserResponse{
		ID:                    u.ID,
		Email:                 u.Email,
		Name:                  u.Name,
		Phone:                 u.Phone,
		AvatarURL:             u.AvatarURL,
		Bio:                   u.Bio,
		Location:              u.Location,
		Role:                  u.Role,
		Tier:                  u.EffectiveTier(now),
		SubscriptionExpiresAt: u.SubscriptionExpiresAt,
		WalletBalance:         u.WalletBalance,
		Verified:              u.Verified,
		Banned:                u.Banned,
		CreatedAt:             u.CreatedAt,
		UpdatedAt:             u.UpdatedAt,
	}
}

func ToUserResponseList(users []User, now time.Time) []UserResponse {
	responses := make([]UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, ToUserResponse(&users[i], now))
	}
	return responses
}

func ToPublicProfile(u *User, stats PublicStats, now time.Time) PublicProfileResponse {
	return PublicProfileResponse{
		ID:        u.ID,
		Name:      u.Name,
		AvatarURL: u.AvatarURL,
		Bio:       u.Bio,
		Location:  u.Location,
		Tier:      u.EffectiveTier(now),
		Verified:  u.Verified,
		CreatedAt: u.CreatedAt,
		Stats:     stats,
	}
}
