// AngelaMos | 2026
// dto.go

package auth

import (
	"time"
)

type SignInRequest struct {
	Email    string `json:"email"    validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

type SignUpRequest struct {
	SignInRequest
	Name string `json:"name" validate:"required,min=1,max=100"`
}

type GoogleSignInRequest struct {
	IDToken string `json:"id_token" validate:"required,max=4096"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// SignOutRequest may omit the refresh token; the access token is revoked
// either way.
type SignOutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type PasswordChangeRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password"     validate:"required,min=8,max=128,nefield=CurrentPassword"`
}

type Account struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
	Tier  string `json:"tier"`
}

type Tokens struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
	ExpiresIn    int       `json:"expires_in"`
	ExpiresAt    time.Time `json:"expires_at"`
}

type SignInResponse struct {
	User   Account `json:"user"`
	Tokens Tokens  `json:"tokens"`
}

// Device is one signed-in browser or app, backed by its live grant.
type Device struct {
	ID         string    `json:"id"`
	UserAgent  string    `json:"user_agent"`
	IPAddress  string    `json:"ip_address"`
	SignedInAt time.Time `json:"signed_in_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}

type DevicesResponse struct {
	Devices []Device `json:"devices"`
}

func accountOf(u *UserInfo) Account {
	return Account{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role, Tier: u.Tier}
}
