// AngelaMos | 2026
// entity.go

package user

import (
	"time"

	"github.com/carterperez-dev/classifieds/internal/core"
)

type User struct {
	ID                    string     `db:"id"`
	Email                 string     `db:"email"`
	PasswordHash          string     `db:"password_hash"`
	GoogleSub             *string    `db:"google_sub"`
	Name                  string     `db:"name"`
	Phone                 string     `db:"phone"`
	AvatarURL             string     `db:"avatar_url"`
	Bio                   string     `db:"bio"`
	Location              string     `db:"location"`
	Role                  string     `db:"role"`
	Tier                  string     `db:"tier"`
	SubscriptionExpiresAt *time.Time `db:"subscription_expires_at"`
	WalletBalance         int64      `db:"wallet_balance"`
	Verified              bool       `db:"verified"`
	Banned                bool       `db:"banned"`
	TokenVersion          int        `db:"token_version"`
	CreatedAt             time.Time  `db:"created_at"`
	UpdatedAt             time.Time  `db:"updated_at"`
	DeletedAt             *time.Time `db:"deleted_at"`
}

func (u *User) IsAdmin() bool {
	return u.Role == core.RoleAdmin
}

func (u *User) EffectiveTier(now time.Time) string {
	return core.EffectiveTier(u.Tier, u.SubscriptionExpiresAt, now)
}

// PublicStats aggregates what other members see on a seller's profile.
type PublicStats struct {
	Followers      int     `db:"followers"`
	Following      int     `db:"following"`
	ActiveListings int     `db:"active_listings"`
	ReviewCount    int     `db:"review_count"`
	AverageRating  float64 `db:"average_rating"`
}
