// AngelaMos | 2026
// entity.go

package auth

import (
	"time"
)

// Grant is one refresh token issued to one device. Grants rotate: every
// refresh consumes the presented grant and issues its successor in the
// same family, so replaying a consumed grant exposes a stolen token.
type Grant struct {
	ID          string     `db:"id"`
	UserID      string     `db:"user_id"`
	TokenHash   string     `db:"token_hash"`
	FamilyID    string     `db:"family_id"`
	ExpiresAt   time.Time  `db:"expires_at"`
	CreatedAt   time.Time  `db:"created_at"`
	Consumed    bool       `db:"consumed"`
	ConsumedAt  *time.Time `db:"consumed_at"`
	RevokedAt   *time.Time `db:"revoked_at"`
	SuccessorID *string    `db:"successor_id"`
	UserAgent   string     `db:"user_agent"`
	IPAddress   string     `db:"ip_address"`
}

type grantState int

const (
	grantActive grantState = iota
	grantConsumed
	grantRevoked
	grantExpired
)

// state orders checks so a replayed grant is reported as consumed even
// after its family has been revoked.
func (g *Grant) state(now time.Time) grantState {
	switch {
	case g.Consumed:
		return grantConsumed
	case g.RevokedAt != nil:
		return grantRevoked
	case !now.Before(g.ExpiresAt):
		return grantExpired
	default:
		return grantActive
	}
}

// device identifies where a grant was requested from. Shown back to the
// user in the sessions list.
type device struct {
	userAgent string
	ip        string
}
