// AngelaMos | 2026
// entity.go

package social

import (
	"time"
)

// Profile is the public card shown in follower lists.
type Profile struct {
	ID         string    `db:"id"          json:"id"`
	Name       string    `db:"name"        json:"name"`
	AvatarURL  string    `db:"avatar_url"  json:"avatar_url"`
	Verified   bool      `db:"verified"    json:"verified"`
	FollowedAt time.Time `db:"followed_at" json:"followed_at"`
}

type Counts struct {
	Followers int `db:"followers" json:"followers"`
	Following int `db:"following" json:"following"`
}

type FollowStatus struct {
	UserID    string `json:"user_id"`
	Following bool   `json:"following"`
}
