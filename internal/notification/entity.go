// AngelaMos | 2026
// entity.go

package notification

import (
	"time"
)

const (
	TypeListingApproved     = "listing_approved"
	TypeListingRejected     = "listing_rejected"
	TypeNewFollower         = "new_follower"
	TypeNewReview           = "new_review"
	TypeTransactionApproved = "transaction_approved"
	TypeTransactionRejected = "transaction_rejected"
	TypeKYCApproved         = "kyc_approved"
	TypeKYCRejected         = "kyc_rejected"
)

type Notification struct {
	ID        string     `db:"id"         json:"id"`
	UserID    string     `db:"user_id"    json:"user_id"`
	Type      string     `db:"type"       json:"type"`
	Title     string     `db:"title"      json:"title"`
	Body      string     `db:"body"       json:"body"`
	Link      string     `db:"link"       json:"link"`
	ReadAt    *time.Time `db:"read_at"    json:"read_at,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
}

// Input is what other modules hand to Notify.
type Input struct {
	UserID string
	Type   string
	Title  string
	Body   string
	Link   string
}

type UnreadResponse struct {
	Unread int `json:"unread"`
}
