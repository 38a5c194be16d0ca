// AngelaMos | 2026
// entity.go

package review

import (
	"time"
)

type Review struct {
	ID         string    `db:"id"          json:"id"`
	ReviewerID string    `db:"reviewer_id" json:"reviewer_id"`
	SellerID   string    `db:"seller_id"   json:"seller_id"`
	ListingID  *string   `db:"listing_id"  json:"listing_id,omitempty"`
	Rating     int       `db:"rating"      json:"rating"`
	Comment    string    `db:"comment"     json:"comment"`
	CreatedAt  time.Time `db:"created_at"  json:"created_at"`

	ReviewerName   string `db:"reviewer_name"   json:"reviewer_name,omitempty"`
	ReviewerAvatar string `db:"reviewer_avatar" json:"reviewer_avatar,omitempty"`
}

type Summary struct {
	SellerID string  `db:"-"       json:"seller_id"`
	Average  float64 `db:"average" json:"average"`
	Count    int     `db:"count"   json:"count"`
}

type CreateReviewRequest struct {
	SellerID  string `json:"seller_id"  validate:"required,uuid"`
	ListingID string `json:"listing_id" validate:"omitempty,uuid"`
	Rating    int    `json:"rating"     validate:"required,min=1,max=5"`
	Comment   string `json:"comment"    validate:"max=1000"`
}
