// AngelaMos | 2026
// entity.go

package listing

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
	StatusSold     = "sold"
	StatusHidden   = "hidden"
)

func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusSold, StatusHidden:
		return true
	}
	return false
}

type Listing struct {
	ID           string     `db:"id"            json:"id"`
	SellerID     string     `db:"seller_id"     json:"seller_id"`
	Title        string     `db:"title"         json:"title"`
	Description  string     `db:"description"   json:"description"`
	Price        int64      `db:"price"         json:"price"`
	Category     string     `db:"category"      json:"category"`
	City         string     `db:"city"          json:"city"`
	Condition    string     `db:"condition"     json:"condition"`
	Images       StringList `db:"images"        json:"images"`
	Status       string     `db:"status"        json:"status"`
	Tier         string     `db:"tier"          json:"tier"`
	TierRank     int        `db:"tier_rank"     json:"-"`
	ViewCount    int        `db:"view_count"    json:"view_count"`
	RejectReason string     `db:"reject_reason" json:"reject_reason,omitempty"`
	BumpedAt     time.Time  `db:"bumped_at"     json:"bumped_at"`
	CreatedAt    time.Time  `db:"created_at"    json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at"    json:"updated_at"`
}

func (l *Listing) IsOwnedBy(userID string) bool {
	return userID != "" && l.SellerID == userID
}

// StringList maps a JSONB array of strings.
type StringList []string

func (s StringList) Value() (driver.Value, error) {
	if s == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(s))
}

func (s *StringList) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*s = StringList{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("scan string list: unsupported type %T", src)
	}

	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("scan string list: %w", err)
	}
	if out == nil {
		out = []string{}
	}
	*s = out
	return nil
}
