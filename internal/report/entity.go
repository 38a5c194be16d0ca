// AngelaMos | 2026
// entity.go

package report

import (
	"time"
)

const (
	TargetListing = "listing"
	TargetUser    = "user"
)

const (
	ReasonSpam          = "spam"
	ReasonFraud         = "fraud"
	ReasonInappropriate = "inappropriate"
	ReasonProhibited    = "prohibited_item"
	ReasonOther         = "other"
)

type Report struct {
	ID         string    `db:"id"          json:"id"`
	ReporterID string    `db:"reporter_id" json:"reporter_id"`
	TargetType string    `db:"target_type" json:"target_type"`
	TargetID   string    `db:"target_id"   json:"target_id"`
	Reason     string    `db:"reason"      json:"reason"`
	Details    string    `db:"details"     json:"details"`
	CreatedAt  time.Time `db:"created_at"  json:"created_at"`
}

type CreateReportRequest struct {
	TargetType string `json:"target_type" validate:"required,oneof=listing user"`
	TargetID   string `json:"target_id"   validate:"required,uuid"`
	Reason     string `json:"reason"      validate:"required,oneof=spam fraud inappropriate prohibited_item other"`
	Details    string `json:"details"     validate:"max=2000"`
}
