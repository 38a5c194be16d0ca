// AngelaMos | 2026
// entity.go

package kyc

import (
	"time"

	"github.com/carterperez-dev/classifieds/internal/core"
)

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

var (
	ErrSubmissionPending = core.ConflictError("a verification request is already pending")
	ErrAlreadyReviewed   = core.ConflictError("verification request already reviewed")
)

type Submission struct {
	ID             string     `db:"id"              json:"id"`
	UserID         string     `db:"user_id"         json:"user_id"`
	FullName       string     `db:"full_name"       json:"full_name"`
	DocumentNumber string     `db:"document_number" json:"document_number"`
	DocumentURL    string     `db:"document_url"    json:"document_url"`
	SelfieURL      string     `db:"selfie_url"      json:"selfie_url"`
	Status         string     `db:"status"          json:"status"`
	Note           string     `db:"note"            json:"note,omitempty"`
	ReviewedBy     *string    `db:"reviewed_by"     json:"reviewed_by,omitempty"`
	ReviewedAt     *time.Time `db:"reviewed_at"     json:"reviewed_at,omitempty"`
	CreatedAt      time.Time  `db:"created_at"      json:"created_at"`
}

type SubmitRequest struct {
	FullName       string `json:"full_name"       validate:"required,max=200"`
	DocumentNumber string `json:"document_number" validate:"required,max=64"`
	DocumentURL    string `json:"document_url"    validate:"required,url"`
	SelfieURL      string `json:"selfie_url"      validate:"required,url"`
}

type RejectRequest struct {
	Note string `json:"note" validate:"required,max=500"`
}
