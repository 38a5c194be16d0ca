// AngelaMos | 2026
// repository.go

package kyc

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/carterperez-dev/classifieds/internal/core"
)

type Repository interface {
	Create(ctx context.Context, sub *Submission) error
	GetForUpdate(ctx context.Context, id string) (*Submission, error)
	Latest(ctx context.Context, userID string) (*Submission, error)
	MarkReviewed(ctx context.Context, id, status, adminID, note string, at time.Time) error
	SetUserVerified(ctx context.Context, userID string, verified bool) error
	List(ctx context.Context, status string, page core.PageParams) ([]Submission, int, error)
	CountPending(ctx context.Context) (int, error)
}

const submissionColumns = `
	id, user_id, full_name, document_number, document_url, selfie_url,
	status, note, reviewed_by, reviewed_at, created_at`

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, sub *Submission) error {
	err := r.db.GetContext(ctx, &sub.CreatedAt, `
		INSERT INTO kyc_submissions (
			id, user_id, full_name, document_number, document_url, selfie_url, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`,
		sub.ID, sub.UserID, sub.FullName, sub.DocumentNumber,
		sub.DocumentURL, sub.SelfieURL, sub.Status)
	if err != nil {
		if core.IsDuplicateKeyError(err) {
			return ErrSubmissionPending
		}
		return fmt.Errorf("create kyc submission: %w", err)
	}
	return nil
}

func (r *repository) GetForUpdate(ctx context.Context, id string) (*Submission, error) {
	var sub Submission
	err := r.db.GetContext(ctx, &sub, `SELECT `+submissionColumns+`
		FROM kyc_submissions WHERE id = $1 FOR UPDATE`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get kyc submission: %w", err)
	}
	return &sub, nil
}

func (r *repository) Latest(ctx context.Context, userID string) (*Submission, error) {
	var sub Submission
	err := r.db.GetContext(ctx, &sub, `SELECT `+submissionColumns+`
		FROM kyc_submissions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT 1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("latest kyc submission: %w", err)
	}
	return &sub, nil
}

func (r *repository) MarkReviewed(
	ctx context.Context,
	id, status, adminID, note string,
	at time.Time,
) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE kyc_submissions
		SET status = $2, reviewed_by = $3, reviewed_at = $4, note = $5
		WHERE id = $1 AND status = 'pending'`, id, status, adminID, at, note)
	if err != nil {
		return fmt.Errorf("review kyc submission: %w", err)
	}
	if err := core.RequireAffected(result, "review kyc submission"); err != nil {
		return ErrAlreadyReviewed
	}
	return nil
}

func (r *repository) SetUserVerified(ctx context.Context, userID string, verified bool) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE users SET verified = $2, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`, userID, verified)
	if err != nil {
		return fmt.Errorf("set user verified: %w", err)
	}
	return core.RequireAffected(result, "set user verified")
}

func (r *repository) List(
	ctx context.Context,
	status string,
	page core.PageParams,
) ([]Submission, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total,
		`SELECT COUNT(*) FROM kyc_submissions WHERE status = $1`, status); err != nil {
		return nil, 0, fmt.Errorf("count kyc submissions: %w", err)
	}

	var items []Submission
	err := r.db.SelectContext(ctx, &items, `SELECT `+submissionColumns+`
		FROM kyc_submissions
		WHERE status = $1
		ORDER BY created_at ASC, id ASC
		LIMIT $2 OFFSET $3`, status, page.PageSize, page.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("list kyc submissions: %w", err)
	}
	return items, total, nil
}

func (r *repository) CountPending(ctx context.Context) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n,
		`SELECT COUNT(*) FROM kyc_submissions WHERE status = 'pending'`)
	if err != nil {
		return 0, fmt.Errorf("count pending kyc: %w", err)
	}
	return n, nil
}
