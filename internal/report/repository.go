// AngelaMos | 2026
// repository.go

package report

import (
	"context"
	"fmt"

	"github.com/carterperez-dev/classifieds/internal/core"
)

type Repository interface {
	Create(ctx context.Context, rp *Report) error
	List(ctx context.Context, targetType string, page core.PageParams) ([]Report, int, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
	TargetExists(ctx context.Context, targetType, targetID string) (bool, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, rp *Report) error {
	err := r.db.GetContext(ctx, &rp.CreatedAt, `
		INSERT INTO reports (id, reporter_id, target_type, target_id, reason, details)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`,
		rp.ID, rp.ReporterID, rp.TargetType, rp.TargetID, rp.Reason, rp.Details)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	return nil
}

func (r *repository) List(
	ctx context.Context,
	targetType string,
	page core.PageParams,
) ([]Report, int, error) {
	where := ""
	args := []any{}
	if targetType != "" {
		where = "WHERE target_type = $1"
		args = append(args, targetType)
	}

	var total int
	if err := r.db.GetContext(ctx, &total,
		"SELECT COUNT(*) FROM reports "+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count reports: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT id, reporter_id, target_type, target_id, reason, details, created_at
		FROM reports %s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d OFFSET $%d`, where, len(args)+1, len(args)+2)
	args = append(args, page.PageSize, page.Offset())

	var items []Report
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list reports: %w", err)
	}
	return items, total, nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM reports WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete report: %w", err)
	}
	return core.RequireAffected(result, "delete report")
}

func (r *repository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM reports`); err != nil {
		return 0, fmt.Errorf("count reports: %w", err)
	}
	return n, nil
}

func (r *repository) TargetExists(ctx context.Context, targetType, targetID string) (bool, error) {
	var query string
	switch targetType {
	case TargetListing:
		query = `SELECT EXISTS (SELECT 1 FROM listings WHERE id = $1)`
	case TargetUser:
		query = `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1 AND deleted_at IS NULL)`
	default:
		return false, fmt.Errorf("unknown report target %q: %w", targetType, core.ErrInvalidInput)
	}

	var ok bool
	if err := r.db.GetContext(ctx, &ok, query, targetID); err != nil {
		return false, fmt.Errorf("check report target: %w", err)
	}
	return ok, nil
}
