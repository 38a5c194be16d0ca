// AngelaMos | 2026
// repository.go

package review

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/carterperez-dev/classifieds/internal/core"
)

type Repository interface {
	Create(ctx context.Context, rv *Review) error
	Get(ctx context.Context, id string) (*Review, error)
	ListForSeller(ctx context.Context, sellerID string, page core.PageParams) ([]Review, int, error)
	Summary(ctx context.Context, sellerID string) (*Summary, error)
	Delete(ctx context.Context, id string) error
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, rv *Review) error {
	err := r.db.GetContext(ctx, &rv.CreatedAt, `
		INSERT INTO reviews (id, reviewer_id, seller_id, listing_id, rating, comment)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`,
		rv.ID, rv.ReviewerID, rv.SellerID, rv.ListingID, rv.Rating, rv.Comment)
	if err != nil {
		switch {
		case core.IsDuplicateKeyError(err):
			return fmt.Errorf("create review: %w", core.ErrDuplicateKey)
		case core.IsForeignKeyError(err):
			return fmt.Errorf("create review: %w", core.ErrNotFound)
		}
		return fmt.Errorf("create review: %w", err)
	}
	return nil
}

func (r *repository) Get(ctx context.Context, id string) (*Review, error) {
	var rv Review
	err := r.db.GetContext(ctx, &rv, `
		SELECT id, reviewer_id, seller_id, listing_id, rating, comment, created_at
		FROM reviews WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get review: %w", err)
	}
	return &rv, nil
}

func (r *repository) ListForSeller(
	ctx context.Context,
	sellerID string,
	page core.PageParams,
) ([]Review, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total,
		`SELECT COUNT(*) FROM reviews WHERE seller_id = $1`, sellerID); err != nil {
		return nil, 0, fmt.Errorf("count reviews: %w", err)
	}

	var items []Review
	err := r.db.SelectContext(ctx, &items, `
		SELECT rv.id, rv.reviewer_id, rv.seller_id, rv.listing_id, rv.rating,
		       rv.comment, rv.created_at,
		       COALESCE(u.name, '') AS reviewer_name,
		       COALESCE(u.avatar_url, '') AS reviewer_avatar
		FROM reviews rv
		LEFT JOIN users u ON u.id = rv.reviewer_id AND u.deleted_at IS NULL
		WHERE rv.seller_id = $1
		ORDER BY rv.created_at DESC, rv.id DESC
		LIMIT $2 OFFSET $3`, sellerID, page.PageSize, page.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("list reviews: %w", err)
	}

	return items, total, nil
}

func (r *repository) Summary(ctx context.Context, sellerID string) (*Summary, error) {
	s := Summary{SellerID: sellerID}
	err := r.db.GetContext(ctx, &s, `
		SELECT COALESCE(AVG(rating), 0)::float8 AS average, COUNT(*) AS count
		FROM reviews WHERE seller_id = $1`, sellerID)
	if err != nil {
		return nil, fmt.Errorf("review summary: %w", err)
	}
	return &s, nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete review: %w", err)
	}
	return core.RequireAffected(result, "delete review")
}
