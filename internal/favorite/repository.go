// AngelaMos | 2026
// repository.go

package favorite

import (
	"context"
	"fmt"

	"github.com/carterperez-dev/classifieds/internal/core"
)

type Repository interface {
	Add(ctx context.Context, userID, listingID string) error
	Remove(ctx context.Context, userID, listingID string) error
	Exists(ctx context.Context, userID, listingID string) (bool, error)
	List(
		ctx context.Context,
		userID string,
		after *core.Cursor,
		limit int,
	) ([]Item, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

// Add is idempotent; saving twice keeps the first timestamp.
func (r *repository) Add(ctx context.Context, userID, listingID string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO favorites (user_id, listing_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, listing_id) DO NOTHING`, userID, listingID)
	if err != nil {
		if core.IsForeignKeyError(err) {
			return fmt.Errorf("add favorite: %w", core.ErrNotFound)
		}
		return fmt.Errorf("add favorite: %w", err)
	}
	return nil
}

func (r *repository) Remove(ctx context.Context, userID, listingID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM favorites WHERE user_id = $1 AND listing_id = $2`,
		userID, listingID)
	if err != nil {
		return fmt.Errorf("remove favorite: %w", err)
	}
	return nil
}

func (r *repository) Exists(ctx context.Context, userID, listingID string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `
		SELECT EXISTS (
			SELECT 1 FROM favorites WHERE user_id = $1 AND listing_id = $2
		)`, userID, listingID)
	if err != nil {
		return false, fmt.Errorf("check favorite: %w", err)
	}
	return exists, nil
}

func (r *repository) List(
	ctx context.Context,
	userID string,
	after *core.Cursor,
	limit int,
) ([]Item, error) {
	query := `
		SELECT l.*, f.created_at AS favorited_at
		FROM favorites f
		JOIN listings l ON l.id = f.listing_id
		WHERE f.user_id = $1`
	args := []any{userID}

	if after != nil {
		query += ` AND (f.created_at, f.listing_id) < ($2, $3)`
		args = append(args, after.At, after.ID)
	}

	query += fmt.Sprintf(` ORDER BY f.created_at DESC, f.listing_id DESC LIMIT %d`, limit)

	var items []Item
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	return items, nil
}
