// AngelaMos | 2026
// repository.go

package social

import (
	"context"
	"fmt"

	"github.com/carterperez-dev/classifieds/internal/core"
)

type Repository interface {
	Follow(ctx context.Context, followerID, followeeID string) (bool, error)
	Unfollow(ctx context.Context, followerID, followeeID string) error
	IsFollowing(ctx context.Context, followerID, followeeID string) (bool, error)
	Followers(ctx context.Context, userID string, page core.PageParams) ([]Profile, int, error)
	Following(ctx context.Context, userID string, page core.PageParams) ([]Profile, int, error)
	Counts(ctx context.Context, userID string) (*Counts, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

// Follow reports whether a new edge was created.
func (r *repository) Follow(ctx context.Context, followerID, followeeID string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		INSERT INTO follows (follower_id, followee_id)
		VALUES ($1, $2)
		ON CONFLICT (follower_id, followee_id) DO NOTHING`, followerID, followeeID)
	if err != nil {
		if core.IsForeignKeyError(err) {
			return false, fmt.Errorf("follow: %w", core.ErrNotFound)
		}
		return false, fmt.Errorf("follow: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("follow: %w", err)
	}
	return n == 1, nil
}

func (r *repository) Unfollow(ctx context.Context, followerID, followeeID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM follows WHERE follower_id = $1 AND followee_id = $2`,
		followerID, followeeID)
	if err != nil {
		return fmt.Errorf("unfollow: %w", err)
	}
	return nil
}

func (r *repository) IsFollowing(
	ctx context.Context,
	followerID, followeeID string,
) (bool, error) {
	var ok bool
	err := r.db.GetContext(ctx, &ok, `
		SELECT EXISTS (
			SELECT 1 FROM follows WHERE follower_id = $1 AND followee_id = $2
		)`, followerID, followeeID)
	if err != nil {
		return false, fmt.Errorf("check follow: %w", err)
	}
	return ok, nil
}

// edges lists the users on the far side of userID's follow edges. side is
// the column holding userID.
func (r *repository) edges(
	ctx context.Context,
	userID, side, other string,
	page core.PageParams,
) ([]Profile, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total, fmt.Sprintf(`
		SELECT COUNT(*)
		FROM follows f
		JOIN users u ON u.id = f.%s AND u.deleted_at IS NULL
		WHERE f.%s = $1`, other, side), userID)
	if err != nil {
		return nil, 0, fmt.Errorf("count follows: %w", err)
	}

	var items []Profile
	err = r.db.SelectContext(ctx, &items, fmt.Sprintf(`
		SELECT u.id, u.name, u.avatar_url, u.verified, f.created_at AS followed_at
		FROM follows f
		JOIN users u ON u.id = f.%s AND u.deleted_at IS NULL
		WHERE f.%s = $1
		ORDER BY f.created_at DESC
		LIMIT $2 OFFSET $3`, other, side), userID, page.PageSize, page.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("list follows: %w", err)
	}

	return items, total, nil
}

func (r *repository) Followers(
	ctx context.Context,
	userID string,
	page core.PageParams,
) ([]Profile, int, error) {
	return r.edges(ctx, userID, "followee_id", "follower_id", page)
}

func (r *repository) Following(
	ctx context.Context,
	userID string,
	page core.PageParams,
) ([]Profile, int, error) {
	return r.edges(ctx, userID, "follower_id", "followee_id", page)
}

func (r *repository) Counts(ctx context.Context, userID string) (*Counts, error) {
	var c Counts
	err := r.db.GetContext(ctx, &c, `
		SELECT
			(SELECT COUNT(*) FROM follows WHERE followee_id = $1) AS followers,
			(SELECT COUNT(*) FROM follows WHERE follower_id = $1) AS following`, userID)
	if err != nil {
		return nil, fmt.Errorf("count follows: %w", err)
	}
	return &c, nil
}
