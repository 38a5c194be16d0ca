// AngelaMos | 2026
// repository.go

package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/carterperez-dev/classifieds/internal/core"
)

type Repository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByGoogleSub(ctx context.Context, sub string) (*User, error)
	LinkGoogle(ctx context.Context, id, sub string) error
	UpdateProfile(ctx context.Context, user *User) error
	UpdateRole(ctx context.Context, id, role string) error
	UpdateTier(ctx context.Context, id, tier string, expiresAt *time.Time) error
	SetBanned(ctx context.Context, id string, banned bool) error
	SetVerified(ctx context.Context, id string, verified bool) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	IncrementTokenVersion(ctx context.Context, id string) error
	SoftDelete(ctx context.Context, id string) error
	List(ctx context.Context, params ListUsersParams) ([]User, int, error)
	Stats(ctx context.Context, id string) (*PublicStats, error)
	Count(ctx context.Context) (int, error)
}

const userColumns = `
	id, email, password_hash, google_sub, name, phone, avatar_url, bio,
	location, role, tier, subscription_expires_at, wallet_balance, verified,
	banned, token_version, created_at, updated_at, deleted_at`

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, user *User) error {
	query := `
		INSERT INTO users (
			id, email, password_hash, google_sub, name, avatar_url, role, tier
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at, token_version`

	err := r.db.QueryRowxContext(ctx, query,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.GoogleSub,
		user.Name,
		user.AvatarURL,
		user.Role,
		user.Tier,
	).Scan(&user.CreatedAt, &user.UpdatedAt, &user.TokenVersion)
	if err != nil {
		if core.IsDuplicateKeyError(err) {
			return fmt.Errorf("create user: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create user: %w", err)
	}

	return nil
}

func (r *repository) getOne(
	ctx context.Context,
	op, where string,
	arg any,
) (*User, error) {
	query := `SELECT ` + userColumns + `
		FROM users
		WHERE ` + where + ` AND deleted_at IS NULL`

	var user User
	err := r.db.GetContext(ctx, &user, query, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &user, nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*User, error) {
	return r.getOne(ctx, "get user", "id = $1", id)
}

func (r *repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	return r.getOne(ctx, "get user by email", "email = $1", email)
}

func (r *repository) GetByGoogleSub(ctx context.Context, sub string) (*User, error) {
	return r.getOne(ctx, "get user by google sub", "google_sub = $1", sub)
}

func (r *repository) LinkGoogle(ctx context.Context, id, sub string) error {
	return r.exec(ctx, "link google account", `
		UPDATE users
		SET google_sub = $2, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`, id, sub)
}

func (r *repository) UpdateProfile(ctx context.Context, user *User) error {
	query := `
		UPDATE users
		SET name = $2, phone = $3, avatar_url = $4, bio = $5, location = $6,
		    updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING updated_at`

	err := r.db.GetContext(ctx, &user.UpdatedAt, query,
		user.ID,
		user.Name,
		user.Phone,
		user.AvatarURL,
		user.Bio,
		user.Location,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update profile: %w", core.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}

	return nil
}

func (r *repository) UpdateRole(ctx context.Context, id, role string) error {
	return r.exec(ctx, "update role", `
		UPDATE users
		SET role = $2, token_version = token_version + 1, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`, id, role)
}

func (r *repository) UpdateTier(
	ctx context.Context,
	id, tier string,
	expiresAt *time.Time,
) error {
	return r.exec(ctx, "update tier", `
		UPDATE users
		SET tier = $2, subscription_expires_at = $3, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`, id, tier, expiresAt)
}

// SetBanned also bumps token_version so outstanding access tokens die.
func (r *repository) SetBanned(ctx context.Context, id string, banned bool) error {
	return r.exec(ctx, "set banned", `
		UPDATE users
		SET banned = $2, token_version = token_version + 1, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`, id, banned)
}

func (r *repository) SetVerified(ctx context.Context, id string, verified bool) error {
	return r.exec(ctx, "set verified", `
		UPDATE users
		SET verified = $2, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`, id, verified)
}

func (r *repository) UpdatePassword(
	ctx context.Context,
	id, passwordHash string,
) error {
	return r.exec(ctx, "update password", `
		UPDATE users
		SET password_hash = $2, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`, id, passwordHash)
}

func (r *repository) IncrementTokenVersion(ctx context.Context, id string) error {
	return r.exec(ctx, "increment token version", `
		UPDATE users
		SET token_version = token_version + 1, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`, id)
}

func (r *repository) SoftDelete(ctx context.Context, id string) error {
	return r.exec(ctx, "delete user", `
		UPDATE users
		SET deleted_at = NOW(), updated_at = NOW(),
		    token_version = token_version + 1
		WHERE id = $1 AND deleted_at IS NULL`, id)
}

func (r *repository) exec(
	ctx context.Context,
	op, query string,
	args ...any,
) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return core.RequireAffected(result, op)
}

func (r *repository) List(
	ctx context.Context,
	params ListUsersParams,
) ([]User, int, error) {
	w := core.NewWhere("deleted_at IS NULL")
	if params.Search != "" {
		p := w.Arg("%" + core.EscapeLike(params.Search) + "%")
		w.And("(email ILIKE " + p + " OR name ILIKE " + p + ")")
	}
	if params.Role != "" {
		w.And("role = " + w.Arg(params.Role))
	}
	if params.Tier != "" {
		w.And("tier = " + w.Arg(params.Tier))
	}
	if params.Banned != nil {
		w.And("banned = " + w.Arg(*params.Banned))
	}

	var total int
	if err := r.db.GetContext(ctx, &total,
		"SELECT COUNT(*) FROM users WHERE "+w.String(), w.Args...); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	query := `SELECT ` + userColumns + `
		FROM users
		WHERE ` + w.String() + `
		ORDER BY created_at DESC, id DESC
		LIMIT ` + w.Next(1) + ` OFFSET ` + w.Next(2)

	var users []User
	err := r.db.SelectContext(ctx, &users, query,
		append(w.Args, params.PageSize, params.Offset())...)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	return users, total, nil
}

func (r *repository) Stats(ctx context.Context, id string) (*PublicStats, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM follows WHERE followee_id = $1) AS followers,
			(SELECT COUNT(*) FROM follows WHERE follower_id = $1) AS following,
			(SELECT COUNT(*) FROM listings
			   WHERE seller_id = $1 AND status = 'approved') AS active_listings,
			(SELECT COUNT(*) FROM reviews WHERE seller_id = $1) AS review_count,
			(SELECT COALESCE(AVG(rating), 0)::float8
			   FROM reviews WHERE seller_id = $1) AS average_rating`

	var stats PublicStats
	if err := r.db.GetContext(ctx, &stats, query, id); err != nil {
		return nil, fmt.Errorf("user stats: %w", err)
	}

	return &stats, nil
}

func (r *repository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n,
		`SELECT COUNT(*) FROM users WHERE deleted_at IS NULL`)
	if err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}
