// AngelaMos | 2026
// repository.go

package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/carterperez-dev/classifieds/internal/core"
)

// Scope selects which grants a revocation applies to.
type Scope string

const (
	ScopeGrant  Scope = "id"
	ScopeFamily Scope = "family_id"
	ScopeUser   Scope = "user_id"
)

type Repository interface {
	Insert(ctx context.Context, g *Grant) error
	ByHash(ctx context.Context, tokenHash string) (*Grant, error)
	ByID(ctx context.Context, id string) (*Grant, error)
	// Consume marks a grant as spent. It reports false when another
	// request already consumed it.
	Consume(ctx context.Context, id, successorID string) (bool, error)
	Revoke(ctx context.Context, scope Scope, key string) error
	ListActive(ctx context.Context, userID string) ([]Grant, error)
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

const grantColumns = `id, user_id, token_hash, family_id, expires_at,
	created_at, consumed, consumed_at, revoked_at, successor_id,
	user_agent, ip_address`

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Insert(ctx context.Context, g *Grant) error {
	err := r.db.GetContext(ctx, &g.CreatedAt, `
		INSERT INTO refresh_grants
			(id, user_id, token_hash, family_id, expires_at, user_agent, ip_address)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`,
		g.ID, g.UserID, g.TokenHash, g.FamilyID, g.ExpiresAt,
		g.UserAgent, g.IPAddress,
	)
	if err != nil {
		return fmt.Errorf("insert grant: %w", err)
	}
	return nil
}

func (r *repository) ByHash(ctx context.Context, tokenHash string) (*Grant, error) {
	return r.one(ctx, "token_hash", tokenHash)
}

func (r *repository) ByID(ctx context.Context, id string) (*Grant, error) {
	return r.one(ctx, "id", id)
}

func (r *repository) one(ctx context.Context, column, value string) (*Grant, error) {
	var g Grant
	err := r.db.GetContext(ctx, &g,
		`SELECT `+grantColumns+` FROM refresh_grants WHERE `+column+` = $1`,
		value,
	)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, fmt.Errorf("load grant: %w", core.ErrNotFound)
	case err != nil:
		return nil, fmt.Errorf("load grant: %w", err)
	}
	return &g, nil
}

func (r *repository) Consume(ctx context.Context, id, successorID string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE refresh_grants
		SET consumed = TRUE, consumed_at = NOW(), successor_id = $2
		WHERE id = $1 AND NOT consumed AND revoked_at IS NULL`,
		id, successorID,
	)
	if err != nil {
		return false, fmt.Errorf("consume grant: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("consume grant: %w", err)
	}
	return n == 1, nil
}

func (r *repository) Revoke(ctx context.Context, scope Scope, key string) error {
	switch scope {
	case ScopeGrant, ScopeFamily, ScopeUser:
	default:
		return fmt.Errorf("revoke grants: unknown scope %q", scope)
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE refresh_grants SET revoked_at = NOW()
		WHERE `+string(scope)+` = $1 AND revoked_at IS NULL`,
		key,
	)
	if err != nil {
		return fmt.Errorf("revoke grants by %s: %w", scope, err)
	}
	if scope == ScopeGrant {
		return core.RequireAffected(res, "revoke grant")
	}
	return nil
}

func (r *repository) ListActive(ctx context.Context, userID string) ([]Grant, error) {
	grants := []Grant{}
	err := r.db.SelectContext(ctx, &grants, `
		SELECT `+grantColumns+`
		FROM refresh_grants
		WHERE user_id = $1
			AND NOT consumed
			AND revoked_at IS NULL
			AND expires_at > NOW()
		ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list grants: %w", err)
	}
	return grants, nil
}

func (r *repository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM refresh_grants WHERE expires_at < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("delete expired grants: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete expired grants: %w", err)
	}
	return n, nil
}
