// AngelaMos | 2026
// repository.go

package settings

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/carterperez-dev/classifieds/internal/core"
)

type Repository interface {
	Get(ctx context.Context, key string) (json.RawMessage, error)
	Put(ctx context.Context, key string, value json.RawMessage) error
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Get(ctx context.Context, key string) (json.RawMessage, error) {
	var raw []byte
	err := r.db.GetContext(ctx, &raw, `SELECT value FROM settings WHERE key = $1`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get setting %s: %w", key, core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get setting %s: %w", key, err)
	}
	return raw, nil
}

func (r *repository) Put(ctx context.Context, key string, value json.RawMessage) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO settings (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value, updated_at = NOW()`, key, []byte(value))
	if err != nil {
		return fmt.Errorf("put setting %s: %w", key, err)
	}
	return nil
}
