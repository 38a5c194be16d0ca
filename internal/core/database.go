// AngelaMos | 2026
// database.go

package core

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"

	"github.com/carterperez-dev/classifieds/internal/config"
)

// DBTX is what repositories query through: the pool itself or a
// transaction opened by InTx.
type DBTX interface {
	sqlx.ExtContext
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
}

// TxRunner opens transactions. Services take it instead of *Database so
// tests can run fn directly.
type TxRunner interface {
	InTx(ctx context.Context, fn func(tx DBTX) error) error
}

type Database struct {
	DB *sqlx.DB
}

var _ TxRunner = (*Database)(nil)

func NewDatabase(ctx context.Context, cfg config.DatabaseConfig) (*Database, error) {
	db, err := sqlx.ConnectContext(ctx, "pgx", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	// spread reconnects so replicas do not recycle all at once
	db.SetConnMaxLifetime(withJitter(cfg.ConnMaxLifetime))

	d := &Database{DB: db}
	if err := d.Ping(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return d, nil
}

func (d *Database) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := d.DB.PingContext(ctx); err != nil {
		return fmt.Errorf("ping postgres: %w", err)
	}
	return nil
}

func (d *Database) Stats() sql.DBStats {
	return d.DB.Stats()
}

func (d *Database) Close() error {
	if d == nil || d.DB == nil {
		return nil
	}
	return d.DB.Close()
}

// InTx runs fn in a read-committed transaction, committing when fn
// returns nil and rolling back otherwise. Wallet and listing writes lock
// the rows they change with SELECT ... FOR UPDATE inside fn.
func (d *Database) InTx(ctx context.Context, fn func(tx DBTX) error) (err error) {
	tx, err := d.DB.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) && err != nil {
			err = fmt.Errorf("%w (rollback: %v)", err, rbErr)
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	committed = true
	return nil
}

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func IsDuplicateKeyError(err error) bool {
	return pgCode(err) == pgUniqueViolation
}

func IsForeignKeyError(err error) bool {
	return pgCode(err) == pgForeignKeyViolation
}

// RequireAffected reports ErrNotFound when a write matched no rows.
func RequireAffected(result sql.Result, op string) error {
	n, err := result.RowsAffected()
	switch {
	case err != nil:
		return fmt.Errorf("%s: %w", op, err)
	case n == 0:
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}

func withJitter(base time.Duration) time.Duration {
	if base <= 0 {
		return base
	}
	return base + time.Duration(rand.Int64N(int64(base/7)+1)) //nolint:gosec // pool jitter
}
