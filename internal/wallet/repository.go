// AngelaMos | 2026
// repository.go

package wallet

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/carterperez-dev/classifieds/internal/core"
)

type ListParams struct {
	UserID string
	Status string
	Type   string
	core.PageParams
}

type Repository interface {
	Create(ctx context.Context, t *Transaction) error
	Get(ctx context.Context, id string) (*Transaction, error)
	GetForUpdate(ctx context.Context, id string) (*Transaction, error)
	MarkProcessed(
		ctx context.Context,
		id, status, adminID, note string,
		at time.Time,
	) error
	Account(ctx context.Context, userID string) (*Account, error)
	AccountForUpdate(ctx context.Context, userID string) (*Account, error)
	Credit(ctx context.Context, userID string, amount int64) error
	Debit(ctx context.Context, userID string, amount int64) error
	SetSubscription(
		ctx context.Context,
		userID, tier string,
		expiresAt *time.Time,
	) error
	List(ctx context.Context, params ListParams) ([]Transaction, int, error)
	CountPending(ctx context.Context) (int, error)
}

const transactionColumns = `
	id, user_id, type, amount, method, tier, reference, status, note,
	processed_by, processed_at, created_at, updated_at`

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, t *Transaction) error {
	query := `
		INSERT INTO wallet_transactions (
			id, user_id, type, amount, method, tier, reference, status, note,
			processed_by, processed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		t.ID, t.UserID, t.Type, t.Amount, t.Method, t.Tier, t.Reference,
		t.Status, t.Note, t.ProcessedBy, t.ProcessedAt,
	).Scan(&t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if core.IsForeignKeyError(err) {
			return fmt.Errorf("create transaction: %w", ErrUserNotFound)
		}
		return fmt.Errorf("create transaction: %w", err)
	}

	return nil
}

func (r *repository) get(ctx context.Context, id, suffix string) (*Transaction, error) {
	query := `SELECT ` + transactionColumns + `
		FROM wallet_transactions
		WHERE id = $1` + suffix

	var t Transaction
	err := r.db.GetContext(ctx, &t, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTransactionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get transaction: %w", err)
	}

	return &t, nil
}

func (r *repository) Get(ctx context.Context, id string) (*Transaction, error) {
	return r.get(ctx, id, "")
}

// GetForUpdate locks the row until the surrounding transaction ends.
func (r *repository) GetForUpdate(ctx context.Context, id string) (*Transaction, error) {
	return r.get(ctx, id, " FOR UPDATE")
}

// MarkProcessed moves a pending transaction to a terminal status. A row
// that is no longer pending is left untouched and reported as processed.
func (r *repository) MarkProcessed(
	ctx context.Context,
	id, status, adminID, note string,
	at time.Time,
) error {
	var processedBy *string
	if adminID != "" {
		processedBy = &adminID
	}

	result, err := r.db.ExecContext(ctx, `
		UPDATE wallet_transactions
		SET status = $2, processed_by = $3, processed_at = $4, note = $5,
		    updated_at = $4
		WHERE id = $1 AND status = 'pending'`,
		id, status, processedBy, at, note,
	)
	if err != nil {
		return fmt.Errorf("mark transaction %s: %w", status, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark transaction %s: %w", status, err)
	}
	if rows == 0 {
		return ErrAlreadyProcessed
	}

	return nil
}

func (r *repository) account(ctx context.Context, userID, suffix string) (*Account, error) {
	var a Account
	err := r.db.GetContext(ctx, &a, `
		SELECT id, wallet_balance, tier, subscription_expires_at
		FROM users
		WHERE id = $1 AND deleted_at IS NULL`+suffix, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load account: %w", err)
	}
	return &a, nil
}

func (r *repository) Account(ctx context.Context, userID string) (*Account, error) {
	return r.account(ctx, userID, "")
}

func (r *repository) AccountForUpdate(ctx context.Context, userID string) (*Account, error) {
	return r.account(ctx, userID, " FOR UPDATE")
}

func (r *repository) Credit(ctx context.Context, userID string, amount int64) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET wallet_balance = wallet_balance + $2, updated_at = NOW()
		WHERE id = $1`, userID, amount)
	if err != nil {
		return fmt.Errorf("credit wallet: %w", err)
	}
	if err := core.RequireAffected(result, "credit wallet"); err != nil {
		return ErrUserNotFound
	}
	return nil
}

// Debit refuses to take the balance below zero.
func (r *repository) Debit(ctx context.Context, userID string, amount int64) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET wallet_balance = wallet_balance - $2, updated_at = NOW()
		WHERE id = $1 AND wallet_balance >= $2`, userID, amount)
	if err != nil {
		return fmt.Errorf("debit wallet: %w", err)
	}
	if err := core.RequireAffected(result, "debit wallet"); err != nil {
		return fmt.Errorf("debit wallet: %w", core.ErrInsufficientFunds)
	}
	return nil
}

func (r *repository) SetSubscription(
	ctx context.Context,
	userID, tier string,
	expiresAt *time.Time,
) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET tier = $2, subscription_expires_at = $3, updated_at = NOW()
		WHERE id = $1`, userID, tier, expiresAt)
	if err != nil {
		return fmt.Errorf("set subscription: %w", err)
	}
	if err := core.RequireAffected(result, "set subscription"); err != nil {
		return ErrUserNotFound
	}
	return nil
}

func (r *repository) List(
	ctx context.Context,
	params ListParams,
) ([]Transaction, int, error) {
	w := core.NewWhere()
	for _, f := range [...]struct{ column, value string }{
		{"user_id", params.UserID},
		{"status", params.Status},
		{"type", params.Type},
	} {
		if f.value != "" {
			w.And(f.column + " = " + w.Arg(f.value))
		}
	}

	var total int
	if err := r.db.GetContext(ctx, &total,
		"SELECT COUNT(*) FROM wallet_transactions WHERE "+w.String(), w.Args...); err != nil {
		return nil, 0, fmt.Errorf("count transactions: %w", err)
	}

	// Admins work the pending queue oldest first.
	order := "created_at DESC, id DESC"
	if params.Status == StatusPending && params.UserID == "" {
		order = "created_at ASC, id ASC"
	}

	query := `SELECT ` + transactionColumns + `
		FROM wallet_transactions
		WHERE ` + w.String() + `
		ORDER BY ` + order + `
		LIMIT ` + w.Next(1) + ` OFFSET ` + w.Next(2)
	args := append(w.Args, params.PageSize, params.Offset())

	var items []Transaction
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list transactions: %w", err)
	}

	return items, total, nil
}

func (r *repository) CountPending(ctx context.Context) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n,
		`SELECT COUNT(*) FROM wallet_transactions WHERE status = 'pending'`)
	if err != nil {
		return 0, fmt.Errorf("count pending transactions: %w", err)
	}
	return n, nil
}
