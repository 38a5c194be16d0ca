// AngelaMos | 2026
// repository.go

package notification

import (
	"context"
	"fmt"

	"github.com/carterperez-dev/classifieds/internal/core"
)

type Repository interface {
	Create(ctx context.Context, n *Notification) error
	List(
		ctx context.Context,
		userID string,
		after *core.Cursor,
		limit int,
	) ([]Notification, error)
	UnreadCount(ctx context.Context, userID string) (int, error)
	MarkRead(ctx context.Context, userID, id string) error
	MarkAllRead(ctx context.Context, userID string) (int64, error)
	Delete(ctx context.Context, userID, id string) error
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, n *Notification) error {
	query := `
		INSERT INTO notifications (id, user_id, type, title, body, link)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`

	err := r.db.GetContext(ctx, &n.CreatedAt, query,
		n.ID, n.UserID, n.Type, n.Title, n.Body, n.Link)
	if err != nil {
		return fmt.Errorf("create notification: %w", err)
	}

	return nil
}

func (r *repository) List(
	ctx context.Context,
	userID string,
	after *core.Cursor,
	limit int,
) ([]Notification, error) {
	query := `
		SELECT id, user_id, type, title, body, link, read_at, created_at
		FROM notifications
		WHERE user_id = $1`
	args := []any{userID}

	if after != nil {
		query += ` AND (created_at, id) < ($2, $3)`
		args = append(args, after.At, after.ID)
	}

	query += fmt.Sprintf(` ORDER BY created_at DESC, id DESC LIMIT %d`, limit)

	var items []Notification
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}

	return items, nil
}

func (r *repository) UnreadCount(ctx context.Context, userID string) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `
		SELECT COUNT(*) FROM notifications
		WHERE user_id = $1 AND read_at IS NULL`, userID)
	if err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}
	return n, nil
}

func (r *repository) MarkRead(ctx context.Context, userID, id string) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE notifications
		SET read_at = COALESCE(read_at, NOW())
		WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	return core.RequireAffected(result, "mark notification read")
}

func (r *repository) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE notifications
		SET read_at = NOW()
		WHERE user_id = $1 AND read_at IS NULL`, userID)
	if err != nil {
		return 0, fmt.Errorf("mark all notifications read: %w", err)
	}
	return result.RowsAffected()
}

func (r *repository) Delete(ctx context.Context, userID, id string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM notifications WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete notification: %w", err)
	}
	return core.RequireAffected(result, "delete notification")
}
