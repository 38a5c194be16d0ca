// AngelaMos | 2026
// repository.go

package listing

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/carterperez-dev/classifieds/internal/core"
)

// FeedFilter narrows the public feed. Zero values are ignored.
type FeedFilter struct {
	Category string
	City     string
	SellerID string
	Search   string
	MinPrice *int64
	MaxPrice *int64
}

type Repository interface {
	Create(ctx context.Context, l *Listing) error
	Get(ctx context.Context, id string) (*Listing, error)
	GetForUpdate(ctx context.Context, id string) (*Listing, error)
	Update(ctx context.Context, l *Listing) error
	SetStatus(ctx context.Context, id, status, reason string) error
	Bump(ctx context.Context, id, tier string, rank int, at time.Time) error
	IncrementViews(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	Feed(
		ctx context.Context,
		filter FeedFilter,
		after *core.Cursor,
		limit int,
	) ([]Listing, error)
	ListBySeller(
		ctx context.Context,
		sellerID, status string,
		page core.PageParams,
	) ([]Listing, int, error)
	ListByStatus(
		ctx context.Context,
		status string,
		page core.PageParams,
	) ([]Listing, int, error)
	CountByStatus(ctx context.Context) (map[string]int, error)
}

const listingColumns = `
	id, seller_id, title, description, price, category, city, condition,
	images, status, tier, tier_rank, view_count, reject_reason,
	bumped_at, created_at, updated_at`

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, l *Listing) error {
	query := `
		INSERT INTO listings (
			id, seller_id, title, description, price, category, city,
			condition, images, status, tier, tier_rank
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING bumped_at, created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		l.ID, l.SellerID, l.Title, l.Description, l.Price, l.Category,
		l.City, l.Condition, l.Images, l.Status, l.Tier, l.TierRank,
	).Scan(&l.BumpedAt, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		if core.IsForeignKeyError(err) {
			return fmt.Errorf("create listing: seller: %w", core.ErrNotFound)
		}
		return fmt.Errorf("create listing: %w", err)
	}

	return nil
}

func (r *repository) get(ctx context.Context, id, suffix string) (*Listing, error) {
	var l Listing
	err := r.db.GetContext(ctx, &l,
		`SELECT `+listingColumns+` FROM listings WHERE id = $1`+suffix, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get listing: %w", err)
	}
	return &l, nil
}

func (r *repository) Get(ctx context.Context, id string) (*Listing, error) {
	return r.get(ctx, id, "")
}

func (r *repository) GetForUpdate(ctx context.Context, id string) (*Listing, error) {
	return r.get(ctx, id, " FOR UPDATE")
}

func (r *repository) Update(ctx context.Context, l *Listing) error {
	query := `
		UPDATE listings
		SET title = $2, description = $3, price = $4, category = $5,
		    city = $6, condition = $7, images = $8, status = $9,
		    reject_reason = $10, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.GetContext(ctx, &l.UpdatedAt, query,
		l.ID, l.Title, l.Description, l.Price, l.Category, l.City,
		l.Condition, l.Images, l.Status, l.RejectReason,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return core.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("update listing: %w", err)
	}
	return nil
}

func (r *repository) SetStatus(ctx context.Context, id, status, reason string) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE listings
		SET status = $2, reject_reason = $3, updated_at = NOW()
		WHERE id = $1`, id, status, reason)
	if err != nil {
		return fmt.Errorf("set listing status: %w", err)
	}
	return core.RequireAffected(result, "set listing status")
}

func (r *repository) Bump(
	ctx context.Context,
	id, tier string,
	rank int,
	at time.Time,
) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE listings
		SET bumped_at = $2, tier = $3, tier_rank = $4, updated_at = $2
		WHERE id = $1`, id, at, tier, rank)
	if err != nil {
		return fmt.Errorf("bump listing: %w", err)
	}
	return core.RequireAffected(result, "bump listing")
}

func (r *repository) IncrementViews(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE listings SET view_count = view_count + 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("increment listing views: %w", err)
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM listings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete listing: %w", err)
	}
	return core.RequireAffected(result, "delete listing")
}

// Feed returns approved listings ordered by tier rank, then bump time,
// then id, all descending. after is the last row of the previous page.
func (r *repository) Feed(
	ctx context.Context,
	filter FeedFilter,
	after *core.Cursor,
	limit int,
) ([]Listing, error) {
	w := core.NewWhere("status = 'approved'")
	if filter.Category != "" {
		w.And("category = " + w.Arg(filter.Category))
	}
	if filter.City != "" {
		w.And("city = " + w.Arg(filter.City))
	}
	if filter.SellerID != "" {
		w.And("seller_id = " + w.Arg(filter.SellerID))
	}
	if filter.MinPrice != nil {
		w.And("price >= " + w.Arg(*filter.MinPrice))
	}
	if filter.MaxPrice != nil {
		w.And("price <= " + w.Arg(*filter.MaxPrice))
	}
	if filter.Search != "" {
		p := w.Arg("%" + core.EscapeLike(filter.Search) + "%")
		w.And("(title ILIKE " + p + " OR description ILIKE " + p + ")")
	}
	if after != nil {
		w.And(fmt.Sprintf("(tier_rank, bumped_at, id) < (%s, %s, %s)",
			w.Arg(after.Rank), w.Arg(after.At), w.Arg(after.ID)))
	}

	query := fmt.Sprintf(`SELECT %s
		FROM listings
		WHERE %s
		ORDER BY tier_rank DESC, bumped_at DESC, id DESC
		LIMIT %d`,
		listingColumns, w.String(), limit)

	var items []Listing
	if err := r.db.SelectContext(ctx, &items, query, w.Args...); err != nil {
		return nil, fmt.Errorf("listing feed: %w", err)
	}
	return items, nil
}

func (r *repository) page(
	ctx context.Context,
	where string,
	args []any,
	page core.PageParams,
) ([]Listing, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total,
		"SELECT COUNT(*) FROM listings WHERE "+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count listings: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s
		FROM listings
		WHERE %s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d OFFSET $%d`,
		listingColumns, where, len(args)+1, len(args)+2)
	args = append(args, page.PageSize, page.Offset())

	var items []Listing
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list listings: %w", err)
	}
	return items, total, nil
}

func (r *repository) ListBySeller(
	ctx context.Context,
	sellerID, status string,
	page core.PageParams,
) ([]Listing, int, error) {
	if status == "" {
		return r.page(ctx, "seller_id = $1", []any{sellerID}, page)
	}
	return r.page(ctx, "seller_id = $1 AND status = $2", []any{sellerID, status}, page)
}

func (r *repository) ListByStatus(
	ctx context.Context,
	status string,
	page core.PageParams,
) ([]Listing, int, error) {
	if status == "" {
		return r.page(ctx, "TRUE", nil, page)
	}
	return r.page(ctx, "status = $1", []any{status}, page)
}

func (r *repository) CountByStatus(ctx context.Context) (map[string]int, error) {
	var rows []struct {
		Status string `db:"status"`
		Count  int    `db:"count"`
	}
	err := r.db.SelectContext(ctx, &rows,
		`SELECT status, COUNT(*) AS count FROM listings GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("count listings by status: %w", err)
	}

	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}
