// AngelaMos | 2026
// service.go

package listing

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/carterperez-dev/classifieds/internal/core"
	"github.com/carterperez-dev/classifieds/internal/middleware"
	"github.com/carterperez-dev/classifieds/internal/notification"
	"github.com/carterperez-dev/classifieds/internal/wallet"
)

const (
	defaultPageSize = 20
	maxPageSize     = 50
)

// Limits supplies the admin-configured image caps and push price.
type Limits interface {
	ImageLimit(ctx context.Context, tier string) (int, error)
	PushPrice(ctx context.Context) (int64, error)
}

// Charger debits a wallet inside an open transaction.
type Charger interface {
	ChargeInTx(
		ctx context.Context,
		dbtx core.DBTX,
		userID, txType string,
		amount int64,
		reference string,
	) (*wallet.Transaction, error)
}

type Deps struct {
	DB       core.TxRunner
	Repo     Repository
	RepoFor  func(core.DBTX) Repository
	Limits   Limits
	Charger  Charger
	Notifier notification.Notifier
	Logger   *slog.Logger
}

type Service struct {
	db       core.TxRunner
	repo     Repository
	repoFor  func(core.DBTX) Repository
	limits   Limits
	charger  Charger
	notifier notification.Notifier
	logger   *slog.Logger
	now      func() time.Time
}

func NewService(d Deps) *Service {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.RepoFor == nil {
		d.RepoFor = NewRepository
	}
	return &Service{
		db:       d.DB,
		repo:     d.Repo,
		repoFor:  d.RepoFor,
		limits:   d.Limits,
		charger:  d.Charger,
		notifier: d.Notifier,
		logger:   d.Logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) checkImages(ctx context.Context, tier string, images []string) error {
	limit, err := s.limits.ImageLimit(ctx, tier)
	if err != nil {
		return err
	}
	if len(images) > limit {
		return core.BadRequestError(fmt.Sprintf(
			"%s tier allows at most %d images per listing", tier, limit,
		))
	}
	return nil
}

// Create stores a new listing awaiting moderation, stamped with the
// seller's current tier.
func (s *Service) Create(
	ctx context.Context,
	session *middleware.Session,
	req CreateListingRequest,
) (*Listing, error) {
	tier := session.Tier
	if !core.ValidTier(tier) {
		tier = core.TierFree
	}

	if err := s.checkImages(ctx, tier, req.Images); err != nil {
		return nil, err
	}

	condition := req.Condition
	if condition == "" {
		condition = "used"
	}

	l := &Listing{
		ID:          uuid.New().String(),
		SellerID:    session.UserID,
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Price:       req.Price,
		Category:    req.Category,
		City:        req.City,
		Condition:   condition,
		Images:      StringList(req.Images),
		Status:      StatusPending,
		Tier:        tier,
		TierRank:    core.TierRank(tier),
	}
	if l.Images == nil {
		l.Images = StringList{}
	}

	if err := s.repo.Create(ctx, l); err != nil {
		return nil, err
	}

	s.logger.Info("listing created",
		"listing_id", l.ID,
		"seller_id", l.SellerID,
		"tier", tier,
	)

	return l, nil
}

// Get hides listings that are not approved from everyone but the seller
// and admins. Views by anyone other than the seller are counted.
func (s *Service) Get(
	ctx context.Context,
	viewer *middleware.Session,
	id string,
) (*Listing, error) {
	l, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	viewerID := ""
	if viewer != nil {
		viewerID = viewer.UserID
	}
	owner := l.IsOwnedBy(viewerID)

	if l.Status != StatusApproved && !owner && !viewer.IsAdmin() {
		return nil, core.ErrNotFound
	}

	if !owner {
		if err := s.repo.IncrementViews(ctx, l.ID); err != nil {
			s.logger.Warn("count listing view", "listing_id", l.ID, "error", err)
		} else {
			l.ViewCount++
		}
	}

	return l, nil
}

// Lookup returns a listing regardless of status.
func (s *Service) Lookup(ctx context.Context, id string) (*Listing, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Update(
	ctx context.Context,
	session *middleware.Session,
	id string,
	req UpdateListingRequest,
) (*Listing, error) {
	l, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !l.IsOwnedBy(session.UserID) {
		return nil, core.ErrForbidden
	}
	if l.Status == StatusSold {
		return nil, fmt.Errorf("sold listings cannot be edited: %w", core.ErrConflict)
	}

	if req.Title != nil {
		l.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		l.Description = strings.TrimSpace(*req.Description)
	}
	if req.Price != nil {
		l.Price = *req.Price
	}
	if req.Category != nil {
		l.Category = *req.Category
	}
	if req.City != nil {
		l.City = *req.City
	}
	if req.Condition != nil {
		l.Condition = *req.Condition
	}
	if req.Images != nil {
		if err := s.checkImages(ctx, session.Tier, *req.Images); err != nil {
			return nil, err
		}
		l.Images = StringList(*req.Images)
	}

	// Edited content goes back through moderation.
	if l.Status == StatusApproved || l.Status == StatusRejected {
		l.Status = StatusPending
		l.RejectReason = ""
	}

	if err := s.repo.Update(ctx, l); err != nil {
		return nil, err
	}

	return l, nil
}

func (s *Service) Delete(ctx context.Context, session *middleware.Session, id string) error {
	l, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if !l.IsOwnedBy(session.UserID) && !session.IsAdmin() {
		return core.ErrForbidden
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("listing deleted",
		"listing_id", id,
		"by", session.UserID,
	)
	return nil
}

func (s *Service) Feed(
	ctx context.Context,
	filter FeedFilter,
	cursor string,
	limit int,
) ([]Listing, string, error) {
	after, err := core.DecodeCursor(cursor)
	if err != nil {
		return nil, "", err
	}
	if filter.MinPrice != nil && filter.MaxPrice != nil && *filter.MinPrice > *filter.MaxPrice {
		return nil, "", fmt.Errorf("min_price exceeds max_price: %w", core.ErrInvalidInput)
	}

	limit = core.ClampLimit(limit, defaultPageSize, maxPageSize)

	items, err := s.repo.Feed(ctx, filter, after, limit+1)
	if err != nil {
		return nil, "", err
	}

	next := ""
	if len(items) > limit {
		items = items[:limit]
		last := items[len(items)-1]
		next = core.EncodeCursor(core.Cursor{
			Rank: last.TierRank,
			At:   last.BumpedAt,
			ID:   last.ID,
		})
	}

	return items, next, nil
}

func (s *Service) ListMine(
	ctx context.Context,
	userID, status string,
	page core.PageParams,
) ([]Listing, int, error) {
	if status != "" && !ValidStatus(status) {
		return nil, 0, fmt.Errorf("unknown status %q: %w", status, core.ErrInvalidInput)
	}
	return s.repo.ListBySeller(ctx, userID, status, page)
}

// ownerTransitions lists the statuses an owner may move a listing to and
// where from.
var ownerTransitions = map[string][]string{
	StatusSold:    {StatusApproved, StatusHidden},
	StatusHidden:  {StatusApproved},
	StatusPending: {StatusHidden},
}

func (s *Service) transition(
	ctx context.Context,
	userID, id, to string,
) (*Listing, error) {
	l, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !l.IsOwnedBy(userID) {
		return nil, core.ErrForbidden
	}

	allowed := false
	for _, from := range ownerTransitions[to] {
		if l.Status == from {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, fmt.Errorf("listing is %s: %w", l.Status, core.ErrConflict)
	}

	if err := s.repo.SetStatus(ctx, id, to, ""); err != nil {
		return nil, err
	}

	l.Status = to
	l.RejectReason = ""
	return l, nil
}

func (s *Service) MarkSold(ctx context.Context, userID, id string) (*Listing, error) {
	return s.transition(ctx, userID, id, StatusSold)
}

func (s *Service) Hide(ctx context.Context, userID, id string) (*Listing, error) {
	return s.transition(ctx, userID, id, StatusHidden)
}

// Unhide sends the listing back to moderation; a hidden listing may have
// been hidden by an admin.
func (s *Service) Unhide(ctx context.Context, userID, id string) (*Listing, error) {
	return s.transition(ctx, userID, id, StatusPending)
}

// Push pays push_price from the owner's wallet and moves the listing to
// the top of its tier band. Debit, wallet record and bump commit together.
func (s *Service) Push(
	ctx context.Context,
	session *middleware.Session,
	id string,
) (*PushResponse, error) {
	ctx, span := core.StartSpan(ctx, "listing.Push", attribute.String("listing.id", id))
	defer span.End()

	price, err := s.limits.PushPrice(ctx)
	if err != nil {
		return nil, err
	}

	tier := session.Tier
	if !core.ValidTier(tier) {
		tier = core.TierFree
	}

	var out PushResponse
	err = s.db.InTx(ctx, func(dbtx core.DBTX) error {
		repo := s.repoFor(dbtx)

		l, err := repo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if !l.IsOwnedBy(session.UserID) {
			return core.ErrForbidden
		}
		if l.Status != StatusApproved {
			return fmt.Errorf("only approved listings can be pushed: %w", core.ErrConflict)
		}

		t, err := s.charger.ChargeInTx(ctx, dbtx, session.UserID, wallet.TypePush, price, l.ID)
		if err != nil {
			return err
		}

		now := s.now()
		if err := repo.Bump(ctx, l.ID, tier, core.TierRank(tier), now); err != nil {
			return err
		}

		l.BumpedAt = now
		l.UpdatedAt = now
		l.Tier = tier
		l.TierRank = core.TierRank(tier)

		out = PushResponse{Listing: l, TransactionID: t.ID, Charged: price}
		return nil
	})
	if err != nil {
		core.SetSpanError(ctx, err)
		return nil, err
	}

	s.logger.Info("listing pushed",
		"listing_id", id,
		"seller_id", session.UserID,
		"charged", price,
	)

	return &out, nil
}

func (s *Service) ListForModeration(
	ctx context.Context,
	status string,
	page core.PageParams,
) ([]Listing, int, error) {
	if status != "" && !ValidStatus(status) {
		return nil, 0, fmt.Errorf("unknown status %q: %w", status, core.ErrInvalidInput)
	}
	return s.repo.ListByStatus(ctx, status, page)
}

func (s *Service) Approve(ctx context.Context, id string) (*Listing, error) {
	return s.moderate(ctx, id, StatusApproved, "")
}

func (s *Service) Reject(ctx context.Context, id, reason string) (*Listing, error) {
	return s.moderate(ctx, id, StatusRejected, reason)
}

func (s *Service) AdminHide(ctx context.Context, id string) (*Listing, error) {
	return s.moderate(ctx, id, StatusHidden, "")
}

func (s *Service) moderate(ctx context.Context, id, status, reason string) (*Listing, error) {
	l, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if l.Status == StatusSold {
		return nil, fmt.Errorf("listing is sold: %w", core.ErrConflict)
	}

	if err := s.repo.SetStatus(ctx, id, status, reason); err != nil {
		return nil, err
	}
	l.Status = status
	l.RejectReason = reason

	s.logger.Info("listing moderated",
		"listing_id", id,
		"status", status,
	)

	s.notifySeller(ctx, l)
	return l, nil
}

func (s *Service) notifySeller(ctx context.Context, l *Listing) {
	if s.notifier == nil {
		return
	}

	in := notification.Input{
		UserID: l.SellerID,
		Link:   "/listings/" + l.ID,
	}
	switch l.Status {
	case StatusApproved:
		in.Type = notification.TypeListingApproved
		in.Title = "Listing approved"
		in.Body = fmt.Sprintf("%q is now live.", l.Title)
	case StatusRejected:
		in.Type = notification.TypeListingRejected
		in.Title = "Listing rejected"
		in.Body = fmt.Sprintf("%q was rejected: %s", l.Title, l.RejectReason)
	case StatusHidden:
		in.Type = notification.TypeListingRejected
		in.Title = "Listing hidden"
		in.Body = fmt.Sprintf("%q was hidden by a moderator.", l.Title)
	default:
		return
	}

	if err := s.notifier.Notify(ctx, in); err != nil {
		s.logger.Error("notify seller", "listing_id", l.ID, "error", err)
	}
}

func (s *Service) CountByStatus(ctx context.Context) (map[string]int, error) {
	return s.repo.CountByStatus(ctx)
}
