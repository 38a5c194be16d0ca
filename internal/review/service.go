// AngelaMos | 2026
// service.go

package review

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/carterperez-dev/classifieds/internal/core"
	"github.com/carterperez-dev/classifieds/internal/listing"
	"github.com/carterperez-dev/classifieds/internal/middleware"
	"github.com/carterperez-dev/classifieds/internal/notification"
)

type ListingLookup interface {
	Lookup(ctx context.Context, id string) (*listing.Listing, error)
}

type Service struct {
	repo     Repository
	listings ListingLookup
	notifier notification.Notifier
	logger   *slog.Logger
}

func NewService(
	repo Repository,
	listings ListingLookup,
	notifier notification.Notifier,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, listings: listings, notifier: notifier, logger: logger}
}

// Create allows one review per reviewer, seller and listing. A listing,
// when given, must belong to the reviewed seller.
func (s *Service) Create(
	ctx context.Context,
	reviewerID string,
	req CreateReviewRequest,
) (*Review, error) {
	if reviewerID == req.SellerID {
		return nil, fmt.Errorf("cannot review yourself: %w", core.ErrInvalidInput)
	}

	var listingID *string
	if req.ListingID != "" {
		l, err := s.listings.Lookup(ctx, req.ListingID)
		if err != nil {
			return nil, err
		}
		if l.SellerID != req.SellerID {
			return nil, fmt.Errorf("listing belongs to another seller: %w", core.ErrInvalidInput)
		}
		listingID = &l.ID
	}

	rv := &Review{
		ID:         uuid.New().String(),
		ReviewerID: reviewerID,
		SellerID:   req.SellerID,
		ListingID:  listingID,
		Rating:     req.Rating,
		Comment:    strings.TrimSpace(req.Comment),
	}

	if err := s.repo.Create(ctx, rv); err != nil {
		return nil, err
	}

	if s.notifier != nil {
		err := s.notifier.Notify(ctx, notification.Input{
			UserID: rv.SellerID,
			Type:   notification.TypeNewReview,
			Title:  "New review",
			Body:   fmt.Sprintf("You received a %d-star review.", rv.Rating),
			Link:   "/users/" + rv.SellerID + "#reviews",
		})
		if err != nil {
			s.logger.Error("notify new review", "review_id", rv.ID, "error", err)
		}
	}

	return rv, nil
}

func (s *Service) ListForSeller(
	ctx context.Context,
	sellerID string,
	page core.PageParams,
) ([]Review, int, error) {
	return s.repo.ListForSeller(ctx, sellerID, page)
}

func (s *Service) Summary(ctx context.Context, sellerID string) (*Summary, error) {
	return s.repo.Summary(ctx, sellerID)
}

func (s *Service) Delete(ctx context.Context, session *middleware.Session, id string) error {
	rv, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if rv.ReviewerID != session.UserID && !session.IsAdmin() {
		return core.ErrForbidden
	}
	return s.repo.Delete(ctx, id)
}
