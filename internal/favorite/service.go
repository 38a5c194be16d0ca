// AngelaMos | 2026
// service.go

package favorite

import (
	"context"
	"log/slog"

	"github.com/carterperez-dev/classifieds/internal/core"
)

const (
	defaultPageSize = 20
	maxPageSize     = 50
)

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}
}

func (s *Service) Add(ctx context.Context, userID, listingID string) error {
	return s.repo.Add(ctx, userID, listingID)
}

func (s *Service) Remove(ctx context.Context, userID, listingID string) error {
	return s.repo.Remove(ctx, userID, listingID)
}

func (s *Service) IsFavorited(ctx context.Context, userID, listingID string) (bool, error) {
	return s.repo.Exists(ctx, userID, listingID)
}

func (s *Service) List(
	ctx context.Context,
	userID, cursor string,
	limit int,
) ([]Item, string, error) {
	after, err := core.DecodeCursor(cursor)
	if err != nil {
		return nil, "", err
	}

	limit = core.ClampLimit(limit, defaultPageSize, maxPageSize)

	items, err := s.repo.List(ctx, userID, after, limit+1)
	if err != nil {
		return nil, "", err
	}

	next := ""
	if len(items) > limit {
		items = items[:limit]
		last := items[len(items)-1]
		next = core.EncodeCursor(core.Cursor{At: last.FavoritedAt, ID: last.ID})
	}

	return items, next, nil
}
