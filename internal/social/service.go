// AngelaMos | 2026
// service.go

package social

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/carterperez-dev/classifieds/internal/core"
	"github.com/carterperez-dev/classifieds/internal/notification"
)

type Service struct {
	repo     Repository
	notifier notification.Notifier
	logger   *slog.Logger
}

func NewService(repo Repository, notifier notification.Notifier, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, notifier: notifier, logger: logger}
}

// Follow is idempotent. Only the first follow notifies the followee.
func (s *Service) Follow(ctx context.Context, followerID, followeeID string) error {
	if followerID == followeeID {
		return fmt.Errorf("cannot follow yourself: %w", core.ErrInvalidInput)
	}

	created, err := s.repo.Follow(ctx, followerID, followeeID)
	if err != nil {
		return err
	}
	if !created || s.notifier == nil {
		return nil
	}

	err = s.notifier.Notify(ctx, notification.Input{
		UserID: followeeID,
		Type:   notification.TypeNewFollower,
		Title:  "New follower",
		Body:   "Someone started following you.",
		Link:   "/users/" + followerID,
	})
	if err != nil {
		s.logger.Error("notify new follower",
			"follower_id", followerID,
			"followee_id", followeeID,
			"error", err,
		)
	}

	return nil
}

func (s *Service) Unfollow(ctx context.Context, followerID, followeeID string) error {
	return s.repo.Unfollow(ctx, followerID, followeeID)
}

func (s *Service) IsFollowing(ctx context.Context, followerID, followeeID string) (bool, error) {
	return s.repo.IsFollowing(ctx, followerID, followeeID)
}

func (s *Service) Followers(
	ctx context.Context,
	userID string,
	page core.PageParams,
) ([]Profile, int, error) {
	return s.repo.Followers(ctx, userID, page)
}

func (s *Service) Following(
	ctx context.Context,
	userID string,
	page core.PageParams,
) ([]Profile, int, error) {
	return s.repo.Following(ctx, userID, page)
}

func (s *Service) Counts(ctx context.Context, userID string) (*Counts, error) {
	return s.repo.Counts(ctx, userID)
}
