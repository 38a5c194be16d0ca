// AngelaMos | 2026
// service.go

package notification

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/carterperez-dev/classifieds/internal/core"
	"github.com/carterperez-dev/classifieds/internal/realtime"
)

const (
	defaultPageSize = 20
	maxPageSize     = 50
)

// Notifier is the narrow surface other modules depend on.
type Notifier interface {
	Notify(ctx context.Context, in Input) error
}

type Service struct {
	repo   Repository
	broker realtime.Broker
	logger *slog.Logger
}

func NewService(repo Repository, broker realtime.Broker, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, broker: broker, logger: logger}
}

// Notify stores the notification and pushes it to the user's live
// stream. A failed push is logged; the stored row is the source of truth.
func (s *Service) Notify(ctx context.Context, in Input) error {
	n := &Notification{
		ID:     uuid.New().String(),
		UserID: in.UserID,
		Type:   in.Type,
		Title:  in.Title,
		Body:   in.Body,
		Link:   in.Link,
	}

	if err := s.repo.Create(ctx, n); err != nil {
		return err
	}

	if s.broker != nil {
		err := realtime.PublishJSON(
			ctx,
			s.broker,
			realtime.UserTopic(in.UserID),
			realtime.EventNotificationCreated,
			n,
		)
		if err != nil {
			s.logger.Warn("publish notification",
				"user_id", in.UserID,
				"type", in.Type,
				"error", err,
			)
		}
	}

	return nil
}

func (s *Service) List(
	ctx context.Context,
	userID, cursor string,
	limit int,
) ([]Notification, string, error) {
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
		next = core.EncodeCursor(core.Cursor{At: last.CreatedAt, ID: last.ID})
	}

	return items, next, nil
}

func (s *Service) UnreadCount(ctx context.Context, userID string) (int, error) {
	return s.repo.UnreadCount(ctx, userID)
}

func (s *Service) MarkRead(ctx context.Context, userID, id string) error {
	return s.repo.MarkRead(ctx, userID, id)
}

func (s *Service) MarkAllRead(ctx context.Context, userID string) error {
	if _, err := s.repo.MarkAllRead(ctx, userID); err != nil {
		return fmt.Errorf("mark all read: %w", err)
	}
	return nil
}

func (s *Service) Delete(ctx context.Context, userID, id string) error {
	return s.repo.Delete(ctx, userID, id)
}

var _ Notifier = (*Service)(nil)
