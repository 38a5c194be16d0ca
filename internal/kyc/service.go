// AngelaMos | 2026
// service.go

package kyc

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/carterperez-dev/classifieds/internal/core"
	"github.com/carterperez-dev/classifieds/internal/notification"
)

type Service struct {
	db       core.TxRunner
	repo     Repository
	repoFor  func(core.DBTX) Repository
	notifier notification.Notifier
	logger   *slog.Logger
	now      func() time.Time
}

func NewService(
	db core.TxRunner,
	repo Repository,
	notifier notification.Notifier,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		db:       db,
		repo:     repo,
		repoFor:  NewRepository,
		notifier: notifier,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) Submit(ctx context.Context, userID string, req SubmitRequest) (*Submission, error) {
	sub := &Submission{
		ID:             uuid.New().String(),
		UserID:         userID,
		FullName:       strings.TrimSpace(req.FullName),
		DocumentNumber: strings.TrimSpace(req.DocumentNumber),
		DocumentURL:    req.DocumentURL,
		SelfieURL:      req.SelfieURL,
		Status:         StatusPending,
	}

	if err := s.repo.Create(ctx, sub); err != nil {
		return nil, err
	}

	s.logger.Info("kyc submitted", "submission_id", sub.ID, "user_id", userID)
	return sub, nil
}

func (s *Service) Latest(ctx context.Context, userID string) (*Submission, error) {
	return s.repo.Latest(ctx, userID)
}

func (s *Service) List(ctx context.Context, status string, page core.PageParams) ([]Submission, int, error) {
	if status == "" {
		status = StatusPending
	}
	return s.repo.List(ctx, status, page)
}

func (s *Service) CountPending(ctx context.Context) (int, error) {
	return s.repo.CountPending(ctx)
}

// Approve marks the submission approved and the user verified in one
// transaction.
func (s *Service) Approve(ctx context.Context, id, adminID string) (*Submission, error) {
	return s.review(ctx, id, adminID, StatusApproved, "")
}

func (s *Service) Reject(ctx context.Context, id, adminID, note string) (*Submission, error) {
	return s.review(ctx, id, adminID, StatusRejected, note)
}

func (s *Service) review(
	ctx context.Context,
	id, adminID, status, note string,
) (*Submission, error) {
	var sub *Submission
	err := s.db.InTx(ctx, func(dbtx core.DBTX) error {
		repo := s.repoFor(dbtx)

		found, err := repo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if found.Status != StatusPending {
			return ErrAlreadyReviewed
		}

		now := s.now()
		if err := repo.MarkReviewed(ctx, id, status, adminID, note, now); err != nil {
			return err
		}
		if status == StatusApproved {
			if err := repo.SetUserVerified(ctx, found.UserID, true); err != nil {
				return err
			}
		}

		found.Status = status
		found.Note = note
		found.ReviewedBy = &adminID
		found.ReviewedAt = &now
		sub = found
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("kyc reviewed",
		"submission_id", sub.ID,
		"user_id", sub.UserID,
		"status", status,
		"admin_id", adminID,
	)

	s.notify(ctx, sub)
	return sub, nil
}

func (s *Service) notify(ctx context.Context, sub *Submission) {
	if s.notifier == nil {
		return
	}

	in := notification.Input{UserID: sub.UserID, Link: "/account/verification"}
	if sub.Status == StatusApproved {
		in.Type = notification.TypeKYCApproved
		in.Title = "Identity verified"
		in.Body = "Your account now shows the verified badge."
	} else {
		in.Type = notification.TypeKYCRejected
		in.Title = "Verification rejected"
		in.Body = sub.Note
	}

	if err := s.notifier.Notify(ctx, in); err != nil {
		s.logger.Error("notify kyc result", "submission_id", sub.ID, "error", err)
	}
}
