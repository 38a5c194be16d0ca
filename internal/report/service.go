// AngelaMos | 2026
// service.go

package report

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/carterperez-dev/classifieds/internal/core"
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

func (s *Service) Create(
	ctx context.Context,
	reporterID string,
	req CreateReportRequest,
) (*Report, error) {
	if req.TargetType == TargetUser && req.TargetID == reporterID {
		return nil, fmt.Errorf("cannot report yourself: %w", core.ErrInvalidInput)
	}

	ok, err := s.repo.TargetExists(ctx, req.TargetType, req.TargetID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, core.ErrNotFound
	}

	rp := &Report{
		ID:         uuid.New().String(),
		ReporterID: reporterID,
		TargetType: req.TargetType,
		TargetID:   req.TargetID,
		Reason:     req.Reason,
		Details:    strings.TrimSpace(req.Details),
	}
	if err := s.repo.Create(ctx, rp); err != nil {
		return nil, err
	}

	s.logger.Info("report filed",
		"report_id", rp.ID,
		"target_type", rp.TargetType,
		"target_id", rp.TargetID,
		"reason", rp.Reason,
	)
	return rp, nil
}

func (s *Service) List(
	ctx context.Context,
	targetType string,
	page core.PageParams,
) ([]Report, int, error) {
	if targetType != "" && targetType != TargetListing && targetType != TargetUser {
		return nil, 0, fmt.Errorf("unknown target type %q: %w", targetType, core.ErrInvalidInput)
	}
	return s.repo.List(ctx, targetType, page)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}
