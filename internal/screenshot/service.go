// AngelaMos | 2026
// service.go

package screenshot

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/carterperez-dev/classifieds/internal/core"
)

const defaultTimeout = 60 * time.Second

type Capturer interface {
	Capture(ctx context.Context, url string) ([]byte, error)
}

type Service struct {
	capturer Capturer
	guard    *Guard
	timeout  time.Duration
	logger   *slog.Logger
}

func NewService(
	capturer Capturer,
	guard *Guard,
	timeout time.Duration,
	logger *slog.Logger,
) *Service {
	if guard == nil {
		guard = NewGuard()
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{capturer: capturer, guard: guard, timeout: timeout, logger: logger}
}

// Take renders target and returns the PNG as base64.
func (s *Service) Take(ctx context.Context, target string) (string, error) {
	u, err := url.Parse(target)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("url must be absolute http(s): %w", core.ErrInvalidInput)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.guard.Check(ctx, u.Hostname()); err != nil {
		s.logger.Warn("screenshot target refused", "host", u.Host, "error", err)
		return "", err
	}

	ctx, span := core.StartSpan(ctx, "screenshot.take")
	defer span.End()

	start := time.Now()
	img, err := s.capturer.Capture(ctx, u.String())
	if err != nil {
		core.SetSpanError(ctx, err)
		s.logger.Warn("screenshot failed", "host", u.Host, "error", err)
		return "", fmt.Errorf("screenshot %s: %w", u.Host, core.ErrUnavailable)
	}

	s.logger.Debug("screenshot taken",
		"host", u.Host,
		"bytes", len(img),
		"duration", time.Since(start),
	)
	return base64.StdEncoding.EncodeToString(img), nil
}
