// AngelaMos | 2026
// service.go

package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"

	"github.com/carterperez-dev/classifieds/internal/core"
)

const cacheTTL = 10 * time.Minute

// Cache is the read-through layer in front of the settings table.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

var errCacheMiss = errors.New("cache miss")

type redisCache struct {
	client *redis.Client
}

func NewRedisCache(client *redis.Client) Cache {
	return &redisCache{client: client}
}

func (c *redisCache) Get(ctx context.Context, key string) ([]byte, error) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, errCacheMiss
	}
	return raw, err
}

func (c *redisCache) Set(
	ctx context.Context,
	key string,
	value []byte,
	ttl time.Duration,
) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}

func (c *redisCache) Del(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}

type Service struct {
	repo      Repository
	cache     Cache
	validator *validator.Validate
	logger    *slog.Logger
}

func NewService(repo Repository, cache Cache, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:      repo,
		cache:     cache,
		validator: validator.New(validator.WithRequiredStructEnabled()),
		logger:    logger,
	}
}

func cacheKey(key string) string {
	return "settings:" + key
}

// raw returns the stored value, or nil when the key was never written.
func (s *Service) raw(ctx context.Context, key string) (json.RawMessage, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, cacheKey(key))
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, errCacheMiss) {
			s.logger.Warn("settings cache read", "key", key, "error", err)
		}
	}

	value, err := s.repo.Get(ctx, key)
	if errors.Is(err, core.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey(key), value, cacheTTL); err != nil {
			s.logger.Warn("settings cache write", "key", key, "error", err)
		}
	}

	return value, nil
}

func load[T any](ctx context.Context, s *Service, key string, def T) (T, error) {
	value, err := s.raw(ctx, key)
	if err != nil {
		return def, err
	}
	if value == nil {
		return def, nil
	}

	var out T
	if err := json.Unmarshal(value, &out); err != nil {
		s.logger.Error("stored setting is malformed, using default",
			"key", key,
			"error", err,
		)
		return def, nil
	}

	return out, nil
}

func (s *Service) BankAccount(ctx context.Context) (BankAccount, error) {
	return load(ctx, s, KeyBankAccount, DefaultBankAccount())
}

func (s *Service) Plans(ctx context.Context) (Plans, error) {
	return load(ctx, s, KeyPlans, DefaultPlans())
}

func (s *Service) Plan(ctx context.Context, tier string) (Plan, error) {
	plans, err := s.Plans(ctx)
	if err != nil {
		return Plan{}, err
	}

	plan, ok := plans.Find(tier)
	if !ok {
		return Plan{}, fmt.Errorf("plan %q: %w", tier, core.ErrNotFound)
	}

	return plan, nil
}

func (s *Service) ImageLimit(ctx context.Context, tier string) (int, error) {
	plans, err := s.Plans(ctx)
	if err != nil {
		return 0, err
	}
	return ImageLimit(plans, tier), nil
}

func (s *Service) PushPrice(ctx context.Context) (int64, error) {
	p, err := load(ctx, s, KeyPushPrice, DefaultPushPrice())
	if err != nil {
		return 0, err
	}
	return p.Amount, nil
}

func (s *Service) Public(ctx context.Context) (*PublicSettings, error) {
	bank, err := s.BankAccount(ctx)
	if err != nil {
		return nil, err
	}
	plans, err := s.Plans(ctx)
	if err != nil {
		return nil, err
	}
	push, err := s.PushPrice(ctx)
	if err != nil {
		return nil, err
	}

	return &PublicSettings{
		BankAccount: bank,
		Plans:       plans.Plans,
		PushPrice:   push,
	}, nil
}

// Put validates value against the key's schema, stores it, and drops the
// cached copy.
func (s *Service) Put(ctx context.Context, key string, value json.RawMessage) error {
	var target any
	switch key {
	case KeyBankAccount:
		target = &BankAccount{}
	case KeyPlans:
		target = &Plans{}
	case KeyPushPrice:
		target = &PushPrice{}
	default:
		return fmt.Errorf("unknown setting %q: %w", key, core.ErrInvalidInput)
	}

	if err := json.Unmarshal(value, target); err != nil {
		return fmt.Errorf("setting %s: malformed json: %w", key, core.ErrInvalidInput)
	}
	if err := s.validator.Struct(target); err != nil {
		return core.BadRequestError(core.FormatValidationError(err))
	}

	normalized, err := json.Marshal(target)
	if err != nil {
		return fmt.Errorf("marshal setting: %w", err)
	}

	if err := s.repo.Put(ctx, key, normalized); err != nil {
		return err
	}

	if s.cache != nil {
		if err := s.cache.Del(ctx, cacheKey(key)); err != nil {
			s.logger.Warn("settings cache invalidate", "key", key, "error", err)
		}
	}

	s.logger.Info("setting updated", "key", key)

	return nil
}
