// AngelaMos | 2026
// blacklist.go

package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenBlacklist remembers revoked access tokens by jti until they would
// have expired anyway.
type TokenBlacklist interface {
	Revoke(ctx context.Context, jti string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

type redisBlacklist struct {
	client *redis.Client
}

func NewRedisBlacklist(client *redis.Client) TokenBlacklist {
	return &redisBlacklist{client: client}
}

func blacklistKey(jti string) string {
	return "blacklist:" + jti
}

func (b *redisBlacklist) Revoke(
	ctx context.Context,
	jti string,
	expiresAt time.Time,
) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}

	if err := b.client.Set(ctx, blacklistKey(jti), "1", ttl).Err(); err != nil {
		return fmt.Errorf("blacklist token: %w", err)
	}

	return nil
}

func (b *redisBlacklist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	exists, err := b.client.Exists(ctx, blacklistKey(jti)).Result()
	if err != nil {
		return false, fmt.Errorf("check blacklist: %w", err)
	}

	return exists > 0, nil
}
