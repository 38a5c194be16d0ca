// AngelaMos | 2026
// redis_test.go

package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/classifieds/internal/config"
)

func TestRedisOptions(t *testing.T) {
	opts, err := redisOptions(config.RedisConfig{
		URL:          "redis://:secret@cache:6380/2",
		PoolSize:     40,
		MinIdleConns: 4,
	})
	require.NoError(t, err)
	assert.Equal(t, "cache:6380", opts.Addr)
	assert.Equal(t, 2, opts.DB)
	assert.Equal(t, "secret", opts.Password)
	assert.Equal(t, 40, opts.PoolSize)
	assert.Equal(t, 4, opts.MinIdleConns)

	_, err = redisOptions(config.RedisConfig{URL: "http://cache"})
	assert.Error(t, err)
}

func TestNilRedisCloses(t *testing.T) {
	var r *Redis
	assert.NoError(t, r.Close())
}
