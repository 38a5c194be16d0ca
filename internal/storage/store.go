// AngelaMos | 2026
// store.go

package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/carterperez-dev/classifieds/internal/config"
)

// Store writes objects under caller-chosen keys and returns their public
// URL.
type Store interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
	Close() error
}

// New picks the backend named by cfg.Driver.
func New(ctx context.Context, cfg config.StorageConfig) (Store, error) {
	switch cfg.Driver {
	case "s3":
		return NewS3Store(ctx, cfg)
	case "gcs":
		return NewGCSStore(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

func joinURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(key, "/")
}
