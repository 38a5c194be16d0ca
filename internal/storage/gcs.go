// AngelaMos | 2026
// gcs.go

package storage

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/carterperez-dev/classifieds/internal/config"
)

type GCSStore struct {
	client  *storage.Client
	bucket  string
	baseURL string
}

func NewGCSStore(ctx context.Context, cfg config.StorageConfig) (*GCSStore, error) {
	var opts []option.ClientOption
	if cfg.Endpoint != "" {
		// fake-gcs-server and other emulators take no credentials
		opts = append(opts,
			option.WithEndpoint(cfg.Endpoint),
			option.WithoutAuthentication(),
		)
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create gcs client: %w", err)
	}

	baseURL := cfg.PublicBaseURL
	if baseURL == "" {
		baseURL = "https://storage.googleapis.com/" + cfg.Bucket
	}

	return &GCSStore{
		client:  client,
		bucket:  cfg.Bucket,
		baseURL: baseURL,
	}, nil
}

func (s *GCSStore) Put(
	ctx context.Context,
	key string,
	data []byte,
	contentType string,
) (string, error) {
	w := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	w.ContentType = contentType
	w.CacheControl = "public, max-age=31536000, immutable"

	if _, err := w.Write(data); err != nil {
		_ = w.Close() //nolint:errcheck // write error takes precedence
		return "", fmt.Errorf("gcs write %s: %w", key, err)
	}

	if err := w.Close(); err != nil {
		return "", fmt.Errorf("gcs close %s: %w", key, err)
	}

	return joinURL(s.baseURL, key), nil
}

func (s *GCSStore) Delete(ctx context.Context, key string) error {
	err := s.client.Bucket(s.bucket).Object(key).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("gcs delete %s: %w", key, err)
	}
	return nil
}

func (s *GCSStore) Close() error {
	return s.client.Close()
}
