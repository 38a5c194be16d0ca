// AngelaMos | 2026
// upload.go

package storage

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/carterperez-dev/classifieds/internal/core"
)

const (
	FolderListings = "listings"
	FolderAvatars  = "avatars"
	FolderKYC      = "kyc"
	FolderChat     = "chat"
)

var folders = []string{FolderListings, FolderAvatars, FolderKYC, FolderChat}

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

type UploadResult struct {
	Key         string `json:"key"`
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
	Size        int    `json:"size"`
}

type Uploader struct {
	store    Store
	maxBytes int64
	logger   *slog.Logger
}

func NewUploader(store Store, maxBytes int64, logger *slog.Logger) *Uploader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Uploader{store: store, maxBytes: maxBytes, logger: logger}
}

// Upload decodes a base64 image (raw or as a data URL) and stores it at
// folder/userID/<uuid>.<ext>. The declared media type of a data URL is
// ignored; the content is sniffed.
func (u *Uploader) Upload(
	ctx context.Context,
	userID, folder, payload string,
) (*UploadResult, error) {
	if !slices.Contains(folders, folder) {
		return nil, fmt.Errorf("unknown folder %q: %w", folder, core.ErrInvalidInput)
	}

	encoded := stripDataURL(payload)
	if encoded == "" {
		return nil, fmt.Errorf("empty upload: %w", core.ErrInvalidInput)
	}

	if int64(base64.StdEncoding.DecodedLen(len(encoded))) > u.maxBytes+2 {
		return nil, tooLarge(u.maxBytes)
	}

	data, err := decodeBase64(encoded)
	if err != nil {
		return nil, fmt.Errorf("upload is not valid base64: %w", core.ErrInvalidInput)
	}

	if int64(len(data)) > u.maxBytes {
		return nil, tooLarge(u.maxBytes)
	}

	contentType := http.DetectContentType(data)
	ext, ok := imageExtensions[contentType]
	if !ok {
		return nil, fmt.Errorf(
			"unsupported content type %q: %w",
			contentType,
			core.ErrInvalidInput,
		)
	}

	key := fmt.Sprintf("%s/%s/%s%s", folder, userID, uuid.New().String(), ext)

	url, err := u.store.Put(ctx, key, data, contentType)
	if err != nil {
		return nil, err
	}

	u.logger.Debug("object uploaded", "key", key, "bytes", len(data))

	return &UploadResult{
		Key:         key,
		URL:         url,
		ContentType: contentType,
		Size:        len(data),
	}, nil
}

// Delete removes an object the caller owns. Admins may remove any key.
func (u *Uploader) Delete(ctx context.Context, userID, key string, admin bool) error {
	parts := strings.SplitN(key, "/", 3)
	if len(parts) != 3 || !slices.Contains(folders, parts[0]) {
		return fmt.Errorf("invalid object key: %w", core.ErrInvalidInput)
	}

	if !admin && parts[1] != userID {
		return fmt.Errorf("delete object: %w", core.ErrForbidden)
	}

	return u.store.Delete(ctx, key)
}

func stripDataURL(payload string) string {
	payload = strings.TrimSpace(payload)
	if !strings.HasPrefix(payload, "data:") {
		return payload
	}

	_, after, found := strings.Cut(payload, ",")
	if !found {
		return ""
	}
	return after
}

func decodeBase64(s string) ([]byte, error) {
	if data, err := base64.StdEncoding.DecodeString(s); err == nil {
		return data, nil
	}
	return base64.RawStdEncoding.DecodeString(strings.TrimRight(s, "="))
}

func tooLarge(limit int64) error {
	return core.NewAppError(
		core.ErrInvalidInput,
		fmt.Sprintf("upload exceeds %d bytes", limit),
		http.StatusRequestEntityTooLarge,
		"PAYLOAD_TOO_LARGE",
	)
}
