package storage

import (
	"context"
	"fmt"

	"gecko_rack/internal/config"
)

// ImageStore persists compressed photos and hands back the URL they are served from
type ImageStore interface {
	// Save compresses raw upload bytes and stores the result.
	Save(ctx context.Context, data []byte) (url string, err error)
	// Remove deletes the object behind a URL previously returned by Save.
	// Missing objects are not an error.
	Remove(ctx context.Context, url string) error
}

// New builds the store selected by cfg.StorageDriver
func New(ctx context.Context, cfg *config.Config) (ImageStore, error) {
	c := Compressor{MaxDimension: cfg.ImageMaxDimension, Quality: cfg.ImageQuality}
	switch cfg.StorageDriver {
	case "", "local":
		return NewLocalStore(cfg.UploadDir, cfg.UploadURLPrefix, c)
	case "s3":
		return NewS3Store(ctx, cfg, c)
	default:
		return nil, fmt.Errorf("unsupported STORAGE_DRIVER %q", cfg.StorageDriver)
	}
}
