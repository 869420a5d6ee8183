package internal

import (
	"fmt"
	"os"

	"github.com/starford/imgbackup/internal/storage"
)

// newTransport builds the image store selected by cfg.Driver. The local FS
// store is also returned on its own so the file API can serve it.
func newTransport(cfg StorageConfig) (storage.Transport, *storage.FS, error) {
	switch cfg.Driver {
	case DriverHTTP:
		t, err := storage.NewHTTP(storage.HTTPOptions{
			BaseURL:   cfg.HTTP.BaseURL,
			Mode:      cfg.HTTP.Mode,
			Token:     cfg.HTTP.Token,
			Namespace: cfg.Namespace,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("init http storage: %w", err)
		}
		return t, nil, nil
	case DriverMinio:
		t, err := storage.NewMinio(storage.MinioOptions{
			Endpoint:  cfg.Minio.Endpoint,
			AccessKey: cfg.Minio.AccessKey,
			SecretKey: cfg.Minio.SecretKey,
			Region:    cfg.Minio.Region,
			Bucket:    cfg.Minio.Bucket,
			Prefix:    cfg.Minio.Prefix,
			Secure:    cfg.Minio.Secure,
			Namespace: cfg.Namespace,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("init minio storage: %w", err)
		}
		return t, nil, nil
	default:
		if err := os.MkdirAll(cfg.FS.Root, 0o755); err != nil {
			return nil, nil, fmt.Errorf("create storage root: %w", err)
		}
		fs, err := storage.NewFS(cfg.FS.Root, cfg.Namespace)
		if err != nil {
			return nil, nil, fmt.Errorf("init fs storage: %w", err)
		}
		return fs, fs, nil
	}
}
