package storage

import (
	"context"
	"fmt"

	"github.com/collegenews/collegenews/backend/go-services/internal/config"
)

// New builds the attachment store selected by STORAGE_DRIVER.
func New(ctx context.Context, cfg config.StorageConfig) (Store, error) {
	switch cfg.Driver {
	case "", "disk":
		return NewDiskStore(cfg.UploadsDir)
	case "minio":
		return NewMinIOStore(ctx, cfg.MinIO)
	}
	return nil, fmt.Errorf("unsupported storage driver %q", cfg.Driver)
}
