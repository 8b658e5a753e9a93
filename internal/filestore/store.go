package filestore

import (
	"context"
	"fmt"
	"io"

	"github.com/weilunc/clipread/internal/config"
)

// Store archives exported reading sessions. Exports are small text blobs, so
// the interface stays byte-oriented.
type Store interface {
	Save(ctx context.Context, key string, data []byte) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

func New(cfg config.ExportStoreConfig) (Store, error) {
	switch cfg.Type {
	case "local":
		return newLocalStore(cfg.Dir)
	case "s3":
		return newS3Store(cfg.S3)
	default:
		return nil, fmt.Errorf("unsupported export store type: %s", cfg.Type)
	}
}
