package reliability

import (
	"context"
	"io"
)

// ObjectInfo describes one stored object
type ObjectInfo struct {
	Key  string
	Size int64
}

// ObjectStore is the remote storage backups are uploaded to
type ObjectStore interface {
	Upload(ctx context.Context, key string, body io.Reader, size int64) error
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)
	Delete(ctx context.Context, key string) error
}
