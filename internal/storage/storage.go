package storage

import (
	"context"
	"time"
)

// FileStorage stores exported documents. Objects are addressed by key, not
// by URL; use GetPresignedURL to hand a download link to a client.
type FileStorage interface {
	UploadFile(ctx context.Context, data []byte, key, contentType string) (string, error)

	DeleteFile(ctx context.Context, key string) error

	GetFile(ctx context.Context, key string) ([]byte, error)

	GetPresignedURL(ctx context.Context, key string, expiry time.Duration) (string, error)
}
