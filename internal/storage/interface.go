package storage

import (
	"context"
	"io"
)

// ObjectStorage is the contract for the optional converted-output mirror.
type ObjectStorage interface {
	// Upload uploads an object to storage.
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error

	// Delete deletes a single object from storage.
	Delete(ctx context.Context, key string) error

	// DeletePrefix deletes every object under the given key prefix.
	DeletePrefix(ctx context.Context, prefix string) error

	// EnsureBucket creates the backing bucket if it does not exist.
	EnsureBucket(ctx context.Context) error
}
