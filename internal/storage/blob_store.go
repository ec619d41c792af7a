package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrBlobNotFound is returned when a ref points at a missing object.
var ErrBlobNotFound = errors.New("blob not found")

// BlobStore holds report attachments and profile photos. Callers keep the
// returned ref; the store turns refs into time-limited download URLs on
// demand.
type BlobStore interface {
	// Upload stores the content under a generated ref.
	Upload(ctx context.Context, folder, filename string, contentType string, content io.Reader) (string, error)

	// ResolveURL returns a time-limited download URL for the ref.
	ResolveURL(ctx context.Context, ref string, expiry time.Duration) (string, error)

	// Delete removes the object behind the ref.
	Delete(ctx context.Context, ref string) error

	Close() error
}
