package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"time"

	gcs "cloud.google.com/go/storage"
	"github.com/google/uuid"
)

// GCSBlobStore stores blobs in a Google Cloud Storage bucket. Refs are
// object names within the configured bucket.
type GCSBlobStore struct {
	client *gcs.Client
	bucket string
}

func NewGCSBlobStore(ctx context.Context, bucket string) (*GCSBlobStore, error) {
	client, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	return &GCSBlobStore{
		client: client,
		bucket: bucket,
	}, nil
}

// Upload streams the content into the bucket. The ref embeds a UUID so two
// uploads of the same filename never collide.
func (s *GCSBlobStore) Upload(ctx context.Context, folder, filename, contentType string, content io.Reader) (string, error) {
	ref := path.Join(folder, uuid.New().String()+"-"+filename)

	w := s.client.Bucket(s.bucket).Object(ref).NewWriter(ctx)
	w.ContentType = contentType

	if _, err := io.Copy(w, content); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("failed to upload blob: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize blob upload: %w", err)
	}

	return ref, nil
}

// ResolveURL signs a download URL for the ref.
func (s *GCSBlobStore) ResolveURL(ctx context.Context, ref string, expiry time.Duration) (string, error) {
	if expiry <= 0 {
		expiry = 15 * time.Minute
	}

	url, err := s.client.Bucket(s.bucket).SignedURL(ref, &gcs.SignedURLOptions{
		Method:  "GET",
		Expires: time.Now().Add(expiry),
	})
	if err != nil {
		return "", fmt.Errorf("failed to sign blob url: %w", err)
	}

	return url, nil
}

// Delete removes the object; a missing object maps to ErrBlobNotFound.
func (s *GCSBlobStore) Delete(ctx context.Context, ref string) error {
	err := s.client.Bucket(s.bucket).Object(ref).Delete(ctx)
	if err != nil {
		if errors.Is(err, gcs.ErrObjectNotExist) {
			return ErrBlobNotFound
		}
		return fmt.Errorf("failed to delete blob: %w", err)
	}
	return nil
}

func (s *GCSBlobStore) Close() error {
	return s.client.Close()
}
