package storage

import (
	"context"
	"fmt"
)

// S3Backend is a declared stub: the s3 selection is reserved but every
// operation fails with a not-implemented error. It carries no caption
// capability either.
type S3Backend struct{}

// NewS3Backend creates the s3 stub backend
func NewS3Backend(config Config) *S3Backend {
	return &S3Backend{}
}

func (s *S3Backend) ListPhotos(ctx context.Context) ([]string, error) {
	return nil, fmt.Errorf("s3 backend: list photos: %w", ErrNotImplemented)
}

func (s *S3Backend) GetPhoto(ctx context.Context, identifier string) ([]byte, error) {
	return nil, fmt.Errorf("s3 backend: get photo: %w", ErrNotImplemented)
}
