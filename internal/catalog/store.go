// Package catalog persists the photo index: one row per discovered object
// key, with an optional locally-cached caption.
package catalog

import (
	"context"
	"errors"
	"time"
)

// ErrPhotoNotFound is returned when a photo is not in the catalog
var ErrPhotoNotFound = errors.New("photo not found")

// Photo is one catalog entry
type Photo struct {
	ID        string
	ObjectKey string
	Caption   *string
	CreatedAt time.Time
}

// Store defines the photo catalog persistence interface
type Store interface {
	// CreatePhoto inserts a new photo. The object key must be unique.
	CreatePhoto(ctx context.Context, photo *Photo) error

	// GetPhoto retrieves a photo by ID
	GetPhoto(ctx context.Context, id string) (*Photo, error)

	// GetPhotoByKey retrieves a photo by its object key
	GetPhotoByKey(ctx context.Context, objectKey string) (*Photo, error)

	// ListPhotos returns photos ordered by creation time
	ListPhotos(ctx context.Context, limit, offset int) ([]*Photo, error)

	// UpdateCaption sets or clears the cached caption
	UpdateCaption(ctx context.Context, id string, caption *string) error

	// DeletePhoto removes a photo from the catalog
	DeletePhoto(ctx context.Context, id string) error

	// Close releases the underlying database handle
	Close() error
}
