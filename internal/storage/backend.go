package storage

import (
	"context"
	"fmt"
	"strings"
)

// PhotoSource is the capability every storage backend provides: listing the
// available photo identifiers and fetching the raw bytes of one photo.
//
// Identifiers are slash-separated paths relative to the backend's root,
// without a leading slash.
type PhotoSource interface {
	// ListPhotos returns the identifiers of all stored photos, in the
	// order the backend reports them.
	ListPhotos(ctx context.Context) ([]string, error)

	// GetPhoto returns the raw bytes of one photo, uninterpreted.
	GetPhoto(ctx context.Context, identifier string) ([]byte, error)
}

// CaptionStore is the optional caption capability. Only backends that can
// attach metadata to remote objects implement it; callers discover it via
// Captions rather than calling and catching a not-implemented error.
type CaptionStore interface {
	// GetCaption returns the caption stored for the photo, or nil when no
	// caption is set. Absence is a normal state, not an error.
	GetCaption(ctx context.Context, identifier string) (*string, error)

	// SetCaption stores the caption, creating or overwriting as needed.
	SetCaption(ctx context.Context, identifier, caption string) error

	// DeleteCaption removes the caption. Deleting an absent caption is a
	// no-op, not an error.
	DeleteCaption(ctx context.Context, identifier string) error
}

// Captions returns the caption capability of a backend, or
// ErrCaptionsNotSupported when the backend has none.
func Captions(src PhotoSource) (CaptionStore, error) {
	cs, ok := src.(CaptionStore)
	if !ok {
		return nil, ErrCaptionsNotSupported
	}
	return cs, nil
}

// NewBackend creates a new storage backend based on configuration. The
// selection flag is case-insensitive and whitespace-trimmed; the empty
// string selects Dropbox. Construction performs no I/O or network calls.
func NewBackend(config Config) (PhotoSource, error) {
	switch strings.ToLower(strings.TrimSpace(config.Backend)) {
	case "filesystem":
		return NewFilesystemBackend(config), nil
	case "dropbox", "":
		// Empty string defaults to dropbox
		return NewDropboxBackend(config), nil
	case "s3":
		return NewS3Backend(config), nil
	default:
		return nil, NewError(CodeConfiguration,
			fmt.Sprintf("unknown storage backend: %s", config.Backend))
	}
}
