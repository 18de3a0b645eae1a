package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
)

// FilesystemBackend implements PhotoSource for local filesystem storage.
// It has no caption capability.
type FilesystemBackend struct {
	rootPath string
}

// NewFilesystemBackend creates a new filesystem storage backend
func NewFilesystemBackend(config Config) *FilesystemBackend {
	root := config.Root
	if root == "" {
		root = "."
	}
	return &FilesystemBackend{rootPath: root}
}

// ListPhotos returns the names of the regular files directly under the
// root. A missing root directory yields an empty listing, not an error.
func (fs *FilesystemBackend) ListPhotos(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(fs.rootPath)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, NewErrorWithCause(CodeLocalIO, "failed to read storage root", err)
	}

	var photos []string
	for _, entry := range entries {
		if entry.Type().IsRegular() {
			photos = append(photos, entry.Name())
		}
	}
	return photos, nil
}

// GetPhoto reads the photo bytes from the filesystem
func (fs *FilesystemBackend) GetPhoto(ctx context.Context, identifier string) ([]byte, error) {
	if err := fs.validatePath(identifier); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(fs.rootPath, filepath.FromSlash(identifier)))
	if err != nil {
		return nil, NewErrorWithCause(CodeLocalIO, "failed to read photo", err)
	}
	return data, nil
}

// validatePath rejects identifiers that would escape the root
func (fs *FilesystemBackend) validatePath(identifier string) error {
	if identifier == "" || strings.Contains(identifier, "..") || strings.HasPrefix(identifier, "/") {
		return NewError(CodeConfiguration, "invalid photo identifier")
	}
	return nil
}
