package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/jefferyharrell/Captioner-backend/internal/storage"
)

// Rescan lists the backend's photos and inserts catalog rows for object
// keys not seen before. Existing rows are left untouched. A listing
// failure aborts before any write; returns the number of new photos.
func Rescan(ctx context.Context, src storage.PhotoSource, store Store) (int, error) {
	keys, err := src.ListPhotos(ctx)
	if err != nil {
		return 0, fmt.Errorf("rescan: failed to list photos: %w", err)
	}

	log := logrus.WithField("component", "catalog_rescan")

	numNew := 0
	for _, key := range keys {
		_, err := store.GetPhotoByKey(ctx, key)
		if err == nil {
			continue
		}
		if !errors.Is(err, ErrPhotoNotFound) {
			return numNew, fmt.Errorf("rescan: failed to look up %q: %w", key, err)
		}

		if err := store.CreatePhoto(ctx, &Photo{ObjectKey: key}); err != nil {
			return numNew, fmt.Errorf("rescan: failed to create %q: %w", key, err)
		}
		numNew++
	}

	log.WithFields(logrus.Fields{
		"discovered": len(keys),
		"new":        numNew,
	}).Info("rescan complete")
	return numNew, nil
}
