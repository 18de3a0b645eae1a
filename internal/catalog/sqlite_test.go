package catalog

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestCreateAndGetPhoto(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()

	t.Run("create assigns id and creation time", func(t *testing.T) {
		photo := &Photo{ObjectKey: "photos/one.jpg"}
		require.NoError(t, store.CreatePhoto(ctx, photo))
		assert.NotEmpty(t, photo.ID)
		assert.False(t, photo.CreatedAt.IsZero())

		got, err := store.GetPhoto(ctx, photo.ID)
		require.NoError(t, err)
		assert.Equal(t, "photos/one.jpg", got.ObjectKey)
		assert.Nil(t, got.Caption)
	})

	t.Run("lookup by object key", func(t *testing.T) {
		caption := "at the beach"
		photo := &Photo{ObjectKey: "photos/two.jpg", Caption: &caption}
		require.NoError(t, store.CreatePhoto(ctx, photo))

		got, err := store.GetPhotoByKey(ctx, "photos/two.jpg")
		require.NoError(t, err)
		assert.Equal(t, photo.ID, got.ID)
		require.NotNil(t, got.Caption)
		assert.Equal(t, "at the beach", *got.Caption)
	})

	t.Run("duplicate object key fails", func(t *testing.T) {
		err := store.CreatePhoto(ctx, &Photo{ObjectKey: "photos/one.jpg"})
		assert.Error(t, err)
	})

	t.Run("unknown photo returns not found", func(t *testing.T) {
		_, err := store.GetPhoto(ctx, "nope")
		assert.ErrorIs(t, err, ErrPhotoNotFound)

		_, err = store.GetPhotoByKey(ctx, "nope.jpg")
		assert.ErrorIs(t, err, ErrPhotoNotFound)
	})
}

func TestListPhotos(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	for i, key := range []string{"a.jpg", "b.jpg", "c.jpg"} {
		photo := &Photo{ObjectKey: key, CreatedAt: base.Add(time.Duration(i) * time.Minute)}
		require.NoError(t, store.CreatePhoto(ctx, photo))
	}

	t.Run("ordered by creation time", func(t *testing.T) {
		photos, err := store.ListPhotos(ctx, 10, 0)
		require.NoError(t, err)
		require.Len(t, photos, 3)
		assert.Equal(t, "a.jpg", photos[0].ObjectKey)
		assert.Equal(t, "c.jpg", photos[2].ObjectKey)
	})

	t.Run("limit and offset", func(t *testing.T) {
		photos, err := store.ListPhotos(ctx, 1, 1)
		require.NoError(t, err)
		require.Len(t, photos, 1)
		assert.Equal(t, "b.jpg", photos[0].ObjectKey)
	})
}

func TestUpdateAndDelete(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()

	photo := &Photo{ObjectKey: "photos/x.jpg"}
	require.NoError(t, store.CreatePhoto(ctx, photo))

	t.Run("set caption", func(t *testing.T) {
		caption := "a caption"
		require.NoError(t, store.UpdateCaption(ctx, photo.ID, &caption))

		got, err := store.GetPhoto(ctx, photo.ID)
		require.NoError(t, err)
		require.NotNil(t, got.Caption)
		assert.Equal(t, "a caption", *got.Caption)
	})

	t.Run("clear caption", func(t *testing.T) {
		require.NoError(t, store.UpdateCaption(ctx, photo.ID, nil))

		got, err := store.GetPhoto(ctx, photo.ID)
		require.NoError(t, err)
		assert.Nil(t, got.Caption)
	})

	t.Run("update unknown photo returns not found", func(t *testing.T) {
		caption := "x"
		assert.ErrorIs(t, store.UpdateCaption(ctx, "nope", &caption), ErrPhotoNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, store.DeletePhoto(ctx, photo.ID))
		_, err := store.GetPhoto(ctx, photo.ID)
		assert.ErrorIs(t, err, ErrPhotoNotFound)

		assert.ErrorIs(t, store.DeletePhoto(ctx, photo.ID), ErrPhotoNotFound)
	})
}
