package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using SQLite
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the catalog database at path
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// initialize creates the photos table
func (s *SQLiteStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS photos (
		id TEXT PRIMARY KEY,
		object_key TEXT NOT NULL UNIQUE,
		caption TEXT,
		created_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_photos_object_key ON photos(object_key);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize catalog schema: %w", err)
	}
	return nil
}

// CreatePhoto inserts a new photo, assigning an ID and creation time when
// the caller left them zero
func (s *SQLiteStore) CreatePhoto(ctx context.Context, photo *Photo) error {
	if photo.ID == "" {
		photo.ID = uuid.New().String()
	}
	if photo.CreatedAt.IsZero() {
		photo.CreatedAt = time.Now()
	}

	query := `INSERT INTO photos (id, object_key, caption, created_at) VALUES (?, ?, ?, ?)`

	var caption interface{}
	if photo.Caption != nil {
		caption = *photo.Caption
	}

	if _, err := s.db.ExecContext(ctx, query, photo.ID, photo.ObjectKey, caption, photo.CreatedAt.UnixNano()); err != nil {
		return fmt.Errorf("failed to create photo: %w", err)
	}
	return nil
}

// GetPhoto retrieves a photo by ID
func (s *SQLiteStore) GetPhoto(ctx context.Context, id string) (*Photo, error) {
	query := `SELECT id, object_key, caption, created_at FROM photos WHERE id = ?`
	return s.scanPhoto(s.db.QueryRowContext(ctx, query, id))
}

// GetPhotoByKey retrieves a photo by its object key
func (s *SQLiteStore) GetPhotoByKey(ctx context.Context, objectKey string) (*Photo, error) {
	query := `SELECT id, object_key, caption, created_at FROM photos WHERE object_key = ?`
	return s.scanPhoto(s.db.QueryRowContext(ctx, query, objectKey))
}

func (s *SQLiteStore) scanPhoto(row *sql.Row) (*Photo, error) {
	var photo Photo
	var caption sql.NullString
	var createdAt int64

	err := row.Scan(&photo.ID, &photo.ObjectKey, &caption, &createdAt)
	if err == sql.ErrNoRows {
		return nil, ErrPhotoNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan photo: %w", err)
	}

	if caption.Valid {
		photo.Caption = &caption.String
	}
	photo.CreatedAt = time.Unix(0, createdAt)
	return &photo, nil
}

// ListPhotos returns photos ordered by creation time, oldest first
func (s *SQLiteStore) ListPhotos(ctx context.Context, limit, offset int) ([]*Photo, error) {
	query := `SELECT id, object_key, caption, created_at FROM photos ORDER BY created_at, id LIMIT ? OFFSET ?`

	rows, err := s.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list photos: %w", err)
	}
	defer rows.Close()

	var photos []*Photo
	for rows.Next() {
		var photo Photo
		var caption sql.NullString
		var createdAt int64

		if err := rows.Scan(&photo.ID, &photo.ObjectKey, &caption, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan photo: %w", err)
		}
		if caption.Valid {
			photo.Caption = &caption.String
		}
		photo.CreatedAt = time.Unix(0, createdAt)
		photos = append(photos, &photo)
	}
	return photos, rows.Err()
}

// UpdateCaption sets or clears the cached caption
func (s *SQLiteStore) UpdateCaption(ctx context.Context, id string, caption *string) error {
	var value interface{}
	if caption != nil {
		value = *caption
	}

	result, err := s.db.ExecContext(ctx, `UPDATE photos SET caption = ? WHERE id = ?`, value, id)
	if err != nil {
		return fmt.Errorf("failed to update caption: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update caption: %w", err)
	}
	if affected == 0 {
		return ErrPhotoNotFound
	}
	return nil
}

// DeletePhoto removes a photo from the catalog
func (s *SQLiteStore) DeletePhoto(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM photos WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete photo: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete photo: %w", err)
	}
	if affected == 0 {
		return ErrPhotoNotFound
	}
	return nil
}

// Close closes the database handle
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
