package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// CreateMedia records a gallery item.
func (s *Store) CreateMedia(ctx context.Context, m MediaItem) (MediaItem, error) {
	m.ID = newID()
	m.CreatedAt = s.now().UTC()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO gallery (id, url, type, name, full_path, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, m.ID, m.URL, m.Type, m.Name, m.FullPath, toUnix(m.CreatedAt))
	if err != nil {
		return MediaItem{}, fmt.Errorf("insert media: %w", err)
	}
	s.publish(CollectionGallery, OpCreate, m.ID)
	return m, nil
}

// GetMedia returns a single gallery item.
func (s *Store) GetMedia(ctx context.Context, id string) (MediaItem, error) {
	var m MediaItem
	var created int64
	err := s.db.QueryRowContext(ctx, `
		SELECT id, url, type, name, full_path, created_at FROM gallery WHERE id = ?
	`, id).Scan(&m.ID, &m.URL, &m.Type, &m.Name, &m.FullPath, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return MediaItem{}, fmt.Errorf("media %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return MediaItem{}, fmt.Errorf("scan media: %w", err)
	}
	m.CreatedAt = fromUnix(created)
	return m, nil
}

// DeleteMedia removes a gallery record. Stored files are the caller's concern.
func (s *Store) DeleteMedia(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM gallery WHERE id = ?`, id)
	if err := affected(res, err, "delete media", id); err != nil {
		return err
	}
	s.publish(CollectionGallery, OpDelete, id)
	return nil
}

// CountMedia returns how many items of mediaType the gallery holds.
func (s *Store) CountMedia(ctx context.Context, mediaType string) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM gallery WHERE type = ?`, mediaType).Scan(&n); err != nil {
		return 0, fmt.Errorf("count media: %w", err)
	}
	return n, nil
}

// ListMedia returns gallery items newest first. An empty mediaType lists all.
func (s *Store) ListMedia(ctx context.Context, mediaType string) ([]MediaItem, error) {
	query := `SELECT id, url, type, name, full_path, created_at FROM gallery`
	var args []any
	if mediaType != "" {
		query += ` WHERE type = ?`
		args = append(args, mediaType)
	}
	query += ` ORDER BY created_at DESC, rowid DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query gallery: %w", err)
	}
	defer rows.Close()

	items := []MediaItem{}
	for rows.Next() {
		var m MediaItem
		var created int64
		if err := rows.Scan(&m.ID, &m.URL, &m.Type, &m.Name, &m.FullPath, &created); err != nil {
			return nil, fmt.Errorf("scan media: %w", err)
		}
		m.CreatedAt = fromUnix(created)
		items = append(items, m)
	}
	return items, rows.Err()
}
