package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// CreateNotice inserts n with a fresh ID and creation time and returns the
// stored notice.
func (s *Store) CreateNotice(ctx context.Context, n Notice) (Notice, error) {
	n.ID = newID()
	n.CreatedAt = s.now().UTC()
	if n.Priority == "" {
		n.Priority = "normal"
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notices (id, content, active, priority, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, n.ID, n.Content, n.Active, n.Priority, toUnix(n.CreatedAt))
	if err != nil {
		return Notice{}, fmt.Errorf("insert notice: %w", err)
	}
	s.publish(CollectionNotices, OpCreate, n.ID)
	return n, nil
}

// UpdateNoticeContent replaces the text of a notice.
func (s *Store) UpdateNoticeContent(ctx context.Context, id, content string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE notices SET content = ?, updated_at = ? WHERE id = ?
	`, content, toUnix(s.now()), id)
	if err := affected(res, err, "update notice", id); err != nil {
		return err
	}
	s.publish(CollectionNotices, OpUpdate, id)
	return nil
}

// SetNoticeActive shows or hides a notice on the public site.
func (s *Store) SetNoticeActive(ctx context.Context, id string, active bool) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE notices SET active = ?, updated_at = ? WHERE id = ?
	`, active, toUnix(s.now()), id)
	if err := affected(res, err, "update notice", id); err != nil {
		return err
	}
	s.publish(CollectionNotices, OpUpdate, id)
	return nil
}

// DeleteNotice removes a notice.
func (s *Store) DeleteNotice(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM notices WHERE id = ?`, id)
	if err := affected(res, err, "delete notice", id); err != nil {
		return err
	}
	s.publish(CollectionNotices, OpDelete, id)
	return nil
}

// GetNotice returns a single notice.
func (s *Store) GetNotice(ctx context.Context, id string) (Notice, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, content, active, priority, created_at, updated_at
		FROM notices WHERE id = ?
	`, id)
	n, err := scanNotice(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Notice{}, fmt.Errorf("notice %s: %w", id, ErrNotFound)
	}
	return n, err
}

// ListNotices returns notices newest first, only active ones when activeOnly.
func (s *Store) ListNotices(ctx context.Context, activeOnly bool) ([]Notice, error) {
	query := `
		SELECT id, content, active, priority, created_at, updated_at
		FROM notices`
	if activeOnly {
		query += ` WHERE active = 1`
	}
	query += ` ORDER BY created_at DESC, rowid DESC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query notices: %w", err)
	}
	defer rows.Close()

	notices := []Notice{}
	for rows.Next() {
		n, err := scanNotice(rows)
		if err != nil {
			return nil, err
		}
		notices = append(notices, n)
	}
	return notices, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanNotice(sc scanner) (Notice, error) {
	var n Notice
	var created, updated int64
	if err := sc.Scan(&n.ID, &n.Content, &n.Active, &n.Priority, &created, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Notice{}, err
		}
		return Notice{}, fmt.Errorf("scan notice: %w", err)
	}
	n.CreatedAt = fromUnix(created)
	n.UpdatedAt = fromUnix(updated)
	return n, nil
}
