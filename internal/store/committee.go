package store

import (
	"context"
	"fmt"
)

// CreateMember adds a committee member.
func (s *Store) CreateMember(ctx context.Context, m CommitteeMember) (CommitteeMember, error) {
	m.ID = newID()
	m.CreatedAt = s.now().UTC()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO committee (id, name, role, location, phone, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, m.ID, m.Name, m.Role, m.Location, m.Phone, toUnix(m.CreatedAt))
	if err != nil {
		return CommitteeMember{}, fmt.Errorf("insert committee member: %w", err)
	}
	s.publish(CollectionCommittee, OpCreate, m.ID)
	return m, nil
}

// DeleteMember removes a committee member.
func (s *Store) DeleteMember(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM committee WHERE id = ?`, id)
	if err := affected(res, err, "delete committee member", id); err != nil {
		return err
	}
	s.publish(CollectionCommittee, OpDelete, id)
	return nil
}

// ListMembers returns the roster in the order members were added.
func (s *Store) ListMembers(ctx context.Context) ([]CommitteeMember, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, role, location, phone, created_at
		FROM committee ORDER BY created_at ASC, rowid ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query committee: %w", err)
	}
	defer rows.Close()

	members := []CommitteeMember{}
	for rows.Next() {
		var m CommitteeMember
		var created int64
		if err := rows.Scan(&m.ID, &m.Name, &m.Role, &m.Location, &m.Phone, &created); err != nil {
			return nil, fmt.Errorf("scan committee member: %w", err)
		}
		m.CreatedAt = fromUnix(created)
		members = append(members, m)
	}
	return members, rows.Err()
}
