package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const poojaColumns = `id, title, date, time, sponsor, sponsor2, sponsor_current_address,
	sponsor_permanent_address, description, annadhanam_details, tamil_month_date,
	created_at, updated_at`

// CreatePooja inserts p with a fresh ID and creation time.
func (s *Store) CreatePooja(ctx context.Context, p Pooja) (Pooja, error) {
	p.ID = newID()
	p.CreatedAt = s.now().UTC()
	if err := insertPooja(ctx, s.db, p); err != nil {
		return Pooja{}, err
	}
	s.publish(CollectionPoojas, OpCreate, p.ID)
	return p, nil
}

// CreatePoojas inserts all of ps in one transaction.
func (s *Store) CreatePoojas(ctx context.Context, ps []Pooja) ([]Pooja, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin pooja batch: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	created := make([]Pooja, 0, len(ps))
	now := s.now().UTC()
	for _, p := range ps {
		p.ID = newID()
		p.CreatedAt = now
		if err := insertPooja(ctx, tx, p); err != nil {
			return nil, err
		}
		created = append(created, p)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit pooja batch: %w", err)
	}

	for _, p := range created {
		s.publish(CollectionPoojas, OpCreate, p.ID)
	}
	return created, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertPooja(ctx context.Context, db execer, p Pooja) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO poojas (`+poojaColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, p.ID, p.Title, p.Date, p.Time, p.Sponsor, p.Sponsor2, p.SponsorCurrentAddress,
		p.SponsorPermanentAddress, p.Description, p.AnnadhanamDetails, p.TamilMonthDate,
		toUnix(p.CreatedAt), toUnix(p.UpdatedAt))
	if err != nil {
		return fmt.Errorf("insert pooja: %w", err)
	}
	return nil
}

// UpdatePooja replaces every editable field of the pooja with p.ID. The
// creation time is kept.
func (s *Store) UpdatePooja(ctx context.Context, p Pooja) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE poojas SET title = ?, date = ?, time = ?, sponsor = ?, sponsor2 = ?,
			sponsor_current_address = ?, sponsor_permanent_address = ?, description = ?,
			annadhanam_details = ?, tamil_month_date = ?, updated_at = ?
		WHERE id = ?
	`, p.Title, p.Date, p.Time, p.Sponsor, p.Sponsor2, p.SponsorCurrentAddress,
		p.SponsorPermanentAddress, p.Description, p.AnnadhanamDetails, p.TamilMonthDate,
		toUnix(s.now()), p.ID)
	if err := affected(res, err, "update pooja", p.ID); err != nil {
		return err
	}
	s.publish(CollectionPoojas, OpUpdate, p.ID)
	return nil
}

// DeletePooja removes a pooja.
func (s *Store) DeletePooja(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM poojas WHERE id = ?`, id)
	if err := affected(res, err, "delete pooja", id); err != nil {
		return err
	}
	s.publish(CollectionPoojas, OpDelete, id)
	return nil
}

// GetPooja returns a single pooja.
func (s *Store) GetPooja(ctx context.Context, id string) (Pooja, error) {
	p, err := scanPooja(s.db.QueryRowContext(ctx, `SELECT `+poojaColumns+` FROM poojas WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Pooja{}, fmt.Errorf("pooja %s: %w", id, ErrNotFound)
	}
	return p, err
}

// ListPoojas returns all poojas, most recently created first.
func (s *Store) ListPoojas(ctx context.Context) ([]Pooja, error) {
	return s.queryPoojas(ctx, `SELECT `+poojaColumns+` FROM poojas ORDER BY created_at DESC, rowid DESC`)
}

// NextPooja returns the earliest pooja dated on or after today.
func (s *Store) NextPooja(ctx context.Context, today string) (Pooja, error) {
	return s.onePooja(ctx, `SELECT `+poojaColumns+` FROM poojas
		WHERE date >= ? ORDER BY date ASC, time ASC LIMIT 1`, today)
}

// LatestPastPooja returns the most recent pooja dated before today. Undated
// poojas are skipped.
func (s *Store) LatestPastPooja(ctx context.Context, today string) (Pooja, error) {
	return s.onePooja(ctx, `SELECT `+poojaColumns+` FROM poojas
		WHERE date < ? AND date != '' ORDER BY date DESC, time DESC LIMIT 1`, today)
}

func (s *Store) onePooja(ctx context.Context, query string, args ...any) (Pooja, error) {
	p, err := scanPooja(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return Pooja{}, ErrNotFound
	}
	return p, err
}

func (s *Store) queryPoojas(ctx context.Context, query string, args ...any) ([]Pooja, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query poojas: %w", err)
	}
	defer rows.Close()

	poojas := []Pooja{}
	for rows.Next() {
		p, err := scanPooja(rows)
		if err != nil {
			return nil, err
		}
		poojas = append(poojas, p)
	}
	return poojas, rows.Err()
}

func scanPooja(sc scanner) (Pooja, error) {
	var p Pooja
	var created, updated int64
	err := sc.Scan(&p.ID, &p.Title, &p.Date, &p.Time, &p.Sponsor, &p.Sponsor2,
		&p.SponsorCurrentAddress, &p.SponsorPermanentAddress, &p.Description,
		&p.AnnadhanamDetails, &p.TamilMonthDate, &created, &updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Pooja{}, err
		}
		return Pooja{}, fmt.Errorf("scan pooja: %w", err)
	}
	p.CreatedAt = fromUnix(created)
	p.UpdatedAt = fromUnix(updated)
	return p, nil
}
