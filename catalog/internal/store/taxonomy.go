package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/revizorapp/revizor/dbopen"
)

// taxonomyTables whitelists the directory table names. Kind strings
// come from route paths, never raw user input, but the whitelist keeps
// the fmt.Sprintf below safe regardless.
var taxonomyTables = map[string]bool{
	"brands":     true,
	"categories": true,
	"prompts":    true,
}

func taxonomyTable(kind string) (string, error) {
	if !taxonomyTables[kind] {
		return "", fmt.Errorf("unknown directory kind %q", kind)
	}
	return kind, nil
}

// InsertDirectory adds a directory entry of the given kind
// ("brands", "categories" or "prompts").
func (s *Store) InsertDirectory(ctx context.Context, kind string, d *Directory) error {
	table, err := taxonomyTable(kind)
	if err != nil {
		return err
	}
	now := time.Now().UnixMilli()
	if d.CreatedAt == 0 {
		d.CreatedAt = now
	}
	if d.UpdatedAt == 0 {
		d.UpdatedAt = now
	}
	if table == "prompts" {
		_, err = dbopen.Exec(ctx, s.DB,
			`INSERT INTO prompts (id, name, text, user_id, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			d.ID, d.Name, d.Text, d.UserID, d.CreatedAt, d.UpdatedAt)
		return err
	}
	_, err = dbopen.Exec(ctx, s.DB,
		fmt.Sprintf(`INSERT INTO %s (id, name, user_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`, table),
		d.ID, d.Name, d.UserID, d.CreatedAt, d.UpdatedAt)
	return err
}

// GetDirectory retrieves a directory entry by ID.
func (s *Store) GetDirectory(ctx context.Context, kind, id string) (*Directory, error) {
	table, err := taxonomyTable(kind)
	if err != nil {
		return nil, err
	}
	var d Directory
	var scanErr error
	if table == "prompts" {
		scanErr = s.DB.QueryRowContext(ctx,
			`SELECT id, name, text, user_id, created_at, updated_at FROM prompts WHERE id = ?`, id).
			Scan(&d.ID, &d.Name, &d.Text, &d.UserID, &d.CreatedAt, &d.UpdatedAt)
	} else {
		scanErr = s.DB.QueryRowContext(ctx,
			fmt.Sprintf(`SELECT id, name, user_id, created_at, updated_at FROM %s WHERE id = ?`, table), id).
			Scan(&d.ID, &d.Name, &d.UserID, &d.CreatedAt, &d.UpdatedAt)
	}
	if scanErr == sql.ErrNoRows {
		return nil, nil
	}
	if scanErr != nil {
		return nil, scanErr
	}
	return &d, nil
}

// ListDirectory returns all entries of a kind, optionally scoped to a
// user, ordered by name.
func (s *Store) ListDirectory(ctx context.Context, kind, userID string) ([]*Directory, error) {
	table, err := taxonomyTable(kind)
	if err != nil {
		return nil, err
	}

	cols := `id, name, user_id, created_at, updated_at`
	if table == "prompts" {
		cols = `id, name, text, user_id, created_at, updated_at`
	}
	q := fmt.Sprintf(`SELECT %s FROM %s`, cols, table)
	var args []any
	if userID != "" {
		q += ` WHERE user_id = ?`
		args = append(args, userID)
	}
	q += ` ORDER BY name`

	rows, err := s.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*Directory
	for rows.Next() {
		var d Directory
		if table == "prompts" {
			err = rows.Scan(&d.ID, &d.Name, &d.Text, &d.UserID, &d.CreatedAt, &d.UpdatedAt)
		} else {
			err = rows.Scan(&d.ID, &d.Name, &d.UserID, &d.CreatedAt, &d.UpdatedAt)
		}
		if err != nil {
			return nil, err
		}
		entries = append(entries, &d)
	}
	return entries, rows.Err()
}

// UpdateDirectory updates an entry's name (and text for prompts).
func (s *Store) UpdateDirectory(ctx context.Context, kind string, d *Directory) error {
	table, err := taxonomyTable(kind)
	if err != nil {
		return err
	}
	d.UpdatedAt = time.Now().UnixMilli()
	if table == "prompts" {
		_, err = dbopen.Exec(ctx, s.DB,
			`UPDATE prompts SET name=?, text=?, updated_at=? WHERE id=?`,
			d.Name, d.Text, d.UpdatedAt, d.ID)
		return err
	}
	_, err = dbopen.Exec(ctx, s.DB,
		fmt.Sprintf(`UPDATE %s SET name=?, updated_at=? WHERE id=?`, table),
		d.Name, d.UpdatedAt, d.ID)
	return err
}

// DeleteDirectory removes an entry. Products referencing it keep
// existing with the link set to NULL.
func (s *Store) DeleteDirectory(ctx context.Context, kind, id string) error {
	table, err := taxonomyTable(kind)
	if err != nil {
		return err
	}
	_, err = dbopen.Exec(ctx, s.DB, fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, table), id)
	return err
}
