package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"radsync/internal/domain"
)

// ListUserRows returns all rows for username in the given table, ordered by
// attribute name for stable comparison.
func (s *Store) ListUserRows(ctx context.Context, table domain.AttributeTable, username string) ([]domain.AttributeRow, error) {
	tbl, err := validTable(table)
	if err != nil {
		return nil, err
	}

	rows, err := s.readDB.QueryContext(ctx,
		fmt.Sprintf(`SELECT id, username, attribute, op, value FROM %s WHERE username = ? ORDER BY attribute, id`, tbl),
		username)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	var out []domain.AttributeRow
	for rows.Next() {
		var r domain.AttributeRow
		if err := rows.Scan(&r.ID, &r.Username, &r.Attribute, &r.Op, &r.Value); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// UserExists reports whether the username has any row in either table.
func (s *Store) UserExists(ctx context.Context, username string) (bool, error) {
	var n int64
	err := s.readDB.QueryRowContext(ctx,
		`SELECT (SELECT COUNT(*) FROM radcheck WHERE username = ?)
		      + (SELECT COUNT(*) FROM radreply WHERE username = ?)`,
		username, username).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// DeleteUserRows removes every row for username in the given table and
// returns the number of rows deleted. Deleting an absent user is not an
// error.
func (t *storeTx) DeleteUserRows(ctx context.Context, table domain.AttributeTable, username string) (int64, error) {
	tbl, err := validTable(table)
	if err != nil {
		return 0, err
	}

	res, err := t.tx.ExecContext(ctx,
		fmt.Sprintf(`DELETE FROM %s WHERE username = ?`, tbl), username)
	if err != nil {
		return 0, mapDBError(err)
	}
	return res.RowsAffected()
}

// InsertRow inserts one attribute row.
func (t *storeTx) InsertRow(ctx context.Context, table domain.AttributeTable, row domain.AttributeRow) error {
	tbl, err := validTable(table)
	if err != nil {
		return err
	}

	_, err = t.tx.ExecContext(ctx,
		fmt.Sprintf(`INSERT INTO %s (username, attribute, op, value) VALUES (?, ?, ?, ?)`, tbl),
		row.Username, row.Attribute, row.Op, row.Value)
	return mapDBError(err)
}

// GetAttribute returns the singleton row for (username, attribute), or nil
// when absent. If duplicate rows exist the lowest id wins; the reconcilers
// treat that row as the singleton and never create a second one.
func (t *storeTx) GetAttribute(ctx context.Context, table domain.AttributeTable, username, attribute string) (*domain.AttributeRow, error) {
	tbl, err := validTable(table)
	if err != nil {
		return nil, err
	}

	var r domain.AttributeRow
	err = t.tx.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT id, username, attribute, op, value FROM %s WHERE username = ? AND attribute = ? ORDER BY id LIMIT 1`, tbl),
		username, attribute).Scan(&r.ID, &r.Username, &r.Attribute, &r.Op, &r.Value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// UpdateValue updates the value of an existing row by id.
func (t *storeTx) UpdateValue(ctx context.Context, table domain.AttributeTable, id int64, value string) error {
	tbl, err := validTable(table)
	if err != nil {
		return err
	}

	res, err := t.tx.ExecContext(ctx,
		fmt.Sprintf(`UPDATE %s SET value = ? WHERE id = ?`, tbl), value, id)
	if err != nil {
		return mapDBError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound("attribute row %d not found in %s", id, tbl)
	}
	return nil
}

// DeleteAttribute removes all rows for (username, attribute) and returns the
// count. Zero deletions is success; the callers decide whether absence
// matters.
func (t *storeTx) DeleteAttribute(ctx context.Context, table domain.AttributeTable, username, attribute string) (int64, error) {
	tbl, err := validTable(table)
	if err != nil {
		return 0, err
	}

	res, err := t.tx.ExecContext(ctx,
		fmt.Sprintf(`DELETE FROM %s WHERE username = ? AND attribute = ?`, tbl),
		username, attribute)
	if err != nil {
		return 0, mapDBError(err)
	}
	return res.RowsAffected()
}
