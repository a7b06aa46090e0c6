package repository

import (
	"context"
	"time"

	"radsync/internal/domain"
)

// UnprocessedAccepts returns unprocessed Access-Accept entries in ascending
// authdate order, bounded to limit. The auth log is append-only; this reads
// on the write pool's view via the read pool, which is safe because the
// processed flag only ever moves from 0 to 1.
func (s *Store) UnprocessedAccepts(ctx context.Context, limit int) ([]domain.AuthLogEntry, error) {
	rows, err := s.readDB.QueryContext(ctx,
		`SELECT id, username, callingstationid, nasidentifier, nasipaddress, reply, authdate
		 FROM radpostauth
		 WHERE reply = ? AND processed = 0
		 ORDER BY authdate ASC
		 LIMIT ?`,
		domain.ReplyAccessAccept, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	var out []domain.AuthLogEntry
	for rows.Next() {
		var e domain.AuthLogEntry
		if err := rows.Scan(&e.ID, &e.Username, &e.MacAddress, &e.NasIdentifier, &e.NasIPAddress, &e.Reply, &e.AuthDate); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// WindowedActivations aggregates accepts since the given time, keeping the
// earliest authdate per (username, nas, mac) group. NAS identity falls back
// to the NAS IP when the identifier is empty. This is the legacy windowed
// scan: it ignores the processed flag entirely and relies on the upstream
// deduplicating by (username, timestamp).
func (s *Store) WindowedActivations(ctx context.Context, since time.Time) ([]domain.Activation, error) {
	rows, err := s.readDB.QueryContext(ctx,
		`SELECT username,
		        CASE WHEN nasidentifier <> '' THEN nasidentifier ELSE nasipaddress END AS nas,
		        callingstationid,
		        MIN(authdate) AS first_auth
		 FROM radpostauth
		 WHERE reply = ? AND authdate > ?
		 GROUP BY username, nas, callingstationid
		 ORDER BY first_auth ASC`,
		domain.ReplyAccessAccept, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	var out []domain.Activation
	for rows.Next() {
		var a domain.Activation
		if err := rows.Scan(&a.Username, &a.NasIdentifier, &a.MacAddress, &a.ActivatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// MarkProcessed flips the processed flag for one auth log entry. Called only
// after the upstream notify succeeded.
func (t *storeTx) MarkProcessed(ctx context.Context, entryID int64) error {
	res, err := t.tx.ExecContext(ctx,
		`UPDATE radpostauth SET processed = 1 WHERE id = ?`, entryID)
	if err != nil {
		return mapDBError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound("auth log entry %d not found", entryID)
	}
	return nil
}
