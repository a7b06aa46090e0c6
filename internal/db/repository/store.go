// Package repository implements the domain store interfaces using SQLite.
package repository

import (
	"context"
	"database/sql"
	"fmt"

	"radsync/internal/domain"
)

// Store is the attribute-store adapter over the FreeRADIUS SQLite database.
// Writes run on the single-connection write pool inside one transaction per
// batch; reads use the read pool.
type Store struct {
	writeDB *sql.DB
	readDB  *sql.DB
}

// NewStore creates a Store over a write/read pool pair. Passing the same
// *sql.DB twice is fine for callers that don't need the split.
func NewStore(writeDB, readDB *sql.DB) *Store {
	return &Store{writeDB: writeDB, readDB: readDB}
}

// Tx runs fn inside a single transaction on the write pool. A non-nil error
// from fn rolls back; otherwise the transaction commits once.
func (s *Store) Tx(ctx context.Context, fn func(domain.StoreTx) error) error {
	tx, err := s.writeDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	if err := fn(&storeTx{tx: tx}); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// Ping verifies store connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.readDB.PingContext(ctx)
}

// storeTx implements domain.StoreTx over *sql.Tx.
type storeTx struct {
	tx *sql.Tx
}

var (
	_ domain.Store   = (*Store)(nil)
	_ domain.StoreTx = (*storeTx)(nil)
)
