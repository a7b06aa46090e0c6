package domain

import (
	"context"
	"time"
)

// Store is the attribute-store adapter consumed by the sync engine. All
// writes go through Tx so that one scheduler tick or one inbound request is
// a single transactional unit of work.
type Store interface {
	// Tx runs fn inside one transaction. Per-item failures inside fn are
	// the caller's business; a returned error rolls everything back.
	Tx(ctx context.Context, fn func(StoreTx) error) error

	ListUserRows(ctx context.Context, table AttributeTable, username string) ([]AttributeRow, error)
	UserExists(ctx context.Context, username string) (bool, error)

	// UnprocessedAccepts returns unprocessed Access-Accept log entries in
	// ascending authdate order, bounded to limit.
	UnprocessedAccepts(ctx context.Context, limit int) ([]AuthLogEntry, error)
	// WindowedActivations aggregates accepts since the given time, keeping
	// the earliest entry per (username, nas, mac) group. Legacy fallback
	// path; does not consume the processed flag.
	WindowedActivations(ctx context.Context, since time.Time) ([]Activation, error)

	Stats(ctx context.Context) (StoreStats, error)
	Ping(ctx context.Context) error
}

// StoreTx is the transactional surface used inside Store.Tx.
type StoreTx interface {
	DeleteUserRows(ctx context.Context, table AttributeTable, username string) (int64, error)
	InsertRow(ctx context.Context, table AttributeTable, row AttributeRow) error
	// GetAttribute returns the singleton row for (username, attribute), or
	// nil when absent.
	GetAttribute(ctx context.Context, table AttributeTable, username, attribute string) (*AttributeRow, error)
	UpdateValue(ctx context.Context, table AttributeTable, id int64, value string) error
	DeleteAttribute(ctx context.Context, table AttributeTable, username, attribute string) (int64, error)
	MarkProcessed(ctx context.Context, entryID int64) error
}

// Notifier reports activation events to the upstream subscriber system.
// Delivery is at-least-once: entries are marked processed only after a
// successful notify, so the upstream must deduplicate.
type Notifier interface {
	NotifyActivation(ctx context.Context, a Activation) (*ActivationResponse, error)
}

// VoucherSource pulls voucher and deletion state from the upstream system.
type VoucherSource interface {
	PullVouchers(ctx context.Context) ([]Voucher, error)
	PullDeleted(ctx context.Context, since time.Time) ([]string, error)
	// PushActivationWindow bulk-reports a window of activations. Used only
	// by the legacy windowed scan.
	PushActivationWindow(ctx context.Context, activations []Activation) error
}
