package sync

import (
	"context"
	"log/slog"
	"time"

	"radsync/internal/domain"
)

// DefaultDeletionWindow trails the scheduler interval with headroom so no
// upstream deletion falls between two runs.
const DefaultDeletionWindow = 10 * time.Minute

// Deleter propagates upstream voucher deletions into the attribute store.
// The append-only auth log is never touched: audit history survives
// credential deletion.
type Deleter struct {
	store  domain.Store
	source domain.VoucherSource
	window time.Duration
	logger *slog.Logger
}

// NewDeleter creates a Deleter. window <= 0 uses DefaultDeletionWindow.
func NewDeleter(store domain.Store, source domain.VoucherSource, window time.Duration, logger *slog.Logger) *Deleter {
	if window <= 0 {
		window = DefaultDeletionWindow
	}
	return &Deleter{store: store, source: source, window: window, logger: logger}
}

// Reconcile pulls usernames deleted upstream within the trailing window and
// removes their rows from both attribute tables in one transaction. A
// username with no rows left is already-deleted, which counts as success.
func (d *Deleter) Reconcile(ctx context.Context) (int, error) {
	since := time.Now().Add(-d.window)
	usernames, err := d.source.PullDeleted(ctx, since)
	if err != nil {
		return 0, err
	}
	if len(usernames) == 0 {
		d.logger.Debug("no deleted vouchers to sync")
		return 0, nil
	}

	removed := 0
	err = d.store.Tx(ctx, func(tx domain.StoreTx) error {
		for _, username := range usernames {
			counts, err := deleteUser(ctx, tx, username)
			if err != nil {
				return err
			}
			if counts.Total() > 0 {
				removed++
				d.logger.Info("removed deleted voucher", "username", username,
					"check_rows", counts.CheckCount, "reply_rows", counts.ReplyCount)
			}
		}
		return nil
	})
	if err != nil {
		return removed, err
	}

	d.logger.Info("deletion sync complete", "removed", removed, "deleted_upstream", len(usernames))
	return removed, nil
}

// DeleteVoucher removes a single username's rows on demand. Returns
// NotFound when no row existed in either table.
func (d *Deleter) DeleteVoucher(ctx context.Context, username string) (domain.DeleteCounts, error) {
	if username == "" {
		return domain.DeleteCounts{}, domain.ErrValidation("username is required")
	}

	var counts domain.DeleteCounts
	err := d.store.Tx(ctx, func(tx domain.StoreTx) error {
		var txErr error
		counts, txErr = deleteUser(ctx, tx, username)
		return txErr
	})
	if err != nil {
		return domain.DeleteCounts{}, err
	}
	if counts.Total() == 0 {
		return domain.DeleteCounts{}, domain.ErrNotFound("voucher %q not found", username)
	}
	return counts, nil
}

func deleteUser(ctx context.Context, tx domain.StoreTx, username string) (domain.DeleteCounts, error) {
	checkN, err := tx.DeleteUserRows(ctx, domain.TableCheck, username)
	if err != nil {
		return domain.DeleteCounts{}, err
	}
	replyN, err := tx.DeleteUserRows(ctx, domain.TableReply, username)
	if err != nil {
		return domain.DeleteCounts{}, err
	}
	return domain.DeleteCounts{CheckCount: checkN, ReplyCount: replyN}, nil
}
