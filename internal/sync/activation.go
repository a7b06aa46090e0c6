package sync

import (
	"context"
	"log/slog"
	"time"

	"radsync/internal/domain"
)

// DefaultBatchLimit bounds the per-run work of an activation scan.
const DefaultBatchLimit = 100

// DefaultWindow is the trailing window of the legacy windowed scan.
const DefaultWindow = 24 * time.Hour

// Detector polls the auth log for first successful authentications and
// reports them upstream. Each entry moves unseen → notified →
// marked-processed; the flag flips only after the notify call succeeded, so
// a crash between the two retries the entry on the next scan. Delivery to
// the upstream is therefore at-least-once, never lost.
type Detector struct {
	store      domain.Store
	notifier   domain.Notifier
	batchLimit int
	logger     *slog.Logger
}

// NewDetector creates a Detector. batchLimit <= 0 uses DefaultBatchLimit.
func NewDetector(store domain.Store, notifier domain.Notifier, batchLimit int, logger *slog.Logger) *Detector {
	if batchLimit <= 0 {
		batchLimit = DefaultBatchLimit
	}
	return &Detector{store: store, notifier: notifier, batchLimit: batchLimit, logger: logger}
}

// Scan processes one batch of unprocessed Access-Accept entries in
// ascending timestamp order. For each entry it notifies the upstream; when
// the response requests a MAC bind and no binding row exists yet, the MAC
// is bound (first-bind-wins: activation never overwrites an existing
// binding). Entries whose notify failed stay unprocessed and are retried
// next run; marks and binds commit together at the end of the batch.
func (d *Detector) Scan(ctx context.Context) (domain.ActivationReport, error) {
	var report domain.ActivationReport

	entries, err := d.store.UnprocessedAccepts(ctx, d.batchLimit)
	if err != nil {
		return report, err
	}
	if len(entries) == 0 {
		d.logger.Debug("no new activations")
		return report, nil
	}

	err = d.store.Tx(ctx, func(tx domain.StoreTx) error {
		for _, entry := range entries {
			resp, err := d.notifier.NotifyActivation(ctx, domain.Activation{
				Username:      entry.Username,
				MacAddress:    entry.MacAddress,
				NasIdentifier: entry.NasIdentifier,
				ActivatedAt:   entry.AuthDate,
			})
			if err != nil {
				report.Failed++
				d.logger.Warn("activation notify failed",
					"username", entry.Username, "error", err)
				continue
			}

			if resp.ShouldBindMac && entry.MacAddress != "" {
				bound, err := bindFirstOnly(ctx, tx, entry.Username, entry.MacAddress)
				if err != nil {
					return err
				}
				if bound {
					report.Bound++
					d.logger.Info("bound mac to user",
						"username", entry.Username, "mac", entry.MacAddress)
				}
			}

			if err := tx.MarkProcessed(ctx, entry.ID); err != nil {
				return err
			}
			report.Processed++
		}
		return nil
	})
	if err != nil {
		return report, err
	}

	d.logger.Info("activation scan complete",
		"processed", report.Processed, "bound", report.Bound, "failed", report.Failed)
	return report, nil
}

// ScanWindow is the legacy aggregation mode: push every distinct
// (username, nas, mac) group seen in the trailing window upstream, keeping
// only the earliest timestamp per group, without consuming the processed
// flag. Not idempotent on its own; it relies entirely on the upstream
// deduplicating by (username, timestamp). Kept as a fallback for upstreams
// that cannot serve the per-entry notify endpoint; the scheduler never runs
// it by default.
func (d *Detector) ScanWindow(ctx context.Context, source domain.VoucherSource, window time.Duration) (int, error) {
	if window <= 0 {
		window = DefaultWindow
	}

	activations, err := d.store.WindowedActivations(ctx, time.Now().Add(-window))
	if err != nil {
		return 0, err
	}
	if len(activations) == 0 {
		d.logger.Debug("no activations in window", "window", window)
		return 0, nil
	}

	if err := source.PushActivationWindow(ctx, activations); err != nil {
		return 0, err
	}

	d.logger.Info("pushed activation window", "count", len(activations), "window", window)
	return len(activations), nil
}

// bindFirstOnly inserts a MAC binding only when none exists yet.
func bindFirstOnly(ctx context.Context, tx domain.StoreTx, username, mac string) (bool, error) {
	existing, err := tx.GetAttribute(ctx, domain.TableCheck, username, domain.AttrCallingStationID)
	if err != nil {
		return false, err
	}
	if existing != nil {
		return false, nil
	}

	err = tx.InsertRow(ctx, domain.TableCheck, domain.AttributeRow{
		Username:  username,
		Attribute: domain.AttrCallingStationID,
		Op:        domain.OpEqual,
		Value:     mac,
	})
	if err != nil {
		return false, err
	}
	return true, nil
}
