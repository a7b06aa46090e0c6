// Package sync implements the synchronization engine that keeps the local
// RADIUS attribute store consistent with the upstream subscriber system.
package sync

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"radsync/internal/codec"
	"radsync/internal/domain"
)

// Projector translates a voucher and its profile into the canonical
// attribute row set and writes it with a transactional full replace:
// delete every existing row for the username in both tables, then insert
// the freshly computed set. Stale attributes from a previous profile can
// never survive a re-sync, and applying the same voucher twice yields the
// identical final row set.
type Projector struct {
	store    domain.Store
	encoding domain.BandwidthEncoding
	logger   *slog.Logger
}

// NewProjector creates a Projector using the given bandwidth encoding.
func NewProjector(store domain.Store, encoding domain.BandwidthEncoding, logger *slog.Logger) *Projector {
	return &Projector{store: store, encoding: encoding, logger: logger}
}

// Apply projects a single voucher inside its own transaction.
func (p *Projector) Apply(ctx context.Context, v domain.Voucher) error {
	if err := v.Validate(); err != nil {
		return err
	}
	return p.store.Tx(ctx, func(tx domain.StoreTx) error {
		return p.applyTx(ctx, tx, v)
	})
}

// ApplyBatch projects a batch of vouchers in one transaction with a single
// commit at the end. Invalid items are recorded in the report and skipped;
// a store write failure aborts and rolls back the whole batch.
func (p *Projector) ApplyBatch(ctx context.Context, vouchers []domain.Voucher) (domain.SyncReport, error) {
	var report domain.SyncReport

	err := p.store.Tx(ctx, func(tx domain.StoreTx) error {
		for _, v := range vouchers {
			if err := v.Validate(); err != nil {
				report.Fail(v.Username, err)
				continue
			}
			if err := p.applyTx(ctx, tx, v); err != nil {
				var validation *domain.ValidationError
				if errors.As(err, &validation) {
					report.Fail(v.Username, err)
					continue
				}
				return err
			}
			report.Synced++
		}
		return nil
	})
	if err != nil {
		return report, err
	}

	return report, nil
}

// SyncFromUpstream pulls the current voucher set and applies it as a batch.
func (p *Projector) SyncFromUpstream(ctx context.Context, source domain.VoucherSource) (domain.SyncReport, error) {
	vouchers, err := source.PullVouchers(ctx)
	if err != nil {
		return domain.SyncReport{}, err
	}
	if len(vouchers) == 0 {
		p.logger.Info("no vouchers to sync")
		return domain.SyncReport{}, nil
	}

	report, err := p.ApplyBatch(ctx, vouchers)
	if err != nil {
		return report, err
	}
	p.logger.Info("voucher sync complete",
		"synced", report.Synced, "failed", report.Failed, "total", len(vouchers))
	return report, nil
}

func (p *Projector) applyTx(ctx context.Context, tx domain.StoreTx, v domain.Voucher) error {
	if _, err := tx.DeleteUserRows(ctx, domain.TableCheck, v.Username); err != nil {
		return err
	}
	if _, err := tx.DeleteUserRows(ctx, domain.TableReply, v.Username); err != nil {
		return err
	}

	for _, row := range p.checkRows(v) {
		if err := tx.InsertRow(ctx, domain.TableCheck, row); err != nil {
			return err
		}
	}
	for _, row := range p.replyRows(v) {
		if err := tx.InsertRow(ctx, domain.TableReply, row); err != nil {
			return err
		}
	}
	return nil
}

func (p *Projector) checkRows(v domain.Voucher) []domain.AttributeRow {
	rows := []domain.AttributeRow{
		{Username: v.Username, Attribute: domain.AttrCleartextPassword, Op: domain.OpSet, Value: v.Password},
	}
	if v.MacAddress != "" {
		rows = append(rows, domain.AttributeRow{
			Username: v.Username, Attribute: domain.AttrCallingStationID, Op: domain.OpEqual, Value: v.MacAddress,
		})
	}
	if v.NasIdentifier != "" {
		rows = append(rows, domain.AttributeRow{
			Username: v.Username, Attribute: domain.AttrNasIdentifier, Op: domain.OpEqual, Value: v.NasIdentifier,
		})
	}
	return rows
}

func (p *Projector) replyRows(v domain.Voucher) []domain.AttributeRow {
	var rows []domain.AttributeRow
	profile := v.Profile

	if profile.RateLimit != "" {
		rows = append(rows, p.bandwidthRows(v.Username, profile.RateLimit)...)
	}

	if seconds, ok := p.sessionTimeout(v); ok {
		rows = append(rows, domain.AttributeRow{
			Username: v.Username, Attribute: domain.AttrSessionTimeout, Op: domain.OpSet, Value: strconv.Itoa(seconds),
		})
	}

	if profile.IdleTimeout != nil {
		rows = append(rows, domain.AttributeRow{
			Username: v.Username, Attribute: domain.AttrIdleTimeout, Op: domain.OpSet, Value: strconv.Itoa(*profile.IdleTimeout),
		})
	}

	shared := profile.SharedUsers
	if shared <= 0 {
		shared = 1
	}
	rows = append(rows, domain.AttributeRow{
		Username: v.Username, Attribute: domain.AttrSimultaneousUse, Op: domain.OpSet, Value: strconv.Itoa(shared),
	})

	return rows
}

// bandwidthRows encodes the rate limit per the configured vendor convention.
// An unparsed rate-limit string falls back to codec.DefaultRate in both
// directions; the fallback lives here, not in the codec.
func (p *Projector) bandwidthRows(username, rateLimit string) []domain.AttributeRow {
	limit, ok := codec.ParseRateLimit(rateLimit)
	if !ok {
		p.logger.Warn("unparsable rate limit, applying default",
			"username", username, "rate_limit", rateLimit, "default", codec.DefaultRate)
		limit = codec.RateLimit{Upload: codec.DefaultRate, Download: codec.DefaultRate}
	}

	if p.encoding == domain.EncodingMikrotik {
		return []domain.AttributeRow{{
			Username:  username,
			Attribute: domain.AttrMikrotikRateLimit,
			Op:        domain.OpSet,
			Value:     codec.FormatRateLimit(limit),
		}}
	}

	return []domain.AttributeRow{
		{Username: username, Attribute: domain.AttrWisprBandwidthUp, Op: domain.OpSet, Value: strconv.FormatInt(limit.Upload, 10)},
		{Username: username, Attribute: domain.AttrWisprBandwidthDown, Op: domain.OpSet, Value: strconv.FormatInt(limit.Download, 10)},
	}
}

// sessionTimeout resolves the Session-Timeout value: an explicit
// session_timeout wins, otherwise the validity string is parsed. An
// unparsed validity falls back to codec.DefaultValiditySeconds.
func (p *Projector) sessionTimeout(v domain.Voucher) (int, bool) {
	if v.Profile.SessionTimeout != nil {
		return *v.Profile.SessionTimeout, true
	}
	if v.Profile.Validity == "" {
		return 0, false
	}

	seconds, ok := codec.ParseValidity(v.Profile.Validity)
	if !ok {
		p.logger.Warn("unparsable validity, applying default",
			"username", v.Username, "validity", v.Profile.Validity,
			"default", codec.FormatValidity(codec.DefaultValiditySeconds))
		seconds = codec.DefaultValiditySeconds
	}
	return seconds, true
}
