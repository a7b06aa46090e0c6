package sync

import (
	"context"
	"errors"
	"log/slog"

	"radsync/internal/domain"
)

// MacBinder reconciles Calling-Station-Id check rows. The invariant is at
// most one binding row per username at all times; the reconciler enforces
// it, not a storage constraint.
type MacBinder struct {
	store  domain.Store
	logger *slog.Logger
}

// NewMacBinder creates a MacBinder.
func NewMacBinder(store domain.Store, logger *slog.Logger) *MacBinder {
	return &MacBinder{store: store, logger: logger}
}

// Upsert writes the MAC binding for username in its own transaction.
// No existing row inserts, a differing row updates in place, and an equal
// row is left untouched.
func (b *MacBinder) Upsert(ctx context.Context, username, macAddress string) (domain.BindResult, error) {
	binding := domain.MacBinding{Username: username, MacAddress: macAddress}
	if err := binding.Validate(); err != nil {
		return "", err
	}

	var result domain.BindResult
	err := b.store.Tx(ctx, func(tx domain.StoreTx) error {
		var txErr error
		result, txErr = upsertBinding(ctx, tx, binding)
		return txErr
	})
	if err != nil {
		return "", err
	}
	return result, nil
}

// UpsertBatch reconciles a batch of bindings in one transaction. Invalid
// items are recorded and skipped; a store failure rolls back the batch.
func (b *MacBinder) UpsertBatch(ctx context.Context, bindings []domain.MacBinding) (domain.SyncReport, error) {
	var report domain.SyncReport

	err := b.store.Tx(ctx, func(tx domain.StoreTx) error {
		for _, binding := range bindings {
			if err := binding.Validate(); err != nil {
				report.Fail(binding.Username, err)
				continue
			}
			result, err := upsertBinding(ctx, tx, binding)
			if err != nil {
				var validation *domain.ValidationError
				if errors.As(err, &validation) {
					report.Fail(binding.Username, err)
					continue
				}
				return err
			}
			switch result {
			case domain.BindUpdated:
				report.Updated++
			default:
				report.Synced++
			}
		}
		return nil
	})
	if err != nil {
		return report, err
	}

	return report, nil
}

// upsertBinding is the transactional core shared with the activation scan.
func upsertBinding(ctx context.Context, tx domain.StoreTx, b domain.MacBinding) (domain.BindResult, error) {
	existing, err := tx.GetAttribute(ctx, domain.TableCheck, b.Username, domain.AttrCallingStationID)
	if err != nil {
		return "", err
	}

	switch {
	case existing == nil:
		err = tx.InsertRow(ctx, domain.TableCheck, domain.AttributeRow{
			Username:  b.Username,
			Attribute: domain.AttrCallingStationID,
			Op:        domain.OpEqual,
			Value:     b.MacAddress,
		})
		if err != nil {
			return "", err
		}
		return domain.BindInserted, nil

	case existing.Value == b.MacAddress:
		return domain.BindUnchanged, nil

	default:
		if err := tx.UpdateValue(ctx, domain.TableCheck, existing.ID, b.MacAddress); err != nil {
			return "", err
		}
		return domain.BindUpdated, nil
	}
}
