package sync

import (
	"context"

	"radsync/internal/domain"
)

// Toggler flips a subscriber between enabled and disabled via the sentinel
// check row Auth-Type := Reject. Presence of the row disables the user;
// absence enables. Both directions are idempotent.
type Toggler struct {
	store domain.Store
}

// NewToggler creates a Toggler.
func NewToggler(store domain.Store) *Toggler {
	return &Toggler{store: store}
}

// SetStatus enables or disables a voucher. Unknown usernames (no rows in
// either table) return NotFound; repeating a toggle is a no-op success and
// never produces a duplicate sentinel.
func (t *Toggler) SetStatus(ctx context.Context, username string, status domain.VoucherStatus) error {
	if username == "" {
		return domain.ErrValidation("username is required")
	}

	exists, err := t.store.UserExists(ctx, username)
	if err != nil {
		return err
	}
	if !exists {
		return domain.ErrNotFound("voucher %q not found", username)
	}

	return t.store.Tx(ctx, func(tx domain.StoreTx) error {
		switch status {
		case domain.StatusDisabled:
			existing, err := tx.GetAttribute(ctx, domain.TableCheck, username, domain.AttrAuthType)
			if err != nil {
				return err
			}
			if existing != nil {
				return nil
			}
			return tx.InsertRow(ctx, domain.TableCheck, domain.AttributeRow{
				Username:  username,
				Attribute: domain.AttrAuthType,
				Op:        domain.OpSet,
				Value:     domain.SentinelDisabledValue,
			})

		case domain.StatusActive:
			_, err := tx.DeleteAttribute(ctx, domain.TableCheck, username, domain.AttrAuthType)
			return err

		default:
			return domain.ErrValidation("invalid status %q", status)
		}
	})
}
