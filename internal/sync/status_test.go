package sync

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"radsync/internal/db/repository"
	"radsync/internal/domain"
)

func sentinelCount(t *testing.T, store *repository.Store, username string) int {
	t.Helper()
	rows, err := store.ListUserRows(context.Background(), domain.TableCheck, username)
	require.NoError(t, err)
	n := 0
	for _, r := range rows {
		if r.Attribute == domain.AttrAuthType && r.Value == domain.SentinelDisabledValue {
			n++
		}
	}
	return n
}

func TestToggler_DisableAndEnable(t *testing.T) {
	store, _ := setupEngineTest(t)
	p := NewProjector(store, domain.EncodingWISPr, testLogger())
	toggler := NewToggler(store)
	ctx := context.Background()

	require.NoError(t, p.Apply(ctx, domain.Voucher{Username: "u1", Password: "pw"}))

	require.NoError(t, toggler.SetStatus(ctx, "u1", domain.StatusDisabled))
	assert.Equal(t, 1, sentinelCount(t, store, "u1"))

	// Disabling twice never duplicates the sentinel.
	require.NoError(t, toggler.SetStatus(ctx, "u1", domain.StatusDisabled))
	assert.Equal(t, 1, sentinelCount(t, store, "u1"))

	require.NoError(t, toggler.SetStatus(ctx, "u1", domain.StatusActive))
	assert.Zero(t, sentinelCount(t, store, "u1"))

	// Enabling an already-enabled user is a no-op success.
	require.NoError(t, toggler.SetStatus(ctx, "u1", domain.StatusActive))

	// The credential row is untouched by toggling.
	rows, err := store.ListUserRows(ctx, domain.TableCheck, "u1")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, domain.AttrCleartextPassword, rows[0].Attribute)
}

func TestToggler_UnknownUser(t *testing.T) {
	store, _ := setupEngineTest(t)
	toggler := NewToggler(store)

	err := toggler.SetStatus(context.Background(), "ghost", domain.StatusDisabled)
	var nf *domain.NotFoundError
	assert.ErrorAs(t, err, &nf)

	var ve *domain.ValidationError
	err = toggler.SetStatus(context.Background(), "", domain.StatusActive)
	assert.ErrorAs(t, err, &ve)
}

func TestToggler_ReplyOnlyUserCanBeToggled(t *testing.T) {
	store, _ := setupEngineTest(t)
	toggler := NewToggler(store)
	ctx := context.Background()

	err := store.Tx(ctx, func(tx domain.StoreTx) error {
		return tx.InsertRow(ctx, domain.TableReply, domain.AttributeRow{
			Username: "reply-only", Attribute: domain.AttrSessionTimeout, Op: domain.OpSet, Value: "3600",
		})
	})
	require.NoError(t, err)

	require.NoError(t, toggler.SetStatus(ctx, "reply-only", domain.StatusDisabled))
	assert.Equal(t, 1, sentinelCount(t, store, "reply-only"))
}
