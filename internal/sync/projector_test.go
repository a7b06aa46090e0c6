package sync

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	internaldb "radsync/internal/db"
	"radsync/internal/db/repository"
	"radsync/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setupEngineTest(t *testing.T) (*repository.Store, *sql.DB) {
	t.Helper()
	writeDB, readDB := internaldb.OpenTestSQLite(t)
	return repository.NewStore(writeDB, readDB), writeDB
}

func rowSet(t *testing.T, store *repository.Store, table domain.AttributeTable, username string) map[string][2]string {
	t.Helper()
	rows, err := store.ListUserRows(context.Background(), table, username)
	require.NoError(t, err)
	out := make(map[string][2]string, len(rows))
	for _, r := range rows {
		out[r.Attribute] = [2]string{r.Op, r.Value}
	}
	require.Len(t, out, len(rows), "no duplicate attributes expected")
	return out
}

func intPtr(n int) *int { return &n }

func TestProjector_Apply(t *testing.T) {
	store, _ := setupEngineTest(t)
	p := NewProjector(store, domain.EncodingWISPr, testLogger())

	v := domain.Voucher{
		Username:      "ABC123",
		Password:      "s3cret",
		MacAddress:    "AA:BB:CC:DD:EE:FF",
		NasIdentifier: "hotspot-1",
		Profile: domain.Profile{
			RateLimit:   "10M/5M",
			Validity:    "1h",
			IdleTimeout: intPtr(600),
			SharedUsers: 2,
		},
	}
	require.NoError(t, p.Apply(context.Background(), v))

	check := rowSet(t, store, domain.TableCheck, "ABC123")
	assert.Equal(t, [2]string{domain.OpSet, "s3cret"}, check[domain.AttrCleartextPassword])
	assert.Equal(t, [2]string{domain.OpEqual, "AA:BB:CC:DD:EE:FF"}, check[domain.AttrCallingStationID])
	assert.Equal(t, [2]string{domain.OpEqual, "hotspot-1"}, check[domain.AttrNasIdentifier])
	assert.Len(t, check, 3)

	reply := rowSet(t, store, domain.TableReply, "ABC123")
	assert.Equal(t, [2]string{domain.OpSet, "10000000"}, reply[domain.AttrWisprBandwidthUp])
	assert.Equal(t, [2]string{domain.OpSet, "5000000"}, reply[domain.AttrWisprBandwidthDown])
	assert.Equal(t, [2]string{domain.OpSet, "3600"}, reply[domain.AttrSessionTimeout])
	assert.Equal(t, [2]string{domain.OpSet, "600"}, reply[domain.AttrIdleTimeout])
	assert.Equal(t, [2]string{domain.OpSet, "2"}, reply[domain.AttrSimultaneousUse])
	assert.Len(t, reply, 5)
}

func TestProjector_ApplyIsIdempotent(t *testing.T) {
	store, _ := setupEngineTest(t)
	p := NewProjector(store, domain.EncodingWISPr, testLogger())
	ctx := context.Background()

	v := domain.Voucher{
		Username: "ABC123",
		Password: "s3cret",
		Profile:  domain.Profile{RateLimit: "512K", Validity: "1d"},
	}
	require.NoError(t, p.Apply(ctx, v))
	first := rowSet(t, store, domain.TableCheck, "ABC123")
	firstReply := rowSet(t, store, domain.TableReply, "ABC123")

	require.NoError(t, p.Apply(ctx, v))
	assert.Equal(t, first, rowSet(t, store, domain.TableCheck, "ABC123"))
	assert.Equal(t, firstReply, rowSet(t, store, domain.TableReply, "ABC123"))
}

func TestProjector_ReSyncReplacesStaleRows(t *testing.T) {
	store, _ := setupEngineTest(t)
	p := NewProjector(store, domain.EncodingWISPr, testLogger())
	ctx := context.Background()

	require.NoError(t, p.Apply(ctx, domain.Voucher{
		Username:   "ABC123",
		Password:   "old-pw",
		MacAddress: "AA:BB:CC:DD:EE:FF",
		Profile:    domain.Profile{RateLimit: "10M", IdleTimeout: intPtr(600)},
	}))

	// New profile drops the MAC binding and the idle timeout.
	require.NoError(t, p.Apply(ctx, domain.Voucher{
		Username: "ABC123",
		Password: "new-pw",
		Profile:  domain.Profile{RateLimit: "2M/1M"},
	}))

	check := rowSet(t, store, domain.TableCheck, "ABC123")
	assert.Equal(t, [2]string{domain.OpSet, "new-pw"}, check[domain.AttrCleartextPassword])
	assert.NotContains(t, check, domain.AttrCallingStationID, "stale binding must not survive")
	assert.Len(t, check, 1)

	reply := rowSet(t, store, domain.TableReply, "ABC123")
	assert.Equal(t, [2]string{domain.OpSet, "2000000"}, reply[domain.AttrWisprBandwidthUp])
	assert.Equal(t, [2]string{domain.OpSet, "1000000"}, reply[domain.AttrWisprBandwidthDown])
	assert.NotContains(t, reply, domain.AttrIdleTimeout)
}

func TestProjector_MikrotikEncoding(t *testing.T) {
	store, _ := setupEngineTest(t)
	p := NewProjector(store, domain.EncodingMikrotik, testLogger())

	require.NoError(t, p.Apply(context.Background(), domain.Voucher{
		Username: "mk1",
		Password: "pw",
		Profile:  domain.Profile{RateLimit: "10M/5M"},
	}))

	reply := rowSet(t, store, domain.TableReply, "mk1")
	assert.Equal(t, [2]string{domain.OpSet, "10M/5M"}, reply[domain.AttrMikrotikRateLimit])
	assert.NotContains(t, reply, domain.AttrWisprBandwidthUp)
	assert.NotContains(t, reply, domain.AttrWisprBandwidthDown)
}

func TestProjector_UnparsableProfileFallbacks(t *testing.T) {
	store, _ := setupEngineTest(t)
	p := NewProjector(store, domain.EncodingWISPr, testLogger())

	require.NoError(t, p.Apply(context.Background(), domain.Voucher{
		Username: "bad1",
		Password: "pw",
		Profile:  domain.Profile{RateLimit: "bogus", Validity: "forever"},
	}))

	reply := rowSet(t, store, domain.TableReply, "bad1")
	assert.Equal(t, [2]string{domain.OpSet, "10000000"}, reply[domain.AttrWisprBandwidthUp])
	assert.Equal(t, [2]string{domain.OpSet, "10000000"}, reply[domain.AttrWisprBandwidthDown])
	assert.Equal(t, [2]string{domain.OpSet, "86400"}, reply[domain.AttrSessionTimeout])
}

func TestProjector_ExplicitSessionTimeoutWins(t *testing.T) {
	store, _ := setupEngineTest(t)
	p := NewProjector(store, domain.EncodingWISPr, testLogger())

	require.NoError(t, p.Apply(context.Background(), domain.Voucher{
		Username: "u1",
		Password: "pw",
		Profile:  domain.Profile{SessionTimeout: intPtr(7200), Validity: "1h"},
	}))

	reply := rowSet(t, store, domain.TableReply, "u1")
	assert.Equal(t, [2]string{domain.OpSet, "7200"}, reply[domain.AttrSessionTimeout])
}

func TestProjector_ApplyBatchSkipsInvalid(t *testing.T) {
	store, _ := setupEngineTest(t)
	p := NewProjector(store, domain.EncodingWISPr, testLogger())

	report, err := p.ApplyBatch(context.Background(), []domain.Voucher{
		{Username: "good1", Password: "pw"},
		{Username: "nopass"},
		{Username: "", Password: "pw"},
		{Username: "good2", Password: "pw"},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, report.Synced)
	assert.Equal(t, 2, report.Failed)
	require.Len(t, report.Errors, 2)
	assert.Equal(t, "nopass", report.Errors[0].Username)

	// Valid items still landed despite the failures.
	exists, err := store.UserExists(context.Background(), "good1")
	require.NoError(t, err)
	assert.True(t, exists)
	exists, err = store.UserExists(context.Background(), "good2")
	require.NoError(t, err)
	assert.True(t, exists)
}

type fakeSource struct {
	vouchers    []domain.Voucher
	deleted     []string
	pushes      [][]domain.Activation
	pullErr     error
	pushWindErr error
}

func (f *fakeSource) PullVouchers(ctx context.Context) ([]domain.Voucher, error) {
	return f.vouchers, f.pullErr
}

func (f *fakeSource) PullDeleted(ctx context.Context, since time.Time) ([]string, error) {
	return f.deleted, f.pullErr
}

func (f *fakeSource) PushActivationWindow(ctx context.Context, activations []domain.Activation) error {
	if f.pushWindErr != nil {
		return f.pushWindErr
	}
	f.pushes = append(f.pushes, activations)
	return nil
}

func TestProjector_SyncFromUpstream(t *testing.T) {
	store, _ := setupEngineTest(t)
	p := NewProjector(store, domain.EncodingWISPr, testLogger())

	source := &fakeSource{vouchers: []domain.Voucher{
		{Username: "u1", Password: "pw1"},
		{Username: "u2", Password: "pw2"},
	}}
	report, err := p.SyncFromUpstream(context.Background(), source)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Synced)
	assert.Zero(t, report.Failed)

	// Upstream failure propagates untouched.
	source.pullErr = domain.ErrUpstream(nil, "pull vouchers")
	_, err = p.SyncFromUpstream(context.Background(), source)
	var ue *domain.UpstreamError
	assert.ErrorAs(t, err, &ue)
}
