package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/sqlitedriver"

	ledger "github.com/ledyanoy556/smart-billing-contract"
	"github.com/ledyanoy556/smart-billing-contract/invoice"
	"github.com/ledyanoy556/smart-billing-contract/pending"
	ledgerstore "github.com/ledyanoy556/smart-billing-contract/store"
	"github.com/ledyanoy556/smart-billing-contract/store/sqlite"
	"github.com/ledyanoy556/smart-billing-contract/types"
)

var at = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func openStore(t *testing.T) *sqlite.Store {
	t.Helper()
	ctx := context.Background()

	drv := sqlitedriver.New()
	require.NoError(t, drv.Open(ctx, filepath.Join(t.TempDir(), "ledger.db")))
	db, err := grove.Open(drv)
	require.NoError(t, err)

	s := sqlite.New(db)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Migrate(ctx))
	return s
}

func newInvoice(t *testing.T, invID invoice.ID, issuer string, payer *types.Account, amount types.Amount) *invoice.Invoice {
	t.Helper()
	inv, err := invoice.New(invID, invoice.Params{Issuer: types.Account(issuer), Payer: payer, Amount: amount}, at)
	require.NoError(t, err)
	return inv
}

func TestInvoiceRoundTrip(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	_, ok, err := s.LastInvoiceID(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.CreateInvoice(ctx, newInvoice(t, 0, "alice", nil, 100)))
	require.NoError(t, s.CreateInvoice(ctx, newInvoice(t, 1, "alice", types.AccountPtr("bob"), 50)))

	last, ok, err := s.LastInvoiceID(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, invoice.ID(1), last)

	got, err := s.GetInvoice(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, types.Account("alice"), got.Issuer)
	require.NotNil(t, got.Payer)
	assert.Equal(t, types.Account("bob"), *got.Payer)
	assert.Equal(t, types.Amount(50), got.Amount)
	assert.False(t, got.Cancelled)

	_, err = s.GetInvoice(ctx, 9)
	assert.ErrorIs(t, err, ledger.ErrInvoiceNotFound)

	byIssuer, err := s.ListInvoiceIDsByIssuer(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []invoice.ID{0, 1}, byIssuer)

	byPayer, err := s.ListInvoiceIDsByPayer(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, []invoice.ID{1}, byPayer)

	r, err := s.GetPendingReturn(ctx, "bob")
	require.NoError(t, err)
	assert.True(t, r.Amount.IsZero())
}

func TestCommitWritesBothImages(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	inv := newInvoice(t, 0, "alice", nil, 100)
	require.NoError(t, s.CreateInvoice(ctx, inv))

	inv.PaidAmount = 60
	inv.TotalCollected = 60
	inv.UpdatedAt = at.Add(time.Minute)
	r := &pending.Return{Account: "bob", Amount: 5}
	require.NoError(t, s.Commit(ctx, ledgerstore.Changeset{Invoice: inv, Pending: r}))

	got, err := s.GetInvoice(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, types.Amount(60), got.PaidAmount)
	assert.Equal(t, types.Amount(60), got.TotalCollected)

	gotR, err := s.GetPendingReturn(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, types.Amount(5), gotR.Amount)

	r.Amount = 8
	require.NoError(t, s.Commit(ctx, ledgerstore.Changeset{Pending: r}))
	gotR, err = s.GetPendingReturn(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, types.Amount(8), gotR.Amount)
}

func TestCommitIsAtomic(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	inv := newInvoice(t, 0, "alice", nil, 100)
	require.NoError(t, s.CreateInvoice(ctx, inv))

	inv.PaidAmount = 40
	bad := &pending.Return{Account: "bob", Amount: -1}
	err := s.Commit(ctx, ledgerstore.Changeset{Invoice: inv, Pending: bad})
	require.Error(t, err)

	got, err := s.GetInvoice(ctx, 0)
	require.NoError(t, err)
	assert.True(t, got.PaidAmount.IsZero(), "invoice write rolled back with the failed pending write")
}

func TestCommitUnknownInvoice(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	ghost := newInvoice(t, 3, "alice", nil, 10)
	r := &pending.Return{Account: "bob", Amount: 1}
	err := s.Commit(ctx, ledgerstore.Changeset{Invoice: ghost, Pending: r})
	assert.ErrorIs(t, err, ledger.ErrInvoiceNotFound)

	gotR, err := s.GetPendingReturn(ctx, "bob")
	require.NoError(t, err)
	assert.True(t, gotR.Amount.IsZero())
}
