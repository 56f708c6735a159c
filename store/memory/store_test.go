package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledyanoy556/smart-billing-contract"
	"github.com/ledyanoy556/smart-billing-contract/invoice"
	"github.com/ledyanoy556/smart-billing-contract/pending"
	"github.com/ledyanoy556/smart-billing-contract/store"
	"github.com/ledyanoy556/smart-billing-contract/store/memory"
	"github.com/ledyanoy556/smart-billing-contract/types"
)

var at = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

func mustInvoice(t *testing.T, invID invoice.ID, issuer string, payer *types.Account) *invoice.Invoice {
	t.Helper()
	inv, err := invoice.New(invID, invoice.Params{
		Issuer: types.Account(issuer),
		Payer:  payer,
		Amount: 100,
	}, at)
	require.NoError(t, err)
	return inv
}

func TestCreateAndIndex(t *testing.T) {
	ctx := context.Background()
	s := memory.New()

	_, ok, err := s.LastInvoiceID(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.CreateInvoice(ctx, mustInvoice(t, 0, "a", types.AccountPtr("p"))))
	require.NoError(t, s.CreateInvoice(ctx, mustInvoice(t, 1, "b", nil)))
	require.NoError(t, s.CreateInvoice(ctx, mustInvoice(t, 2, "a", nil)))

	last, ok, err := s.LastInvoiceID(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, invoice.ID(2), last)

	ids, err := s.ListInvoiceIDsByIssuer(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []invoice.ID{0, 2}, ids)

	ids, err = s.ListInvoiceIDsByPayer(ctx, "p")
	require.NoError(t, err)
	assert.Equal(t, []invoice.ID{0}, ids)

	ids, err = s.ListInvoiceIDsByPayer(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestCreateRejectsGap(t *testing.T) {
	s := memory.New()
	err := s.CreateInvoice(context.Background(), mustInvoice(t, 5, "a", nil))
	assert.Error(t, err)
}

func TestGetInvoiceNotFound(t *testing.T) {
	_, err := memory.New().GetInvoice(context.Background(), 0)
	assert.ErrorIs(t, err, ledger.ErrInvoiceNotFound)
}

func TestReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	inv := mustInvoice(t, 0, "a", nil)
	require.NoError(t, s.CreateInvoice(ctx, inv))

	inv.PaidAmount = 99
	got, err := s.GetInvoice(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, types.Amount(0), got.PaidAmount)

	got.PaidAmount = 50
	again, err := s.GetInvoice(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, types.Amount(0), again.PaidAmount)
}

func TestCommit(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	require.NoError(t, s.CreateInvoice(ctx, mustInvoice(t, 0, "a", nil)))

	inv, err := s.GetInvoice(ctx, 0)
	require.NoError(t, err)
	inv.PaidAmount = 40

	credit, err := pending.Zero("p").Credit(10, at)
	require.NoError(t, err)

	require.NoError(t, s.Commit(ctx, store.Changeset{Invoice: inv, Pending: credit}))

	got, err := s.GetInvoice(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, types.Amount(40), got.PaidAmount)

	r, err := s.GetPendingReturn(ctx, "p")
	require.NoError(t, err)
	assert.Equal(t, types.Amount(10), r.Amount)
}

func TestCommitUnknownInvoiceWritesNothing(t *testing.T) {
	ctx := context.Background()
	s := memory.New()

	credit, err := pending.Zero("p").Credit(10, at)
	require.NoError(t, err)

	err = s.Commit(ctx, store.Changeset{Invoice: mustInvoice(t, 3, "a", nil), Pending: credit})
	assert.ErrorIs(t, err, ledger.ErrInvoiceNotFound)

	r, err := s.GetPendingReturn(ctx, "p")
	require.NoError(t, err)
	assert.Equal(t, types.Amount(0), r.Amount)
}

func TestPendingReturnDefaultsToZero(t *testing.T) {
	r, err := memory.New().GetPendingReturn(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, types.Account("x"), r.Account)
	assert.True(t, r.Amount.IsZero())
}

func TestClosed(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	require.NoError(t, s.Ping(ctx))
	require.NoError(t, s.Close())

	assert.ErrorIs(t, s.Ping(ctx), ledger.ErrStoreClosed)
	_, err := s.GetInvoice(ctx, 0)
	assert.ErrorIs(t, err, ledger.ErrStoreClosed)
	assert.ErrorIs(t, s.Commit(ctx, store.Changeset{}), ledger.ErrStoreClosed)
}
