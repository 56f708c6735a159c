package postgres_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/pgdriver"

	"github.com/ledyanoy556/smart-billing-contract/invoice"
	"github.com/ledyanoy556/smart-billing-contract/pending"
	ledgerstore "github.com/ledyanoy556/smart-billing-contract/store"
	"github.com/ledyanoy556/smart-billing-contract/store/postgres"
	"github.com/ledyanoy556/smart-billing-contract/types"
)

// openStore connects to a scratch database; the tables are dropped afterwards.
func openStore(t *testing.T) *postgres.Store {
	t.Helper()
	dsn := os.Getenv("LEDGER_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("LEDGER_TEST_POSTGRES_DSN not set")
	}
	ctx := context.Background()

	drv := pgdriver.New()
	require.NoError(t, drv.Open(ctx, dsn))
	db, err := grove.Open(drv)
	require.NoError(t, err)

	s := postgres.New(db)
	require.NoError(t, s.Migrate(ctx))
	t.Cleanup(func() {
		_, _ = drv.Exec(ctx, `TRUNCATE ledger_invoices, ledger_pending_returns`)
		_ = s.Close()
	})
	_, err = drv.Exec(ctx, `TRUNCATE ledger_invoices, ledger_pending_returns`)
	require.NoError(t, err)
	return s
}

func TestCommitIsAtomic(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	inv, err := invoice.New(0, invoice.Params{Issuer: "alice", Amount: 100}, time.Now().UTC())
	require.NoError(t, err)
	require.NoError(t, s.CreateInvoice(ctx, inv))

	inv.PaidAmount = 40
	bad := &pending.Return{Account: "bob", Amount: -1}
	require.Error(t, s.Commit(ctx, ledgerstore.Changeset{Invoice: inv, Pending: bad}))

	got, err := s.GetInvoice(ctx, 0)
	require.NoError(t, err)
	assert.True(t, got.PaidAmount.IsZero(), "invoice write rolled back with the failed pending write")

	ok := &pending.Return{Account: "bob", Amount: 5}
	require.NoError(t, s.Commit(ctx, ledgerstore.Changeset{Invoice: inv, Pending: ok}))
	got, err = s.GetInvoice(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, types.Amount(40), got.PaidAmount)
}
