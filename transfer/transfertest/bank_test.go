package transfertest_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledyanoy556/smart-billing-contract/id"
	"github.com/ledyanoy556/smart-billing-contract/transfer"
	"github.com/ledyanoy556/smart-billing-contract/transfer/transfertest"
)

func TestBank(t *testing.T) {
	ctx := context.Background()
	b := transfertest.NewBank()

	req := transfer.Request{ID: id.NewTransferID(), Account: "a", Amount: 40}
	require.NoError(t, b.Transfer(ctx, req))
	assert.EqualValues(t, 40, b.Balance("a"))

	b.FailNext(1, nil)
	err := b.Transfer(ctx, req)
	assert.ErrorIs(t, err, transfertest.ErrDeclined)
	assert.EqualValues(t, 40, b.Balance("a"))

	require.NoError(t, b.Transfer(ctx, req))
	assert.EqualValues(t, 80, b.Balance("a"))
	assert.Len(t, b.Requests(), 3)
}

func TestBankCustomFailure(t *testing.T) {
	boom := errors.New("boom")
	b := transfertest.NewBank()
	b.FailNext(2, boom)

	for range 2 {
		assert.ErrorIs(t, b.Transfer(context.Background(), transfer.Request{Account: "a", Amount: 1}), boom)
	}
	assert.NoError(t, b.Transfer(context.Background(), transfer.Request{Account: "a", Amount: 1}))
}

func TestFuncAdapter(t *testing.T) {
	var got transfer.Request
	var tr transfer.Transferer = transfer.Func(func(_ context.Context, req transfer.Request) error {
		got = req
		return nil
	})

	req := transfer.Request{Account: "a", Amount: 5, Reason: transfer.ReasonPendingReturn}
	require.NoError(t, tr.Transfer(context.Background(), req))
	assert.Equal(t, req, got)
}
