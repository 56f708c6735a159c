package pending_test

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledyanoy556/smart-billing-contract/pending"
	"github.com/ledyanoy556/smart-billing-contract/types"
)

var at = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

func TestCreditAccumulates(t *testing.T) {
	r := pending.Zero("alice")

	r1, err := r.Credit(50, at)
	require.NoError(t, err)
	r2, err := r1.Credit(30, at.Add(time.Minute))
	require.NoError(t, err)

	assert.Equal(t, types.Amount(80), r2.Amount)
	assert.Equal(t, at, r2.CreatedAt)
	assert.Equal(t, at.Add(time.Minute), r2.UpdatedAt)
	assert.Equal(t, types.Amount(0), r.Amount, "receiver must not change")
}

func TestCreditRejectsNonPositive(t *testing.T) {
	_, err := pending.Zero("alice").Credit(0, at)
	assert.ErrorIs(t, err, types.ErrInvalidAmount)
}

func TestCreditOverflow(t *testing.T) {
	r := &pending.Return{Account: "alice", Amount: math.MaxInt64}
	_, err := r.Credit(1, at)
	assert.ErrorIs(t, err, types.ErrAmountOverflow)
}

func TestDrain(t *testing.T) {
	r := &pending.Return{Account: "alice", Amount: 42}

	next, owed, err := r.Drain(at)
	require.NoError(t, err)
	assert.Equal(t, types.Amount(42), owed)
	assert.True(t, next.Amount.IsZero())
	assert.Equal(t, types.Amount(42), r.Amount)

	_, _, err = next.Drain(at)
	assert.ErrorIs(t, err, types.ErrNoPendingReturns)
}
