package invoice_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledyanoy556/smart-billing-contract/invoice"
	"github.com/ledyanoy556/smart-billing-contract/types"
)

var at = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newInvoice(t *testing.T, amount types.Amount, payer *types.Account) *invoice.Invoice {
	t.Helper()
	inv, err := invoice.New(7, invoice.Params{
		Issuer:   "issuer",
		Payer:    payer,
		Amount:   amount,
		Metadata: "ipfs://desc",
	}, at)
	require.NoError(t, err)
	return inv
}

func TestNew(t *testing.T) {
	due := at.Add(72 * time.Hour)
	inv, err := invoice.New(3, invoice.Params{
		Issuer:  "issuer",
		Payer:   types.AccountPtr("payer"),
		Amount:  100,
		DueDate: &due,
	}, at)
	require.NoError(t, err)

	assert.Equal(t, invoice.ID(3), inv.ID)
	assert.False(t, inv.IsOpen())
	assert.Equal(t, types.Amount(0), inv.PaidAmount)
	assert.False(t, inv.Cancelled)
	assert.Equal(t, due, *inv.DueDate)
	assert.Equal(t, at, inv.CreatedAt)
}

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name   string
		params invoice.Params
		err    error
	}{
		{"zero amount", invoice.Params{Issuer: "i", Amount: 0}, types.ErrInvalidAmount},
		{"negative amount", invoice.Params{Issuer: "i", Amount: -5}, types.ErrInvalidAmount},
		{"empty issuer", invoice.Params{Amount: 10}, types.ErrInvalidInput},
		{"empty payer", invoice.Params{Issuer: "i", Payer: types.AccountPtr(""), Amount: 10}, types.ErrInvalidInput},
		{"amount checked first", invoice.Params{Amount: 0}, types.ErrInvalidAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := invoice.New(0, tt.params, at)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestPayPartialThenFull(t *testing.T) {
	inv := newInvoice(t, 100, nil)

	inv, p, err := inv.Pay("q", 60, at)
	require.NoError(t, err)
	assert.Equal(t, invoice.Payment{Applied: 60, Overpaid: 0, PaidAmount: 60}, p)

	inv, p, err = inv.Pay("r", 40, at)
	require.NoError(t, err)
	assert.Equal(t, invoice.Payment{Applied: 40, Overpaid: 0, PaidAmount: 100}, p)
	assert.Equal(t, types.Amount(0), inv.Remaining())

	_, _, err = inv.Pay("q", 1, at)
	assert.ErrorIs(t, err, types.ErrAlreadyFullyPaid)
}

func TestPayOverpay(t *testing.T) {
	inv := newInvoice(t, 100, types.AccountPtr("p"))

	next, p, err := inv.Pay("p", 150, at)
	require.NoError(t, err)
	assert.Equal(t, types.Amount(100), next.PaidAmount)
	assert.Equal(t, types.Amount(100), p.Applied)
	assert.Equal(t, types.Amount(50), p.Overpaid)
	assert.Equal(t, types.Amount(0), inv.PaidAmount, "receiver must not change")
}

func TestPayRejections(t *testing.T) {
	cancelled := newInvoice(t, 100, nil)
	cancelled, _, err := cancelled.Cancel("issuer", at)
	require.NoError(t, err)

	tests := []struct {
		name  string
		inv   *invoice.Invoice
		payer types.Account
		sent  types.Amount
		err   error
	}{
		{"zero amount", newInvoice(t, 100, nil), "q", 0, types.ErrInvalidAmount},
		{"negative amount", newInvoice(t, 100, nil), "q", -1, types.ErrInvalidAmount},
		{"cancelled", cancelled, "q", 10, types.ErrInvoiceCancelled},
		{"wrong payer", newInvoice(t, 100, types.AccountPtr("p")), "q", 10, types.ErrUnauthorizedPayer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := tt.inv.Pay(tt.payer, tt.sent, at)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestWithdraw(t *testing.T) {
	inv := newInvoice(t, 100, nil)
	inv, _, err := inv.Pay("q", 100, at)
	require.NoError(t, err)

	_, _, err = inv.Withdraw("mallory", at)
	assert.ErrorIs(t, err, types.ErrUnauthorized)

	next, amount, err := inv.Withdraw("issuer", at)
	require.NoError(t, err)
	assert.Equal(t, types.Amount(100), amount)
	assert.Equal(t, types.Amount(0), next.PaidAmount)
	assert.Equal(t, types.Amount(100), next.TotalWithdrawn)

	_, _, err = next.Withdraw("issuer", at)
	assert.ErrorIs(t, err, types.ErrNoFundsToWithdraw)
}

// A withdrawal resets PaidAmount, so the invoice reads as fully unpaid again
// and accepts a second round of payments. TotalCollected keeps the history.
func TestWithdrawResetsRemaining(t *testing.T) {
	inv := newInvoice(t, 100, nil)
	inv, _, err := inv.Pay("q", 100, at)
	require.NoError(t, err)
	inv, _, err = inv.Withdraw("issuer", at)
	require.NoError(t, err)

	assert.Equal(t, types.Amount(100), inv.Remaining())

	inv, _, err = inv.Pay("q", 100, at)
	require.NoError(t, err)
	assert.Equal(t, types.Amount(200), inv.TotalCollected)
}

func TestCancelWithPayerRefunds(t *testing.T) {
	inv := newInvoice(t, 100, types.AccountPtr("p"))
	inv, _, err := inv.Pay("p", 30, at)
	require.NoError(t, err)

	next, refund, err := inv.Cancel("issuer", at)
	require.NoError(t, err)
	require.NotNil(t, refund)
	assert.Equal(t, invoice.Refund{To: "p", Amount: 30}, *refund)
	assert.True(t, next.Cancelled)
	assert.Equal(t, types.Amount(0), next.PaidAmount)
	assert.Equal(t, types.Amount(30), next.TotalRefunded)
	assert.Equal(t, at, *next.CancelledAt)
}

func TestCancelOpenInvoiceKeepsFunds(t *testing.T) {
	inv := newInvoice(t, 100, nil)
	inv, _, err := inv.Pay("q", 30, at)
	require.NoError(t, err)

	next, refund, err := inv.Cancel("issuer", at)
	require.NoError(t, err)
	assert.Nil(t, refund)
	assert.True(t, next.Cancelled)
	assert.Equal(t, types.Amount(30), next.PaidAmount)
}

func TestCancelRejections(t *testing.T) {
	inv := newInvoice(t, 100, nil)

	_, _, err := inv.Cancel("mallory", at)
	assert.ErrorIs(t, err, types.ErrUnauthorized)

	cancelled, _, err := inv.Cancel("issuer", at)
	require.NoError(t, err)
	_, _, err = cancelled.Cancel("issuer", at)
	assert.ErrorIs(t, err, types.ErrAlreadyCancelled)
}

func TestCloneIsDeep(t *testing.T) {
	due := at
	inv := newInvoice(t, 100, types.AccountPtr("p"))
	inv.DueDate = &due

	c := inv.Clone()
	*c.Payer = "other"
	*c.DueDate = at.Add(time.Hour)

	assert.Equal(t, types.Account("p"), *inv.Payer)
	assert.Equal(t, at, *inv.DueDate)
}
