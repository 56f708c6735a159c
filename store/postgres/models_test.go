package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledyanoy556/smart-billing-contract/invoice"
	"github.com/ledyanoy556/smart-billing-contract/pending"
	"github.com/ledyanoy556/smart-billing-contract/types"
)

func TestInvoiceModelMapping(t *testing.T) {
	at := time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC)
	due := at.Add(24 * time.Hour)

	tests := []struct {
		name  string
		payer *types.Account
	}{
		{"specific payer", types.AccountPtr("p")},
		{"open", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv, err := invoice.New(12, invoice.Params{
				Issuer: "i", Payer: tt.payer, Amount: 100, DueDate: &due, Metadata: "m",
			}, at)
			require.NoError(t, err)
			inv, _, err = inv.Pay("p", 40, at)
			require.NoError(t, err)

			m := toInvoiceModel(inv)
			assert.Equal(t, int64(12), m.ID)
			assert.Equal(t, int64(40), m.PaidAmount)
			assert.Equal(t, tt.payer == nil, m.Payer == nil)

			assert.Equal(t, inv, fromInvoiceModel(m))
		})
	}
}

func TestPendingReturnModelMapping(t *testing.T) {
	r, err := pending.Zero("a").Credit(25, time.Unix(10, 0).UTC())
	require.NoError(t, err)

	m := toPendingReturnModel(r)
	assert.Equal(t, "a", m.Account)
	assert.Equal(t, int64(25), m.Amount)
	assert.Equal(t, r, fromPendingReturnModel(m))
}

func TestInvoiceIDs(t *testing.T) {
	assert.Equal(t, []invoice.ID{3, 7}, invoiceIDs([]invoiceModel{{ID: 3}, {ID: 7}}))
	assert.Empty(t, invoiceIDs(nil))
}
