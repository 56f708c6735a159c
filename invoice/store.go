package invoice

import (
	"context"

	"github.com/ledyanoy556/smart-billing-contract/types"
)

// Store is the invoice half of the ledger's backing store. Records are
// written through store.Store.Commit; this interface covers creation and reads.
type Store interface {
	// CreateInvoice inserts a new record and appends its ID to the issuer
	// index and, when the invoice has a payer, to the payer index.
	CreateInvoice(ctx context.Context, inv *Invoice) error

	// GetInvoice returns a copy of the record or ErrInvoiceNotFound.
	GetInvoice(ctx context.Context, invID ID) (*Invoice, error)

	// LastInvoiceID returns the highest allocated ID; ok is false when the
	// store holds no invoices.
	LastInvoiceID(ctx context.Context) (last ID, ok bool, err error)

	// ListInvoiceIDsByIssuer returns the issuer index in creation order.
	ListInvoiceIDsByIssuer(ctx context.Context, issuer types.Account) ([]ID, error)

	// ListInvoiceIDsByPayer returns the payer index in creation order.
	ListInvoiceIDsByPayer(ctx context.Context, payer types.Account) ([]ID, error)
}
