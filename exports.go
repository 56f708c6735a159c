package ledger

import (
	"github.com/ledyanoy556/smart-billing-contract/invoice"
	"github.com/ledyanoy556/smart-billing-contract/types"
)

// Re-export common types for convenience so users don't have to import the
// types and invoice packages.

// Amount is re-exported from types package.
type Amount = types.Amount

// Account is re-exported from types package.
type Account = types.Account

// Entity is re-exported from types package.
type Entity = types.Entity

// Invoice is re-exported from invoice package.
type Invoice = invoice.Invoice

// InvoiceParams is re-exported from invoice package.
type InvoiceParams = invoice.Params

// Payment is re-exported from invoice package.
type Payment = invoice.Payment

// Refund is re-exported from invoice package.
type Refund = invoice.Refund

// Re-export constructors
var (
	AccountPtr = types.AccountPtr
	NewEntity  = types.NewEntity
	SumAmounts = types.Sum
)
