// Package transfer defines the external collaborator that moves value out of
// the ledger to an account. The ledger only ever pays out; incoming funds
// arrive with the payment call itself.
package transfer

import (
	"context"

	"github.com/ledyanoy556/smart-billing-contract/id"
	"github.com/ledyanoy556/smart-billing-contract/types"
)

// Reason says which ledger operation requested a transfer.
type Reason string

const (
	ReasonInvoiceWithdrawal Reason = "invoice_withdrawal"
	ReasonPendingReturn     Reason = "pending_return"
)

// Request is one payout. ID is fresh for every attempt, including retries.
type Request struct {
	ID      id.TransferID
	Account types.Account
	Amount  types.Amount
	Reason  Reason
}

// Transferer moves value to an account. A call either completes fully or
// fails with no effect; any error is reported to the ledger caller as
// ledger.ErrTransferFailed wrapping it.
type Transferer interface {
	Transfer(ctx context.Context, req Request) error
}

// Func adapts a function to Transferer.
type Func func(ctx context.Context, req Request) error

// Transfer implements Transferer.
func (f Func) Transfer(ctx context.Context, req Request) error { return f(ctx, req) }
