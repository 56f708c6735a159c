package types

import "errors"

// Domain sentinels shared by the leaf packages. The root ledger package
// re-exports them under the same names.
var (
	ErrInvalidInput      = errors.New("ledger: invalid input")
	ErrInvalidAmount     = errors.New("ledger: invalid amount")
	ErrAmountOverflow    = errors.New("ledger: amount overflow")
	ErrInvoiceNotFound   = errors.New("ledger: invoice not found")
	ErrInvoiceCancelled  = errors.New("ledger: invoice is cancelled")
	ErrUnauthorizedPayer = errors.New("ledger: payer not authorized for invoice")
	ErrAlreadyFullyPaid  = errors.New("ledger: invoice already fully paid")
	ErrUnauthorized      = errors.New("ledger: caller is not the invoice issuer")
	ErrNoFundsToWithdraw = errors.New("ledger: no funds to withdraw")
	ErrAlreadyCancelled  = errors.New("ledger: invoice already cancelled")
	ErrNoPendingReturns  = errors.New("ledger: no pending returns")
	ErrTransferFailed    = errors.New("ledger: transfer failed")
)

// FieldError is a shape validation failure for a single input field.
// It matches ErrInvalidInput with errors.Is.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return "ledger: validation failed for " + e.Field + ": " + e.Message
}

// Unwrap lets errors.Is(err, ErrInvalidInput) succeed.
func (e *FieldError) Unwrap() error { return ErrInvalidInput }
