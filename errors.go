package ledger

import (
	"errors"

	"github.com/ledyanoy556/smart-billing-contract/types"
)

// Sentinel errors for common failure scenarios. The domain errors are
// defined in the types package so invoice and pending can return them; the
// values here are the same, so errors.Is matches either name.
var (
	// General errors
	ErrInvalidInput   = types.ErrInvalidInput
	ErrInvalidAmount  = types.ErrInvalidAmount
	ErrAmountOverflow = types.ErrAmountOverflow

	// Invoice errors
	ErrInvoiceNotFound   = types.ErrInvoiceNotFound
	ErrInvoiceCancelled  = types.ErrInvoiceCancelled
	ErrUnauthorizedPayer = types.ErrUnauthorizedPayer
	ErrAlreadyFullyPaid  = types.ErrAlreadyFullyPaid
	ErrUnauthorized      = types.ErrUnauthorized
	ErrNoFundsToWithdraw = types.ErrNoFundsToWithdraw
	ErrAlreadyCancelled  = types.ErrAlreadyCancelled

	// Pending-return errors
	ErrNoPendingReturns = types.ErrNoPendingReturns

	// Transfer errors
	ErrTransferFailed = types.ErrTransferFailed
	ErrRollbackFailed = errors.New("ledger: rollback after failed transfer did not complete")

	// Store errors
	ErrStoreNotReady = errors.New("ledger: store not ready")
	ErrStoreClosed   = errors.New("ledger: store is closed")
)

// ValidationError represents a validation failure with details.
// It matches ErrInvalidInput with errors.Is.
type ValidationError = types.FieldError

// IsNotFound returns true if the error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrInvoiceNotFound)
}

// IsAuthorization returns true if the caller was not allowed to perform the operation.
func IsAuthorization(err error) bool {
	return errors.Is(err, ErrUnauthorized) ||
		errors.Is(err, ErrUnauthorizedPayer)
}

// IsRetryable returns true if the error is temporary and the operation can be retried.
// A failed transfer leaves state unchanged, so the same call may be repeated.
func IsRetryable(err error) bool {
	if errors.Is(err, ErrRollbackFailed) {
		return false
	}
	return errors.Is(err, ErrTransferFailed) ||
		errors.Is(err, ErrStoreNotReady)
}
