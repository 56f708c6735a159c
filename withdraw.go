package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/ledyanoy556/smart-billing-contract/event"
	"github.com/ledyanoy556/smart-billing-contract/id"
	"github.com/ledyanoy556/smart-billing-contract/invoice"
	"github.com/ledyanoy556/smart-billing-contract/locker"
	"github.com/ledyanoy556/smart-billing-contract/store"
	"github.com/ledyanoy556/smart-billing-contract/transfer"
	"github.com/ledyanoy556/smart-billing-contract/types"
)

var errNoTransferer = errors.New("ledger: no transferer configured")

// Withdraw transfers the funds held for invoice invID to its issuer and
// returns the amount moved.
//
// paid_amount is written as 0 before the transfer starts. If the transfer
// fails the previous record is written back and the error matches
// ErrTransferFailed; the call can be retried. The invoice stays locked for
// the whole call, so no reader sees the provisional record.
func (l *Ledger) Withdraw(ctx context.Context, invID invoice.ID, caller types.Account) (types.Amount, error) {
	if caller.IsZero() {
		return 0, &ValidationError{Field: "caller", Message: "must not be empty"}
	}

	unlock, err := l.locks.Lock(ctx, locker.InvoiceKey(invID))
	if err != nil {
		return 0, err
	}
	defer unlock()

	inv, err := l.store.GetInvoice(ctx, invID)
	if err != nil {
		return 0, err
	}

	next, amount, err := inv.Withdraw(caller, l.now())
	if err != nil {
		return 0, err
	}

	// Validated: from here on the call runs to completion.
	ctx = context.WithoutCancel(ctx)

	if err := l.store.Commit(ctx, store.Changeset{Invoice: next}); err != nil {
		return 0, err
	}

	req := transfer.Request{
		ID:      id.NewTransferID(),
		Account: caller,
		Amount:  amount,
		Reason:  transfer.ReasonInvoiceWithdrawal,
	}
	if err := l.payout(ctx, req, store.Changeset{Invoice: inv}); err != nil {
		return 0, err
	}

	err = l.commit(ctx, nil, &event.InvoiceWithdrawn{
		InvoiceID:  invID,
		Issuer:     caller,
		Amount:     amount,
		TransferID: req.ID,
	})
	if err != nil {
		return 0, err
	}

	l.logger.Info("invoice withdrawn",
		"invoice_id", invID,
		"issuer", caller,
		"amount", amount,
		"transfer_id", req.ID,
	)
	return amount, nil
}

// payout runs req against the transferer. The provisional state is already
// written; on failure undo restores the pre-images.
func (l *Ledger) payout(ctx context.Context, req transfer.Request, undo store.Changeset) error {
	cause := errNoTransferer
	if l.transfers != nil {
		cause = l.transfers.Transfer(ctx, req)
	}
	if cause == nil {
		return nil
	}

	if rbErr := l.store.Commit(ctx, undo); rbErr != nil {
		l.logger.Error("ledger: rollback after failed transfer",
			"transfer_id", req.ID,
			"account", req.Account,
			"amount", req.Amount,
			"error", cause,
			"rollback_error", rbErr,
		)
		return fmt.Errorf("%w: %w: %w (rollback: %w)", ErrRollbackFailed, ErrTransferFailed, cause, rbErr)
	}

	l.logger.Warn("transfer failed, state restored",
		"transfer_id", req.ID,
		"reason", req.Reason,
		"account", req.Account,
		"amount", req.Amount,
		"error", cause,
	)
	l.publish(ctx, "transfer_failed", func(ctx context.Context) {
		l.plugins.EmitTransferFailed(ctx, req, cause)
	})
	return fmt.Errorf("%w: %w", ErrTransferFailed, cause)
}
