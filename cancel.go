package ledger

import (
	"context"

	"github.com/ledyanoy556/smart-billing-contract/event"
	"github.com/ledyanoy556/smart-billing-contract/invoice"
	"github.com/ledyanoy556/smart-billing-contract/locker"
	"github.com/ledyanoy556/smart-billing-contract/store"
	"github.com/ledyanoy556/smart-billing-contract/types"
)

// CancelInvoice cancels invoice invID on behalf of its issuer.
//
// Funds held for an invoice addressed to a specific payer move to that
// payer's pending returns. Funds held for an open invoice stay on the record
// and remain withdrawable by the issuer.
func (l *Ledger) CancelInvoice(ctx context.Context, invID invoice.ID, caller types.Account) error {
	if caller.IsZero() {
		return &ValidationError{Field: "caller", Message: "must not be empty"}
	}

	unlock, err := l.locks.Lock(ctx, locker.InvoiceKey(invID))
	if err != nil {
		return err
	}
	defer unlock()

	inv, err := l.store.GetInvoice(ctx, invID)
	if err != nil {
		return err
	}

	at := l.now()
	next, refund, err := inv.Cancel(caller, at)
	if err != nil {
		return err
	}

	cs := store.Changeset{Invoice: next}
	undo := store.Changeset{Invoice: inv}
	if refund != nil {
		unlockAccount, err := l.locks.Lock(ctx, locker.AccountKey(refund.To))
		if err != nil {
			return err
		}
		defer unlockAccount()

		balance, err := l.store.GetPendingReturn(ctx, refund.To)
		if err != nil {
			return err
		}
		credited, err := balance.Credit(refund.Amount, at)
		if err != nil {
			return err
		}
		cs.Pending = credited
		undo.Pending = balance
	}

	err = l.commit(ctx, l.writer(cs, undo), &event.InvoiceCancelled{
		InvoiceID: invID,
		Refund:    refund,
	})
	if err != nil {
		return err
	}

	if refund != nil {
		l.logger.Info("invoice cancelled",
			"invoice_id", invID,
			"refund_to", refund.To,
			"refund_amount", refund.Amount,
		)
	} else {
		l.logger.Info("invoice cancelled",
			"invoice_id", invID,
			"held_amount", next.PaidAmount,
		)
	}
	return nil
}
