package ledger

import (
	"context"

	"github.com/ledyanoy556/smart-billing-contract/event"
	"github.com/ledyanoy556/smart-billing-contract/invoice"
	"github.com/ledyanoy556/smart-billing-contract/locker"
	"github.com/ledyanoy556/smart-billing-contract/store"
	"github.com/ledyanoy556/smart-billing-contract/types"
)

// PayInvoice applies amount sent by payer to invoice invID.
//
// The applied part is capped at the remaining amount; any excess is credited
// to payer's pending returns in the same commit. Every check runs before
// anything is written.
func (l *Ledger) PayInvoice(ctx context.Context, invID invoice.ID, payer types.Account, amount types.Amount) (invoice.Payment, error) {
	if !amount.IsPositive() {
		return invoice.Payment{}, ErrInvalidAmount
	}
	if payer.IsZero() {
		return invoice.Payment{}, &ValidationError{Field: "payer", Message: "must not be empty"}
	}

	unlock, err := locker.LockAll(ctx, l.locks, locker.InvoiceKey(invID), locker.AccountKey(payer))
	if err != nil {
		return invoice.Payment{}, err
	}
	defer unlock()

	inv, err := l.store.GetInvoice(ctx, invID)
	if err != nil {
		return invoice.Payment{}, err
	}

	at := l.now()
	next, payment, err := inv.Pay(payer, amount, at)
	if err != nil {
		return invoice.Payment{}, err
	}

	cs := store.Changeset{Invoice: next}
	undo := store.Changeset{Invoice: inv}
	if payment.Overpaid.IsPositive() {
		balance, err := l.store.GetPendingReturn(ctx, payer)
		if err != nil {
			return invoice.Payment{}, err
		}
		credited, err := balance.Credit(payment.Overpaid, at)
		if err != nil {
			return invoice.Payment{}, err
		}
		cs.Pending = credited
		undo.Pending = balance
	}

	err = l.commit(ctx, l.writer(cs, undo), &event.InvoicePaid{
		InvoiceID:     invID,
		Payer:         payer,
		Applied:       payment.Applied,
		NewPaidAmount: payment.PaidAmount,
		Overpaid:      payment.Overpaid,
	})
	if err != nil {
		return invoice.Payment{}, err
	}

	l.logger.Info("invoice paid",
		"invoice_id", invID,
		"payer", payer,
		"applied", payment.Applied,
		"overpaid", payment.Overpaid,
		"paid_amount", payment.PaidAmount,
	)
	return payment, nil
}
