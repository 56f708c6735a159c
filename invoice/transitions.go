package invoice

import (
	"time"

	"github.com/ledyanoy556/smart-billing-contract/types"
)

// Pay applies sent from payer. The applied part is capped at the remaining
// amount and the excess is reported as Overpaid for the caller to credit to
// the payer's pending returns.
//
// Checks run in order: amount, cancelled, payer authorization, fully paid.
func (inv *Invoice) Pay(payer types.Account, sent types.Amount, at time.Time) (*Invoice, Payment, error) {
	if !sent.IsPositive() {
		return nil, Payment{}, types.ErrInvalidAmount
	}
	if inv.Cancelled {
		return nil, Payment{}, types.ErrInvoiceCancelled
	}
	if !inv.AcceptsPayer(payer) {
		return nil, Payment{}, types.ErrUnauthorizedPayer
	}

	remaining := inv.Remaining()
	if remaining.IsZero() {
		return nil, Payment{}, types.ErrAlreadyFullyPaid
	}

	applied := sent.Min(remaining)
	collected, err := inv.TotalCollected.Add(applied)
	if err != nil {
		return nil, Payment{}, err
	}

	next := inv.Clone()
	next.PaidAmount += applied // bounded by Amount
	next.TotalCollected = collected
	next.TouchAt(at)

	return next, Payment{
		Applied:    applied,
		Overpaid:   sent - applied,
		PaidAmount: next.PaidAmount,
	}, nil
}

// Withdraw empties the invoice's held funds on behalf of its issuer and
// returns the amount to be transferred.
func (inv *Invoice) Withdraw(caller types.Account, at time.Time) (*Invoice, types.Amount, error) {
	if caller != inv.Issuer {
		return nil, 0, types.ErrUnauthorized
	}
	if !inv.PaidAmount.IsPositive() {
		return nil, 0, types.ErrNoFundsToWithdraw
	}

	amount := inv.PaidAmount
	withdrawn, err := inv.TotalWithdrawn.Add(amount)
	if err != nil {
		return nil, 0, err
	}

	next := inv.Clone()
	next.PaidAmount = 0
	next.TotalWithdrawn = withdrawn
	next.TouchAt(at)
	return next, amount, nil
}

// Cancel marks the invoice cancelled on behalf of its issuer.
//
// Funds held for an invoice with a specific payer are refunded to that payer
// (the returned Refund is non-nil) and PaidAmount drops to 0. Funds held for
// an open invoice stay on the record: there is no single claimant, so no
// refund is produced and the issuer can still withdraw them.
func (inv *Invoice) Cancel(caller types.Account, at time.Time) (*Invoice, *Refund, error) {
	if caller != inv.Issuer {
		return nil, nil, types.ErrUnauthorized
	}
	if inv.Cancelled {
		return nil, nil, types.ErrAlreadyCancelled
	}

	next := inv.Clone()
	next.Cancelled = true
	cancelledAt := at.UTC()
	next.CancelledAt = &cancelledAt
	next.TouchAt(at)

	if inv.IsOpen() || !inv.PaidAmount.IsPositive() {
		return next, nil, nil
	}

	refunded, err := inv.TotalRefunded.Add(inv.PaidAmount)
	if err != nil {
		return nil, nil, err
	}
	refund := &Refund{To: *inv.Payer, Amount: inv.PaidAmount}
	next.PaidAmount = 0
	next.TotalRefunded = refunded
	return next, refund, nil
}
