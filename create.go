package ledger

import (
	"context"
	"fmt"

	"github.com/ledyanoy556/smart-billing-contract/event"
	"github.com/ledyanoy556/smart-billing-contract/invoice"
	"github.com/ledyanoy556/smart-billing-contract/locker"
	"github.com/ledyanoy556/smart-billing-contract/types"
)

// CreateInvoice records a new invoice and returns its ID. IDs are assigned
// densely from 0 in creation order. A nil p.Payer creates an open invoice.
//
// The next ID is read from the store under locker.NextInvoiceKey on every
// call, so several ledgers over one store and one Locker never collide.
func (l *Ledger) CreateInvoice(ctx context.Context, p invoice.Params) (invoice.ID, error) {
	// Validate before taking the allocation lock.
	if _, err := invoice.New(0, p, l.now()); err != nil {
		return 0, err
	}

	unlock, err := l.locks.Lock(ctx, locker.NextInvoiceKey)
	if err != nil {
		return 0, err
	}
	defer unlock()

	next, err := l.nextInvoiceID(ctx)
	if err != nil {
		return 0, err
	}

	inv, err := invoice.New(next, p, l.now())
	if err != nil {
		return 0, err
	}

	e := &event.InvoiceCreated{
		InvoiceID: inv.ID,
		Issuer:    inv.Issuer,
		Amount:    inv.Amount,
	}
	if inv.Payer != nil {
		e.Payer = types.AccountPtr(*inv.Payer)
	}

	err = l.commit(ctx, func(ctx context.Context) error {
		return l.store.CreateInvoice(ctx, inv)
	}, e)
	if err != nil {
		return 0, fmt.Errorf("ledger: create invoice %s: %w", inv.ID, err)
	}

	l.logger.Info("invoice created",
		"invoice_id", inv.ID,
		"issuer", inv.Issuer,
		"open", inv.IsOpen(),
		"amount", inv.Amount,
	)
	return inv.ID, nil
}

// nextInvoiceID returns the first unused ID in the store.
// Caller holds locker.NextInvoiceKey.
func (l *Ledger) nextInvoiceID(ctx context.Context) (invoice.ID, error) {
	last, ok, err := l.store.LastInvoiceID(ctx)
	if err != nil {
		return 0, fmt.Errorf("ledger: load last invoice id: %w", err)
	}
	if !ok {
		return 0, nil
	}
	return last + 1, nil
}
