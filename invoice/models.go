// Package invoice defines the invoice record and the pure state transitions
// applied to it by payments, withdrawals and cancellations.
//
// Transitions never mutate the receiver. Each one validates fully and then
// returns a new image of the invoice, so a failed call has no side effects and
// the caller decides when (and whether) the new image is committed.
package invoice

import (
	"strconv"
	"time"

	"github.com/ledyanoy556/smart-billing-contract/types"
)

// ID identifies an invoice. IDs are dense and monotonic starting at 0.
type ID uint64

// String implements fmt.Stringer.
func (i ID) String() string { return strconv.FormatUint(uint64(i), 10) }

// Invoice is an amount owed by a payer (or by anyone, when open) to an issuer.
type Invoice struct {
	types.Entity
	ID     ID             `json:"id"`
	Issuer types.Account  `json:"issuer"`
	Payer  *types.Account `json:"payer,omitempty"` // nil = open invoice
	Amount types.Amount   `json:"amount"`

	// PaidAmount is what the ledger currently holds for this invoice. It is
	// reset to 0 by a withdrawal, so it measures withdrawable funds as well as
	// progress toward being paid. Remaining() inherits that ambiguity: a fully
	// paid and withdrawn invoice reports its whole amount as remaining again.
	PaidAmount types.Amount `json:"paid_amount"`

	DueDate     *time.Time `json:"due_date,omitempty"`
	Cancelled   bool       `json:"cancelled"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
	Metadata    string     `json:"metadata,omitempty"`

	// Informational counters. No rule reads them.
	TotalCollected types.Amount `json:"total_collected"`
	TotalWithdrawn types.Amount `json:"total_withdrawn"`
	TotalRefunded  types.Amount `json:"total_refunded"`
}

// Params are the caller-supplied fields of a new invoice.
type Params struct {
	Issuer   types.Account
	Payer    *types.Account
	Amount   types.Amount
	DueDate  *time.Time
	Metadata string
}

// New builds invoice invID from p. It fails with ErrInvalidAmount when the
// amount is not positive and ErrInvalidInput for empty account identifiers.
func New(invID ID, p Params, at time.Time) (*Invoice, error) {
	if !p.Amount.IsPositive() {
		return nil, types.ErrInvalidAmount
	}
	if p.Issuer.IsZero() {
		return nil, invalid("issuer")
	}
	if p.Payer != nil && p.Payer.IsZero() {
		return nil, invalid("payer")
	}

	inv := &Invoice{
		Entity:   types.NewEntityAt(at),
		ID:       invID,
		Issuer:   p.Issuer,
		Amount:   p.Amount,
		Metadata: p.Metadata,
	}
	if p.Payer != nil {
		inv.Payer = types.AccountPtr(*p.Payer)
	}
	if p.DueDate != nil {
		due := p.DueDate.UTC()
		inv.DueDate = &due
	}
	return inv, nil
}

// IsOpen reports whether any account may pay the invoice.
func (inv *Invoice) IsOpen() bool { return inv.Payer == nil }

// Remaining returns max(Amount - PaidAmount, 0).
func (inv *Invoice) Remaining() types.Amount {
	return inv.Amount.Sub(inv.PaidAmount)
}

// AcceptsPayer reports whether account is allowed to pay the invoice.
func (inv *Invoice) AcceptsPayer(account types.Account) bool {
	return inv.Payer == nil || *inv.Payer == account
}

// Clone returns a deep copy. Stores hand out clones so callers never alias
// stored state.
func (inv *Invoice) Clone() *Invoice {
	if inv == nil {
		return nil
	}
	c := *inv
	if inv.Payer != nil {
		c.Payer = types.AccountPtr(*inv.Payer)
	}
	if inv.DueDate != nil {
		d := *inv.DueDate
		c.DueDate = &d
	}
	if inv.CancelledAt != nil {
		t := *inv.CancelledAt
		c.CancelledAt = &t
	}
	return &c
}

// Payment is the outcome of applying a payment to an invoice.
type Payment struct {
	Applied    types.Amount `json:"applied"`
	Overpaid   types.Amount `json:"overpaid"`
	PaidAmount types.Amount `json:"paid_amount"`
}

// Refund describes funds routed to a payer's pending returns on cancellation.
type Refund struct {
	To     types.Account `json:"to"`
	Amount types.Amount  `json:"amount"`
}

func invalid(field string) error {
	return &types.FieldError{Field: field, Message: "must not be empty"}
}
