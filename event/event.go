// Package event defines the domain events the ledger emits, one per
// successful mutating call, in commit order.
package event

import (
	"time"

	"github.com/ledyanoy556/smart-billing-contract/id"
	"github.com/ledyanoy556/smart-billing-contract/invoice"
	"github.com/ledyanoy556/smart-billing-contract/types"
)

// Type names an event kind.
type Type string

const (
	TypeInvoiceCreated         Type = "invoice.created"
	TypeInvoicePaid            Type = "invoice.paid"
	TypeInvoiceCancelled       Type = "invoice.cancelled"
	TypeInvoiceWithdrawn       Type = "invoice.withdrawn"
	TypePendingReturnWithdrawn Type = "pending_return.withdrawn"
)

// Meta is carried by every event. Seq is assigned at commit time and grows
// by one per event across the whole ledger.
type Meta struct {
	ID  id.EventID `json:"id"`
	Seq uint64     `json:"seq"`
	At  time.Time  `json:"at"`
}

// Event is implemented by every event type.
type Event interface {
	EventType() Type
	EventMeta() Meta
}

// InvoiceCreated is emitted once an invoice record and its index entries exist.
type InvoiceCreated struct {
	Meta
	InvoiceID invoice.ID     `json:"invoice_id"`
	Issuer    types.Account  `json:"issuer"`
	Payer     *types.Account `json:"payer,omitempty"`
	Amount    types.Amount   `json:"amount"`
}

// InvoicePaid is emitted after a payment was applied. Overpaid is the part
// credited to the payer's pending returns.
type InvoicePaid struct {
	Meta
	InvoiceID     invoice.ID    `json:"invoice_id"`
	Payer         types.Account `json:"payer"`
	Applied       types.Amount  `json:"applied"`
	NewPaidAmount types.Amount  `json:"new_paid_amount"`
	Overpaid      types.Amount  `json:"overpaid"`
}

// InvoiceCancelled is emitted when an issuer cancels an invoice. Refund is
// set when held funds were moved to the payer's pending returns.
type InvoiceCancelled struct {
	Meta
	InvoiceID invoice.ID      `json:"invoice_id"`
	Refund    *invoice.Refund `json:"refund,omitempty"`
}

// InvoiceWithdrawn is emitted after the issuer's funds were transferred.
type InvoiceWithdrawn struct {
	Meta
	InvoiceID  invoice.ID    `json:"invoice_id"`
	Issuer     types.Account `json:"issuer"`
	Amount     types.Amount  `json:"amount"`
	TransferID id.TransferID `json:"transfer_id"`
}

// PendingReturnWithdrawn is emitted after an account drained its pending
// returns through a transfer.
type PendingReturnWithdrawn struct {
	Meta
	Account    types.Account `json:"account"`
	Amount     types.Amount  `json:"amount"`
	TransferID id.TransferID `json:"transfer_id"`
}

func (m Meta) EventMeta() Meta { return m }

func (InvoiceCreated) EventType() Type         { return TypeInvoiceCreated }
func (InvoicePaid) EventType() Type            { return TypeInvoicePaid }
func (InvoiceCancelled) EventType() Type       { return TypeInvoiceCancelled }
func (InvoiceWithdrawn) EventType() Type       { return TypeInvoiceWithdrawn }
func (PendingReturnWithdrawn) EventType() Type { return TypePendingReturnWithdrawn }

// Stamp sets the Meta of e, which must be a pointer to one of the event
// types above, and returns it.
func Stamp(e Event, m Meta) Event {
	switch v := e.(type) {
	case *InvoiceCreated:
		v.Meta = m
	case *InvoicePaid:
		v.Meta = m
	case *InvoiceCancelled:
		v.Meta = m
	case *InvoiceWithdrawn:
		v.Meta = m
	case *PendingReturnWithdrawn:
		v.Meta = m
	default:
		panic("event: cannot stamp " + string(e.EventType()))
	}
	return e
}
