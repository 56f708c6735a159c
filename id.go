package ledger

import (
	"github.com/ledyanoy556/smart-billing-contract/id"
	"github.com/ledyanoy556/smart-billing-contract/invoice"
)

// InvoiceID identifies an invoice. IDs are dense and start at 0.
type InvoiceID = invoice.ID

// EventID identifies a committed event ("evt_" TypeID).
type EventID = id.EventID

// TransferID identifies one transfer attempt ("xfer_" TypeID).
type TransferID = id.TransferID
