package postgres

import (
	"time"

	"github.com/xraph/grove"

	"github.com/ledyanoy556/smart-billing-contract/invoice"
	"github.com/ledyanoy556/smart-billing-contract/pending"
	"github.com/ledyanoy556/smart-billing-contract/types"
)

// ==================== Invoice models ====================

type invoiceModel struct {
	grove.BaseModel `grove:"table:ledger_invoices"`

	ID             int64      `grove:"id,pk"`
	Issuer         string     `grove:"issuer"`
	Payer          *string    `grove:"payer"`
	Amount         int64      `grove:"amount"`
	PaidAmount     int64      `grove:"paid_amount"`
	DueDate        *time.Time `grove:"due_date"`
	Cancelled      bool       `grove:"cancelled"`
	CancelledAt    *time.Time `grove:"cancelled_at"`
	Metadata       string     `grove:"metadata"`
	TotalCollected int64      `grove:"total_collected"`
	TotalWithdrawn int64      `grove:"total_withdrawn"`
	TotalRefunded  int64      `grove:"total_refunded"`
	CreatedAt      time.Time  `grove:"created_at"`
	UpdatedAt      time.Time  `grove:"updated_at"`
}

func toInvoiceModel(inv *invoice.Invoice) *invoiceModel {
	m := &invoiceModel{
		ID:             int64(inv.ID),
		Issuer:         inv.Issuer.String(),
		Amount:         inv.Amount.Int64(),
		PaidAmount:     inv.PaidAmount.Int64(),
		DueDate:        inv.DueDate,
		Cancelled:      inv.Cancelled,
		CancelledAt:    inv.CancelledAt,
		Metadata:       inv.Metadata,
		TotalCollected: inv.TotalCollected.Int64(),
		TotalWithdrawn: inv.TotalWithdrawn.Int64(),
		TotalRefunded:  inv.TotalRefunded.Int64(),
		CreatedAt:      inv.CreatedAt,
		UpdatedAt:      inv.UpdatedAt,
	}
	if inv.Payer != nil {
		payer := inv.Payer.String()
		m.Payer = &payer
	}
	return m
}

func fromInvoiceModel(m *invoiceModel) *invoice.Invoice {
	inv := &invoice.Invoice{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:             invoice.ID(m.ID),
		Issuer:         types.Account(m.Issuer),
		Amount:         types.Amount(m.Amount),
		PaidAmount:     types.Amount(m.PaidAmount),
		DueDate:        m.DueDate,
		Cancelled:      m.Cancelled,
		CancelledAt:    m.CancelledAt,
		Metadata:       m.Metadata,
		TotalCollected: types.Amount(m.TotalCollected),
		TotalWithdrawn: types.Amount(m.TotalWithdrawn),
		TotalRefunded:  types.Amount(m.TotalRefunded),
	}
	if m.Payer != nil {
		inv.Payer = types.AccountPtr(types.Account(*m.Payer))
	}
	return inv
}

// ==================== Pending return models ====================

type pendingReturnModel struct {
	grove.BaseModel `grove:"table:ledger_pending_returns"`

	Account   string    `grove:"account,pk"`
	Amount    int64     `grove:"amount"`
	CreatedAt time.Time `grove:"created_at"`
	UpdatedAt time.Time `grove:"updated_at"`
}

func toPendingReturnModel(r *pending.Return) *pendingReturnModel {
	return &pendingReturnModel{
		Account:   r.Account.String(),
		Amount:    r.Amount.Int64(),
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func fromPendingReturnModel(m *pendingReturnModel) *pending.Return {
	return &pending.Return{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		Account: types.Account(m.Account),
		Amount:  types.Amount(m.Amount),
	}
}
