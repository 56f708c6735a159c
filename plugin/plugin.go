// Package plugin provides an extensible plugin system for the ledger.
// Plugins hook into lifecycle and domain events; their failures are logged
// and never reach the ledger caller.
package plugin

import (
	"context"

	"github.com/ledyanoy556/smart-billing-contract/event"
	"github.com/ledyanoy556/smart-billing-contract/transfer"
)

// Plugin is the base interface that all plugins must implement.
type Plugin interface {
	Name() string
}

// ──────────────────────────────────────────────────
// Lifecycle hooks
// ──────────────────────────────────────────────────

// OnInit is called when the ledger starts. l is the *ledger.Ledger.
type OnInit interface {
	Plugin
	OnInit(ctx context.Context, l any) error
}

// OnShutdown is called when the ledger stops.
type OnShutdown interface {
	Plugin
	OnShutdown(ctx context.Context) error
}

// ──────────────────────────────────────────────────
// Invoice hooks
// ──────────────────────────────────────────────────

// OnInvoiceCreated is called after an invoice is created.
type OnInvoiceCreated interface {
	Plugin
	OnInvoiceCreated(ctx context.Context, e *event.InvoiceCreated) error
}

// OnInvoicePaid is called after a payment is applied.
type OnInvoicePaid interface {
	Plugin
	OnInvoicePaid(ctx context.Context, e *event.InvoicePaid) error
}

// OnInvoiceCancelled is called after an invoice is cancelled.
type OnInvoiceCancelled interface {
	Plugin
	OnInvoiceCancelled(ctx context.Context, e *event.InvoiceCancelled) error
}

// OnInvoiceWithdrawn is called after an issuer withdrawal completes.
type OnInvoiceWithdrawn interface {
	Plugin
	OnInvoiceWithdrawn(ctx context.Context, e *event.InvoiceWithdrawn) error
}

// ──────────────────────────────────────────────────
// Pending-return hooks
// ──────────────────────────────────────────────────

// OnPendingReturnWithdrawn is called after an account drains its pending returns.
type OnPendingReturnWithdrawn interface {
	Plugin
	OnPendingReturnWithdrawn(ctx context.Context, e *event.PendingReturnWithdrawn) error
}

// ──────────────────────────────────────────────────
// Transfer hooks
// ──────────────────────────────────────────────────

// OnTransferFailed is called when a transfer failed and the provisional
// state was rolled back. It is not a domain event and carries no sequence.
type OnTransferFailed interface {
	Plugin
	OnTransferFailed(ctx context.Context, req transfer.Request, cause error) error
}
