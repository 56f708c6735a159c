// Package audithook bridges ledger events to an audit trail backend.
//
// It defines a local Recorder interface so the package does not depend on
// any particular audit store. Callers inject a RecorderFunc adapter at
// wiring time.
package audithook

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ledyanoy556/smart-billing-contract/event"
	"github.com/ledyanoy556/smart-billing-contract/plugin"
	"github.com/ledyanoy556/smart-billing-contract/transfer"
)

// Compile-time interface checks.
var (
	_ plugin.Plugin                   = (*Extension)(nil)
	_ plugin.OnInvoiceCreated         = (*Extension)(nil)
	_ plugin.OnInvoicePaid            = (*Extension)(nil)
	_ plugin.OnInvoiceCancelled       = (*Extension)(nil)
	_ plugin.OnInvoiceWithdrawn       = (*Extension)(nil)
	_ plugin.OnPendingReturnWithdrawn = (*Extension)(nil)
	_ plugin.OnTransferFailed         = (*Extension)(nil)
)

// Recorder is the interface that audit backends must implement.
type Recorder interface {
	Record(ctx context.Context, event *AuditEvent) error
}

// AuditEvent is a single audit trail entry.
type AuditEvent struct {
	Action     string         `json:"action"`
	Resource   string         `json:"resource"`
	Category   string         `json:"category"`
	ResourceID string         `json:"resource_id,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	Outcome    string         `json:"outcome"`
	Severity   string         `json:"severity"`
	Reason     string         `json:"reason,omitempty"`
}

// RecorderFunc is an adapter to use a plain function as a Recorder.
type RecorderFunc func(ctx context.Context, event *AuditEvent) error

// Record implements Recorder.
func (f RecorderFunc) Record(ctx context.Context, event *AuditEvent) error {
	return f(ctx, event)
}

// Extension bridges ledger events to an audit trail backend.
type Extension struct {
	recorder Recorder
	enabled  map[string]bool // nil = all enabled
	logger   *slog.Logger
}

// New creates an Extension that emits audit events through the provided Recorder.
func New(r Recorder, opts ...Option) *Extension {
	e := &Extension{
		recorder: r,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name implements plugin.Plugin.
func (e *Extension) Name() string { return "audit-hook" }

// ──────────────────────────────────────────────────
// Invoice hooks
// ──────────────────────────────────────────────────

// OnInvoiceCreated implements plugin.OnInvoiceCreated.
func (e *Extension) OnInvoiceCreated(ctx context.Context, ev *event.InvoiceCreated) error {
	payer := ""
	if ev.Payer != nil {
		payer = ev.Payer.String()
	}
	return e.record(ctx, ActionInvoiceCreated, SeverityInfo, OutcomeSuccess,
		ResourceInvoice, ev.InvoiceID.String(), CategoryBilling, nil,
		"seq", ev.Seq,
		"issuer", ev.Issuer.String(),
		"payer", payer,
		"amount", ev.Amount.Int64(),
	)
}

// OnInvoicePaid implements plugin.OnInvoicePaid. An overpayment is recorded
// as a partial outcome under its own action.
func (e *Extension) OnInvoicePaid(ctx context.Context, ev *event.InvoicePaid) error {
	action, outcome := ActionInvoicePaid, OutcomeSuccess
	if ev.Overpaid > 0 {
		action, outcome = ActionInvoiceOverpaid, OutcomePartial
	}
	return e.record(ctx, action, SeverityInfo, outcome,
		ResourceInvoice, ev.InvoiceID.String(), CategoryPayment, nil,
		"seq", ev.Seq,
		"payer", ev.Payer.String(),
		"applied", ev.Applied.Int64(),
		"paid_amount", ev.NewPaidAmount.Int64(),
		"overpaid", ev.Overpaid.Int64(),
	)
}

// OnInvoiceCancelled implements plugin.OnInvoiceCancelled.
func (e *Extension) OnInvoiceCancelled(ctx context.Context, ev *event.InvoiceCancelled) error {
	kv := []any{"seq", ev.Seq}
	if ev.Refund != nil {
		kv = append(kv, "refund_to", ev.Refund.To.String(), "refund_amount", ev.Refund.Amount.Int64())
	}
	return e.record(ctx, ActionInvoiceCancelled, SeverityWarning, OutcomeSuccess,
		ResourceInvoice, ev.InvoiceID.String(), CategoryBilling, nil,
		kv...,
	)
}

// OnInvoiceWithdrawn implements plugin.OnInvoiceWithdrawn.
func (e *Extension) OnInvoiceWithdrawn(ctx context.Context, ev *event.InvoiceWithdrawn) error {
	return e.record(ctx, ActionInvoiceWithdrawn, SeverityInfo, OutcomeSuccess,
		ResourceInvoice, ev.InvoiceID.String(), CategoryPayout, nil,
		"seq", ev.Seq,
		"issuer", ev.Issuer.String(),
		"amount", ev.Amount.Int64(),
		"transfer_id", ev.TransferID.String(),
	)
}

// ──────────────────────────────────────────────────
// Pending return hooks
// ──────────────────────────────────────────────────

// OnPendingReturnWithdrawn implements plugin.OnPendingReturnWithdrawn.
func (e *Extension) OnPendingReturnWithdrawn(ctx context.Context, ev *event.PendingReturnWithdrawn) error {
	return e.record(ctx, ActionPendingReturnWithdrawn, SeverityInfo, OutcomeSuccess,
		ResourcePendingReturn, ev.Account.String(), CategoryPayout, nil,
		"seq", ev.Seq,
		"amount", ev.Amount.Int64(),
		"transfer_id", ev.TransferID.String(),
	)
}

// ──────────────────────────────────────────────────
// Transfer hooks
// ──────────────────────────────────────────────────

// OnTransferFailed implements plugin.OnTransferFailed.
func (e *Extension) OnTransferFailed(ctx context.Context, req transfer.Request, cause error) error {
	return e.record(ctx, ActionTransferFailed, SeverityError, OutcomeFailure,
		ResourceTransfer, req.ID.String(), CategoryPayout, cause,
		"account", req.Account.String(),
		"amount", req.Amount.Int64(),
		"reason", string(req.Reason),
	)
}

// ──────────────────────────────────────────────────
// Internal helpers
// ──────────────────────────────────────────────────

// record builds and sends an audit event if the action is enabled.
// Recorder failures are logged and swallowed.
func (e *Extension) record(
	ctx context.Context,
	action, severity, outcome string,
	resource, resourceID, category string,
	err error,
	kvPairs ...any,
) error {
	if e.enabled != nil && !e.enabled[action] {
		return nil
	}

	meta := make(map[string]any, len(kvPairs)/2+1)
	for i := 0; i+1 < len(kvPairs); i += 2 {
		key, ok := kvPairs[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", kvPairs[i])
		}
		meta[key] = kvPairs[i+1]
	}

	var reason string
	if err != nil {
		reason = err.Error()
		meta["error"] = err.Error()
	}

	evt := &AuditEvent{
		Action:     action,
		Resource:   resource,
		Category:   category,
		ResourceID: resourceID,
		Metadata:   meta,
		Outcome:    outcome,
		Severity:   severity,
		Reason:     reason,
	}

	if recErr := e.recorder.Record(ctx, evt); recErr != nil {
		e.logger.Warn("audit_hook: failed to record audit event",
			"action", action,
			"resource_id", resourceID,
			"error", recErr,
		)
	}
	return nil
}
