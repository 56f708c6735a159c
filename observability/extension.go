// Package observability provides a metrics extension for the ledger that
// records event counts and amounts through a MetricFactory.
package observability

import (
	"context"

	"github.com/ledyanoy556/smart-billing-contract/event"
	"github.com/ledyanoy556/smart-billing-contract/plugin"
	"github.com/ledyanoy556/smart-billing-contract/transfer"
)

// Ensure MetricsExtension implements required interfaces.
var (
	_ plugin.Plugin                   = (*MetricsExtension)(nil)
	_ plugin.OnInit                   = (*MetricsExtension)(nil)
	_ plugin.OnInvoiceCreated         = (*MetricsExtension)(nil)
	_ plugin.OnInvoicePaid            = (*MetricsExtension)(nil)
	_ plugin.OnInvoiceCancelled       = (*MetricsExtension)(nil)
	_ plugin.OnInvoiceWithdrawn       = (*MetricsExtension)(nil)
	_ plugin.OnPendingReturnWithdrawn = (*MetricsExtension)(nil)
	_ plugin.OnTransferFailed         = (*MetricsExtension)(nil)
)

// Counter interface for metric counters.
type Counter interface {
	Inc()
	Add(float64)
}

// Histogram interface for metric histograms.
type Histogram interface {
	Observe(float64)
}

// MetricFactory creates metrics.
type MetricFactory interface {
	Counter(name string) Counter
	Histogram(name string) Histogram
}

// MetricsExtension records ledger-wide metrics.
// Register it as a ledger plugin to track invoice and payout activity.
type MetricsExtension struct {
	factory MetricFactory

	// Invoice metrics
	InvoiceCreated   Counter
	InvoicePaid      Counter
	InvoiceOverpaid  Counter
	InvoiceCancelled Counter
	InvoiceRefunded  Counter
	InvoiceWithdrawn Counter
	InvoiceAmount    Histogram
	PaymentApplied   Histogram

	// Pending return metrics
	PendingCredited  Counter
	PendingWithdrawn Counter

	// Payout metrics
	PayoutAmount   Histogram
	TransferFailed Counter
}

// NewMetricsExtension creates a MetricsExtension with the provided MetricFactory.
func NewMetricsExtension(factory MetricFactory) *MetricsExtension {
	return &MetricsExtension{
		factory: factory,

		InvoiceCreated:   factory.Counter("ledger.invoice.created"),
		InvoicePaid:      factory.Counter("ledger.invoice.paid"),
		InvoiceOverpaid:  factory.Counter("ledger.invoice.overpaid"),
		InvoiceCancelled: factory.Counter("ledger.invoice.cancelled"),
		InvoiceRefunded:  factory.Counter("ledger.invoice.refunded_amount"),
		InvoiceWithdrawn: factory.Counter("ledger.invoice.withdrawn"),
		InvoiceAmount:    factory.Histogram("ledger.invoice.amount"),
		PaymentApplied:   factory.Histogram("ledger.payment.applied"),

		PendingCredited:  factory.Counter("ledger.pending_return.credited"),
		PendingWithdrawn: factory.Counter("ledger.pending_return.withdrawn"),

		PayoutAmount:   factory.Histogram("ledger.payout.amount"),
		TransferFailed: factory.Counter("ledger.transfer.failed"),
	}
}

// Name implements plugin.Plugin.
func (m *MetricsExtension) Name() string { return "observability-metrics" }

// OnInit implements plugin.OnInit.
func (m *MetricsExtension) OnInit(_ context.Context, _ any) error {
	return nil
}

// OnInvoiceCreated implements plugin.OnInvoiceCreated.
func (m *MetricsExtension) OnInvoiceCreated(_ context.Context, e *event.InvoiceCreated) error {
	m.InvoiceCreated.Inc()
	m.InvoiceAmount.Observe(float64(e.Amount))
	return nil
}

// OnInvoicePaid implements plugin.OnInvoicePaid.
func (m *MetricsExtension) OnInvoicePaid(_ context.Context, e *event.InvoicePaid) error {
	m.InvoicePaid.Inc()
	m.PaymentApplied.Observe(float64(e.Applied))
	if e.Overpaid > 0 {
		m.InvoiceOverpaid.Inc()
		m.PendingCredited.Add(float64(e.Overpaid))
	}
	return nil
}

// OnInvoiceCancelled implements plugin.OnInvoiceCancelled.
func (m *MetricsExtension) OnInvoiceCancelled(_ context.Context, e *event.InvoiceCancelled) error {
	m.InvoiceCancelled.Inc()
	if e.Refund != nil {
		m.InvoiceRefunded.Add(float64(e.Refund.Amount))
		m.PendingCredited.Add(float64(e.Refund.Amount))
	}
	return nil
}

// OnInvoiceWithdrawn implements plugin.OnInvoiceWithdrawn.
func (m *MetricsExtension) OnInvoiceWithdrawn(_ context.Context, e *event.InvoiceWithdrawn) error {
	m.InvoiceWithdrawn.Inc()
	m.PayoutAmount.Observe(float64(e.Amount))
	return nil
}

// OnPendingReturnWithdrawn implements plugin.OnPendingReturnWithdrawn.
func (m *MetricsExtension) OnPendingReturnWithdrawn(_ context.Context, e *event.PendingReturnWithdrawn) error {
	m.PendingWithdrawn.Inc()
	m.PayoutAmount.Observe(float64(e.Amount))
	return nil
}

// OnTransferFailed implements plugin.OnTransferFailed.
func (m *MetricsExtension) OnTransferFailed(_ context.Context, _ transfer.Request, _ error) error {
	m.TransferFailed.Inc()
	return nil
}
