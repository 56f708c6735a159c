package observability_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ledyanoy556/smart-billing-contract/event"
	"github.com/ledyanoy556/smart-billing-contract/invoice"
	"github.com/ledyanoy556/smart-billing-contract/observability"
	"github.com/ledyanoy556/smart-billing-contract/transfer"
)

type counter struct{ v float64 }

func (c *counter) Inc()          { c.v++ }
func (c *counter) Add(d float64) { c.v += d }

type histogram struct{ obs []float64 }

func (h *histogram) Observe(v float64) { h.obs = append(h.obs, v) }

type factory struct {
	counters   map[string]*counter
	histograms map[string]*histogram
}

func newFactory() *factory {
	return &factory{
		counters:   map[string]*counter{},
		histograms: map[string]*histogram{},
	}
}

func (f *factory) Counter(name string) observability.Counter {
	c := &counter{}
	f.counters[name] = c
	return c
}

func (f *factory) Histogram(name string) observability.Histogram {
	h := &histogram{}
	f.histograms[name] = h
	return h
}

func TestMetricsPayments(t *testing.T) {
	f := newFactory()
	m := observability.NewMetricsExtension(f)
	ctx := context.Background()

	assert.NoError(t, m.OnInvoiceCreated(ctx, &event.InvoiceCreated{Amount: 100}))
	assert.NoError(t, m.OnInvoicePaid(ctx, &event.InvoicePaid{Applied: 60}))
	assert.NoError(t, m.OnInvoicePaid(ctx, &event.InvoicePaid{Applied: 50, Overpaid: 10}))

	assert.Equal(t, 1.0, f.counters["ledger.invoice.created"].v)
	assert.Equal(t, []float64{100}, f.histograms["ledger.invoice.amount"].obs)
	assert.Equal(t, 2.0, f.counters["ledger.invoice.paid"].v)
	assert.Equal(t, 1.0, f.counters["ledger.invoice.overpaid"].v)
	assert.Equal(t, 10.0, f.counters["ledger.pending_return.credited"].v)
	assert.Equal(t, []float64{60, 50}, f.histograms["ledger.payment.applied"].obs)
}

func TestMetricsPayouts(t *testing.T) {
	f := newFactory()
	m := observability.NewMetricsExtension(f)
	ctx := context.Background()

	assert.NoError(t, m.OnInvoiceCancelled(ctx, &event.InvoiceCancelled{Refund: &invoice.Refund{To: "bob", Amount: 30}}))
	assert.NoError(t, m.OnInvoiceCancelled(ctx, &event.InvoiceCancelled{}))
	assert.NoError(t, m.OnInvoiceWithdrawn(ctx, &event.InvoiceWithdrawn{Amount: 70}))
	assert.NoError(t, m.OnPendingReturnWithdrawn(ctx, &event.PendingReturnWithdrawn{Amount: 30}))
	assert.NoError(t, m.OnTransferFailed(ctx, transfer.Request{}, errors.New("declined")))

	assert.Equal(t, 2.0, f.counters["ledger.invoice.cancelled"].v)
	assert.Equal(t, 30.0, f.counters["ledger.invoice.refunded_amount"].v)
	assert.Equal(t, 1.0, f.counters["ledger.invoice.withdrawn"].v)
	assert.Equal(t, 1.0, f.counters["ledger.pending_return.withdrawn"].v)
	assert.Equal(t, []float64{70, 30}, f.histograms["ledger.payout.amount"].obs)
	assert.Equal(t, 1.0, f.counters["ledger.transfer.failed"].v)
}
