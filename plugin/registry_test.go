package plugin_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledyanoy556/smart-billing-contract/event"
	"github.com/ledyanoy556/smart-billing-contract/plugin"
	"github.com/ledyanoy556/smart-billing-contract/transfer"
)

type recorder struct {
	name string

	mu    sync.Mutex
	calls []string
}

func (r *recorder) Name() string { return r.name }

func (r *recorder) record(s string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, s)
}

func (r *recorder) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

func (r *recorder) OnInit(context.Context, any) error { r.record("init"); return nil }
func (r *recorder) OnShutdown(context.Context) error  { r.record("shutdown"); return nil }
func (r *recorder) OnInvoiceCreated(_ context.Context, e *event.InvoiceCreated) error {
	r.record("created")
	return nil
}
func (r *recorder) OnInvoicePaid(context.Context, *event.InvoicePaid) error {
	r.record("paid")
	return errors.New("ignored")
}
func (r *recorder) OnTransferFailed(context.Context, transfer.Request, error) error {
	r.record("transfer_failed")
	return nil
}

type slow struct{}

func (slow) Name() string { return "slow" }
func (slow) OnInvoiceCreated(ctx context.Context, _ *event.InvoiceCreated) error {
	time.Sleep(time.Second)
	return nil
}

func TestRegisterDuplicate(t *testing.T) {
	r := plugin.NewRegistry()
	require.NoError(t, r.Register(&recorder{name: "a"}))
	assert.Error(t, r.Register(&recorder{name: "a"}))
	assert.Equal(t, 1, r.Count())
	assert.NotNil(t, r.Get("a"))
	assert.Nil(t, r.Get("b"))
}

func TestEmitRoutesByType(t *testing.T) {
	ctx := context.Background()
	rec := &recorder{name: "rec"}
	r := plugin.NewRegistry()
	require.NoError(t, r.Register(rec))

	r.EmitInit(ctx, nil)
	r.Emit(ctx, &event.InvoiceCreated{})
	r.Emit(ctx, &event.InvoicePaid{})
	r.Emit(ctx, &event.InvoiceCancelled{}) // no hook implemented
	r.EmitTransferFailed(ctx, transfer.Request{}, errors.New("x"))
	r.EmitShutdown(ctx)

	assert.Equal(t, []string{"init", "created", "paid", "transfer_failed", "shutdown"}, rec.Calls())
}

func TestTimeout(t *testing.T) {
	r := plugin.NewRegistry().WithTimeout(10 * time.Millisecond)
	require.NoError(t, r.Register(slow{}))

	start := time.Now()
	r.EmitInvoiceCreated(context.Background(), &event.InvoiceCreated{})
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}
