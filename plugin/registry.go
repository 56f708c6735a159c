package plugin

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"sync"
	"time"

	"github.com/ledyanoy556/smart-billing-contract/event"
	"github.com/ledyanoy556/smart-billing-contract/transfer"
)

// DefaultTimeout bounds a single plugin call.
const DefaultTimeout = 5 * time.Second

// Registry manages all registered plugins and provides efficient dispatch.
// It uses type-cached discovery so dispatch never type-asserts.
type Registry struct {
	mu      sync.RWMutex
	plugins []Plugin
	logger  *slog.Logger
	timeout time.Duration

	// Type-cached plugin lists for efficient dispatch
	onInit                   []OnInit
	onShutdown               []OnShutdown
	onInvoiceCreated         []OnInvoiceCreated
	onInvoicePaid            []OnInvoicePaid
	onInvoiceCancelled       []OnInvoiceCancelled
	onInvoiceWithdrawn       []OnInvoiceWithdrawn
	onPendingReturnWithdrawn []OnPendingReturnWithdrawn
	onTransferFailed         []OnTransferFailed
}

// NewRegistry creates a new plugin registry.
func NewRegistry() *Registry {
	return &Registry{
		logger:  slog.Default(),
		timeout: DefaultTimeout,
	}
}

// WithLogger sets the logger for the registry.
func (r *Registry) WithLogger(logger *slog.Logger) *Registry {
	r.logger = logger
	return r
}

// WithTimeout sets the per-call plugin timeout. Non-positive values are ignored.
func (r *Registry) WithTimeout(d time.Duration) *Registry {
	if d > 0 {
		r.timeout = d
	}
	return r
}

// Register adds a plugin to the registry and caches its interfaces.
func (r *Registry) Register(p Plugin) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Check for duplicate
	for _, existing := range r.plugins {
		if existing.Name() == p.Name() {
			return fmt.Errorf("plugin: duplicate registration: %s", p.Name())
		}
	}

	r.plugins = append(r.plugins, p)

	// Type-switch to cache interfaces
	if v, ok := p.(OnInit); ok {
		r.onInit = append(r.onInit, v)
	}
	if v, ok := p.(OnShutdown); ok {
		r.onShutdown = append(r.onShutdown, v)
	}
	if v, ok := p.(OnInvoiceCreated); ok {
		r.onInvoiceCreated = append(r.onInvoiceCreated, v)
	}
	if v, ok := p.(OnInvoicePaid); ok {
		r.onInvoicePaid = append(r.onInvoicePaid, v)
	}
	if v, ok := p.(OnInvoiceCancelled); ok {
		r.onInvoiceCancelled = append(r.onInvoiceCancelled, v)
	}
	if v, ok := p.(OnInvoiceWithdrawn); ok {
		r.onInvoiceWithdrawn = append(r.onInvoiceWithdrawn, v)
	}
	if v, ok := p.(OnPendingReturnWithdrawn); ok {
		r.onPendingReturnWithdrawn = append(r.onPendingReturnWithdrawn, v)
	}
	if v, ok := p.(OnTransferFailed); ok {
		r.onTransferFailed = append(r.onTransferFailed, v)
	}

	r.logger.Info("plugin registered",
		"name", p.Name(),
		"interfaces", implementedInterfaces(p),
	)

	return nil
}

var hookTypes = []struct {
	name  string
	iface reflect.Type
}{
	{"OnInit", reflect.TypeFor[OnInit]()},
	{"OnShutdown", reflect.TypeFor[OnShutdown]()},
	{"OnInvoiceCreated", reflect.TypeFor[OnInvoiceCreated]()},
	{"OnInvoicePaid", reflect.TypeFor[OnInvoicePaid]()},
	{"OnInvoiceCancelled", reflect.TypeFor[OnInvoiceCancelled]()},
	{"OnInvoiceWithdrawn", reflect.TypeFor[OnInvoiceWithdrawn]()},
	{"OnPendingReturnWithdrawn", reflect.TypeFor[OnPendingReturnWithdrawn]()},
	{"OnTransferFailed", reflect.TypeFor[OnTransferFailed]()},
}

// implementedInterfaces returns the hook names implemented by p.
func implementedInterfaces(p Plugin) []string {
	var names []string
	t := reflect.TypeOf(p)
	for _, h := range hookTypes {
		if t.Implements(h.iface) {
			names = append(names, h.name)
		}
	}
	return names
}

// Get returns a plugin by name.
func (r *Registry) Get(name string) Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.plugins {
		if p.Name() == name {
			return p
		}
	}
	return nil
}

// List returns all registered plugins.
func (r *Registry) List() []Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Plugin, len(r.plugins))
	copy(result, r.plugins)
	return result
}

// Count returns the number of registered plugins.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.plugins)
}

// ──────────────────────────────────────────────────
// Event emission methods
// ──────────────────────────────────────────────────

// EmitInit calls OnInit for all plugins that implement it.
func (r *Registry) EmitInit(ctx context.Context, ledger any) {
	r.mu.RLock()
	plugins := r.onInit
	r.mu.RUnlock()

	for _, p := range plugins {
		r.dispatch(ctx, p, "OnInit", func() error {
			return p.OnInit(ctx, ledger)
		})
	}
}

// EmitShutdown calls OnShutdown for all plugins that implement it.
func (r *Registry) EmitShutdown(ctx context.Context) {
	r.mu.RLock()
	plugins := r.onShutdown
	r.mu.RUnlock()

	for _, p := range plugins {
		r.dispatch(ctx, p, "OnShutdown", func() error {
			return p.OnShutdown(ctx)
		})
	}
}

// Emit routes a domain event to the hooks for its type.
func (r *Registry) Emit(ctx context.Context, e event.Event) {
	switch v := e.(type) {
	case *event.InvoiceCreated:
		r.EmitInvoiceCreated(ctx, v)
	case *event.InvoicePaid:
		r.EmitInvoicePaid(ctx, v)
	case *event.InvoiceCancelled:
		r.EmitInvoiceCancelled(ctx, v)
	case *event.InvoiceWithdrawn:
		r.EmitInvoiceWithdrawn(ctx, v)
	case *event.PendingReturnWithdrawn:
		r.EmitPendingReturnWithdrawn(ctx, v)
	default:
		r.logger.Warn("plugin: no hook for event", "type", e.EventType())
	}
}

// EmitInvoiceCreated emits an invoice created event.
func (r *Registry) EmitInvoiceCreated(ctx context.Context, e *event.InvoiceCreated) {
	r.mu.RLock()
	plugins := r.onInvoiceCreated
	r.mu.RUnlock()

	for _, p := range plugins {
		r.dispatch(ctx, p, "OnInvoiceCreated", func() error {
			return p.OnInvoiceCreated(ctx, e)
		})
	}
}

// EmitInvoicePaid emits an invoice paid event.
func (r *Registry) EmitInvoicePaid(ctx context.Context, e *event.InvoicePaid) {
	r.mu.RLock()
	plugins := r.onInvoicePaid
	r.mu.RUnlock()

	for _, p := range plugins {
		r.dispatch(ctx, p, "OnInvoicePaid", func() error {
			return p.OnInvoicePaid(ctx, e)
		})
	}
}

// EmitInvoiceCancelled emits an invoice cancelled event.
func (r *Registry) EmitInvoiceCancelled(ctx context.Context, e *event.InvoiceCancelled) {
	r.mu.RLock()
	plugins := r.onInvoiceCancelled
	r.mu.RUnlock()

	for _, p := range plugins {
		r.dispatch(ctx, p, "OnInvoiceCancelled", func() error {
			return p.OnInvoiceCancelled(ctx, e)
		})
	}
}

// EmitInvoiceWithdrawn emits an invoice withdrawn event.
func (r *Registry) EmitInvoiceWithdrawn(ctx context.Context, e *event.InvoiceWithdrawn) {
	r.mu.RLock()
	plugins := r.onInvoiceWithdrawn
	r.mu.RUnlock()

	for _, p := range plugins {
		r.dispatch(ctx, p, "OnInvoiceWithdrawn", func() error {
			return p.OnInvoiceWithdrawn(ctx, e)
		})
	}
}

// EmitPendingReturnWithdrawn emits a pending return withdrawn event.
func (r *Registry) EmitPendingReturnWithdrawn(ctx context.Context, e *event.PendingReturnWithdrawn) {
	r.mu.RLock()
	plugins := r.onPendingReturnWithdrawn
	r.mu.RUnlock()

	for _, p := range plugins {
		r.dispatch(ctx, p, "OnPendingReturnWithdrawn", func() error {
			return p.OnPendingReturnWithdrawn(ctx, e)
		})
	}
}

// EmitTransferFailed reports a failed and rolled back transfer.
func (r *Registry) EmitTransferFailed(ctx context.Context, req transfer.Request, cause error) {
	r.mu.RLock()
	plugins := r.onTransferFailed
	r.mu.RUnlock()

	for _, p := range plugins {
		r.dispatch(ctx, p, "OnTransferFailed", func() error {
			return p.OnTransferFailed(ctx, req, cause)
		})
	}
}

func (r *Registry) dispatch(ctx context.Context, p Plugin, hook string, fn func() error) {
	if err := r.callWithTimeout(ctx, p.Name(), fn); err != nil {
		r.logger.Warn("plugin "+hook+" failed",
			"plugin", p.Name(),
			"error", err,
		)
	}
}

// callWithTimeout calls a plugin function with a timeout.
// Plugins should never block the ledger.
func (r *Registry) callWithTimeout(ctx context.Context, pluginName string, fn func() error) error {
	done := make(chan error, 1)

	go func() {
		done <- fn()
	}()

	timer := time.NewTimer(r.timeout)
	defer timer.Stop()

	select {
	case err := <-done:
		return err
	case <-timer.C:
		return fmt.Errorf("plugin timeout: %s", pluginName)
	case <-ctx.Done():
		return ctx.Err()
	}
}
