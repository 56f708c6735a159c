package ledger

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/ledyanoy556/smart-billing-contract/invoice"
	"github.com/ledyanoy556/smart-billing-contract/locker"
	"github.com/ledyanoy556/smart-billing-contract/plugin"
	"github.com/ledyanoy556/smart-billing-contract/store"
	"github.com/ledyanoy556/smart-billing-contract/transfer"
	"github.com/ledyanoy556/smart-billing-contract/types"
)

// Ledger is the invoice ledger engine. All methods are safe for concurrent use.
type Ledger struct {
	store     store.Store
	transfers transfer.Transferer
	plugins   *plugin.Registry
	locks     locker.Locker
	logger    *slog.Logger
	clock     func() time.Time

	autoMigrate bool

	// Commit journal
	journalMu sync.Mutex
	seq       uint64
	events    *dispatcher
}

// New creates a new Ledger over s. Payouts from Withdraw and WithdrawPending
// go through t.
func New(s store.Store, t transfer.Transferer, opts ...Option) *Ledger {
	l := &Ledger{
		store:       s,
		transfers:   t,
		plugins:     plugin.NewRegistry(),
		locks:       locker.NewLocal(),
		logger:      slog.Default(),
		clock:       time.Now,
		autoMigrate: true,
		events:      newDispatcher(),
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Option configures a Ledger instance.
type Option func(*Ledger)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Ledger) {
		l.logger = logger
		l.plugins.WithLogger(logger)
	}
}

// WithPlugin registers a plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(l *Ledger) {
		_ = l.plugins.Register(p) //nolint:errcheck // best-effort plugin registration during init
	}
}

// WithPluginTimeout bounds each plugin hook call (default 5s).
func WithPluginTimeout(d time.Duration) Option {
	return func(l *Ledger) {
		l.plugins.WithTimeout(d)
	}
}

// WithLocker replaces the in-process locker, for example with a Redis
// locker when several processes share one store.
func WithLocker(lk locker.Locker) Option {
	return func(l *Ledger) {
		l.locks = lk
	}
}

// WithClock sets the time source used for record timestamps and events.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) {
		l.clock = now
	}
}

// WithAutoMigrate controls whether Start migrates the store (default true).
func WithAutoMigrate(enabled bool) Option {
	return func(l *Ledger) {
		l.autoMigrate = enabled
	}
}

// Start migrates the store and initializes plugins.
func (l *Ledger) Start(ctx context.Context) error {
	if l.store == nil {
		return ErrStoreNotReady
	}

	if l.autoMigrate {
		if err := l.store.Migrate(ctx); err != nil {
			return err
		}
	}

	l.plugins.EmitInit(ctx, l)

	l.logger.Info("ledger started",
		"plugins", l.plugins.Count(),
		"auto_migrate", l.autoMigrate,
	)

	return nil
}

// Stop delivers queued events, shuts down plugins and closes the store.
func (l *Ledger) Stop() error {
	ctx := context.Background()
	l.events.close()
	l.plugins.EmitShutdown(ctx)

	if l.store == nil {
		return nil
	}
	return l.store.Close()
}

// Store returns the backing store.
func (l *Ledger) Store() store.Store { return l.store }

// Plugins returns the plugin registry.
func (l *Ledger) Plugins() *plugin.Registry { return l.plugins }

func (l *Ledger) now() time.Time { return l.clock().UTC() }

// ──────────────────────────────────────────────────
// Queries
// ──────────────────────────────────────────────────

// GetInvoice returns a copy of invoice invID.
func (l *Ledger) GetInvoice(ctx context.Context, invID invoice.ID) (*invoice.Invoice, error) {
	unlock, err := l.locks.RLock(ctx, locker.InvoiceKey(invID))
	if err != nil {
		return nil, err
	}
	defer unlock()

	return l.store.GetInvoice(ctx, invID)
}

// GetRemainingAmount returns max(amount - paid_amount, 0) for invoice invID.
//
// Withdrawals reset paid_amount, so an invoice that was fully paid and then
// withdrawn reports its full amount as remaining again. Invoice.TotalCollected
// holds the cumulative figure.
func (l *Ledger) GetRemainingAmount(ctx context.Context, invID invoice.ID) (types.Amount, error) {
	inv, err := l.GetInvoice(ctx, invID)
	if err != nil {
		return 0, err
	}
	return inv.Remaining(), nil
}

// GetInvoicesOfIssuer returns the IDs of invoices created by issuer, oldest first.
func (l *Ledger) GetInvoicesOfIssuer(ctx context.Context, issuer types.Account) ([]invoice.ID, error) {
	return l.store.ListInvoiceIDsByIssuer(ctx, issuer)
}

// GetInvoicesOfPayer returns the IDs of invoices addressed to payer, oldest
// first. Open invoices are never listed here, even after payer pays them.
func (l *Ledger) GetInvoicesOfPayer(ctx context.Context, payer types.Account) ([]invoice.ID, error) {
	return l.store.ListInvoiceIDsByPayer(ctx, payer)
}

// PendingReturn returns the balance account can collect with WithdrawPending.
func (l *Ledger) PendingReturn(ctx context.Context, account types.Account) (types.Amount, error) {
	unlock, err := l.locks.RLock(ctx, locker.AccountKey(account))
	if err != nil {
		return 0, err
	}
	defer unlock()

	r, err := l.store.GetPendingReturn(ctx, account)
	if err != nil {
		return 0, err
	}
	return r.Amount, nil
}
