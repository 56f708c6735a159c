package extension

import (
	"time"

	ledger "github.com/ledyanoy556/smart-billing-contract"
	"github.com/ledyanoy556/smart-billing-contract/plugin"
	"github.com/ledyanoy556/smart-billing-contract/store"
	"github.com/ledyanoy556/smart-billing-contract/transfer"
)

// Option configures the ledger Forge extension.
type Option func(*Extension)

// WithStore sets the store for the ledger engine.
func WithStore(s store.Store) Option {
	return func(e *Extension) {
		e.store = s
	}
}

// WithTransferer sets the payout collaborator used by withdrawals.
func WithTransferer(t transfer.Transferer) Option {
	return func(e *Extension) {
		e.transfers = t
	}
}

// WithLedgerOption passes a ledger.Option through to the underlying engine.
func WithLedgerOption(opt ledger.Option) Option {
	return func(e *Extension) {
		e.ledgerOpts = append(e.ledgerOpts, opt)
	}
}

// WithPlugin registers a ledger plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(e *Extension) {
		e.ledgerOpts = append(e.ledgerOpts, ledger.WithPlugin(p))
	}
}

// WithConfig sets the Forge extension configuration.
func WithConfig(cfg Config) Option {
	return func(e *Extension) { e.config = cfg }
}

// WithDisableMigrate prevents auto-migration on start.
func WithDisableMigrate() Option {
	return func(e *Extension) { e.config.DisableMigrate = true }
}

// WithRequireConfig requires config to be present in YAML files.
// If true and no config is found, Register returns an error.
func WithRequireConfig(require bool) Option {
	return func(e *Extension) { e.config.RequireConfig = require }
}

// WithPluginTimeout bounds each plugin hook call.
func WithPluginTimeout(d time.Duration) Option {
	return func(e *Extension) { e.config.PluginTimeout = d }
}

// WithRedisLocker serializes ledger operations through Redis at addr.
func WithRedisLocker(addr string, ttl time.Duration) Option {
	return func(e *Extension) {
		e.config.Locker = LockerRedis
		e.config.RedisAddr = addr
		e.config.RedisLockTTL = ttl
	}
}
