// Package extension provides the Forge extension adapter for the ledger.
//
// It implements the forge.Extension interface to integrate the ledger
// into a Forge application with DI registration and lifecycle management.
//
// Configuration can be provided programmatically via Option functions
// or via YAML configuration files under "extensions.ledger" or "ledger" keys.
// Outside of Forge, LoadConfigFile reads the same Config with viper.
package extension

import (
	"context"
	"errors"
	"fmt"

	"github.com/xraph/forge"
	"github.com/xraph/vessel"

	ledger "github.com/ledyanoy556/smart-billing-contract"
	"github.com/ledyanoy556/smart-billing-contract/locker"
	redislock "github.com/ledyanoy556/smart-billing-contract/locker/redis"
	"github.com/ledyanoy556/smart-billing-contract/store"
	"github.com/ledyanoy556/smart-billing-contract/store/memory"
	"github.com/ledyanoy556/smart-billing-contract/transfer"
)

// ExtensionName is the name registered with Forge.
const ExtensionName = "ledger"

// ExtensionDescription is the human-readable description.
const ExtensionDescription = "Invoice ledger with pending-return payouts"

// ExtensionVersion is the semantic version.
const ExtensionVersion = "0.1.0"

// Ensure Extension implements forge.Extension at compile time.
var _ forge.Extension = (*Extension)(nil)

// Extension adapts the ledger as a Forge extension.
type Extension struct {
	*forge.BaseExtension

	config     Config
	engine     *ledger.Ledger
	store      store.Store
	transfers  transfer.Transferer
	redis      *redislock.Locker
	ledgerOpts []ledger.Option
}

// New creates a new ledger Forge extension with the given options.
func New(opts ...Option) *Extension {
	e := &Extension{
		BaseExtension: forge.NewBaseExtension(ExtensionName, ExtensionVersion, ExtensionDescription),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Engine returns the underlying Ledger instance.
// This is nil until Register is called.
func (e *Extension) Engine() *ledger.Ledger { return e.engine }

// Config returns the resolved configuration.
func (e *Extension) Config() Config { return e.config }

// Register implements [forge.Extension]. It loads configuration,
// initializes the ledger engine, and registers it in the DI container.
func (e *Extension) Register(fapp forge.App) error {
	if err := e.BaseExtension.Register(fapp); err != nil {
		return err
	}

	if err := e.loadConfiguration(); err != nil {
		return err
	}

	// Use memory store if no store was provided programmatically.
	if e.store == nil {
		e.store = memory.New()
	}
	if e.transfers == nil {
		e.Logger().Warn("ledger: no transferer configured; withdrawals will fail")
	}

	lk, err := e.buildLocker(context.Background())
	if err != nil {
		return err
	}

	opts := e.buildLedgerOpts(lk)
	e.engine = ledger.New(e.store, e.transfers, opts...)

	return vessel.Provide(fapp.Container(), func() (*ledger.Ledger, error) {
		return e.engine, nil
	})
}

// Start implements [forge.Extension].
func (e *Extension) Start(ctx context.Context) error {
	if e.engine == nil {
		return errors.New("ledger: extension not initialized")
	}

	if err := e.engine.Start(ctx); err != nil {
		return err
	}

	e.MarkStarted()
	return nil
}

// Stop implements [forge.Extension].
func (e *Extension) Stop(_ context.Context) error {
	defer e.MarkStopped()

	var errs []error
	if e.engine != nil {
		if err := e.engine.Stop(); err != nil {
			errs = append(errs, err)
		}
	}
	if e.redis != nil {
		if err := e.redis.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Health implements [forge.Extension].
func (e *Extension) Health(ctx context.Context) error {
	if e.store == nil {
		return errors.New("ledger: store not initialized")
	}
	return e.store.Ping(ctx)
}

// buildLocker returns the configured locker, or nil for the ledger's
// in-process default.
func (e *Extension) buildLocker(ctx context.Context) (locker.Locker, error) {
	switch e.config.Locker {
	case "", LockerLocal:
		return nil, nil
	case LockerRedis:
		lk, err := redislock.Open(ctx, redislock.Config{
			Addr: e.config.RedisAddr,
			TTL:  e.config.RedisLockTTL,
		})
		if err != nil {
			return nil, err
		}
		e.redis = lk
		return lk, nil
	default:
		return nil, fmt.Errorf("ledger: unknown locker %q", e.config.Locker)
	}
}

// buildLedgerOpts constructs ledger.Option values from the resolved config.
func (e *Extension) buildLedgerOpts(lk locker.Locker) []ledger.Option {
	opts := make([]ledger.Option, 0, len(e.ledgerOpts)+3)

	opts = append(opts,
		ledger.WithAutoMigrate(!e.config.DisableMigrate),
		ledger.WithPluginTimeout(e.config.PluginTimeout),
	)
	if lk != nil {
		opts = append(opts, ledger.WithLocker(lk))
	}

	// Pass-through options come last so they win.
	opts = append(opts, e.ledgerOpts...)

	return opts
}

// --- Config Loading (mirrors grove/shield extension pattern) ---

// loadConfiguration loads config from YAML files or programmatic sources.
func (e *Extension) loadConfiguration() error {
	programmaticConfig := e.config

	fileConfig, configLoaded := e.tryLoadFromConfigFile()

	if !configLoaded {
		if programmaticConfig.RequireConfig {
			return errors.New("ledger: configuration is required but not found in config files; " +
				"ensure 'extensions.ledger' or 'ledger' key exists in your config")
		}
		e.config = mergeWithDefaults(programmaticConfig)
	} else {
		e.config = mergeConfigurations(fileConfig, programmaticConfig)
	}

	e.Logger().Debug("ledger: configuration loaded",
		forge.F("disable_migrate", e.config.DisableMigrate),
		forge.F("plugin_timeout", e.config.PluginTimeout),
		forge.F("locker", e.config.Locker),
		forge.F("redis_addr", e.config.RedisAddr),
		forge.F("redis_lock_ttl", e.config.RedisLockTTL),
	)

	return nil
}

// tryLoadFromConfigFile attempts to load config from YAML files.
func (e *Extension) tryLoadFromConfigFile() (Config, bool) {
	cm := e.App().Config()

	for _, key := range []string{"extensions.ledger", "ledger"} {
		if !cm.IsSet(key) {
			continue
		}
		var cfg Config
		if err := cm.Bind(key, &cfg); err != nil {
			e.Logger().Warn("ledger: failed to bind config",
				forge.F("key", key),
				forge.F("error", err.Error()),
			)
			continue
		}
		e.Logger().Debug("ledger: loaded config from file",
			forge.F("key", key),
		)
		return cfg, true
	}

	return Config{}, false
}
