package extension

import "time"

// Locker backends accepted in Config.Locker.
const (
	LockerLocal = "local"
	LockerRedis = "redis"
)

// Config holds the ledger extension configuration.
// Fields can be set programmatically via Option functions or loaded from
// YAML configuration files (under "extensions.ledger" or "ledger" keys).
type Config struct {
	// DisableMigrate prevents auto-migration on start.
	DisableMigrate bool `json:"disable_migrate" mapstructure:"disable_migrate" yaml:"disable_migrate"`

	// PluginTimeout bounds each plugin hook call (default: 5s).
	PluginTimeout time.Duration `json:"plugin_timeout" mapstructure:"plugin_timeout" yaml:"plugin_timeout"`

	// Locker selects the lock backend: "local" (default) or "redis".
	// Use "redis" when several processes share one store.
	Locker string `json:"locker" mapstructure:"locker" yaml:"locker"`

	// RedisAddr is the host:port of the Redis server used by the redis locker.
	RedisAddr string `json:"redis_addr" mapstructure:"redis_addr" yaml:"redis_addr"`

	// RedisLockTTL is how long a lock survives a crashed holder (default: 30s).
	RedisLockTTL time.Duration `json:"redis_lock_ttl" mapstructure:"redis_lock_ttl" yaml:"redis_lock_ttl"`

	// RequireConfig requires config to be present in YAML files.
	// If true and no config is found, Register returns an error.
	RequireConfig bool `json:"-" yaml:"-"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		PluginTimeout: 5 * time.Second,
		Locker:        LockerLocal,
		RedisLockTTL:  30 * time.Second,
	}
}

// mergeWithDefaults fills zero-valued fields with defaults.
func mergeWithDefaults(cfg Config) Config {
	defaults := DefaultConfig()
	if cfg.PluginTimeout == 0 {
		cfg.PluginTimeout = defaults.PluginTimeout
	}
	if cfg.Locker == "" {
		cfg.Locker = defaults.Locker
	}
	if cfg.RedisLockTTL == 0 {
		cfg.RedisLockTTL = defaults.RedisLockTTL
	}
	return cfg
}

// mergeConfigurations merges YAML config with programmatic options.
// YAML config takes precedence for most fields; programmatic values fill gaps.
func mergeConfigurations(yamlConfig, programmaticConfig Config) Config {
	if programmaticConfig.DisableMigrate {
		yamlConfig.DisableMigrate = true
	}

	if yamlConfig.Locker == "" && programmaticConfig.Locker != "" {
		yamlConfig.Locker = programmaticConfig.Locker
	}
	if yamlConfig.RedisAddr == "" && programmaticConfig.RedisAddr != "" {
		yamlConfig.RedisAddr = programmaticConfig.RedisAddr
	}

	if yamlConfig.PluginTimeout == 0 && programmaticConfig.PluginTimeout != 0 {
		yamlConfig.PluginTimeout = programmaticConfig.PluginTimeout
	}
	if yamlConfig.RedisLockTTL == 0 && programmaticConfig.RedisLockTTL != 0 {
		yamlConfig.RedisLockTTL = programmaticConfig.RedisLockTTL
	}

	return mergeWithDefaults(yamlConfig)
}
