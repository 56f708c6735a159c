package extension

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment overrides read by LoadConfigFile,
// e.g. LEDGER_REDIS_ADDR.
const EnvPrefix = "LEDGER"

// LoadConfigFile reads a Config from a YAML, JSON or TOML file outside of a
// forge application. Environment variables prefixed with LEDGER_ override
// file values, and unset fields take DefaultConfig values.
func LoadConfigFile(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("ledger: read config %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("ledger: decode config %s: %w", path, err)
	}

	return mergeWithDefaults(cfg), nil
}

// setDefaults registers every key so AutomaticEnv can override keys absent
// from the file.
func setDefaults(v *viper.Viper) {
	defaults := DefaultConfig()
	v.SetDefault("disable_migrate", false)
	v.SetDefault("plugin_timeout", defaults.PluginTimeout)
	v.SetDefault("locker", defaults.Locker)
	v.SetDefault("redis_addr", "")
	v.SetDefault("redis_lock_ttl", defaults.RedisLockTTL)
}
