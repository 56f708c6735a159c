package redis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConfigDefaults(t *testing.T) {
	cfg := Config{}.withDefaults()

	assert.Equal(t, 30*time.Second, cfg.TTL)
	assert.Equal(t, 10*time.Second, cfg.RefreshInterval)
	assert.Equal(t, "ledger:lock:", cfg.KeyPrefix)
	assert.NotNil(t, cfg.Logger)
}

func TestConfigRefreshBelowTTL(t *testing.T) {
	cfg := Config{TTL: time.Second, RefreshInterval: 2 * time.Second}.withDefaults()
	assert.Less(t, cfg.RefreshInterval, cfg.TTL)

	cfg = Config{TTL: time.Second, RefreshInterval: 200 * time.Millisecond}.withDefaults()
	assert.Equal(t, 200*time.Millisecond, cfg.RefreshInterval)
}
