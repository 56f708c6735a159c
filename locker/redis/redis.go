// Package redis is a distributed locker.Locker backed by Redis. It lets
// several ledger processes share one store.
//
// Locks are exclusive only: RLock grants the same lock as Lock. Each lock
// is a key set with NX and a TTL holding a unique ownership token; release
// deletes the key only if the token still matches. While a lock is held a
// background goroutine extends its TTL, so a slow holder keeps the key.
package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/ledyanoy556/smart-billing-contract/id"
	"github.com/ledyanoy556/smart-billing-contract/locker"
)

// Config controls the redis client and lock behavior.
type Config struct {
	Addr     string
	Password string
	DB       int

	// Basic timeouts
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	PingTimeout  time.Duration

	// Pool tuning
	PoolSize     int
	MinIdleConns int

	// KeyPrefix namespaces every lock key.
	KeyPrefix string

	// TTL bounds how long a crashed holder can block a key. It must exceed
	// the slowest expected transfer.
	TTL time.Duration

	// RefreshInterval is how often a held lock's TTL is extended
	// (default: TTL/3).
	RefreshInterval time.Duration

	// RetryMin and RetryMax bound the backoff between acquisition attempts.
	RetryMin time.Duration
	RetryMax time.Duration

	// Logger receives lost-lock reports (default: slog.Default()).
	Logger *slog.Logger
}

func (c Config) withDefaults() Config {
	out := c
	if out.DialTimeout <= 0 {
		out.DialTimeout = 3 * time.Second
	}
	if out.ReadTimeout <= 0 {
		out.ReadTimeout = 2 * time.Second
	}
	if out.WriteTimeout <= 0 {
		out.WriteTimeout = 2 * time.Second
	}
	if out.PingTimeout <= 0 {
		out.PingTimeout = 2 * time.Second
	}
	if out.PoolSize <= 0 {
		out.PoolSize = 20
	}
	if out.MinIdleConns < 0 {
		out.MinIdleConns = 0
	}
	if out.KeyPrefix == "" {
		out.KeyPrefix = "ledger:lock:"
	}
	if out.TTL <= 0 {
		out.TTL = 30 * time.Second
	}
	if out.RefreshInterval <= 0 || out.RefreshInterval >= out.TTL {
		out.RefreshInterval = out.TTL / 3
	}
	if out.Logger == nil {
		out.Logger = slog.Default()
	}
	if out.RetryMin <= 0 {
		out.RetryMin = 5 * time.Millisecond
	}
	if out.RetryMax < out.RetryMin {
		out.RetryMax = 250 * time.Millisecond
	}
	return out
}

// Open connects to Redis, validates connectivity via PING and returns a
// Locker that owns the client.
func Open(ctx context.Context, cfg Config) (*Locker, error) {
	cfg = cfg.withDefaults()
	if cfg.Addr == "" {
		return nil, fmt.Errorf("ledger/redis: addr is required")
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
	})

	pingCtx, cancel := context.WithTimeout(ctx, cfg.PingTimeout)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ledger/redis: ping: %w", err)
	}

	l := New(rdb, cfg)
	l.owned = true
	return l, nil
}

// Locker is a Redis-backed locker.Locker.
type Locker struct {
	rdb   goredis.UniversalClient
	cfg   Config
	owned bool
}

// Compile-time interface check.
var _ locker.Locker = (*Locker)(nil)

// New wraps an existing client. Close does not close a client passed here.
func New(rdb goredis.UniversalClient, cfg Config) *Locker {
	return &Locker{rdb: rdb, cfg: cfg.withDefaults()}
}

var releaseScript = goredis.NewScript(`
-- KEYS[1] = lock key
-- ARGV[1] = ownership token
--
-- Returns 1 if the key was deleted, 0 if another holder owns it.
if redis.call('GET', KEYS[1]) == ARGV[1] then
  return redis.call('DEL', KEYS[1])
end
return 0
`)

var refreshScript = goredis.NewScript(`
-- KEYS[1] = lock key
-- ARGV[1] = ownership token
-- ARGV[2] = ttl in milliseconds
--
-- Returns 1 if the TTL was extended, 0 if another holder owns it.
if redis.call('GET', KEYS[1]) == ARGV[1] then
  return redis.call('PEXPIRE', KEYS[1], ARGV[2])
end
return 0
`)

// Lock implements locker.Locker. It retries with capped exponential backoff
// until the key is free or ctx is done.
func (l *Locker) Lock(ctx context.Context, key string) (locker.Unlock, error) {
	fullKey := l.cfg.KeyPrefix + key
	token := id.NewLockToken().String()

	wait := l.cfg.RetryMin
	for {
		ok, err := l.rdb.SetNX(ctx, fullKey, token, l.cfg.TTL).Result()
		if err != nil {
			return nil, fmt.Errorf("ledger/redis: lock %s: %w", key, err)
		}
		if ok {
			return l.hold(key, fullKey, token), nil
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, fmt.Errorf("ledger/redis: lock %s: %w", key, ctx.Err())
		case <-timer.C:
		}
		wait = min(wait*2, l.cfg.RetryMax)
	}
}

// RLock implements locker.Locker with an exclusive lock.
func (l *Locker) RLock(ctx context.Context, key string) (locker.Unlock, error) {
	return l.Lock(ctx, key)
}

// Release deletes the lock at key if token still owns it.
func (l *Locker) Release(ctx context.Context, key, token string) error {
	return l.release(ctx, l.cfg.KeyPrefix+key, token)
}

func (l *Locker) release(ctx context.Context, fullKey, token string) error {
	res, err := releaseScript.Run(ctx, l.rdb, []string{fullKey}, token).Int()
	if err != nil {
		return fmt.Errorf("ledger/redis: release %s: %w", fullKey, err)
	}
	if res == 0 {
		return locker.ErrNotHeld
	}
	return nil
}

// Close closes the client if the Locker opened it.
func (l *Locker) Close() error {
	if !l.owned {
		return nil
	}
	return l.rdb.Close()
}

// hold keeps the lock alive until the returned Unlock runs.
func (l *Locker) hold(key, fullKey, token string) locker.Unlock {
	stop := make(chan struct{})
	stopped := make(chan struct{})
	go l.refresh(key, fullKey, token, stop, stopped)

	var once sync.Once
	return func() {
		once.Do(func() {
			close(stop)
			<-stopped

			// The caller's context may already be done; release independently.
			ctx, cancel := context.WithTimeout(context.Background(), l.cfg.WriteTimeout)
			defer cancel()
			err := l.release(ctx, fullKey, token)
			switch {
			case errors.Is(err, locker.ErrNotHeld):
				l.cfg.Logger.Error("ledger/redis: lock lost before release",
					"key", key,
				)
			case err != nil:
				l.cfg.Logger.Warn("ledger/redis: release failed, key expires by TTL",
					"key", key,
					"error", err,
				)
			}
		})
	}
}

// refresh extends the TTL every RefreshInterval until stop is closed or the
// lock turns out to be owned by someone else.
func (l *Locker) refresh(key, fullKey, token string, stop <-chan struct{}, stopped chan<- struct{}) {
	defer close(stopped)

	ticker := time.NewTicker(l.cfg.RefreshInterval)
	defer ticker.Stop()

	ttl := l.cfg.TTL.Milliseconds()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}

		ctx, cancel := context.WithTimeout(context.Background(), l.cfg.WriteTimeout)
		res, err := refreshScript.Run(ctx, l.rdb, []string{fullKey}, token, ttl).Int()
		cancel()

		switch {
		case err != nil:
			l.cfg.Logger.Warn("ledger/redis: lock refresh failed",
				"key", key,
				"error", err,
			)
		case res == 0:
			l.cfg.Logger.Error("ledger/redis: lock lost while held",
				"key", key,
			)
			return
		}
	}
}
