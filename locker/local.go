package locker

import (
	"context"
	"sync"
)

// Local is an in-process Locker. Each key maps to a reference-counted
// reader/writer state that is dropped once no goroutine holds or waits for
// it. Waiters observe ctx: a cancelled wait returns ctx.Err() and holds
// nothing.
type Local struct {
	mu    sync.Mutex
	locks map[string]*entry
}

// entry is guarded by Local.mu. changed is closed and replaced whenever the
// key is released, waking every waiter to retry.
type entry struct {
	refs    int
	writer  bool
	readers int
	writers int // waiting writers; new readers queue behind them
	changed chan struct{}
}

// Compile-time interface check.
var _ Locker = (*Local)(nil)

// NewLocal returns an empty in-process locker.
func NewLocal() *Local {
	return &Local{locks: make(map[string]*entry)}
}

// Lock implements Locker.
func (l *Local) Lock(ctx context.Context, key string) (Unlock, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.mu.Lock()
	e := l.ref(key)
	e.writers++
	for e.writer || e.readers > 0 {
		if err := l.wait(ctx, e); err != nil {
			e.writers--
			l.unref(key, e)
			l.mu.Unlock()
			return nil, err
		}
	}
	e.writers--
	e.writer = true
	l.mu.Unlock()

	return l.once(key, e, func() { e.writer = false }), nil
}

// RLock implements Locker.
func (l *Local) RLock(ctx context.Context, key string) (Unlock, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.mu.Lock()
	e := l.ref(key)
	for e.writer || e.writers > 0 {
		if err := l.wait(ctx, e); err != nil {
			l.unref(key, e)
			l.mu.Unlock()
			return nil, err
		}
	}
	e.readers++
	l.mu.Unlock()

	return l.once(key, e, func() { e.readers-- }), nil
}

// Len returns the number of keys currently tracked.
func (l *Local) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}

// wait releases l.mu until e changes or ctx is done. Caller holds l.mu.
func (l *Local) wait(ctx context.Context, e *entry) error {
	changed := e.changed
	l.mu.Unlock()
	defer l.mu.Lock()

	select {
	case <-changed:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ref returns the entry for key with its count raised. Caller holds l.mu.
func (l *Local) ref(key string) *entry {
	e, ok := l.locks[key]
	if !ok {
		e = &entry{changed: make(chan struct{})}
		l.locks[key] = e
	}
	e.refs++
	return e
}

// unref drops one reference and wakes waiters. Caller holds l.mu.
func (l *Local) unref(key string, e *entry) {
	e.refs--
	if e.refs == 0 {
		delete(l.locks, key)
		return
	}
	close(e.changed)
	e.changed = make(chan struct{})
}

func (l *Local) once(key string, e *entry, release func()) Unlock {
	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			defer l.mu.Unlock()
			release()
			l.unref(key, e)
		})
	}
}
