package ledger

import (
	"context"
	"sync"

	"github.com/ledyanoy556/smart-billing-contract/event"
	"github.com/ledyanoy556/smart-billing-contract/id"
	"github.com/ledyanoy556/smart-billing-contract/store"
)

// commit is the last step of every successful mutation. Under one mutex it
// runs write (if any), stamps e with the next sequence number and queues it
// for plugins, so events are delivered in commit order across all keys.
// Plugins run on the dispatcher goroutine, outside the mutex.
func (l *Ledger) commit(ctx context.Context, write func(context.Context) error, e event.Event) error {
	l.journalMu.Lock()
	defer l.journalMu.Unlock()

	if write != nil {
		if err := write(ctx); err != nil {
			return err
		}
	}

	l.seq++
	event.Stamp(e, event.Meta{
		ID:  id.NewEventID(),
		Seq: l.seq,
		At:  l.now(),
	})
	l.publish(ctx, "event", func(ctx context.Context) {
		l.plugins.Emit(ctx, e)
	})
	return nil
}

// publish queues a plugin call behind everything published before it. The
// call gets ctx without its cancellation, since the mutation has already
// returned by the time plugins run.
func (l *Ledger) publish(ctx context.Context, kind string, fn func(context.Context)) {
	ctx = context.WithoutCancel(ctx)
	if !l.events.enqueue(func() { fn(ctx) }) {
		l.logger.Warn("ledger: plugin dispatch after stop dropped", "kind", kind)
	}
}

// Flush blocks until plugins have received every event committed before
// the call, or ctx is done.
func (l *Ledger) Flush(ctx context.Context) error {
	return l.events.flush(ctx)
}

// apply writes cs. If the store reports a failure, the pre-images in undo are
// written back so a backend that applied part of cs is left as it was.
func (l *Ledger) apply(ctx context.Context, cs, undo store.Changeset) error {
	err := l.store.Commit(ctx, cs)
	if err == nil {
		return nil
	}
	if undo.IsEmpty() {
		return err
	}

	if rbErr := l.store.Commit(context.WithoutCancel(ctx), undo); rbErr != nil {
		l.logger.Error("ledger: restoring pre-images after failed commit",
			"error", err,
			"restore_error", rbErr,
		)
	}
	return err
}

// writer adapts apply for commit.
func (l *Ledger) writer(cs, undo store.Changeset) func(context.Context) error {
	return func(ctx context.Context) error {
		return l.apply(ctx, cs, undo)
	}
}

// ──────────────────────────────────────────────────
// Dispatcher
// ──────────────────────────────────────────────────

// dispatcher runs queued calls one at a time, in enqueue order, on its own
// goroutine. The queue is unbounded so enqueue never blocks a committer.
type dispatcher struct {
	mu     sync.Mutex
	cond   *sync.Cond
	queue  []func()
	closed bool
	done   chan struct{}
}

func newDispatcher() *dispatcher {
	d := &dispatcher{done: make(chan struct{})}
	d.cond = sync.NewCond(&d.mu)
	go d.run()
	return d
}

// enqueue reports false once the dispatcher is closed.
func (d *dispatcher) enqueue(fn func()) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return false
	}
	d.queue = append(d.queue, fn)
	d.cond.Signal()
	return true
}

func (d *dispatcher) run() {
	defer close(d.done)

	d.mu.Lock()
	for {
		for len(d.queue) == 0 && !d.closed {
			d.cond.Wait()
		}
		if len(d.queue) == 0 {
			d.mu.Unlock()
			return
		}
		fn := d.queue[0]
		d.queue[0] = nil
		d.queue = d.queue[1:]

		d.mu.Unlock()
		fn()
		d.mu.Lock()
	}
}

// flush waits for every call queued before it.
func (d *dispatcher) flush(ctx context.Context) error {
	reached := make(chan struct{})
	if !d.enqueue(func() { close(reached) }) {
		reached = d.done
	}
	select {
	case <-reached:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// close stops accepting calls, runs the ones already queued and returns
// once the goroutine has exited. Safe to call more than once.
func (d *dispatcher) close() {
	d.mu.Lock()
	d.closed = true
	d.cond.Signal()
	d.mu.Unlock()
	<-d.done
}
