// Package locker serializes ledger mutations per invoice and per account.
//
// Every mutating ledger call holds a write lock on each key it touches for
// the whole call, external transfer included. Reads take read locks, so a
// reader never observes a provisional write that may still be rolled back.
// Callers that need several keys acquire invoice keys before account keys.
package locker

import (
	"context"
	"errors"

	"github.com/ledyanoy556/smart-billing-contract/invoice"
	"github.com/ledyanoy556/smart-billing-contract/types"
)

// ErrNotHeld is returned by distributed lockers when a lock expired or was
// taken over before it was released.
var ErrNotHeld = errors.New("locker: lock not held")

// Unlock releases a lock obtained from a Locker. It is safe to call once.
type Unlock func()

// Locker grants exclusive and shared locks on string keys.
type Locker interface {
	// Lock blocks until the exclusive lock on key is held or ctx is done.
	Lock(ctx context.Context, key string) (Unlock, error)

	// RLock blocks until a shared lock on key is held or ctx is done.
	// Implementations without shared locks may grant an exclusive one.
	RLock(ctx context.Context, key string) (Unlock, error)
}

// NextInvoiceKey guards invoice ID allocation. Ledgers sharing a store must
// share a Locker so that IDs stay dense across them.
const NextInvoiceKey = "invoice/next"

// InvoiceKey is the lock key guarding one invoice record.
func InvoiceKey(invID invoice.ID) string { return "invoice/" + invID.String() }

// AccountKey is the lock key guarding one account's pending balance.
func AccountKey(account types.Account) string { return "account/" + account.String() }

// LockAll takes exclusive locks on keys in the order given and returns one
// Unlock that releases them in reverse. On failure nothing stays locked.
func LockAll(ctx context.Context, l Locker, keys ...string) (Unlock, error) {
	held := make([]Unlock, 0, len(keys))
	release := func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i]()
		}
	}

	seen := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		unlock, err := l.Lock(ctx, key)
		if err != nil {
			release()
			return nil, err
		}
		held = append(held, unlock)
	}
	return release, nil
}
