// Package transfertest provides an in-memory Transferer for tests.
package transfertest

import (
	"context"
	"errors"
	"sync"

	"github.com/ledyanoy556/smart-billing-contract/transfer"
	"github.com/ledyanoy556/smart-billing-contract/types"
)

// ErrDeclined is the default failure returned by a Bank set to fail.
var ErrDeclined = errors.New("transfertest: transfer declined")

// Bank records external balances and every transfer request it receives.
type Bank struct {
	mu       sync.Mutex
	balances map[types.Account]types.Amount
	requests []transfer.Request
	failNext int
	failWith error
	hook     func(transfer.Request)
}

// Compile-time interface check.
var _ transfer.Transferer = (*Bank)(nil)

// NewBank returns a bank with every balance at zero.
func NewBank() *Bank {
	return &Bank{balances: make(map[types.Account]types.Amount)}
}

// Transfer implements transfer.Transferer.
func (b *Bank) Transfer(ctx context.Context, req transfer.Request) error {
	b.mu.Lock()
	hook := b.hook
	b.mu.Unlock()
	if hook != nil {
		hook(req)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.requests = append(b.requests, req)
	if b.failNext > 0 {
		b.failNext--
		return b.failWith
	}
	b.balances[req.Account] += req.Amount
	return nil
}

// FailNext makes the next n transfers fail with err, or ErrDeclined if err is nil.
func (b *Bank) FailNext(n int, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err == nil {
		err = ErrDeclined
	}
	b.failNext = n
	b.failWith = err
}

// OnTransfer registers fn to run at the start of every transfer, before the
// outcome is decided. Tests use it to act while the ledger holds its locks.
func (b *Bank) OnTransfer(fn func(transfer.Request)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.hook = fn
}

// Balance returns the external balance of account.
func (b *Bank) Balance(account types.Account) types.Amount {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.balances[account]
}

// Requests returns every request received, failed ones included.
func (b *Bank) Requests() []transfer.Request {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]transfer.Request, len(b.requests))
	copy(out, b.requests)
	return out
}
