// Package pending implements the pull-withdrawal sub-ledger: per-account
// balances owed by the ledger that the account must explicitly withdraw.
//
// Balances grow only through overpayments and cancellation refunds and are
// drained only by a pending-return withdrawal.
package pending

import (
	"context"
	"time"

	"github.com/ledyanoy556/smart-billing-contract/types"
)

// Return is the balance owed to one account.
type Return struct {
	types.Entity
	Account types.Account `json:"account"`
	Amount  types.Amount  `json:"amount"`
}

// Zero returns an empty balance for account, used when no record exists yet.
func Zero(account types.Account) *Return {
	return &Return{Account: account}
}

// Clone returns a copy of r.
func (r *Return) Clone() *Return {
	if r == nil {
		return nil
	}
	c := *r
	return &c
}

// Credit returns a new image with amount added to the balance.
func (r *Return) Credit(amount types.Amount, at time.Time) (*Return, error) {
	if !amount.IsPositive() {
		return nil, types.ErrInvalidAmount
	}
	total, err := r.Amount.Add(amount)
	if err != nil {
		return nil, err
	}

	next := r.Clone()
	if next.CreatedAt.IsZero() {
		next.Entity = types.NewEntityAt(at)
	}
	next.Amount = total
	next.TouchAt(at)
	return next, nil
}

// Drain returns a zeroed image and the amount that was owed.
func (r *Return) Drain(at time.Time) (*Return, types.Amount, error) {
	if !r.Amount.IsPositive() {
		return nil, 0, types.ErrNoPendingReturns
	}
	next := r.Clone()
	next.Amount = 0
	next.TouchAt(at)
	return next, r.Amount, nil
}

// Store is the pending-returns half of the ledger's backing store.
type Store interface {
	// GetPendingReturn returns the balance for account. An account that was
	// never credited yields a zero balance, not an error.
	GetPendingReturn(ctx context.Context, account types.Account) (*Return, error)
}
