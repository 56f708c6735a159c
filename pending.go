package ledger

import (
	"context"

	"github.com/ledyanoy556/smart-billing-contract/event"
	"github.com/ledyanoy556/smart-billing-contract/id"
	"github.com/ledyanoy556/smart-billing-contract/locker"
	"github.com/ledyanoy556/smart-billing-contract/store"
	"github.com/ledyanoy556/smart-billing-contract/transfer"
	"github.com/ledyanoy556/smart-billing-contract/types"
)

// WithdrawPending transfers account's whole pending-returns balance to it
// and returns the amount moved. Rollback behaves as in Withdraw.
func (l *Ledger) WithdrawPending(ctx context.Context, account types.Account) (types.Amount, error) {
	if account.IsZero() {
		return 0, &ValidationError{Field: "account", Message: "must not be empty"}
	}

	unlock, err := l.locks.Lock(ctx, locker.AccountKey(account))
	if err != nil {
		return 0, err
	}
	defer unlock()

	balance, err := l.store.GetPendingReturn(ctx, account)
	if err != nil {
		return 0, err
	}

	drained, amount, err := balance.Drain(l.now())
	if err != nil {
		return 0, err
	}

	ctx = context.WithoutCancel(ctx)

	if err := l.store.Commit(ctx, store.Changeset{Pending: drained}); err != nil {
		return 0, err
	}

	req := transfer.Request{
		ID:      id.NewTransferID(),
		Account: account,
		Amount:  amount,
		Reason:  transfer.ReasonPendingReturn,
	}
	if err := l.payout(ctx, req, store.Changeset{Pending: balance}); err != nil {
		return 0, err
	}

	err = l.commit(ctx, nil, &event.PendingReturnWithdrawn{
		Account:    account,
		Amount:     amount,
		TransferID: req.ID,
	})
	if err != nil {
		return 0, err
	}

	l.logger.Info("pending return withdrawn",
		"account", account,
		"amount", amount,
		"transfer_id", req.ID,
	)
	return amount, nil
}
