// Package ledger is an invoice ledger with partial payments, overpayment
// credits, issuer withdrawals and cancellation refunds.
//
// Ledger is designed as a library, not a service. Import it directly into your
// Go application and give it a store and a transferer:
//
//   - A store.Store holds invoices, the issuer and payer indices, and the
//     pending-returns balances (memory, PostgreSQL, SQLite or MongoDB).
//   - A transfer.Transferer moves value out of the ledger when an issuer
//     withdraws or an account collects its pending returns.
//
// # Quick Start
//
//	import (
//	    "github.com/ledyanoy556/smart-billing-contract"
//	    "github.com/ledyanoy556/smart-billing-contract/store/postgres"
//	)
//
//	st := postgres.New(db)
//	l := ledger.New(st, myTransferer)
//	if err := l.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer l.Stop()
//
//	invID, err := l.CreateInvoice(ctx, ledger.InvoiceParams{
//	    Issuer: "acme",
//	    Payer:  ledger.AccountPtr("bob"),
//	    Amount: 100,
//	})
//
//	payment, err := l.PayInvoice(ctx, invID, "bob", 150) // applies 100, credits 50
//	amount, err := l.Withdraw(ctx, invID, "acme")        // transfers 100 to acme
//	amount, err = l.WithdrawPending(ctx, "bob")          // transfers 50 to bob
//
// # Amounts
//
// Amounts are int64 counts of the smallest currency unit. The ledger holds a
// single asset; there is no currency field.
//
// # Paid amount
//
// Invoice.PaidAmount is what the ledger currently holds for an invoice. A
// withdrawal resets it to 0, after which GetRemainingAmount reports the full
// amount as owed again and further payments are accepted. TotalCollected,
// TotalWithdrawn and TotalRefunded record history and feed no rule.
//
// # Consistency
//
// Mutations are serialized per invoice and per account through a
// locker.Locker (in-process by default, Redis for several processes).
// Withdrawals zero the held balance before calling the transferer and write
// the previous state back if the transfer fails. Events are delivered to
// plugins once per successful mutation, in commit order, each with a
// sequence number and an evt_ TypeID.
package ledger
