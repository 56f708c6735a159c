// Package store defines the backing-store contract the ledger writes through.
// Implementations live in the memory, postgres, sqlite and mongo subpackages.
package store

import (
	"context"

	"github.com/ledyanoy556/smart-billing-contract/invoice"
	"github.com/ledyanoy556/smart-billing-contract/pending"
)

// Store is the unified storage interface for all ledger records.
type Store interface {
	invoice.Store
	pending.Store

	// Commit writes every non-nil image in cs. Invoice images replace the
	// stored record with the same ID, which must already exist. Pending
	// images are upserted by account.
	Commit(ctx context.Context, cs Changeset) error

	// Core methods
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}

// Changeset is the unit of state written by one ledger step.
type Changeset struct {
	Invoice *invoice.Invoice
	Pending *pending.Return
}

// IsEmpty reports whether the changeset writes nothing.
func (cs Changeset) IsEmpty() bool {
	return cs.Invoice == nil && cs.Pending == nil
}
