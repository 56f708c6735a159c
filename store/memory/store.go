// Package memory is an in-process store.Store backed by maps under a single
// RWMutex. It is the reference backend for tests and single-process use.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/ledyanoy556/smart-billing-contract"
	"github.com/ledyanoy556/smart-billing-contract/invoice"
	"github.com/ledyanoy556/smart-billing-contract/pending"
	"github.com/ledyanoy556/smart-billing-contract/store"
	"github.com/ledyanoy556/smart-billing-contract/types"
)

// Compile-time interface check.
var _ store.Store = (*Store)(nil)

type Store struct {
	mu     sync.RWMutex
	closed bool

	// Invoice storage. IDs are dense, so the slice index is the invoice ID.
	invoices []*invoice.Invoice

	// Indices, append-only in creation order.
	byIssuer map[types.Account][]invoice.ID
	byPayer  map[types.Account][]invoice.ID

	// Pending-returns storage
	pending map[types.Account]*pending.Return
}

func New() *Store {
	return &Store{
		invoices: make([]*invoice.Invoice, 0),
		byIssuer: make(map[types.Account][]invoice.ID),
		byPayer:  make(map[types.Account][]invoice.ID),
		pending:  make(map[types.Account]*pending.Return),
	}
}

// Invoice Store implementation
func (s *Store) CreateInvoice(_ context.Context, inv *invoice.Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ledger.ErrStoreClosed
	}
	if uint64(inv.ID) != uint64(len(s.invoices)) {
		return fmt.Errorf("memory: create invoice %s: expected next id %d", inv.ID, len(s.invoices))
	}

	s.invoices = append(s.invoices, inv.Clone())
	s.byIssuer[inv.Issuer] = append(s.byIssuer[inv.Issuer], inv.ID)
	if inv.Payer != nil {
		s.byPayer[*inv.Payer] = append(s.byPayer[*inv.Payer], inv.ID)
	}
	return nil
}

func (s *Store) GetInvoice(_ context.Context, invID invoice.ID) (*invoice.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ledger.ErrStoreClosed
	}
	if uint64(invID) >= uint64(len(s.invoices)) {
		return nil, ledger.ErrInvoiceNotFound
	}
	return s.invoices[invID].Clone(), nil
}

func (s *Store) LastInvoiceID(_ context.Context) (invoice.ID, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return 0, false, ledger.ErrStoreClosed
	}
	if len(s.invoices) == 0 {
		return 0, false, nil
	}
	return invoice.ID(len(s.invoices) - 1), true, nil
}

func (s *Store) ListInvoiceIDsByIssuer(_ context.Context, issuer types.Account) ([]invoice.ID, error) {
	return s.list(s.byIssuer, issuer)
}

func (s *Store) ListInvoiceIDsByPayer(_ context.Context, payer types.Account) ([]invoice.ID, error) {
	return s.list(s.byPayer, payer)
}

func (s *Store) list(index map[types.Account][]invoice.ID, account types.Account) ([]invoice.ID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ledger.ErrStoreClosed
	}
	ids := index[account]
	result := make([]invoice.ID, len(ids))
	copy(result, ids)
	return result, nil
}

// Pending-returns Store implementation
func (s *Store) GetPendingReturn(_ context.Context, account types.Account) (*pending.Return, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ledger.ErrStoreClosed
	}
	if r, ok := s.pending[account]; ok {
		return r.Clone(), nil
	}
	return pending.Zero(account), nil
}

// Commit applies cs as one write: either every image lands or none does.
func (s *Store) Commit(_ context.Context, cs store.Changeset) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ledger.ErrStoreClosed
	}
	if inv := cs.Invoice; inv != nil {
		if uint64(inv.ID) >= uint64(len(s.invoices)) {
			return ledger.ErrInvoiceNotFound
		}
		s.invoices[inv.ID] = inv.Clone()
	}
	if r := cs.Pending; r != nil {
		s.pending[r.Account] = r.Clone()
	}
	return nil
}

// Store management
func (s *Store) Migrate(_ context.Context) error {
	return nil // No migration needed for memory store
}

func (s *Store) Ping(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return ledger.ErrStoreClosed
	}
	return nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	return nil
}
