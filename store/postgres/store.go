package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/pgdriver"
	_ "github.com/xraph/grove/drivers/pgdriver/pgmigrate"
	"github.com/xraph/grove/migrate"

	ledger "github.com/ledyanoy556/smart-billing-contract"
	"github.com/ledyanoy556/smart-billing-contract/invoice"
	"github.com/ledyanoy556/smart-billing-contract/pending"
	ledgerstore "github.com/ledyanoy556/smart-billing-contract/store"
	"github.com/ledyanoy556/smart-billing-contract/types"
)

// compile-time interface check
var _ ledgerstore.Store = (*Store)(nil)

// Store implements store.Store using PostgreSQL via Grove ORM.
type Store struct {
	db *grove.DB
	pg *pgdriver.PgDB
}

// New creates a new PostgreSQL store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db: db,
		pg: pgdriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates the required tables and indexes using the grove orchestrator.
func (s *Store) Migrate(ctx context.Context) error {
	executor, err := migrate.NewExecutorFor(s.pg)
	if err != nil {
		return fmt.Errorf("ledger/postgres: create migration executor: %w", err)
	}
	orch := migrate.NewOrchestrator(executor, Migrations)
	if _, err := orch.Migrate(ctx); err != nil {
		return fmt.Errorf("ledger/postgres: migration failed: %w", err)
	}
	return nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ==================== Invoice Store ====================

func (s *Store) CreateInvoice(ctx context.Context, inv *invoice.Invoice) error {
	m := toInvoiceModel(inv)
	if _, err := s.pg.NewInsert(m).Exec(ctx); err != nil {
		return fmt.Errorf("ledger/postgres: create invoice %s: %w", inv.ID, err)
	}
	return nil
}

func (s *Store) GetInvoice(ctx context.Context, invID invoice.ID) (*invoice.Invoice, error) {
	m := new(invoiceModel)
	err := s.pg.NewSelect(m).
		Where("id = $1", int64(invID)).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, ledger.ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("ledger/postgres: get invoice %s: %w", invID, err)
	}
	return fromInvoiceModel(m), nil
}

func (s *Store) LastInvoiceID(ctx context.Context) (invoice.ID, bool, error) {
	var last int64
	err := s.pg.NewRaw(`SELECT COALESCE(MAX(id), -1) FROM ledger_invoices`).Scan(ctx, &last)
	if err != nil {
		return 0, false, fmt.Errorf("ledger/postgres: last invoice id: %w", err)
	}
	if last < 0 {
		return 0, false, nil
	}
	return invoice.ID(last), true, nil
}

func (s *Store) ListInvoiceIDsByIssuer(ctx context.Context, issuer types.Account) ([]invoice.ID, error) {
	var models []invoiceModel
	err := s.pg.NewSelect(&models).
		Where("issuer = $1", issuer.String()).
		OrderExpr("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("ledger/postgres: list invoices of issuer: %w", err)
	}
	return invoiceIDs(models), nil
}

func (s *Store) ListInvoiceIDsByPayer(ctx context.Context, payer types.Account) ([]invoice.ID, error) {
	var models []invoiceModel
	err := s.pg.NewSelect(&models).
		Where("payer = $1", payer.String()).
		OrderExpr("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("ledger/postgres: list invoices of payer: %w", err)
	}
	return invoiceIDs(models), nil
}

// ==================== Pending Return Store ====================

func (s *Store) GetPendingReturn(ctx context.Context, account types.Account) (*pending.Return, error) {
	m := new(pendingReturnModel)
	err := s.pg.NewSelect(m).
		Where("account = $1", account.String()).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return pending.Zero(account), nil
		}
		return nil, fmt.Errorf("ledger/postgres: get pending return: %w", err)
	}
	return fromPendingReturnModel(m), nil
}

// ==================== Commit ====================

// Commit writes the invoice image and the pending-return image inside one
// transaction, so either both land or neither does.
func (s *Store) Commit(ctx context.Context, cs ledgerstore.Changeset) error {
	if cs.IsEmpty() {
		return nil
	}
	tx, err := s.pg.BeginTxQuery(ctx, nil)
	if err != nil {
		return fmt.Errorf("ledger/postgres: begin commit: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if cs.Invoice != nil {
		if err := updateInvoice(ctx, tx, cs.Invoice); err != nil {
			return err
		}
	}
	if cs.Pending != nil {
		if err := upsertPendingReturn(ctx, tx, cs.Pending); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("ledger/postgres: commit: %w", err)
	}
	return nil
}

// writer is the subset of the query surface shared by the pool and a
// transaction.
type writer interface {
	NewUpdate(model any) *pgdriver.UpdateQuery
	NewInsert(model any) *pgdriver.InsertQuery
}

var (
	_ writer = (*pgdriver.PgDB)(nil)
	_ writer = (*pgdriver.PgTx)(nil)
)

func updateInvoice(ctx context.Context, w writer, inv *invoice.Invoice) error {
	res, err := w.NewUpdate((*invoiceModel)(nil)).
		Set("paid_amount = $1", inv.PaidAmount.Int64()).
		Set("cancelled = $2", inv.Cancelled).
		Set("cancelled_at = $3", inv.CancelledAt).
		Set("total_collected = $4", inv.TotalCollected.Int64()).
		Set("total_withdrawn = $5", inv.TotalWithdrawn.Int64()).
		Set("total_refunded = $6", inv.TotalRefunded.Int64()).
		Set("updated_at = $7", inv.UpdatedAt).
		Where("id = $8", int64(inv.ID)).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("ledger/postgres: update invoice %s: %w", inv.ID, err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ledger.ErrInvoiceNotFound
	}
	return nil
}

func upsertPendingReturn(ctx context.Context, w writer, r *pending.Return) error {
	m := toPendingReturnModel(r)
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now()
	}
	if m.UpdatedAt.IsZero() {
		m.UpdatedAt = m.CreatedAt
	}
	_, err := w.NewInsert(m).
		OnConflict("(account) DO UPDATE").
		Set("amount = EXCLUDED.amount").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("ledger/postgres: upsert pending return: %w", err)
	}
	return nil
}

// ==================== Helpers ====================

// now returns the current UTC time.
func now() time.Time {
	return time.Now().UTC()
}

func invoiceIDs(models []invoiceModel) []invoice.ID {
	ids := make([]invoice.ID, len(models))
	for i := range models {
		ids[i] = invoice.ID(models[i].ID)
	}
	return ids
}

// isNoRows checks for the standard sql.ErrNoRows sentinel.
func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
