package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/sqlitedriver"
	_ "github.com/xraph/grove/drivers/sqlitedriver/sqlitemigrate"
	"github.com/xraph/grove/migrate"

	ledger "github.com/ledyanoy556/smart-billing-contract"
	"github.com/ledyanoy556/smart-billing-contract/invoice"
	"github.com/ledyanoy556/smart-billing-contract/pending"
	ledgerstore "github.com/ledyanoy556/smart-billing-contract/store"
	"github.com/ledyanoy556/smart-billing-contract/types"
)

// compile-time interface check
var _ ledgerstore.Store = (*Store)(nil)

// Store implements store.Store using SQLite via Grove ORM.
type Store struct {
	db  *grove.DB
	sdb *sqlitedriver.SqliteDB
}

// New creates a new SQLite store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db:  db,
		sdb: sqlitedriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates the required tables and indexes using the grove orchestrator.
func (s *Store) Migrate(ctx context.Context) error {
	executor, err := migrate.NewExecutorFor(s.sdb)
	if err != nil {
		return fmt.Errorf("ledger/sqlite: create migration executor: %w", err)
	}
	orch := migrate.NewOrchestrator(executor, Migrations)
	if _, err := orch.Migrate(ctx); err != nil {
		return fmt.Errorf("ledger/sqlite: migration failed: %w", err)
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
	if _, err := s.sdb.NewInsert(m).Exec(ctx); err != nil {
		return fmt.Errorf("ledger/sqlite: create invoice %s: %w", inv.ID, err)
	}
	return nil
}

func (s *Store) GetInvoice(ctx context.Context, invID invoice.ID) (*invoice.Invoice, error) {
	m := new(invoiceModel)
	err := s.sdb.NewSelect(m).
		Where("id = ?", int64(invID)).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, ledger.ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("ledger/sqlite: get invoice %s: %w", invID, err)
	}
	return fromInvoiceModel(m), nil
}

func (s *Store) LastInvoiceID(ctx context.Context) (invoice.ID, bool, error) {
	var last int64
	err := s.sdb.NewRaw(`SELECT COALESCE(MAX(id), -1) FROM ledger_invoices`).Scan(ctx, &last)
	if err != nil {
		return 0, false, fmt.Errorf("ledger/sqlite: last invoice id: %w", err)
	}
	if last < 0 {
		return 0, false, nil
	}
	return invoice.ID(last), true, nil
}

func (s *Store) ListInvoiceIDsByIssuer(ctx context.Context, issuer types.Account) ([]invoice.ID, error) {
	var models []invoiceModel
	err := s.sdb.NewSelect(&models).
		Where("issuer = ?", issuer.String()).
		OrderExpr("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("ledger/sqlite: list invoices of issuer: %w", err)
	}
	return invoiceIDs(models), nil
}

func (s *Store) ListInvoiceIDsByPayer(ctx context.Context, payer types.Account) ([]invoice.ID, error) {
	var models []invoiceModel
	err := s.sdb.NewSelect(&models).
		Where("payer = ?", payer.String()).
		OrderExpr("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("ledger/sqlite: list invoices of payer: %w", err)
	}
	return invoiceIDs(models), nil
}

// ==================== Pending Return Store ====================

func (s *Store) GetPendingReturn(ctx context.Context, account types.Account) (*pending.Return, error) {
	m := new(pendingReturnModel)
	err := s.sdb.NewSelect(m).
		Where("account = ?", account.String()).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return pending.Zero(account), nil
		}
		return nil, fmt.Errorf("ledger/sqlite: get pending return: %w", err)
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
	tx, err := s.sdb.BeginTxQuery(ctx, nil)
	if err != nil {
		return fmt.Errorf("ledger/sqlite: begin commit: %w", err)
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
		return fmt.Errorf("ledger/sqlite: commit: %w", err)
	}
	return nil
}

// writer is the subset of the query surface shared by the pool and a
// transaction.
type writer interface {
	NewUpdate(model any) *sqlitedriver.UpdateQuery
	NewInsert(model any) *sqlitedriver.InsertQuery
}

var (
	_ writer = (*sqlitedriver.SqliteDB)(nil)
	_ writer = (*sqlitedriver.SqliteTx)(nil)
)

func updateInvoice(ctx context.Context, w writer, inv *invoice.Invoice) error {
	res, err := w.NewUpdate((*invoiceModel)(nil)).
		Set("paid_amount = ?", inv.PaidAmount.Int64()).
		Set("cancelled = ?", inv.Cancelled).
		Set("cancelled_at = ?", inv.CancelledAt).
		Set("total_collected = ?", inv.TotalCollected.Int64()).
		Set("total_withdrawn = ?", inv.TotalWithdrawn.Int64()).
		Set("total_refunded = ?", inv.TotalRefunded.Int64()).
		Set("updated_at = ?", inv.UpdatedAt).
		Where("id = ?", int64(inv.ID)).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("ledger/sqlite: update invoice %s: %w", inv.ID, err)
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
		return fmt.Errorf("ledger/sqlite: upsert pending return: %w", err)
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
