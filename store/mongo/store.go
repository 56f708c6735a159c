package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/mongodriver"

	ledger "github.com/ledyanoy556/smart-billing-contract"
	"github.com/ledyanoy556/smart-billing-contract/invoice"
	"github.com/ledyanoy556/smart-billing-contract/pending"
	ledgerstore "github.com/ledyanoy556/smart-billing-contract/store"
	"github.com/ledyanoy556/smart-billing-contract/types"
)

// Collection name constants.
const (
	colInvoices       = "ledger_invoices"
	colPendingReturns = "ledger_pending_returns"
)

// compile-time interface check
var _ ledgerstore.Store = (*Store)(nil)

// Store implements store.Store using MongoDB via Grove ORM.
type Store struct {
	db  *grove.DB
	mdb *mongodriver.MongoDB

	transactional bool
}

// Option configures a Store.
type Option func(*Store)

// WithTransactions makes Commit write both images inside one multi-document
// transaction. The server must be a replica set or sharded cluster.
func WithTransactions() Option {
	return func(s *Store) { s.transactional = true }
}

// New creates a new MongoDB store backed by Grove ORM.
func New(db *grove.DB, opts ...Option) *Store {
	s := &Store{
		db:  db,
		mdb: mongodriver.Unwrap(db),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Transactional reports whether Commit runs inside a transaction.
func (s *Store) Transactional() bool { return s.transactional }

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates indexes for all ledger collections.
func (s *Store) Migrate(ctx context.Context) error {
	indexes := migrationIndexes()

	for col, models := range indexes {
		if len(models) == 0 {
			continue
		}
		_, err := s.mdb.Collection(col).Indexes().CreateMany(ctx, models)
		if err != nil {
			return fmt.Errorf("ledger/mongo: migrate %s indexes: %w", col, err)
		}
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
	_, err := s.mdb.NewInsert(m).Exec(ctx)
	if err != nil {
		return fmt.Errorf("ledger/mongo: create invoice %s: %w", inv.ID, err)
	}
	return nil
}

func (s *Store) GetInvoice(ctx context.Context, invID invoice.ID) (*invoice.Invoice, error) {
	var m invoiceModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": int64(invID)}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, ledger.ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("ledger/mongo: get invoice %s: %w", invID, err)
	}
	return fromInvoiceModel(&m), nil
}

func (s *Store) LastInvoiceID(ctx context.Context) (invoice.ID, bool, error) {
	var m invoiceModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{}).
		Sort(bson.D{{Key: "_id", Value: -1}}).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("ledger/mongo: last invoice id: %w", err)
	}
	return invoice.ID(m.ID), true, nil
}

func (s *Store) ListInvoiceIDsByIssuer(ctx context.Context, issuer types.Account) ([]invoice.ID, error) {
	return s.listInvoiceIDs(ctx, bson.M{"issuer": issuer.String()})
}

func (s *Store) ListInvoiceIDsByPayer(ctx context.Context, payer types.Account) ([]invoice.ID, error) {
	return s.listInvoiceIDs(ctx, bson.M{"payer": payer.String()})
}

func (s *Store) listInvoiceIDs(ctx context.Context, filter bson.M) ([]invoice.ID, error) {
	var models []invoiceModel
	err := s.mdb.NewFind(&models).
		Filter(filter).
		Sort(bson.D{{Key: "_id", Value: 1}}).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("ledger/mongo: list invoices: %w", err)
	}

	return invoiceIDs(models), nil
}

// ==================== Pending Return Store ====================

func (s *Store) GetPendingReturn(ctx context.Context, account types.Account) (*pending.Return, error) {
	var m pendingReturnModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": account.String()}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return pending.Zero(account), nil
		}
		return nil, fmt.Errorf("ledger/mongo: get pending return: %w", err)
	}
	return fromPendingReturnModel(&m), nil
}

// ==================== Commit ====================

// Commit writes the invoice image first, then the pending-return image.
// Without WithTransactions a failure after the first write leaves it in
// place; the ledger restores pre-images on error.
func (s *Store) Commit(ctx context.Context, cs ledgerstore.Changeset) error {
	if cs.IsEmpty() {
		return nil
	}
	if !s.transactional {
		return commit(ctx, s.mdb, cs)
	}

	raw, err := s.mdb.GroveTx(ctx, 0, false)
	if err != nil {
		return fmt.Errorf("ledger/mongo: begin commit: %w", err)
	}
	tx, ok := raw.(*mongodriver.MongoTx)
	if !ok {
		return fmt.Errorf("ledger/mongo: unexpected transaction type %T", raw)
	}
	if err := commit(ctx, tx, cs); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("ledger/mongo: commit: %w", err)
	}
	return nil
}

// updater is satisfied by both the pool and a transaction.
type updater interface {
	NewUpdate(model any) *mongodriver.UpdateQuery
}

var (
	_ updater = (*mongodriver.MongoDB)(nil)
	_ updater = (*mongodriver.MongoTx)(nil)
)

func commit(ctx context.Context, u updater, cs ledgerstore.Changeset) error {
	if cs.Invoice != nil {
		if err := updateInvoice(ctx, u, cs.Invoice); err != nil {
			return err
		}
	}
	if cs.Pending != nil {
		if err := upsertPendingReturn(ctx, u, cs.Pending); err != nil {
			return err
		}
	}
	return nil
}

func updateInvoice(ctx context.Context, u updater, inv *invoice.Invoice) error {
	res, err := u.NewUpdate((*invoiceModel)(nil)).
		Filter(bson.M{"_id": int64(inv.ID)}).
		Set("paid_amount", inv.PaidAmount.Int64()).
		Set("cancelled", inv.Cancelled).
		Set("cancelled_at", inv.CancelledAt).
		Set("total_collected", inv.TotalCollected.Int64()).
		Set("total_withdrawn", inv.TotalWithdrawn.Int64()).
		Set("total_refunded", inv.TotalRefunded.Int64()).
		Set("updated_at", inv.UpdatedAt).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("ledger/mongo: update invoice %s: %w", inv.ID, err)
	}
	if res.MatchedCount() == 0 {
		return ledger.ErrInvoiceNotFound
	}
	return nil
}

func upsertPendingReturn(ctx context.Context, u updater, r *pending.Return) error {
	m := toPendingReturnModel(r)
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now()
	}
	if m.UpdatedAt.IsZero() {
		m.UpdatedAt = m.CreatedAt
	}

	_, err := u.NewUpdate(m).
		Filter(bson.M{"_id": m.Account}).
		SetUpdate(bson.M{
			"$set": bson.M{
				"amount":     m.Amount,
				"updated_at": m.UpdatedAt,
			},
			"$setOnInsert": bson.M{
				"created_at": m.CreatedAt,
			},
		}).
		Upsert().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("ledger/mongo: upsert pending return: %w", err)
	}
	return nil
}

// ==================== Helpers ====================

// now returns the current UTC time.
func now() time.Time {
	return time.Now().UTC()
}

// invoiceIDs extracts IDs from models, preserving their order.
func invoiceIDs(models []invoiceModel) []invoice.ID {
	ids := make([]invoice.ID, len(models))
	for i := range models {
		ids[i] = invoice.ID(models[i].ID)
	}
	return ids
}

// isNoDocuments checks if an error wraps mongo.ErrNoDocuments.
func isNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}

// migrationIndexes returns the index definitions for all ledger collections.
func migrationIndexes() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		colInvoices: {
			{Keys: bson.D{{Key: "issuer", Value: 1}, {Key: "_id", Value: 1}}},
			{
				Keys:    bson.D{{Key: "payer", Value: 1}, {Key: "_id", Value: 1}},
				Options: options.Index().SetSparse(true),
			},
		},
		colPendingReturns: {
			{Keys: bson.D{{Key: "updated_at", Value: -1}}},
		},
	}
}
