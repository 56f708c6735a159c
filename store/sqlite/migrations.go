package sqlite

import (
	"context"

	"github.com/xraph/grove/migrate"
)

// Migrations is the grove migration group for the ledger store (SQLite).
var Migrations = migrate.NewGroup("ledger")

func init() {
	Migrations.MustRegister(
		&migrate.Migration{
			Name:    "create_ledger_invoices",
			Version: "20260101000001",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS ledger_invoices (
    id              INTEGER PRIMARY KEY,
    issuer          TEXT NOT NULL,
    payer           TEXT,
    amount          INTEGER NOT NULL CHECK (amount > 0),
    paid_amount     INTEGER NOT NULL DEFAULT 0,
    due_date        TIMESTAMP,
    cancelled       INTEGER NOT NULL DEFAULT 0,
    cancelled_at    TIMESTAMP,
    metadata        TEXT NOT NULL DEFAULT '',
    total_collected INTEGER NOT NULL DEFAULT 0,
    total_withdrawn INTEGER NOT NULL DEFAULT 0,
    total_refunded  INTEGER NOT NULL DEFAULT 0,
    created_at      TIMESTAMP NOT NULL DEFAULT (datetime('now')),
    updated_at      TIMESTAMP NOT NULL DEFAULT (datetime('now')),
    CHECK (paid_amount >= 0 AND paid_amount <= amount)
);

CREATE INDEX IF NOT EXISTS idx_ledger_invoices_issuer ON ledger_invoices (issuer, id);
CREATE INDEX IF NOT EXISTS idx_ledger_invoices_payer ON ledger_invoices (payer, id) WHERE payer IS NOT NULL;
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS ledger_invoices`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_ledger_pending_returns",
			Version: "20260101000002",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS ledger_pending_returns (
    account    TEXT PRIMARY KEY,
    amount     INTEGER NOT NULL DEFAULT 0 CHECK (amount >= 0),
    created_at TIMESTAMP NOT NULL DEFAULT (datetime('now')),
    updated_at TIMESTAMP NOT NULL DEFAULT (datetime('now'))
);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS ledger_pending_returns`)
				return err
			},
		},
	)
}
