package postgres

import (
	"context"

	"github.com/xraph/grove/migrate"
)

// Migrations is the grove migration group for the ledger store.
var Migrations = migrate.NewGroup("ledger")

func init() {
	Migrations.MustRegister(
		&migrate.Migration{
			Name:    "create_ledger_invoices",
			Version: "20260101000001",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS ledger_invoices (
    id              BIGINT PRIMARY KEY,
    issuer          TEXT NOT NULL,
    payer           TEXT,
    amount          BIGINT NOT NULL CHECK (amount > 0),
    paid_amount     BIGINT NOT NULL DEFAULT 0,
    due_date        TIMESTAMPTZ,
    cancelled       BOOLEAN NOT NULL DEFAULT FALSE,
    cancelled_at    TIMESTAMPTZ,
    metadata        TEXT NOT NULL DEFAULT '',
    total_collected BIGINT NOT NULL DEFAULT 0,
    total_withdrawn BIGINT NOT NULL DEFAULT 0,
    total_refunded  BIGINT NOT NULL DEFAULT 0,
    created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    CONSTRAINT ledger_invoices_paid_range CHECK (paid_amount >= 0 AND paid_amount <= amount)
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
    amount     BIGINT NOT NULL DEFAULT 0 CHECK (amount >= 0),
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
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
