package audit

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"carbon-market/credit-exchange/exchange-backend/internal/ledger"
)

const archiveSchema = `
CREATE TABLE IF NOT EXISTS ledger_transactions (
	id          BIGINT PRIMARY KEY,
	buyer       UUID NOT NULL,
	seller      UUID NOT NULL,
	project_id  BIGINT NOT NULL,
	amount      BIGINT NOT NULL,
	price       BIGINT NOT NULL,
	height      BIGINT NOT NULL,
	tx_type     VARCHAR(16) NOT NULL,
	archived_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// PostgresArchive persists committed transaction records to postgres for
// long-term audit. Inserts run asynchronously off the operation path; the
// in-memory log stays authoritative, so a lost insert is logged, not fatal.
type PostgresArchive struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewPostgresArchive creates the archive table when missing and returns an
// archive bound to db.
func NewPostgresArchive(db *sqlx.DB, logger *zap.Logger) (*PostgresArchive, error) {
	if _, err := db.Exec(archiveSchema); err != nil {
		return nil, err
	}
	return &PostgresArchive{db: db, logger: logger}, nil
}

// Record implements Sink.
func (a *PostgresArchive) Record(tx *ledger.Transaction) {
	cp := *tx
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_, err := a.db.ExecContext(ctx, `
			INSERT INTO ledger_transactions (id, buyer, seller, project_id, amount, price, height, tx_type)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (id) DO NOTHING`,
			cp.ID, cp.Buyer, cp.Seller, cp.ProjectID, cp.Amount, cp.Price, cp.Height, string(cp.Type))
		if err != nil {
			a.logger.Error("Failed to archive transaction",
				zap.Uint64("tx_id", cp.ID), zap.Error(err))
		}
	}()
}

// ArchivedTransaction mirrors the ledger_transactions row layout.
type ArchivedTransaction struct {
	ID        uint64    `db:"id"`
	Buyer     string    `db:"buyer"`
	Seller    string    `db:"seller"`
	ProjectID uint64    `db:"project_id"`
	Amount    uint64    `db:"amount"`
	Price     uint64    `db:"price"`
	Height    uint64    `db:"height"`
	TxType    string    `db:"tx_type"`
	Archived  time.Time `db:"archived_at"`
}

// Count returns the number of archived rows.
func (a *PostgresArchive) Count(ctx context.Context) (int64, error) {
	var n int64
	err := a.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM ledger_transactions`)
	return n, err
}

// ListSince returns archived rows with id >= from, in id order.
func (a *PostgresArchive) ListSince(ctx context.Context, from uint64, limit int) ([]ArchivedTransaction, error) {
	var rows []ArchivedTransaction
	err := a.db.SelectContext(ctx, &rows, `
		SELECT id, buyer, seller, project_id, amount, price, height, tx_type, archived_at
		FROM ledger_transactions WHERE id >= $1 ORDER BY id LIMIT $2`, from, limit)
	return rows, err
}
