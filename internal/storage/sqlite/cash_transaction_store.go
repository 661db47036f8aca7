package sqlite

import (
	"context"
	"fmt"

	"trade-journal-lab/internal/domain"
	"trade-journal-lab/internal/storage"
)

// CashTransactionStore implements storage.CashTransactionStore using SQLite.
type CashTransactionStore struct {
	db *DB
}

// NewCashTransactionStore creates a new CashTransactionStore.
func NewCashTransactionStore(db *DB) *CashTransactionStore {
	return &CashTransactionStore{db: db}
}

// Compile-time interface check.
var _ storage.CashTransactionStore = (*CashTransactionStore)(nil)

const cashTransactionColumns = `transaction_id, type, asset_class, symbol, amount, date, description, currency`

// Merge inserts transactions with INSERT OR IGNORE in one transaction.
func (s *CashTransactionStore) Merge(ctx context.Context, txs []*domain.CashTransaction) (int, error) {
	for _, c := range txs {
		if c == nil || c.TransactionID == "" {
			return 0, storage.ErrInvalidInput
		}
	}
	if len(txs) == 0 {
		return 0, nil
	}

	tx, err := s.db.sql.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO cash_transactions (`+cashTransactionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, c := range txs {
		res, err := stmt.ExecContext(ctx,
			c.TransactionID, c.Type, string(c.AssetClass), c.Symbol, c.Amount, c.Date, c.Description, c.Currency,
		)
		if err != nil {
			return 0, fmt.Errorf("merge cash transaction %s: %w", c.TransactionID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("rows affected: %w", err)
		}
		inserted += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit tx: %w", err)
	}
	return inserted, nil
}

// GetAll retrieves all transactions ordered by date ASC, then arrival order.
func (s *CashTransactionStore) GetAll(ctx context.Context) ([]*domain.CashTransaction, error) {
	rows, err := s.db.sql.QueryContext(ctx,
		`SELECT `+cashTransactionColumns+` FROM cash_transactions ORDER BY date ASC, seq ASC`)
	if err != nil {
		return nil, fmt.Errorf("get all cash transactions: %w", err)
	}
	defer rows.Close()

	var result []*domain.CashTransaction
	for rows.Next() {
		var c domain.CashTransaction
		var assetClass string
		if err := rows.Scan(
			&c.TransactionID, &c.Type, &assetClass, &c.Symbol, &c.Amount, &c.Date, &c.Description, &c.Currency,
		); err != nil {
			return nil, fmt.Errorf("scan cash transaction: %w", err)
		}
		c.AssetClass = domain.AssetClass(assetClass)
		result = append(result, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cash transactions: %w", err)
	}
	return result, nil
}
