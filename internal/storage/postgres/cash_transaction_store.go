package postgres

import (
	"context"
	"fmt"

	"trade-journal-lab/internal/domain"
	"trade-journal-lab/internal/storage"
)

// CashTransactionStore implements storage.CashTransactionStore using PostgreSQL.
type CashTransactionStore struct {
	pool *Pool
}

// NewCashTransactionStore creates a new CashTransactionStore.
func NewCashTransactionStore(pool *Pool) *CashTransactionStore {
	return &CashTransactionStore{pool: pool}
}

// Compile-time interface check.
var _ storage.CashTransactionStore = (*CashTransactionStore)(nil)

// Merge adds transactions not stored yet, in one transaction.
func (s *CashTransactionStore) Merge(ctx context.Context, txs []*domain.CashTransaction) (int, error) {
	for _, c := range txs {
		if c == nil || c.TransactionID == "" {
			return 0, storage.ErrInvalidInput
		}
	}
	if len(txs) == 0 {
		return 0, nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO cash_transactions (
			transaction_id, type, asset_class, symbol, amount, date, description, currency
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (transaction_id) DO NOTHING
	`

	inserted := 0
	for _, c := range txs {
		tag, err := tx.Exec(ctx, query,
			c.TransactionID,
			c.Type,
			string(c.AssetClass),
			c.Symbol,
			c.Amount,
			c.Date,
			c.Description,
			c.Currency,
		)
		if err != nil {
			return 0, fmt.Errorf("merge cash transaction %s: %w", c.TransactionID, err)
		}
		inserted += int(tag.RowsAffected())
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit tx: %w", err)
	}
	return inserted, nil
}

// GetAll retrieves all transactions ordered by date ASC, then arrival order.
func (s *CashTransactionStore) GetAll(ctx context.Context) ([]*domain.CashTransaction, error) {
	query := `
		SELECT transaction_id, type, asset_class, symbol, amount, date, description, currency
		FROM cash_transactions
		ORDER BY date ASC, seq ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all cash transactions: %w", err)
	}
	defer rows.Close()

	var result []*domain.CashTransaction
	for rows.Next() {
		var c domain.CashTransaction
		var assetClass string
		if err := rows.Scan(
			&c.TransactionID,
			&c.Type,
			&assetClass,
			&c.Symbol,
			&c.Amount,
			&c.Date,
			&c.Description,
			&c.Currency,
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
