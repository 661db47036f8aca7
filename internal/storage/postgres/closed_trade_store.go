package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"trade-journal-lab/internal/domain"
	"trade-journal-lab/internal/storage"
)

// ClosedTradeStore implements storage.ClosedTradeStore using PostgreSQL.
type ClosedTradeStore struct {
	pool *Pool
}

// NewClosedTradeStore creates a new ClosedTradeStore.
func NewClosedTradeStore(pool *Pool) *ClosedTradeStore {
	return &ClosedTradeStore{pool: pool}
}

// Compile-time interface check.
var _ storage.ClosedTradeStore = (*ClosedTradeStore)(nil)

const closedTradeColumns = `trade_id, asset_key, root_symbol, symbol, asset_class, put_call, strike, expiry,
	multiplier, direction, quantity, entry_time, close_time, entry_price, close_price, commission,
	gross_pnl, net_pnl, close_reason`

// ReplaceAll deletes every stored trade and inserts trades in one transaction.
// Returns ErrDuplicateKey if trade_id repeats; the previous set is kept.
func (s *ClosedTradeStore) ReplaceAll(ctx context.Context, trades []*domain.ClosedTrade) error {
	for _, t := range trades {
		if t == nil || t.TradeID == "" {
			return storage.ErrInvalidInput
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM closed_trades`); err != nil {
		return fmt.Errorf("clear closed trades: %w", err)
	}

	query := `
		INSERT INTO closed_trades (position, ` + closedTradeColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
	`

	for i, t := range trades {
		_, err := tx.Exec(ctx, query,
			i,
			t.TradeID,
			string(t.AssetKey),
			t.RootSymbol,
			t.Symbol,
			string(t.AssetClass),
			t.Right,
			t.Strike,
			t.Expiry,
			t.Multiplier,
			string(t.Direction),
			t.Quantity,
			t.EntryTime,
			t.CloseTime,
			t.EntryPrice,
			t.ClosePrice,
			t.Commission,
			t.GrossPnL,
			t.NetPnL,
			string(t.CloseReason),
		)
		if err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert closed trade: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// GetAll retrieves all trades in stored order.
func (s *ClosedTradeStore) GetAll(ctx context.Context) ([]*domain.ClosedTrade, error) {
	query := `SELECT ` + closedTradeColumns + ` FROM closed_trades ORDER BY position ASC`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all closed trades: %w", err)
	}
	defer rows.Close()

	return scanClosedTrades(rows)
}

// scanClosedTrades scans multiple rows into a slice of ClosedTrade.
func scanClosedTrades(rows pgx.Rows) ([]*domain.ClosedTrade, error) {
	var trades []*domain.ClosedTrade

	for rows.Next() {
		var t domain.ClosedTrade
		var assetKey, assetClass, direction, reason string

		err := rows.Scan(
			&t.TradeID,
			&assetKey,
			&t.RootSymbol,
			&t.Symbol,
			&assetClass,
			&t.Right,
			&t.Strike,
			&t.Expiry,
			&t.Multiplier,
			&direction,
			&t.Quantity,
			&t.EntryTime,
			&t.CloseTime,
			&t.EntryPrice,
			&t.ClosePrice,
			&t.Commission,
			&t.GrossPnL,
			&t.NetPnL,
			&reason,
		)
		if err != nil {
			return nil, fmt.Errorf("scan closed trade: %w", err)
		}
		t.AssetKey = domain.AssetKey(assetKey)
		t.AssetClass = domain.AssetClass(assetClass)
		t.Direction = domain.Direction(direction)
		t.CloseReason = domain.CloseReason(reason)
		trades = append(trades, &t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate closed trades: %w", err)
	}
	return trades, nil
}
