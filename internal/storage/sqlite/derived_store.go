package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"trade-journal-lab/internal/domain"
	"trade-journal-lab/internal/storage"
)

// ClosedTradeStore implements storage.ClosedTradeStore using SQLite.
type ClosedTradeStore struct {
	db *DB
}

// NewClosedTradeStore creates a new ClosedTradeStore.
func NewClosedTradeStore(db *DB) *ClosedTradeStore {
	return &ClosedTradeStore{db: db}
}

var _ storage.ClosedTradeStore = (*ClosedTradeStore)(nil)

const closedTradeColumns = `trade_id, asset_key, root_symbol, symbol, asset_class, put_call, strike, expiry,
	multiplier, direction, quantity, entry_time, close_time, entry_price, close_price, commission,
	gross_pnl, net_pnl, close_reason`

// ReplaceAll swaps the stored trades for trades in one transaction.
func (s *ClosedTradeStore) ReplaceAll(ctx context.Context, trades []*domain.ClosedTrade) error {
	for _, t := range trades {
		if t == nil || t.TradeID == "" {
			return storage.ErrInvalidInput
		}
	}

	query := `INSERT INTO closed_trades (position, ` + closedTradeColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	return s.db.replaceAll(ctx, "closed_trades", len(trades), func(tx *sql.Tx, i int) error {
		t := trades[i]
		_, err := tx.ExecContext(ctx, query,
			i, t.TradeID, string(t.AssetKey), t.RootSymbol, t.Symbol, string(t.AssetClass), t.Right, t.Strike, t.Expiry,
			t.Multiplier, string(t.Direction), t.Quantity, t.EntryTime, t.CloseTime, t.EntryPrice, t.ClosePrice, t.Commission,
			t.GrossPnL, t.NetPnL, string(t.CloseReason),
		)
		return err
	})
}

// GetAll retrieves all trades in stored order.
func (s *ClosedTradeStore) GetAll(ctx context.Context) ([]*domain.ClosedTrade, error) {
	rows, err := s.db.sql.QueryContext(ctx,
		`SELECT `+closedTradeColumns+` FROM closed_trades ORDER BY position ASC`)
	if err != nil {
		return nil, fmt.Errorf("get all closed trades: %w", err)
	}
	defer rows.Close()

	var trades []*domain.ClosedTrade
	for rows.Next() {
		var t domain.ClosedTrade
		var assetKey, assetClass, direction, reason string
		if err := rows.Scan(
			&t.TradeID, &assetKey, &t.RootSymbol, &t.Symbol, &assetClass, &t.Right, &t.Strike, &t.Expiry,
			&t.Multiplier, &direction, &t.Quantity, &t.EntryTime, &t.CloseTime, &t.EntryPrice, &t.ClosePrice, &t.Commission,
			&t.GrossPnL, &t.NetPnL, &reason,
		); err != nil {
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

// OpenPositionStore implements storage.OpenPositionStore using SQLite.
type OpenPositionStore struct {
	db *DB
}

// NewOpenPositionStore creates a new OpenPositionStore.
func NewOpenPositionStore(db *DB) *OpenPositionStore {
	return &OpenPositionStore{db: db}
}

var _ storage.OpenPositionStore = (*OpenPositionStore)(nil)

const openPositionColumns = `asset_key, root_symbol, symbol, asset_class, quantity, avg_price, multiplier,
	lot_count, opened_at`

// ReplaceAll swaps the stored positions for positions in one transaction.
func (s *OpenPositionStore) ReplaceAll(ctx context.Context, positions []*domain.OpenPosition) error {
	for _, p := range positions {
		if p == nil || p.AssetKey == "" {
			return storage.ErrInvalidInput
		}
	}

	query := `INSERT INTO open_positions (position, ` + openPositionColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	return s.db.replaceAll(ctx, "open_positions", len(positions), func(tx *sql.Tx, i int) error {
		p := positions[i]
		_, err := tx.ExecContext(ctx, query,
			i, string(p.AssetKey), p.RootSymbol, p.Symbol, string(p.AssetClass), p.Quantity, p.AvgPrice, p.Multiplier,
			p.LotCount, p.OpenedAt,
		)
		return err
	})
}

// GetAll retrieves all positions in stored order.
func (s *OpenPositionStore) GetAll(ctx context.Context) ([]*domain.OpenPosition, error) {
	rows, err := s.db.sql.QueryContext(ctx,
		`SELECT `+openPositionColumns+` FROM open_positions ORDER BY position ASC`)
	if err != nil {
		return nil, fmt.Errorf("get all open positions: %w", err)
	}
	defer rows.Close()

	var positions []*domain.OpenPosition
	for rows.Next() {
		var p domain.OpenPosition
		var assetKey, assetClass string
		if err := rows.Scan(
			&assetKey, &p.RootSymbol, &p.Symbol, &assetClass, &p.Quantity, &p.AvgPrice, &p.Multiplier,
			&p.LotCount, &p.OpenedAt,
		); err != nil {
			return nil, fmt.Errorf("scan open position: %w", err)
		}
		p.AssetKey = domain.AssetKey(assetKey)
		p.AssetClass = domain.AssetClass(assetClass)
		positions = append(positions, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate open positions: %w", err)
	}
	return positions, nil
}
