package postgres

import (
	"context"
	"fmt"

	"trade-journal-lab/internal/domain"
	"trade-journal-lab/internal/storage"
)

// OpenPositionStore implements storage.OpenPositionStore using PostgreSQL.
type OpenPositionStore struct {
	pool *Pool
}

// NewOpenPositionStore creates a new OpenPositionStore.
func NewOpenPositionStore(pool *Pool) *OpenPositionStore {
	return &OpenPositionStore{pool: pool}
}

// Compile-time interface check.
var _ storage.OpenPositionStore = (*OpenPositionStore)(nil)

// ReplaceAll deletes every stored position and inserts positions in one
// transaction. Returns ErrDuplicateKey if asset_key repeats.
func (s *OpenPositionStore) ReplaceAll(ctx context.Context, positions []*domain.OpenPosition) error {
	for _, p := range positions {
		if p == nil || p.AssetKey == "" {
			return storage.ErrInvalidInput
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM open_positions`); err != nil {
		return fmt.Errorf("clear open positions: %w", err)
	}

	query := `
		INSERT INTO open_positions (
			position, asset_key, root_symbol, symbol, asset_class, quantity, avg_price, multiplier, lot_count, opened_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	for i, p := range positions {
		_, err := tx.Exec(ctx, query,
			i,
			string(p.AssetKey),
			p.RootSymbol,
			p.Symbol,
			string(p.AssetClass),
			p.Quantity,
			p.AvgPrice,
			p.Multiplier,
			p.LotCount,
			p.OpenedAt,
		)
		if err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert open position: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// GetAll retrieves all positions in stored order.
func (s *OpenPositionStore) GetAll(ctx context.Context) ([]*domain.OpenPosition, error) {
	query := `
		SELECT asset_key, root_symbol, symbol, asset_class, quantity, avg_price, multiplier, lot_count, opened_at
		FROM open_positions
		ORDER BY position ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all open positions: %w", err)
	}
	defer rows.Close()

	var result []*domain.OpenPosition
	for rows.Next() {
		var p domain.OpenPosition
		var assetKey, assetClass string
		if err := rows.Scan(
			&assetKey,
			&p.RootSymbol,
			&p.Symbol,
			&assetClass,
			&p.Quantity,
			&p.AvgPrice,
			&p.Multiplier,
			&p.LotCount,
			&p.OpenedAt,
		); err != nil {
			return nil, fmt.Errorf("scan open position: %w", err)
		}
		p.AssetKey = domain.AssetKey(assetKey)
		p.AssetClass = domain.AssetClass(assetClass)
		result = append(result, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate open positions: %w", err)
	}
	return result, nil
}
