package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"trade-journal-lab/internal/domain"
	"trade-journal-lab/internal/storage"
)

// ExecutionStore implements storage.ExecutionStore using SQLite.
type ExecutionStore struct {
	db *DB
}

// NewExecutionStore creates a new ExecutionStore.
func NewExecutionStore(db *DB) *ExecutionStore {
	return &ExecutionStore{db: db}
}

// Compile-time interface check.
var _ storage.ExecutionStore = (*ExecutionStore)(nil)

const executionColumns = `execution_id, symbol, underlying, asset_class, strike, expiry, put_call, side,
	open_close, quantity, price, commission, multiplier, trade_time, codes, currency, description`

// Merge inserts executions with INSERT OR IGNORE in one transaction.
func (s *ExecutionStore) Merge(ctx context.Context, execs []*domain.Execution) (int, error) {
	for _, e := range execs {
		if e == nil || e.ExecutionID == "" {
			return 0, storage.ErrInvalidInput
		}
	}
	if len(execs) == 0 {
		return 0, nil
	}

	tx, err := s.db.sql.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO executions (`+executionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, e := range execs {
		res, err := stmt.ExecContext(ctx,
			e.ExecutionID, e.Symbol, e.Underlying, string(e.AssetClass), e.Strike, e.Expiry, e.Right, e.Side,
			e.OpenClose, e.Quantity, e.Price, e.Commission, e.Multiplier, e.TradeTime, e.Codes, e.Currency, e.Description,
		)
		if err != nil {
			return 0, fmt.Errorf("merge execution %s: %w", e.ExecutionID, err)
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

// GetByID retrieves an execution by id. Returns ErrNotFound if not exists.
func (s *ExecutionStore) GetByID(ctx context.Context, executionID string) (*domain.Execution, error) {
	row := s.db.sql.QueryRowContext(ctx,
		`SELECT `+executionColumns+` FROM executions WHERE execution_id = ?`, executionID)

	e, err := scanExecution(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get execution by id: %w", err)
	}
	return e, nil
}

// GetAll retrieves all executions ordered by trade_time ASC, then arrival order.
func (s *ExecutionStore) GetAll(ctx context.Context) ([]*domain.Execution, error) {
	rows, err := s.db.sql.QueryContext(ctx,
		`SELECT `+executionColumns+` FROM executions ORDER BY trade_time ASC, seq ASC`)
	if err != nil {
		return nil, fmt.Errorf("get all executions: %w", err)
	}
	defer rows.Close()

	var execs []*domain.Execution
	for rows.Next() {
		e, err := scanExecution(rows)
		if err != nil {
			return nil, fmt.Errorf("scan execution: %w", err)
		}
		execs = append(execs, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate executions: %w", err)
	}
	return execs, nil
}

func scanExecution(row scanner) (*domain.Execution, error) {
	var e domain.Execution
	var assetClass string
	err := row.Scan(
		&e.ExecutionID, &e.Symbol, &e.Underlying, &assetClass, &e.Strike, &e.Expiry, &e.Right, &e.Side,
		&e.OpenClose, &e.Quantity, &e.Price, &e.Commission, &e.Multiplier, &e.TradeTime, &e.Codes, &e.Currency, &e.Description,
	)
	if err != nil {
		return nil, err
	}
	e.AssetClass = domain.AssetClass(assetClass)
	return &e, nil
}
