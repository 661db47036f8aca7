package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"trade-journal-lab/internal/domain"
	"trade-journal-lab/internal/storage"
)

// ExecutionStore implements storage.ExecutionStore using PostgreSQL.
type ExecutionStore struct {
	pool *Pool
}

// NewExecutionStore creates a new ExecutionStore.
func NewExecutionStore(pool *Pool) *ExecutionStore {
	return &ExecutionStore{pool: pool}
}

// Compile-time interface check.
var _ storage.ExecutionStore = (*ExecutionStore)(nil)

const executionColumns = `execution_id, symbol, underlying, asset_class, strike, expiry, put_call, side,
	open_close, quantity, price, commission, multiplier, trade_time, codes, currency, description`

// Merge adds executions whose execution_id is not stored yet, in one
// transaction. Existing ids are left untouched.
func (s *ExecutionStore) Merge(ctx context.Context, execs []*domain.Execution) (int, error) {
	for _, e := range execs {
		if e == nil || e.ExecutionID == "" {
			return 0, storage.ErrInvalidInput
		}
	}
	if len(execs) == 0 {
		return 0, nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO executions (` + executionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		ON CONFLICT (execution_id) DO NOTHING
	`

	inserted := 0
	for _, e := range execs {
		tag, err := tx.Exec(ctx, query,
			e.ExecutionID,
			e.Symbol,
			e.Underlying,
			string(e.AssetClass),
			e.Strike,
			e.Expiry,
			e.Right,
			e.Side,
			e.OpenClose,
			e.Quantity,
			e.Price,
			e.Commission,
			e.Multiplier,
			e.TradeTime,
			e.Codes,
			e.Currency,
			e.Description,
		)
		if err != nil {
			return 0, fmt.Errorf("merge execution %s: %w", e.ExecutionID, err)
		}
		inserted += int(tag.RowsAffected())
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit tx: %w", err)
	}
	return inserted, nil
}

// GetByID retrieves an execution by id. Returns ErrNotFound if not exists.
func (s *ExecutionStore) GetByID(ctx context.Context, executionID string) (*domain.Execution, error) {
	query := `SELECT ` + executionColumns + ` FROM executions WHERE execution_id = $1`

	e, err := scanExecution(s.pool.QueryRow(ctx, query, executionID))
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get execution by id: %w", err)
	}
	return e, nil
}

// GetAll retrieves all executions ordered by trade_time ASC, then arrival order.
func (s *ExecutionStore) GetAll(ctx context.Context) ([]*domain.Execution, error) {
	query := `SELECT ` + executionColumns + ` FROM executions ORDER BY trade_time ASC, seq ASC`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all executions: %w", err)
	}
	defer rows.Close()

	return scanExecutions(rows)
}

// scanExecution scans a single row into an Execution.
func scanExecution(row pgx.Row) (*domain.Execution, error) {
	var e domain.Execution
	var assetClass string

	err := row.Scan(
		&e.ExecutionID,
		&e.Symbol,
		&e.Underlying,
		&assetClass,
		&e.Strike,
		&e.Expiry,
		&e.Right,
		&e.Side,
		&e.OpenClose,
		&e.Quantity,
		&e.Price,
		&e.Commission,
		&e.Multiplier,
		&e.TradeTime,
		&e.Codes,
		&e.Currency,
		&e.Description,
	)
	if err != nil {
		return nil, err
	}
	e.AssetClass = domain.AssetClass(assetClass)
	return &e, nil
}

// scanExecutions scans multiple rows into a slice of Execution.
func scanExecutions(rows pgx.Rows) ([]*domain.Execution, error) {
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
