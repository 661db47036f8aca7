package storage

import (
	"context"

	"trade-journal-lab/internal/domain"
)

// ExecutionStore provides access to executions storage.
// Executions are raw broker input: merged in, never updated.
type ExecutionStore interface {
	// Merge adds executions whose execution_id is not stored yet and ignores
	// the rest. Returns the number of rows inserted.
	// Returns ErrInvalidInput if any execution is nil or has no id.
	Merge(ctx context.Context, execs []*domain.Execution) (int, error)

	// GetByID retrieves an execution by id. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, executionID string) (*domain.Execution, error)

	// GetAll retrieves all executions ordered by trade_time ASC, then arrival order.
	GetAll(ctx context.Context) ([]*domain.Execution, error)
}

// CashTransactionStore provides access to cash_transactions storage.
type CashTransactionStore interface {
	// Merge adds transactions whose transaction_id is not stored yet and
	// ignores the rest. Returns the number of rows inserted.
	Merge(ctx context.Context, txs []*domain.CashTransaction) (int, error)

	// GetAll retrieves all transactions ordered by date ASC, then arrival order.
	GetAll(ctx context.Context) ([]*domain.CashTransaction, error)
}

// ClosedTradeStore provides access to closed_trades storage.
// Closed trades are derived: every analysis replaces the whole set.
type ClosedTradeStore interface {
	// ReplaceAll atomically replaces the stored trades, keeping input order.
	// Returns ErrDuplicateKey if trade_id repeats within the input.
	ReplaceAll(ctx context.Context, trades []*domain.ClosedTrade) error

	// GetAll retrieves all trades in the order they were stored.
	GetAll(ctx context.Context) ([]*domain.ClosedTrade, error)
}

// OpenPositionStore provides access to open_positions storage.
type OpenPositionStore interface {
	// ReplaceAll atomically replaces the stored positions, keeping input order.
	// Returns ErrDuplicateKey if asset_key repeats within the input.
	ReplaceAll(ctx context.Context, positions []*domain.OpenPosition) error

	// GetAll retrieves all positions in the order they were stored.
	GetAll(ctx context.Context) ([]*domain.OpenPosition, error)
}

// StrategySummaryStore provides access to strategy_summaries storage.
type StrategySummaryStore interface {
	// ReplaceAll atomically replaces the stored summaries.
	// Returns ErrDuplicateKey if strategy_id repeats within the input.
	ReplaceAll(ctx context.Context, summaries []*domain.StrategySummary) error

	// GetAll retrieves all summaries ordered by date DESC, strategy_id ASC.
	GetAll(ctx context.Context) ([]*domain.StrategySummary, error)
}

// CampaignSummaryStore provides access to campaign_summaries storage.
type CampaignSummaryStore interface {
	// ReplaceAll atomically replaces the stored summaries.
	// Returns ErrDuplicateKey if campaign_id repeats within the input.
	ReplaceAll(ctx context.Context, summaries []*domain.CampaignSummary) error

	// GetAll retrieves all summaries ordered by end_time DESC, campaign_id ASC.
	GetAll(ctx context.Context) ([]*domain.CampaignSummary, error)
}

// Stores bundles every store the analysis pipeline reads and writes.
type Stores struct {
	Executions        ExecutionStore
	CashTransactions  CashTransactionStore
	ClosedTrades      ClosedTradeStore
	OpenPositions     OpenPositionStore
	StrategySummaries StrategySummaryStore
	CampaignSummaries CampaignSummaryStore
}
