package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"trade-journal-lab/internal/domain"
	"trade-journal-lab/internal/storage"
)

// StrategySummaryStore implements storage.StrategySummaryStore using PostgreSQL.
type StrategySummaryStore struct {
	pool *Pool
}

// NewStrategySummaryStore creates a new StrategySummaryStore.
func NewStrategySummaryStore(pool *Pool) *StrategySummaryStore {
	return &StrategySummaryStore{pool: pool}
}

// CampaignSummaryStore implements storage.CampaignSummaryStore using PostgreSQL.
type CampaignSummaryStore struct {
	pool *Pool
}

// NewCampaignSummaryStore creates a new CampaignSummaryStore.
func NewCampaignSummaryStore(pool *Pool) *CampaignSummaryStore {
	return &CampaignSummaryStore{pool: pool}
}

// Compile-time interface checks.
var (
	_ storage.StrategySummaryStore = (*StrategySummaryStore)(nil)
	_ storage.CampaignSummaryStore = (*CampaignSummaryStore)(nil)
)

var (
	strategySummaryColumns = []string{
		"strategy_id", "root_symbol", "strategy_type", "date_ms", "entry_time_ms", "leg_count",
		"net_pnl", "commission", "close_reasons", "duration_days", "capital_est", "roi_pct", "annualized_pct",
	}
	campaignSummaryColumns = []string{
		"campaign_id", "root_symbol", "start_time_ms", "end_time_ms", "duration_days", "trade_count",
		"net_pnl", "commission", "capital_est", "roi_pct", "annualized_pct",
	}
)

// ReplaceAll swaps the stored summaries in one transaction using COPY.
// Returns ErrDuplicateKey if strategy_id repeats; the previous set is kept.
func (s *StrategySummaryStore) ReplaceAll(ctx context.Context, summaries []*domain.StrategySummary) error {
	rows := make([][]any, 0, len(summaries))
	for _, sum := range summaries {
		if sum == nil || sum.StrategyID == "" {
			return storage.ErrInvalidInput
		}
		rows = append(rows, []any{
			sum.StrategyID, sum.RootSymbol, sum.StrategyType, sum.Date, sum.EntryTime, int32(sum.LegCount),
			sum.NetPnL, sum.Commission, sum.CloseReasons, sum.DurationDays, sum.CapitalEst, sum.ROIPct, sum.AnnualizedPct,
		})
	}
	return s.pool.copyReplace(ctx, "strategy_summaries", strategySummaryColumns, rows)
}

// GetAll retrieves all summaries ordered by date DESC, strategy_id ASC.
func (s *StrategySummaryStore) GetAll(ctx context.Context) ([]*domain.StrategySummary, error) {
	query := `
		SELECT strategy_id, root_symbol, strategy_type, date_ms, entry_time_ms, leg_count,
			net_pnl, commission, close_reasons, duration_days, capital_est, roi_pct, annualized_pct
		FROM strategy_summaries
		ORDER BY date_ms DESC, strategy_id ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all strategy summaries: %w", err)
	}
	defer rows.Close()

	var result []*domain.StrategySummary
	for rows.Next() {
		var sum domain.StrategySummary
		var legs int32
		if err := rows.Scan(
			&sum.StrategyID, &sum.RootSymbol, &sum.StrategyType, &sum.Date, &sum.EntryTime, &legs,
			&sum.NetPnL, &sum.Commission, &sum.CloseReasons, &sum.DurationDays, &sum.CapitalEst, &sum.ROIPct, &sum.AnnualizedPct,
		); err != nil {
			return nil, fmt.Errorf("scan strategy summary: %w", err)
		}
		sum.LegCount = int(legs)
		result = append(result, &sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate strategy summaries: %w", err)
	}
	return result, nil
}

// ReplaceAll swaps the stored summaries in one transaction using COPY.
// Returns ErrDuplicateKey if campaign_id repeats; the previous set is kept.
func (s *CampaignSummaryStore) ReplaceAll(ctx context.Context, summaries []*domain.CampaignSummary) error {
	rows := make([][]any, 0, len(summaries))
	for _, sum := range summaries {
		if sum == nil || sum.CampaignID == "" {
			return storage.ErrInvalidInput
		}
		rows = append(rows, []any{
			sum.CampaignID, sum.RootSymbol, sum.StartTime, sum.EndTime, sum.DurationDays, int32(sum.TradeCount),
			sum.NetPnL, sum.Commission, sum.CapitalEst, sum.ROIPct, sum.AnnualizedPct,
		})
	}
	return s.pool.copyReplace(ctx, "campaign_summaries", campaignSummaryColumns, rows)
}

// GetAll retrieves all summaries ordered by end_time DESC, campaign_id ASC.
func (s *CampaignSummaryStore) GetAll(ctx context.Context) ([]*domain.CampaignSummary, error) {
	query := `
		SELECT campaign_id, root_symbol, start_time_ms, end_time_ms, duration_days, trade_count,
			net_pnl, commission, capital_est, roi_pct, annualized_pct
		FROM campaign_summaries
		ORDER BY end_time_ms DESC, campaign_id ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all campaign summaries: %w", err)
	}
	defer rows.Close()

	var result []*domain.CampaignSummary
	for rows.Next() {
		var sum domain.CampaignSummary
		var trades int32
		if err := rows.Scan(
			&sum.CampaignID, &sum.RootSymbol, &sum.StartTime, &sum.EndTime, &sum.DurationDays, &trades,
			&sum.NetPnL, &sum.Commission, &sum.CapitalEst, &sum.ROIPct, &sum.AnnualizedPct,
		); err != nil {
			return nil, fmt.Errorf("scan campaign summary: %w", err)
		}
		sum.TradeCount = int(trades)
		result = append(result, &sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate campaign summaries: %w", err)
	}
	return result, nil
}

// copyReplace deletes every row of table and copies rows in, in one transaction.
func (p *Pool) copyReplace(ctx context.Context, table string, columns []string, rows [][]any) error {
	tx, err := p.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM `+table); err != nil {
		return fmt.Errorf("clear %s: %w", table, err)
	}

	if len(rows) > 0 {
		if _, err := tx.CopyFrom(ctx, pgx.Identifier{table}, columns, pgx.CopyFromRows(rows)); err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("copy %s: %w", table, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
