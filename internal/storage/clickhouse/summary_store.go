package clickhouse

import (
	"context"
	"fmt"

	"trade-journal-lab/internal/domain"
	"trade-journal-lab/internal/storage"
)

// StrategySummaryStore implements storage.StrategySummaryStore using ClickHouse.
//
// MergeTree has no transactions: ReplaceAll truncates and then sends one
// batch, so a failed send leaves the table empty until the next run.
type StrategySummaryStore struct {
	conn *Conn
}

// NewStrategySummaryStore creates a new StrategySummaryStore.
func NewStrategySummaryStore(conn *Conn) *StrategySummaryStore {
	return &StrategySummaryStore{conn: conn}
}

// Compile-time interface check.
var _ storage.StrategySummaryStore = (*StrategySummaryStore)(nil)

const strategySummaryColumns = `strategy_id, root_symbol, strategy_type, date_ms, entry_time_ms, leg_count,
	net_pnl, commission, close_reasons, duration_days, capital_est, roi_pct, annualized_pct`

// ReplaceAll truncates strategy_summaries and inserts summaries in one batch.
// Returns ErrDuplicateKey before touching the table if strategy_id repeats.
func (s *StrategySummaryStore) ReplaceAll(ctx context.Context, summaries []*domain.StrategySummary) error {
	seen := make(map[string]struct{}, len(summaries))
	for _, sum := range summaries {
		if sum == nil || sum.StrategyID == "" {
			return storage.ErrInvalidInput
		}
		if _, exists := seen[sum.StrategyID]; exists {
			return storage.ErrDuplicateKey
		}
		seen[sum.StrategyID] = struct{}{}
	}

	if err := s.conn.Exec(ctx, `TRUNCATE TABLE IF EXISTS strategy_summaries`); err != nil {
		return fmt.Errorf("truncate strategy summaries: %w", err)
	}
	if len(summaries) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(ctx, `INSERT INTO strategy_summaries (`+strategySummaryColumns+`)`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, sum := range summaries {
		err = batch.Append(
			sum.StrategyID, sum.RootSymbol, sum.StrategyType, sum.Date, sum.EntryTime, uint32(sum.LegCount),
			sum.NetPnL, sum.Commission, sum.CloseReasons, sum.DurationDays, sum.CapitalEst, sum.ROIPct, sum.AnnualizedPct,
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// GetAll retrieves all summaries ordered by date DESC, strategy_id ASC.
func (s *StrategySummaryStore) GetAll(ctx context.Context) ([]*domain.StrategySummary, error) {
	query := `SELECT ` + strategySummaryColumns + ` FROM strategy_summaries ORDER BY date_ms DESC, strategy_id ASC`

	rows, err := s.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query strategy summaries: %w", err)
	}
	defer rows.Close()

	var result []*domain.StrategySummary
	for rows.Next() {
		var sum domain.StrategySummary
		var legCount uint32
		if err := rows.Scan(
			&sum.StrategyID, &sum.RootSymbol, &sum.StrategyType, &sum.Date, &sum.EntryTime, &legCount,
			&sum.NetPnL, &sum.Commission, &sum.CloseReasons, &sum.DurationDays, &sum.CapitalEst, &sum.ROIPct, &sum.AnnualizedPct,
		); err != nil {
			return nil, fmt.Errorf("scan strategy summary: %w", err)
		}
		sum.LegCount = int(legCount)
		result = append(result, &sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate strategy summaries: %w", err)
	}
	return result, nil
}

// CampaignSummaryStore implements storage.CampaignSummaryStore using ClickHouse.
// ReplaceAll has the same truncate-then-insert behaviour as StrategySummaryStore.
type CampaignSummaryStore struct {
	conn *Conn
}

// NewCampaignSummaryStore creates a new CampaignSummaryStore.
func NewCampaignSummaryStore(conn *Conn) *CampaignSummaryStore {
	return &CampaignSummaryStore{conn: conn}
}

// Compile-time interface check.
var _ storage.CampaignSummaryStore = (*CampaignSummaryStore)(nil)

const campaignSummaryColumns = `campaign_id, root_symbol, start_time_ms, end_time_ms, duration_days, trade_count,
	net_pnl, commission, capital_est, roi_pct, annualized_pct`

// ReplaceAll truncates campaign_summaries and inserts summaries in one batch.
func (s *CampaignSummaryStore) ReplaceAll(ctx context.Context, summaries []*domain.CampaignSummary) error {
	seen := make(map[string]struct{}, len(summaries))
	for _, sum := range summaries {
		if sum == nil || sum.CampaignID == "" {
			return storage.ErrInvalidInput
		}
		if _, exists := seen[sum.CampaignID]; exists {
			return storage.ErrDuplicateKey
		}
		seen[sum.CampaignID] = struct{}{}
	}

	if err := s.conn.Exec(ctx, `TRUNCATE TABLE IF EXISTS campaign_summaries`); err != nil {
		return fmt.Errorf("truncate campaign summaries: %w", err)
	}
	if len(summaries) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(ctx, `INSERT INTO campaign_summaries (`+campaignSummaryColumns+`)`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, sum := range summaries {
		err = batch.Append(
			sum.CampaignID, sum.RootSymbol, sum.StartTime, sum.EndTime, sum.DurationDays, uint32(sum.TradeCount),
			sum.NetPnL, sum.Commission, sum.CapitalEst, sum.ROIPct, sum.AnnualizedPct,
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// GetAll retrieves all summaries ordered by end_time DESC, campaign_id ASC.
func (s *CampaignSummaryStore) GetAll(ctx context.Context) ([]*domain.CampaignSummary, error) {
	query := `SELECT ` + campaignSummaryColumns + ` FROM campaign_summaries ORDER BY end_time_ms DESC, campaign_id ASC`

	rows, err := s.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query campaign summaries: %w", err)
	}
	defer rows.Close()

	var result []*domain.CampaignSummary
	for rows.Next() {
		var sum domain.CampaignSummary
		var tradeCount uint32
		if err := rows.Scan(
			&sum.CampaignID, &sum.RootSymbol, &sum.StartTime, &sum.EndTime, &sum.DurationDays, &tradeCount,
			&sum.NetPnL, &sum.Commission, &sum.CapitalEst, &sum.ROIPct, &sum.AnnualizedPct,
		); err != nil {
			return nil, fmt.Errorf("scan campaign summary: %w", err)
		}
		sum.TradeCount = int(tradeCount)
		result = append(result, &sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate campaign summaries: %w", err)
	}
	return result, nil
}
