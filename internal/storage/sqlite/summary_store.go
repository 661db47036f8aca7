package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"trade-journal-lab/internal/domain"
	"trade-journal-lab/internal/storage"
)

// StrategySummaryStore implements storage.StrategySummaryStore using SQLite.
type StrategySummaryStore struct {
	db *DB
}

// NewStrategySummaryStore creates a new StrategySummaryStore.
func NewStrategySummaryStore(db *DB) *StrategySummaryStore {
	return &StrategySummaryStore{db: db}
}

var _ storage.StrategySummaryStore = (*StrategySummaryStore)(nil)

const strategySummaryColumns = `strategy_id, root_symbol, strategy_type, date_ms, entry_time_ms, leg_count,
	net_pnl, commission, close_reasons, duration_days, capital_est, roi_pct, annualized_pct`

// ReplaceAll swaps the stored summaries in one transaction.
func (s *StrategySummaryStore) ReplaceAll(ctx context.Context, summaries []*domain.StrategySummary) error {
	for _, sum := range summaries {
		if sum == nil || sum.StrategyID == "" {
			return storage.ErrInvalidInput
		}
	}

	query := `INSERT INTO strategy_summaries (` + strategySummaryColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	return s.db.replaceAll(ctx, "strategy_summaries", len(summaries), func(tx *sql.Tx, i int) error {
		sum := summaries[i]
		_, err := tx.ExecContext(ctx, query,
			sum.StrategyID, sum.RootSymbol, sum.StrategyType, sum.Date, sum.EntryTime, sum.LegCount,
			sum.NetPnL, sum.Commission, sum.CloseReasons, sum.DurationDays, sum.CapitalEst, sum.ROIPct, sum.AnnualizedPct,
		)
		return err
	})
}

// GetAll retrieves all summaries ordered by date DESC, strategy_id ASC.
func (s *StrategySummaryStore) GetAll(ctx context.Context) ([]*domain.StrategySummary, error) {
	rows, err := s.db.sql.QueryContext(ctx,
		`SELECT `+strategySummaryColumns+` FROM strategy_summaries ORDER BY date_ms DESC, strategy_id ASC`)
	if err != nil {
		return nil, fmt.Errorf("get all strategy summaries: %w", err)
	}
	defer rows.Close()

	var result []*domain.StrategySummary
	for rows.Next() {
		var sum domain.StrategySummary
		if err := rows.Scan(
			&sum.StrategyID, &sum.RootSymbol, &sum.StrategyType, &sum.Date, &sum.EntryTime, &sum.LegCount,
			&sum.NetPnL, &sum.Commission, &sum.CloseReasons, &sum.DurationDays, &sum.CapitalEst, &sum.ROIPct, &sum.AnnualizedPct,
		); err != nil {
			return nil, fmt.Errorf("scan strategy summary: %w", err)
		}
		result = append(result, &sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate strategy summaries: %w", err)
	}
	return result, nil
}

// CampaignSummaryStore implements storage.CampaignSummaryStore using SQLite.
type CampaignSummaryStore struct {
	db *DB
}

// NewCampaignSummaryStore creates a new CampaignSummaryStore.
func NewCampaignSummaryStore(db *DB) *CampaignSummaryStore {
	return &CampaignSummaryStore{db: db}
}

var _ storage.CampaignSummaryStore = (*CampaignSummaryStore)(nil)

const campaignSummaryColumns = `campaign_id, root_symbol, start_time_ms, end_time_ms, duration_days, trade_count,
	net_pnl, commission, capital_est, roi_pct, annualized_pct`

// ReplaceAll swaps the stored summaries in one transaction.
func (s *CampaignSummaryStore) ReplaceAll(ctx context.Context, summaries []*domain.CampaignSummary) error {
	for _, sum := range summaries {
		if sum == nil || sum.CampaignID == "" {
			return storage.ErrInvalidInput
		}
	}

	query := `INSERT INTO campaign_summaries (` + campaignSummaryColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	return s.db.replaceAll(ctx, "campaign_summaries", len(summaries), func(tx *sql.Tx, i int) error {
		sum := summaries[i]
		_, err := tx.ExecContext(ctx, query,
			sum.CampaignID, sum.RootSymbol, sum.StartTime, sum.EndTime, sum.DurationDays, sum.TradeCount,
			sum.NetPnL, sum.Commission, sum.CapitalEst, sum.ROIPct, sum.AnnualizedPct,
		)
		return err
	})
}

// GetAll retrieves all summaries ordered by end_time DESC, campaign_id ASC.
func (s *CampaignSummaryStore) GetAll(ctx context.Context) ([]*domain.CampaignSummary, error) {
	rows, err := s.db.sql.QueryContext(ctx,
		`SELECT `+campaignSummaryColumns+` FROM campaign_summaries ORDER BY end_time_ms DESC, campaign_id ASC`)
	if err != nil {
		return nil, fmt.Errorf("get all campaign summaries: %w", err)
	}
	defer rows.Close()

	var result []*domain.CampaignSummary
	for rows.Next() {
		var sum domain.CampaignSummary
		if err := rows.Scan(
			&sum.CampaignID, &sum.RootSymbol, &sum.StartTime, &sum.EndTime, &sum.DurationDays, &sum.TradeCount,
			&sum.NetPnL, &sum.Commission, &sum.CapitalEst, &sum.ROIPct, &sum.AnnualizedPct,
		); err != nil {
			return nil, fmt.Errorf("scan campaign summary: %w", err)
		}
		result = append(result, &sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate campaign summaries: %w", err)
	}
	return result, nil
}
