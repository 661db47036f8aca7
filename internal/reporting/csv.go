package reporting

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"trade-journal-lab/internal/domain"
)

// RenderClosedTradesCSV writes one row per closed trade, cash flows included.
func RenderClosedTradesCSV(w io.Writer, trades []*domain.ClosedTrade, loc *time.Location) error {
	header := []string{
		"trade_id", "root_symbol", "symbol", "asset_key", "asset_class", "direction", "quantity",
		"entry_time", "close_time", "entry_price", "close_price", "commission", "gross_pnl", "net_pnl",
		"close_reason",
	}
	return writeCSV(w, header, len(trades), func(i int) []string {
		t := trades[i]
		return []string{
			t.TradeID,
			t.RootSymbol,
			t.Symbol,
			string(t.AssetKey),
			string(t.AssetClass),
			string(t.Direction),
			formatQuantity(t.Quantity),
			formatDateTime(t.EntryTime, loc),
			formatDateTime(t.CloseTime, loc),
			strconv.FormatFloat(t.EntryPrice, 'f', -1, 64),
			strconv.FormatFloat(t.ClosePrice, 'f', -1, 64),
			formatAmount(t.Commission),
			formatAmount(t.GrossPnL),
			formatAmount(t.NetPnL),
			string(t.CloseReason),
		}
	})
}

// RenderEquityCurveCSV writes the running net P&L, one row per closed row.
func RenderEquityCurveCSV(w io.Writer, curve []domain.EquityPoint, loc *time.Location) error {
	header := []string{"close_time", "trade_id", "net_pnl", "cum_net_pnl"}
	return writeCSV(w, header, len(curve), func(i int) []string {
		p := curve[i]
		return []string{
			formatDateTime(p.Time, loc),
			p.TradeID,
			formatAmount(p.NetPnL),
			formatAmount(p.Cumulative),
		}
	})
}

// RenderStrategyCSV writes one row per strategy summary.
func RenderStrategyCSV(w io.Writer, summaries []*domain.StrategySummary, loc *time.Location) error {
	header := []string{
		"strategy_id", "date", "root_symbol", "strategy_type", "legs", "net_pnl", "commission",
		"capital_est", "roi_pct", "annualized_pct", "duration_days", "close_reasons",
	}
	return writeCSV(w, header, len(summaries), func(i int) []string {
		s := summaries[i]
		return []string{
			s.StrategyID,
			formatDate(s.Date, loc),
			s.RootSymbol,
			s.StrategyType,
			strconv.Itoa(s.LegCount),
			formatAmount(s.NetPnL),
			formatAmount(s.Commission),
			formatAmount(s.CapitalEst),
			formatAmount(s.ROIPct),
			formatAmount(s.AnnualizedPct),
			strconv.FormatFloat(s.DurationDays, 'f', 2, 64),
			s.CloseReasons,
		}
	})
}

// RenderCampaignCSV writes one row per campaign summary.
func RenderCampaignCSV(w io.Writer, summaries []*domain.CampaignSummary, loc *time.Location) error {
	header := []string{
		"campaign_id", "root_symbol", "start_date", "end_date", "trades", "net_pnl", "commission",
		"capital_est", "roi_pct", "annualized_pct", "duration_days",
	}
	return writeCSV(w, header, len(summaries), func(i int) []string {
		c := summaries[i]
		return []string{
			c.CampaignID,
			c.RootSymbol,
			formatDate(c.StartTime, loc),
			formatDate(c.EndTime, loc),
			strconv.Itoa(c.TradeCount),
			formatAmount(c.NetPnL),
			formatAmount(c.Commission),
			formatAmount(c.CapitalEst),
			formatAmount(c.ROIPct),
			formatAmount(c.AnnualizedPct),
			strconv.FormatFloat(c.DurationDays, 'f', 2, 64),
		}
	})
}

func writeCSV(w io.Writer, header []string, n int, row func(i int) []string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for i := 0; i < n; i++ {
		if err := cw.Write(row(i)); err != nil {
			return fmt.Errorf("write csv row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
