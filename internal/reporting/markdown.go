package reporting

import (
	"fmt"
	"strings"
	"time"

	"trade-journal-lab/internal/domain"
)

// RenderMarkdown renders report as Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder
	cur := r.Currency
	loc := r.Location

	// Header
	sb.WriteString("# Trade Journal Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))
	if !r.Filter.IsZero() {
		sb.WriteString(fmt.Sprintf("Filter: %s\n\n", describeFilter(r.Filter)))
	}

	// Summary
	p := r.Performance
	sb.WriteString("## Summary\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Period | %s to %s |\n", formatDate(p.FirstClose, loc), formatDate(p.LastClose, loc)))
	sb.WriteString(fmt.Sprintf("| Net P&L | %s |\n", formatMoney(p.NetPnL, cur)))
	sb.WriteString(fmt.Sprintf("| Dividend Income | %s |\n", formatMoney(p.DividendIncome, cur)))
	sb.WriteString(fmt.Sprintf("| Commissions | %s |\n", formatMoney(p.Commissions, cur)))
	sb.WriteString(fmt.Sprintf("| Closed Trades | %d |\n", p.TradeCount))
	sb.WriteString(fmt.Sprintf("| Wins / Losses | %d / %d |\n", p.Wins, p.Losses))
	sb.WriteString(fmt.Sprintf("| Win Rate | %s |\n", formatRate(p.WinRate)))
	sb.WriteString(fmt.Sprintf("| Mean Trade | %s |\n", formatMoney(p.PnLMean, cur)))
	sb.WriteString(fmt.Sprintf("| Median Trade | %s |\n", formatMoney(p.PnLMedian, cur)))
	sb.WriteString(fmt.Sprintf("| Best Trade | %s |\n", formatMoney(p.PnLMax, cur)))
	sb.WriteString(fmt.Sprintf("| Worst Trade | %s |\n", formatMoney(p.PnLMin, cur)))
	sb.WriteString(fmt.Sprintf("| Max Drawdown | %s |\n", formatMoney(p.MaxDrawdown, cur)))
	sb.WriteString(fmt.Sprintf("| Max Consecutive Losses | %d |\n", p.MaxConsecutiveLosses))
	sb.WriteString("\n")

	// Equity curve, one row per close date
	sb.WriteString("## Equity Curve\n\n")
	if days := dailyEquity(r.EquityCurve, loc); len(days) > 0 {
		sb.WriteString("| Date | Rows | Net P&L | Cumulative |\n")
		sb.WriteString("|------|------|---------|------------|\n")
		for _, d := range days {
			sb.WriteString(fmt.Sprintf("| %s | %d | %s | %s |\n",
				d.date, d.rows, formatMoney(d.netPnL, cur), formatMoney(d.cumulative, cur)))
		}
	} else {
		sb.WriteString("No closed trades available.\n")
	}
	sb.WriteString("\n")

	// Data Quality
	if dq := r.DataQuality; dq != nil {
		sb.WriteString("## Data Quality\n\n")
		if len(dq.Checks) > 0 {
			sb.WriteString("| Check | Threshold | Actual | Status |\n")
			sb.WriteString("|-------|-----------|--------|--------|\n")
			for _, check := range dq.Checks {
				status := "FAIL"
				if check.Pass {
					status = "PASS"
				}
				sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n",
					check.Name, check.Threshold, check.Actual, status))
			}
			sb.WriteString("\n")

			if dq.AllChecksPassed {
				sb.WriteString("**All checks passed.**\n\n")
			} else {
				sb.WriteString("**Some checks failed.** Realized P&L may be incomplete.\n\n")
			}
		} else {
			sb.WriteString("No data quality checks performed.\n\n")
		}

		if len(dq.IntegrityErrors) > 0 {
			sb.WriteString("### Integrity Errors\n\n")
			for _, err := range dq.IntegrityErrors {
				sb.WriteString(fmt.Sprintf("- %s\n", err))
			}
			sb.WriteString("\n")
		}
	}

	// Strategy types
	sb.WriteString("## P&L by Strategy Type\n\n")
	if len(r.ByStrategyType) > 0 {
		sb.WriteString("| Type | Count | Win Rate | Net P&L | Commission |\n")
		sb.WriteString("|------|-------|----------|---------|------------|\n")
		for _, row := range r.ByStrategyType {
			sb.WriteString(fmt.Sprintf("| %s | %d | %s | %s | %s |\n",
				escapeCell(row.StrategyType), row.Count, formatRate(row.WinRate),
				formatMoney(row.NetPnL, cur), formatMoney(row.Commission, cur)))
		}
	} else {
		sb.WriteString("No strategies available.\n")
	}
	sb.WriteString("\n")

	// Symbols
	sb.WriteString("## P&L by Symbol\n\n")
	if len(r.BySymbol) > 0 {
		sb.WriteString("| Symbol | Rows | Net P&L |\n")
		sb.WriteString("|--------|------|---------|\n")
		for _, row := range r.BySymbol {
			sb.WriteString(fmt.Sprintf("| %s | %d | %s |\n",
				escapeCell(row.RootSymbol), row.TradeCount, formatMoney(row.NetPnL, cur)))
		}
	} else {
		sb.WriteString("No closed trades available.\n")
	}
	sb.WriteString("\n")

	// Strategies
	sb.WriteString("## Strategies\n\n")
	if len(r.Strategies) > 0 {
		sb.WriteString("| Date | Symbol | Type | Legs | Net P&L | ROI | Annualized | Days | Close Reasons |\n")
		sb.WriteString("|------|--------|------|------|---------|-----|------------|------|---------------|\n")
		for _, s := range r.Strategies {
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %d | %s | %s | %s | %.1f | %s |\n",
				formatDate(s.Date, loc), escapeCell(s.RootSymbol), escapeCell(s.StrategyType), s.LegCount,
				formatMoney(s.NetPnL, cur), formatPct(s.ROIPct), formatPct(s.AnnualizedPct),
				s.DurationDays, escapeCell(s.CloseReasons)))
		}
	} else {
		sb.WriteString("No strategies available.\n")
	}
	sb.WriteString("\n")

	// Campaigns
	sb.WriteString("## Campaigns\n\n")
	if len(r.Campaigns) > 0 {
		sb.WriteString("| Symbol | Start | End | Trades | Net P&L | Capital | ROI | Annualized | Days |\n")
		sb.WriteString("|--------|-------|-----|--------|---------|---------|-----|------------|------|\n")
		for _, c := range r.Campaigns {
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %d | %s | %s | %s | %s | %.1f |\n",
				escapeCell(c.RootSymbol), formatDate(c.StartTime, loc), formatDate(c.EndTime, loc), c.TradeCount,
				formatMoney(c.NetPnL, cur), formatMoney(c.CapitalEst, cur), formatPct(c.ROIPct),
				formatPct(c.AnnualizedPct), c.DurationDays))
		}
	} else {
		sb.WriteString("No campaigns available.\n")
	}
	sb.WriteString("\n")

	// Open positions
	sb.WriteString("## Open Positions\n\n")
	if len(r.OpenPositions) > 0 {
		sb.WriteString("| Instrument | Quantity | Avg Price | Lots | Opened |\n")
		sb.WriteString("|------------|----------|-----------|------|--------|\n")
		for _, op := range r.OpenPositions {
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %d | %s |\n",
				escapeCell(string(op.AssetKey)), formatQuantity(op.Quantity), formatMoney(op.AvgPrice, cur),
				op.LotCount, formatDate(op.OpenedAt, loc)))
		}
	} else {
		sb.WriteString("No open positions.\n")
	}
	sb.WriteString("\n")

	return sb.String()
}

type equityDay struct {
	date       string
	rows       int
	netPnL     float64
	cumulative float64
}

// dailyEquity folds an ordered curve into end-of-day points.
func dailyEquity(curve []domain.EquityPoint, loc *time.Location) []equityDay {
	var days []equityDay
	for _, p := range curve {
		date := formatDate(p.Time, loc)
		if n := len(days); n > 0 && days[n-1].date == date {
			days[n-1].rows++
			days[n-1].netPnL += p.NetPnL
			days[n-1].cumulative = p.Cumulative
			continue
		}
		days = append(days, equityDay{date: date, rows: 1, netPnL: p.NetPnL, cumulative: p.Cumulative})
	}
	return days
}

func describeFilter(f Filter) string {
	var parts []string
	if !f.From.IsZero() {
		parts = append(parts, "from "+f.From.Format("2006-01-02"))
	}
	if !f.To.IsZero() {
		parts = append(parts, "before "+f.To.Format("2006-01-02"))
	}
	if len(f.Roots) > 0 {
		parts = append(parts, "symbols "+strings.Join(f.Roots, ", "))
	}
	return strings.Join(parts, "; ")
}
