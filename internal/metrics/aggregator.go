package metrics

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"trade-journal-lab/internal/domain"
	"trade-journal-lab/internal/storage"
)

// SummarizeStrategies computes one summary per strategy, ordered by date
// DESC, strategy_id ASC.
func SummarizeStrategies(strategies []*domain.Strategy) []*domain.StrategySummary {
	summaries := make([]*domain.StrategySummary, 0, len(strategies))
	for _, st := range strategies {
		s := computeGroupStats(st.Legs)

		reasons := make([]string, len(s.reasons))
		for i, r := range s.reasons {
			reasons[i] = string(r)
		}

		summaries = append(summaries, &domain.StrategySummary{
			StrategyID:    st.StrategyID,
			RootSymbol:    st.RootSymbol,
			StrategyType:  st.StrategyType,
			Date:          s.lastClose,
			EntryTime:     s.firstEntry,
			LegCount:      s.count,
			NetPnL:        s.netPnL,
			Commission:    s.commission,
			CloseReasons:  strings.Join(reasons, ", "),
			DurationDays:  s.durationDays,
			CapitalEst:    s.capital,
			ROIPct:        s.roiPct,
			AnnualizedPct: s.annualizedPct,
		})
	}
	storage.SortStrategySummaries(summaries)
	return summaries
}

// SummarizeCampaigns computes one summary per campaign, ordered by end time
// DESC, campaign_id ASC.
func SummarizeCampaigns(campaigns []*domain.Campaign) []*domain.CampaignSummary {
	summaries := make([]*domain.CampaignSummary, 0, len(campaigns))
	for _, c := range campaigns {
		s := computeGroupStats(c.Trades)
		summaries = append(summaries, &domain.CampaignSummary{
			CampaignID:    c.CampaignID,
			RootSymbol:    c.RootSymbol,
			StartTime:     s.firstEntry,
			EndTime:       s.lastClose,
			DurationDays:  s.durationDays,
			TradeCount:    s.count,
			NetPnL:        s.netPnL,
			Commission:    s.commission,
			CapitalEst:    s.capital,
			ROIPct:        s.roiPct,
			AnnualizedPct: s.annualizedPct,
		})
	}
	storage.SortCampaignSummaries(summaries)
	return summaries
}

// ComputePerformance rolls a closed-trade stream up to account level.
// Totals include folded cash flows; win rate, distribution, drawdown and
// loss streaks use trade rows only, ordered by close time then trade id.
func ComputePerformance(closed []*domain.ClosedTrade) *domain.Performance {
	perf := &domain.Performance{}
	var trades []*domain.ClosedTrade

	for _, t := range closed {
		if t == nil {
			continue
		}
		perf.NetPnL += t.NetPnL
		perf.Commissions += t.Commission
		if perf.FirstClose == 0 || t.CloseTime < perf.FirstClose {
			perf.FirstClose = t.CloseTime
		}
		if t.CloseTime > perf.LastClose {
			perf.LastClose = t.CloseTime
		}

		if t.IsCashFlow() {
			perf.DividendIncome += t.NetPnL
			continue
		}
		trades = append(trades, t)
	}

	n := len(trades)
	if n == 0 {
		return perf
	}

	sort.SliceStable(trades, func(i, j int) bool {
		if trades[i].CloseTime != trades[j].CloseTime {
			return trades[i].CloseTime < trades[j].CloseTime
		}
		return trades[i].TradeID < trades[j].TradeID
	})

	outcomes := make([]float64, n)
	for i, t := range trades {
		outcomes[i] = t.NetPnL
		if t.NetPnL > 0 {
			perf.Wins++
		}
	}
	perf.TradeCount = n
	perf.Losses = n - perf.Wins
	perf.WinRate = computeWinRate(perf.Wins, n)

	sorted := make([]float64, n)
	copy(sorted, outcomes)
	sort.Float64s(sorted)

	perf.PnLMean = computeMean(outcomes)
	perf.PnLMedian = computePercentile(sorted, 0.50)
	perf.PnLMin = sorted[0]
	perf.PnLMax = sorted[n-1]
	perf.MaxDrawdown = computeMaxDrawdown(outcomes)
	perf.MaxConsecutiveLosses = computeMaxConsecutiveLosses(outcomes)

	return perf
}

// PnLBySymbol sums net P&L per root symbol, cash flows included, ordered by
// net P&L ASC then root symbol.
func PnLBySymbol(closed []*domain.ClosedTrade) []domain.SymbolPnL {
	byRoot := make(map[string]*domain.SymbolPnL)
	for _, t := range closed {
		if t == nil {
			continue
		}
		row, ok := byRoot[t.RootSymbol]
		if !ok {
			row = &domain.SymbolPnL{RootSymbol: t.RootSymbol}
			byRoot[t.RootSymbol] = row
		}
		row.NetPnL += t.NetPnL
		row.TradeCount++
	}

	out := make([]domain.SymbolPnL, 0, len(byRoot))
	for _, row := range byRoot {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].NetPnL != out[j].NetPnL {
			return out[i].NetPnL < out[j].NetPnL
		}
		return out[i].RootSymbol < out[j].RootSymbol
	})
	return out
}

// EquityCurve accumulates net P&L over closed rows, cash flows included,
// ordered by close time. Rows closing together keep their input order.
func EquityCurve(closed []*domain.ClosedTrade) []domain.EquityPoint {
	rows := make([]*domain.ClosedTrade, 0, len(closed))
	for _, t := range closed {
		if t != nil {
			rows = append(rows, t)
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].CloseTime < rows[j].CloseTime
	})

	curve := make([]domain.EquityPoint, 0, len(rows))
	cum := 0.0
	for _, t := range rows {
		cum += t.NetPnL
		curve = append(curve, domain.EquityPoint{
			Time:       t.CloseTime,
			TradeID:    t.TradeID,
			NetPnL:     t.NetPnL,
			Cumulative: cum,
		})
	}
	return curve
}

// Aggregator summarizes strategies and campaigns and persists the results.
type Aggregator struct {
	strategyStore storage.StrategySummaryStore
	campaignStore storage.CampaignSummaryStore
}

// NewAggregator creates a new metrics aggregator.
func NewAggregator(strategyStore storage.StrategySummaryStore, campaignStore storage.CampaignSummaryStore) *Aggregator {
	return &Aggregator{
		strategyStore: strategyStore,
		campaignStore: campaignStore,
	}
}

// ComputeAndStore summarizes both groupings and replaces the stored summaries.
func (a *Aggregator) ComputeAndStore(
	ctx context.Context,
	strategies []*domain.Strategy,
	campaigns []*domain.Campaign,
) ([]*domain.StrategySummary, []*domain.CampaignSummary, error) {
	strategySummaries := SummarizeStrategies(strategies)
	campaignSummaries := SummarizeCampaigns(campaigns)

	if err := a.strategyStore.ReplaceAll(ctx, strategySummaries); err != nil {
		return nil, nil, fmt.Errorf("store strategy summaries: %w", err)
	}
	if err := a.campaignStore.ReplaceAll(ctx, campaignSummaries); err != nil {
		return nil, nil, fmt.Errorf("store campaign summaries: %w", err)
	}

	return strategySummaries, campaignSummaries, nil
}
