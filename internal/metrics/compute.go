package metrics

import (
	"math"
	"sort"

	"trade-journal-lab/internal/domain"
)

const (
	msPerDay = float64(24 * 60 * 60 * 1000)

	// defaultContractSize is the equity option multiplier assumed when the
	// recorded multiplier is missing or 1.
	defaultContractSize = 100.0

	// fallbackUnitPrice values a zero-priced non-option leg that still
	// produced P&L.
	fallbackUnitPrice = 100.0

	// minCapital keeps ROI finite for groups without any notional.
	minCapital = 1.0
)

// groupStats is the shared roll-up of a strategy or campaign.
type groupStats struct {
	netPnL        float64
	commission    float64
	count         int
	firstEntry    int64
	lastClose     int64
	reasons       []domain.CloseReason // distinct, sorted
	durationDays  float64
	capital       float64
	roiPct        float64
	annualizedPct float64
}

// computeGroupStats aggregates P&L, span, capital and ROI over trades.
func computeGroupStats(trades []*domain.ClosedTrade) groupStats {
	s := groupStats{count: len(trades)}
	if len(trades) == 0 {
		s.durationDays = 1
		s.capital = minCapital
		return s
	}

	seen := make(map[domain.CloseReason]struct{})
	s.firstEntry = trades[0].EntryTime
	s.lastClose = trades[0].CloseTime

	for _, t := range trades {
		s.netPnL += t.NetPnL
		s.commission += t.Commission
		if t.EntryTime < s.firstEntry {
			s.firstEntry = t.EntryTime
		}
		if t.CloseTime > s.lastClose {
			s.lastClose = t.CloseTime
		}
		if t.CloseReason != "" {
			if _, ok := seen[t.CloseReason]; !ok {
				seen[t.CloseReason] = struct{}{}
				s.reasons = append(s.reasons, t.CloseReason)
			}
		}
	}
	sort.Slice(s.reasons, func(i, j int) bool { return s.reasons[i] < s.reasons[j] })

	s.durationDays = computeSpanDays(s.firstEntry, s.lastClose)
	s.capital = computeCapital(trades)
	s.roiPct = computeROIPct(s.netPnL, s.capital)
	s.annualizedPct = computeAnnualizedPct(s.roiPct, s.durationDays)
	return s
}

// computeSpanDays returns the distance between two ms timestamps in days,
// floored at 1.
func computeSpanDays(start, end int64) float64 {
	days := float64(end-start) / msPerDay
	if days < 1 {
		return 1
	}
	return days
}

// computeCapital estimates capital at risk as the largest single-leg notional:
// strike x contract size x |qty| for options, entry price x |qty| otherwise.
// Never below minCapital.
func computeCapital(trades []*domain.ClosedTrade) float64 {
	maxCap := 0.0
	for _, t := range trades {
		if v := legNotional(t); v > maxCap {
			maxCap = v
		}
	}
	if maxCap <= 0 {
		return minCapital
	}
	return maxCap
}

func legNotional(t *domain.ClosedTrade) float64 {
	qty := math.Abs(t.Quantity)

	if t.Strike > 0 && t.AssetClass.IsOption() {
		size := t.Multiplier
		if size <= 1 {
			size = defaultContractSize
		}
		return t.Strike * size * qty
	}

	// spreads can open below zero
	price := math.Abs(t.EntryPrice)
	if price == 0 && t.NetPnL != 0 {
		price = fallbackUnitPrice
	}
	return price * qty
}

// computeROIPct returns pnl / capital in percent.
func computeROIPct(pnl, capital float64) float64 {
	if capital <= 0 {
		capital = minCapital
	}
	return pnl / capital * 100
}

// computeAnnualizedPct scales a period ROI to 365 days.
func computeAnnualizedPct(roiPct, days float64) float64 {
	if days < 1 {
		days = 1
	}
	return roiPct * 365 / days
}

// computeWinRate calculates win rate as wins / total.
func computeWinRate(wins, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(wins) / float64(total)
}

// computeMean calculates arithmetic mean of outcomes.
func computeMean(outcomes []float64) float64 {
	if len(outcomes) == 0 {
		return 0
	}
	sum := 0.0
	for _, o := range outcomes {
		sum += o
	}
	return sum / float64(len(outcomes))
}

// computePercentile uses linear interpolation.
// sorted must be pre-sorted ASC.
// p is percentile (0.50 = median).
func computePercentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return sorted[0]
	}

	idx := p * float64(n-1)
	lower := int(idx)
	upper := lower + 1
	if upper >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lower)
	return sorted[lower] + frac*(sorted[upper]-sorted[lower])
}

// computeMaxDrawdown calculates worst peak-to-trough on cumulative outcomes.
// Outcomes must be in chronological order.
func computeMaxDrawdown(outcomes []float64) float64 {
	cumulative := 0.0
	peak := 0.0
	maxDrawdown := 0.0

	for _, o := range outcomes {
		cumulative += o
		if cumulative > peak {
			peak = cumulative
		}
		if dd := peak - cumulative; dd > maxDrawdown {
			maxDrawdown = dd
		}
	}
	return maxDrawdown
}

// computeMaxConsecutiveLosses finds longest streak of outcome <= 0.
// Outcomes must be in chronological order.
func computeMaxConsecutiveLosses(outcomes []float64) int {
	maxStreak := 0
	currentStreak := 0

	for _, o := range outcomes {
		if o <= 0 {
			currentStreak++
			if currentStreak > maxStreak {
				maxStreak = currentStreak
			}
		} else {
			currentStreak = 0
		}
	}
	return maxStreak
}
