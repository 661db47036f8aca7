package reporting

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"trade-journal-lab/internal/domain"
	"trade-journal-lab/internal/metrics"
	"trade-journal-lab/internal/pipeline"
	"trade-journal-lab/internal/storage"
)

// IntegrityChecker produces the data quality section of a report.
type IntegrityChecker interface {
	Check(ctx context.Context) (*pipeline.IntegrityResult, error)
}

// Generator produces reports from stored analysis output.
type Generator struct {
	closedTrades      storage.ClosedTradeStore
	openPositions     storage.OpenPositionStore
	strategySummaries storage.StrategySummaryStore
	campaignSummaries storage.CampaignSummaryStore
	checker           IntegrityChecker
	filter            Filter
	currency          string
	loc               *time.Location
	now               func() time.Time // Injectable clock for deterministic output
}

// NewGenerator creates a new report generator over the derived stores.
func NewGenerator(stores *storage.Stores) *Generator {
	return &Generator{
		closedTrades:      stores.ClosedTrades,
		openPositions:     stores.OpenPositions,
		strategySummaries: stores.StrategySummaries,
		campaignSummaries: stores.CampaignSummaries,
		currency:          DefaultCurrency,
		loc:               time.UTC,
		now:               func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// WithFilter restricts the report to a close-time window and root symbols.
func (g *Generator) WithFilter(f Filter) *Generator {
	g.filter = f
	return g
}

// WithIntegrity adds a data quality section built by checker.
func (g *Generator) WithIntegrity(checker IntegrityChecker) *Generator {
	g.checker = checker
	return g
}

// WithCurrency sets the ISO code money cells are rendered in.
func (g *Generator) WithCurrency(code string) *Generator {
	if code = strings.ToUpper(strings.TrimSpace(code)); code != "" {
		g.currency = code
	}
	return g
}

// WithLocation sets the zone dates are rendered in.
func (g *Generator) WithLocation(loc *time.Location) *Generator {
	if loc != nil {
		g.loc = loc
	}
	return g
}

// Generate produces a complete report.
func (g *Generator) Generate(ctx context.Context) (*Report, error) {
	closed, err := g.closedTrades.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load closed trades: %w", err)
	}
	open, err := g.openPositions.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load open positions: %w", err)
	}
	strategies, err := g.strategySummaries.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load strategy summaries: %w", err)
	}
	campaigns, err := g.campaignSummaries.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load campaign summaries: %w", err)
	}

	sel := newSelector(g.filter)

	closed = filterSlice(closed, func(t *domain.ClosedTrade) bool {
		return sel.root(t.RootSymbol) && sel.closedAt(t.CloseTime)
	})
	open = filterSlice(open, func(p *domain.OpenPosition) bool {
		return sel.root(p.RootSymbol)
	})
	strategies = filterSlice(strategies, func(s *domain.StrategySummary) bool {
		return sel.root(s.RootSymbol) && sel.closedAt(s.Date)
	})
	campaigns = filterSlice(campaigns, func(c *domain.CampaignSummary) bool {
		return sel.root(c.RootSymbol) && sel.closedAt(c.EndTime)
	})

	report := &Report{
		GeneratedAt:    g.now(),
		Currency:       g.currency,
		Filter:         g.filter,
		Location:       g.loc,
		Performance:    metrics.ComputePerformance(closed),
		EquityCurve:    metrics.EquityCurve(closed),
		ByStrategyType: summarizeByType(strategies),
		BySymbol:       metrics.PnLBySymbol(closed),
		Strategies:     strategies,
		Campaigns:      campaigns,
		OpenPositions:  open,
		ClosedTrades:   closed,
	}

	if g.checker != nil {
		result, err := g.checker.Check(ctx)
		if err != nil {
			return nil, fmt.Errorf("integrity check: %w", err)
		}
		report.DataQuality = dataQualityFrom(result)
	}

	return report, nil
}

// selector evaluates a Filter.
type selector struct {
	from, to int64
	roots    map[string]struct{}
}

func newSelector(f Filter) selector {
	s := selector{}
	if !f.From.IsZero() {
		s.from = f.From.UnixMilli()
	}
	if !f.To.IsZero() {
		s.to = f.To.UnixMilli()
	}
	if len(f.Roots) > 0 {
		s.roots = make(map[string]struct{}, len(f.Roots))
		for _, r := range f.Roots {
			s.roots[strings.ToUpper(strings.TrimSpace(r))] = struct{}{}
		}
	}
	return s
}

func (s selector) root(root string) bool {
	if s.roots == nil {
		return true
	}
	_, ok := s.roots[strings.ToUpper(root)]
	return ok
}

func (s selector) closedAt(ms int64) bool {
	if s.from != 0 && ms < s.from {
		return false
	}
	if s.to != 0 && ms >= s.to {
		return false
	}
	return true
}

func filterSlice[T any](in []T, keep func(T) bool) []T {
	out := make([]T, 0, len(in))
	for _, v := range in {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}

// summarizeByType groups strategy summaries by classification label.
func summarizeByType(summaries []*domain.StrategySummary) []StrategyTypeRow {
	byType := make(map[string]*StrategyTypeRow)
	for _, s := range summaries {
		row, ok := byType[s.StrategyType]
		if !ok {
			row = &StrategyTypeRow{StrategyType: s.StrategyType}
			byType[s.StrategyType] = row
		}
		row.Count++
		row.NetPnL += s.NetPnL
		row.Commission += s.Commission
		if s.NetPnL > 0 {
			row.Wins++
		}
	}

	rows := make([]StrategyTypeRow, 0, len(byType))
	for _, row := range byType {
		row.WinRate = float64(row.Wins) / float64(row.Count)
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].NetPnL != rows[j].NetPnL {
			return rows[i].NetPnL > rows[j].NetPnL
		}
		return rows[i].StrategyType < rows[j].StrategyType
	})
	return rows
}

func dataQualityFrom(result *pipeline.IntegrityResult) *DataQualitySection {
	if result == nil {
		return nil
	}
	section := &DataQualitySection{
		AllChecksPassed: result.AllPass,
		IntegrityErrors: result.Errors,
	}
	for _, c := range result.Checks {
		section.Checks = append(section.Checks, DataQualityRow{
			Name:      c.Name,
			Threshold: c.Threshold,
			Actual:    c.Actual,
			Pass:      c.Pass,
		})
	}
	return section
}
