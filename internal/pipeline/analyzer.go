// Package pipeline wires the journal stores to the matching, grouping and
// statistics components.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"trade-journal-lab/internal/campaign"
	"trade-journal-lab/internal/domain"
	"trade-journal-lab/internal/grouping"
	"trade-journal-lab/internal/logging"
	"trade-journal-lab/internal/matching"
	"trade-journal-lab/internal/metrics"
	"trade-journal-lab/internal/observability"
	"trade-journal-lab/internal/storage"
)

// PhaseAnalyze labels analyzer runs in metrics.
const PhaseAnalyze = "analyze"

// Analysis is everything one analyzer run derived.
type Analysis struct {
	Closed            []*domain.ClosedTrade // trades and folded cash flows, by close time
	Open              []*domain.OpenPosition
	Skipped           []matching.SkippedRow
	Strategies        []*domain.Strategy
	Campaigns         []*domain.Campaign
	StrategySummaries []*domain.StrategySummary
	CampaignSummaries []*domain.CampaignSummary
	Performance       *domain.Performance
	BySymbol          []domain.SymbolPnL
}

// Analyzer rebuilds every derived table from the raw executions and cash
// transactions.
type Analyzer struct {
	stores     *storage.Stores
	engine     *matching.Engine
	grouper    *grouping.Grouper
	builder    *campaign.Builder
	aggregator *metrics.Aggregator
	workers    int
	metrics    *observability.Metrics
	logger     logrus.FieldLogger
	clock      func() time.Time
}

// AnalyzerOptions contains configuration for creating an Analyzer.
type AnalyzerOptions struct {
	Stores  *storage.Stores
	Grouper *grouping.Grouper // nil uses defaults
	Builder *campaign.Builder // nil uses defaults
	Workers int               // > 1 matches asset keys in parallel
	Metrics *observability.Metrics
	Logger  logrus.FieldLogger
}

// NewAnalyzer creates a new analyzer.
func NewAnalyzer(opts AnalyzerOptions) *Analyzer {
	logger := logging.OrDiscard(opts.Logger)

	grouper := opts.Grouper
	if grouper == nil {
		grouper = grouping.NewGrouper(grouping.WithLogger(logger))
	}
	builder := opts.Builder
	if builder == nil {
		builder = campaign.NewBuilder(campaign.WithLogger(logger))
	}

	return &Analyzer{
		stores:     opts.Stores,
		engine:     matching.NewEngine(logger),
		grouper:    grouper,
		builder:    builder,
		aggregator: metrics.NewAggregator(opts.Stores.StrategySummaries, opts.Stores.CampaignSummaries),
		workers:    opts.Workers,
		metrics:    opts.Metrics,
		logger:     logger,
		clock:      time.Now,
	}
}

// WithClock sets a custom clock for duration measurement.
func (a *Analyzer) WithClock(clock func() time.Time) *Analyzer {
	a.clock = clock
	return a
}

// Run loads the raw rows, matches, folds cash flows, groups, chains,
// summarizes and replaces every derived table. The output depends only on
// store content.
func (a *Analyzer) Run(ctx context.Context) (*Analysis, error) {
	start := a.clock()
	analysis, err := a.run(ctx)
	a.metrics.RecordPipelineRun(PhaseAnalyze, err, a.clock().Sub(start))
	return analysis, err
}

func (a *Analyzer) run(ctx context.Context) (*Analysis, error) {
	execs, err := a.stores.Executions.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load executions: %w", err)
	}
	cash, err := a.stores.CashTransactions.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load cash transactions: %w", err)
	}

	if err := matching.ValidateExecutionOrdering(execs); err != nil {
		// Stores return trade-time order; the engine re-sorts regardless.
		a.logger.WithError(err).Debug("executions loaded out of order")
	}

	result, err := a.match(ctx, execs)
	if err != nil {
		return nil, err
	}

	closed := matching.FoldCashTransactions(result.Closed, cash)
	strategies := a.grouper.Group(closed)
	campaigns := a.builder.Build(closed)

	if err := a.stores.ClosedTrades.ReplaceAll(ctx, closed); err != nil {
		return nil, fmt.Errorf("store closed trades: %w", err)
	}
	if err := a.stores.OpenPositions.ReplaceAll(ctx, result.Open); err != nil {
		return nil, fmt.Errorf("store open positions: %w", err)
	}
	strategySummaries, campaignSummaries, err := a.aggregator.ComputeAndStore(ctx, strategies, campaigns)
	if err != nil {
		return nil, err
	}

	analysis := &Analysis{
		Closed:            closed,
		Open:              result.Open,
		Skipped:           result.Skipped,
		Strategies:        strategies,
		Campaigns:         campaigns,
		StrategySummaries: strategySummaries,
		CampaignSummaries: campaignSummaries,
		Performance:       metrics.ComputePerformance(closed),
		BySymbol:          metrics.PnLBySymbol(closed),
	}

	a.record(len(execs), analysis)
	return analysis, nil
}

func (a *Analyzer) match(ctx context.Context, execs []*domain.Execution) (*matching.Result, error) {
	if a.workers > 1 {
		result, err := a.engine.MatchParallel(ctx, execs, a.workers)
		if err != nil {
			return nil, fmt.Errorf("match executions: %w", err)
		}
		return result, nil
	}
	return a.engine.Match(execs), nil
}

func (a *Analyzer) record(processed int, an *Analysis) {
	skipped := make(map[string]int)
	for _, s := range an.Skipped {
		skipped[s.Reason]++
	}
	byType := make(map[string]int)
	for _, st := range an.Strategies {
		byType[st.StrategyType]++
	}

	a.metrics.RecordMatch(processed, skipped, len(an.Closed), len(an.Open))
	a.metrics.RecordGroupings(byType, len(an.Campaigns))
	a.metrics.RecordPerformance(an.Performance.NetPnL, an.Performance.WinRate)

	a.logger.WithFields(logrus.Fields{
		"executions":     processed,
		"skipped":        len(an.Skipped),
		"closed_trades":  len(an.Closed),
		"open_positions": len(an.Open),
		"strategies":     len(an.Strategies),
		"campaigns":      len(an.Campaigns),
		"net_pnl":        an.Performance.NetPnL,
	}).Info("analysis complete")
}
