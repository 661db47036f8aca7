// Package grouping clusters closed trades entered together into multi-leg
// strategies and labels them.
package grouping

import (
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"trade-journal-lab/internal/domain"
	"trade-journal-lab/internal/idhash"
	"trade-journal-lab/internal/logging"
)

// DefaultGap is the maximum entry-time distance between consecutive legs of
// one strategy.
const DefaultGap = 10 * time.Second

// Grouper clusters closed trades by root symbol and entry time.
type Grouper struct {
	gapMs  int64
	logger logrus.FieldLogger
}

// Option configures a Grouper.
type Option func(*Grouper)

// WithGap overrides DefaultGap. Non-positive values are ignored.
func WithGap(gap time.Duration) Option {
	return func(g *Grouper) {
		if gap > 0 {
			g.gapMs = gap.Milliseconds()
		}
	}
}

// WithLogger sets the logger used for cluster diagnostics.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(g *Grouper) {
		g.logger = logging.OrDiscard(logger)
	}
}

// NewGrouper creates a grouper with DefaultGap.
func NewGrouper(opts ...Option) *Grouper {
	g := &Grouper{
		gapMs:  DefaultGap.Milliseconds(),
		logger: logging.Discard(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Group clusters closed trades into strategies.
//
// Trades are stable-sorted by (root symbol, entry time). A new cluster starts
// whenever the root changes or the entry-time gap to the previous trade
// exceeds the configured gap; chained entries within the gap stay together.
// Cash-flow rows are not strategies and are ignored. Output follows the
// sorted order; each cluster id is derived from its member trade ids.
func (g *Grouper) Group(closed []*domain.ClosedTrade) []*domain.Strategy {
	trades := make([]*domain.ClosedTrade, 0, len(closed))
	for _, ct := range closed {
		if ct == nil || ct.IsCashFlow() {
			continue
		}
		trades = append(trades, ct)
	}

	sort.SliceStable(trades, func(i, j int) bool {
		if trades[i].RootSymbol != trades[j].RootSymbol {
			return trades[i].RootSymbol < trades[j].RootSymbol
		}
		return trades[i].EntryTime < trades[j].EntryTime
	})

	var strategies []*domain.Strategy
	var legs []*domain.ClosedTrade

	flush := func() {
		if len(legs) == 0 {
			return
		}
		strategies = append(strategies, newStrategy(legs))
		legs = nil
	}

	for i, ct := range trades {
		if i > 0 {
			prev := trades[i-1]
			if ct.RootSymbol != prev.RootSymbol || ct.EntryTime-prev.EntryTime > g.gapMs {
				flush()
			}
		}
		legs = append(legs, ct)
	}
	flush()

	g.logger.WithFields(logrus.Fields{
		"trades":     len(trades),
		"strategies": len(strategies),
	}).Debug("grouped strategies")

	return strategies
}

func newStrategy(legs []*domain.ClosedTrade) *domain.Strategy {
	ids := make([]string, len(legs))
	for i, leg := range legs {
		ids[i] = leg.TradeID
	}
	return &domain.Strategy{
		StrategyID:   idhash.ComputeStrategyID(ids),
		RootSymbol:   legs[0].RootSymbol,
		StrategyType: Classify(legs),
		Legs:         legs,
	}
}
