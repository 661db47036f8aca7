package reporting

import (
	"time"

	"trade-journal-lab/internal/domain"
)

// Report represents the trade journal report structure.
type Report struct {
	// Metadata
	GeneratedAt time.Time
	Currency    string
	Filter      Filter
	Location    *time.Location

	// Account roll-up of the filtered closed trades
	Performance *domain.Performance

	// Data Quality (integrity checks), nil when not requested
	DataQuality *DataQualitySection

	// Cumulative net P&L per closed row, by close time
	EquityCurve []domain.EquityPoint

	// Breakdowns
	ByStrategyType []StrategyTypeRow // sorted by net P&L DESC, type ASC
	BySymbol       []domain.SymbolPnL

	// Detail tables, in store order
	Strategies    []*domain.StrategySummary
	Campaigns     []*domain.CampaignSummary
	OpenPositions []*domain.OpenPosition
	ClosedTrades  []*domain.ClosedTrade
}

// Filter narrows a report to a close-time window and a set of root symbols.
// Zero values select everything.
type Filter struct {
	From  time.Time // inclusive
	To    time.Time // exclusive
	Roots []string
}

// IsZero reports whether the filter selects everything.
func (f Filter) IsZero() bool {
	return f.From.IsZero() && f.To.IsZero() && len(f.Roots) == 0
}

// DataQualitySection contains integrity checks and offending rows.
type DataQualitySection struct {
	Checks          []DataQualityRow
	IntegrityErrors []string
	AllChecksPassed bool
}

// DataQualityRow represents one integrity criterion.
type DataQualityRow struct {
	Name      string
	Threshold string
	Actual    string
	Pass      bool
}

// StrategyTypeRow rolls strategy summaries up by classification label.
type StrategyTypeRow struct {
	StrategyType string
	Count        int
	Wins         int
	WinRate      float64 // wins / count
	NetPnL       float64
	Commission   float64
}
