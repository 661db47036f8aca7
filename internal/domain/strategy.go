package domain

// Strategy labels assigned by the grouper.
const (
	StrategyTypeSingle          = "Single"
	StrategyTypeCoveredStock    = "Covered/Protected Stock"
	StrategyTypeVerticalSpread  = "Vertical Spread"
	StrategyTypeStraddle        = "Straddle/Strangle"
	StrategyTypeCalendar        = "Calendar/Diagonal Spread"
	StrategyTypeButterfly       = "Butterfly/Ladder"
	StrategyTypeIronCondor      = "Iron Condor"
	StrategyTypeUnknownMultiLeg = "Multi-Leg (Unknown)"
)

// Strategy is a cluster of closed trades entered together on one root symbol.
// Derived on every analysis pass, never authoritative.
type Strategy struct {
	StrategyID   string // deterministic, derived from member trade ids
	RootSymbol   string
	StrategyType string
	Legs         []*ClosedTrade // ordered by entry time
}

// StrategySummary holds the aggregate metrics of one Strategy.
// Corresponds to strategy_summaries table.
type StrategySummary struct {
	StrategyID   string
	RootSymbol   string
	StrategyType string
	Date         int64 // latest close time of any leg (ms)
	EntryTime    int64 // earliest entry time of any leg (ms)
	LegCount     int
	NetPnL       float64
	Commission   float64
	CloseReasons string // distinct reasons, sorted, ", " separated

	DurationDays  float64 // floored at 1
	CapitalEst    float64
	ROIPct        float64
	AnnualizedPct float64
}
