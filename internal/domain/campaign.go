package domain

// Campaign is a chain of closed trades on one root symbol linked by the
// dynamic tolerance window (e.g. a wheel: short put, assignment, covered call).
// Derived on demand, never authoritative.
type Campaign struct {
	CampaignID string // deterministic, derived from member trade ids
	RootSymbol string
	Trades     []*ClosedTrade // ordered by entry time
}

// CampaignSummary holds the aggregate metrics of one Campaign.
// Corresponds to campaign_summaries table.
type CampaignSummary struct {
	CampaignID    string
	RootSymbol    string
	StartTime     int64 // min entry time (ms)
	EndTime       int64 // max close time (ms)
	DurationDays  float64
	TradeCount    int
	NetPnL        float64
	Commission    float64
	CapitalEst    float64
	ROIPct        float64
	AnnualizedPct float64
}
