package memory

import "trade-journal-lab/internal/storage"

// NewStores returns a full set of empty in-memory stores.
func NewStores() *storage.Stores {
	return &storage.Stores{
		Executions:        NewExecutionStore(),
		CashTransactions:  NewCashTransactionStore(),
		ClosedTrades:      NewClosedTradeStore(),
		OpenPositions:     NewOpenPositionStore(),
		StrategySummaries: NewStrategySummaryStore(),
		CampaignSummaries: NewCampaignSummaryStore(),
	}
}
