package matching

import (
	"math"
	"sort"
	"strings"

	"trade-journal-lab/internal/assetkey"
	"trade-journal-lab/internal/domain"
	"trade-journal-lab/internal/idhash"
)

// FoldCashTransactions appends dividend, payment-in-lieu and withholding
// rows to the closed-trade stream as zero-quantity pseudo-trades.
//
// A pseudo-trade carries the cash amount as both gross and net P&L, no
// commission, and the transaction type as close reason. Other cash types
// (fees, interest, deposits) are ignored. The merged stream is stable-sorted
// by close time; the inputs are not modified.
func FoldCashTransactions(closed []*domain.ClosedTrade, cash []*domain.CashTransaction) []*domain.ClosedTrade {
	merged := make([]*domain.ClosedTrade, 0, len(closed)+len(cash))
	merged = append(merged, closed...)

	for _, tx := range cash {
		if tx == nil {
			continue
		}
		reason, ok := tx.IncomeReason()
		if !ok {
			continue
		}
		if math.IsNaN(tx.Amount) || math.IsInf(tx.Amount, 0) {
			continue
		}

		symbol := strings.TrimSpace(tx.Symbol)
		key := domain.AssetKey(symbol)
		if symbol == "" {
			key = assetkey.Placeholder
		}

		merged = append(merged, &domain.ClosedTrade{
			TradeID:     idhash.ComputeCashFlowID(tx.TransactionID, symbol, string(reason), tx.Date),
			AssetKey:    key,
			RootSymbol:  symbol,
			Symbol:      symbol,
			AssetClass:  tx.AssetClass,
			Multiplier:  1.0,
			Direction:   domain.DirectionLong,
			EntryTime:   tx.Date,
			CloseTime:   tx.Date,
			GrossPnL:    tx.Amount,
			NetPnL:      tx.Amount,
			CloseReason: reason,
		})
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].CloseTime < merged[j].CloseTime
	})
	return merged
}
