package pipeline

import (
	"context"
	"fmt"
	"time"

	"trade-journal-lab/internal/domain"
	"trade-journal-lab/internal/storage"
)

// LoadFixtures populates stores with a small demonstration journal: a stock
// round trip, a partial close, a wheel on XYZ, a call vertical on SPY and
// MSFT dividends.
func LoadFixtures(ctx context.Context, stores *storage.Stores) error {
	if _, err := stores.Executions.Merge(ctx, FixtureExecutions()); err != nil {
		return fmt.Errorf("load fixture executions: %w", err)
	}
	if _, err := stores.CashTransactions.Merge(ctx, FixtureCashTransactions()); err != nil {
		return fmt.Errorf("load fixture cash transactions: %w", err)
	}
	return nil
}

func fixtureTime(month time.Month, day, hour, minute, sec int) int64 {
	return time.Date(2024, month, day, hour, minute, sec, 0, time.UTC).UnixMilli()
}

func fixtureStock(id, symbol, side string, qty, price, commission float64, ts int64, codes string) *domain.Execution {
	return &domain.Execution{
		ExecutionID: id,
		Symbol:      symbol,
		AssetClass:  domain.AssetClassStock,
		Side:        side,
		Quantity:    qty,
		Price:       price,
		Commission:  commission,
		Multiplier:  1,
		TradeTime:   ts,
		Codes:       codes,
		Currency:    "USD",
	}
}

func fixtureOption(id, symbol, root, side string, qty, price, commission float64,
	strike float64, expiry, right string, ts int64, codes string) *domain.Execution {
	return &domain.Execution{
		ExecutionID: id,
		Symbol:      symbol,
		Underlying:  root,
		AssetClass:  domain.AssetClassOption,
		Strike:      strike,
		Expiry:      expiry,
		Right:       right,
		Side:        side,
		Quantity:    qty,
		Price:       price,
		Commission:  commission,
		Multiplier:  100,
		TradeTime:   ts,
		Codes:       codes,
		Currency:    "USD",
	}
}

// FixtureExecutions returns the demonstration executions, in trade-time order.
func FixtureExecutions() []*domain.Execution {
	return []*domain.Execution{
		fixtureOption("fx-001", "XYZ   240119P00050000", "XYZ", domain.SideSell, 1, 2.00, 1.00,
			50, "20240119", domain.RightPut, fixtureTime(time.January, 2, 15, 0, 0), "O"),
		fixtureStock("fx-002", "AAPL", domain.SideBuy, 100, 10, 1, fixtureTime(time.January, 3, 15, 0, 0), "O"),
		fixtureStock("fx-003", "MSFT", domain.SideBuy, 100, 10, 1, fixtureTime(time.January, 4, 15, 0, 0), "O"),
		fixtureStock("fx-004", "AAPL", domain.SideSell, 100, 12, 1, fixtureTime(time.January, 5, 15, 0, 0), "C"),
		fixtureStock("fx-005", "MSFT", domain.SideSell, 60, 12, 0.6, fixtureTime(time.January, 8, 15, 0, 0), "C;P"),
		fixtureOption("fx-006", "XYZ   240119P00050000", "XYZ", domain.SideBuy, 1, 0, 0,
			50, "20240119", domain.RightPut, fixtureTime(time.January, 19, 21, 20, 0), "A;C"),
		fixtureStock("fx-007", "XYZ", domain.SideBuy, 100, 50, 0, fixtureTime(time.January, 19, 21, 20, 0), "A;O"),
		fixtureOption("fx-008", "XYZ   240216C00052000", "XYZ", domain.SideSell, 1, 1.00, 1.00,
			52, "20240216", domain.RightCall, fixtureTime(time.January, 22, 15, 0, 0), "O"),
		fixtureOption("fx-009", "XYZ   240216C00052000", "XYZ", domain.SideBuy, 1, 0, 0,
			52, "20240216", domain.RightCall, fixtureTime(time.February, 16, 21, 20, 0), "Ep;C"),
		fixtureStock("fx-010", "XYZ", domain.SideSell, 100, 53, 1, fixtureTime(time.February, 20, 15, 0, 0), "C"),
		fixtureOption("fx-011", "SPY   240315C00500000", "SPY", domain.SideBuy, 1, 5, 1,
			500, "20240315", domain.RightCall, fixtureTime(time.March, 1, 15, 0, 0), "O"),
		fixtureOption("fx-012", "SPY   240315C00510000", "SPY", domain.SideSell, 1, 2, 1,
			510, "20240315", domain.RightCall, fixtureTime(time.March, 1, 15, 0, 2), "O"),
		fixtureOption("fx-013", "SPY   240315C00500000", "SPY", domain.SideSell, 1, 7, 1,
			500, "20240315", domain.RightCall, fixtureTime(time.March, 8, 16, 0, 0), "C"),
		fixtureOption("fx-014", "SPY   240315C00510000", "SPY", domain.SideBuy, 1, 3, 1,
			510, "20240315", domain.RightCall, fixtureTime(time.March, 8, 16, 0, 1), "C"),
	}
}

// FixtureCashTransactions returns the demonstration dividend rows.
func FixtureCashTransactions() []*domain.CashTransaction {
	return []*domain.CashTransaction{
		{
			TransactionID: "fx-cash-001",
			Type:          "Dividends",
			AssetClass:    domain.AssetClassStock,
			Symbol:        "MSFT",
			Amount:        24,
			Date:          fixtureTime(time.February, 15, 0, 0, 0),
			Description:   "MSFT CASH DIVIDEND USD 0.60 PER SHARE",
			Currency:      "USD",
		},
		{
			TransactionID: "fx-cash-002",
			Type:          "Withholding Tax",
			AssetClass:    domain.AssetClassStock,
			Symbol:        "MSFT",
			Amount:        -3.6,
			Date:          fixtureTime(time.February, 15, 0, 0, 0),
			Description:   "MSFT CASH DIVIDEND - US TAX",
			Currency:      "USD",
		},
	}
}
