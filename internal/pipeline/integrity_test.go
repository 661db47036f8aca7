package pipeline

import (
	"context"
	"strings"
	"testing"

	"trade-journal-lab/internal/domain"
	"trade-journal-lab/internal/storage/memory"
)

func TestIntegrityChecker_FixturesPass(t *testing.T) {
	stores := loadedStores(t)

	result, err := NewIntegrityChecker(stores.Executions, stores.CashTransactions).Check(context.Background())
	if err != nil {
		t.Fatalf("Check failed: %v", err)
	}
	if !result.AllPass {
		t.Errorf("expected all checks to pass, errors: %v", result.Errors)
	}
	if len(result.Checks) != 5 {
		t.Errorf("checks = %d, want 5", len(result.Checks))
	}
}

func TestIntegrityChecker_EmptyJournal(t *testing.T) {
	stores := memory.NewStores()

	result, err := NewIntegrityChecker(stores.Executions, stores.CashTransactions).Check(context.Background())
	if err != nil {
		t.Fatalf("Check failed: %v", err)
	}
	if result.AllPass {
		t.Error("expected empty journal to fail")
	}
	if result.Checks[0].Pass {
		t.Error("expected executions check to fail")
	}
}

func TestIntegrityChecker_Failures(t *testing.T) {
	ctx := context.Background()
	stores := memory.NewStores()

	execs := []*domain.Execution{
		// short put never closed, later activity proves it expired
		{ExecutionID: "p1", Symbol: "XYZ   240119P00050000", Underlying: "XYZ", AssetClass: domain.AssetClassOption,
			Strike: 50, Expiry: "20240119", Right: "P", Side: domain.SideSell, Quantity: 1, Price: 2,
			Multiplier: 100, TradeTime: fixtureTime(1, 2, 15, 0, 0), Currency: "USD"},
		{ExecutionID: "s1", Symbol: "SAP", AssetClass: domain.AssetClassStock, Side: domain.SideBuy, Quantity: 10,
			Price: 150, TradeTime: fixtureTime(2, 1, 15, 0, 0), Currency: "EUR"},
		{ExecutionID: "bad", Symbol: "SAP", AssetClass: domain.AssetClassStock, Quantity: 0, Price: 150,
			TradeTime: fixtureTime(2, 2, 15, 0, 0), Currency: "EUR"},
	}
	if _, err := stores.Executions.Merge(ctx, execs); err != nil {
		t.Fatalf("merge executions: %v", err)
	}
	cash := []*domain.CashTransaction{
		{TransactionID: "d1", Type: "Dividends", Symbol: "KO", Amount: 5, Date: fixtureTime(2, 3, 0, 0, 0)},
		{TransactionID: "f1", Type: "Other Fees", Symbol: "", Amount: -10, Date: fixtureTime(2, 3, 0, 0, 0)},
	}
	if _, err := stores.CashTransactions.Merge(ctx, cash); err != nil {
		t.Fatalf("merge cash: %v", err)
	}

	result, err := NewIntegrityChecker(stores.Executions, stores.CashTransactions).Check(ctx)
	if err != nil {
		t.Fatalf("Check failed: %v", err)
	}
	if result.AllPass {
		t.Fatal("expected failures")
	}

	want := map[string]bool{
		"Executions stored":          true,
		"Malformed executions":       false,
		"Expired options still open": false,
		"Single currency":            false,
		"Income on traded symbols":   false,
	}
	for _, c := range result.Checks {
		if c.Pass != want[c.Name] {
			t.Errorf("%s: pass = %v, want %v (actual %s)", c.Name, c.Pass, want[c.Name], c.Actual)
		}
	}

	joined := strings.Join(result.Errors, "\n")
	for _, fragment := range []string{`"bad"`, "XYZ 20240119 50 P", "EUR, USD", `"KO"`} {
		if !strings.Contains(joined, fragment) {
			t.Errorf("errors missing %s:\n%s", fragment, joined)
		}
	}
}
