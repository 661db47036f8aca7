package pipeline

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"trade-journal-lab/internal/assetkey"
	"trade-journal-lab/internal/domain"
	"trade-journal-lab/internal/matching"
	"trade-journal-lab/internal/storage"
)

// IntegrityCheck represents one journal integrity criterion.
type IntegrityCheck struct {
	Name      string
	Threshold string
	Actual    string
	Pass      bool
}

// IntegrityResult contains every check.
type IntegrityResult struct {
	Checks  []IntegrityCheck
	AllPass bool
	Errors  []string // offending rows, one line each
}

func (r *IntegrityResult) add(check IntegrityCheck, errs ...string) {
	r.Checks = append(r.Checks, check)
	if !check.Pass {
		r.AllPass = false
		r.Errors = append(r.Errors, errs...)
	}
}

// IntegrityChecker looks for gaps in the raw journal that would make the
// derived P&L misleading: malformed rows, options left open past expiry
// (usually a missing expiration or assignment row), mixed currencies and
// dividends on symbols that were never traded.
type IntegrityChecker struct {
	executions storage.ExecutionStore
	cash       storage.CashTransactionStore
	engine     *matching.Engine
}

// NewIntegrityChecker creates a new integrity checker.
func NewIntegrityChecker(executions storage.ExecutionStore, cash storage.CashTransactionStore) *IntegrityChecker {
	return &IntegrityChecker{
		executions: executions,
		cash:       cash,
		engine:     matching.NewEngine(nil),
	}
}

// Check performs all integrity checks.
func (c *IntegrityChecker) Check(ctx context.Context) (*IntegrityResult, error) {
	result := &IntegrityResult{AllPass: true}

	execs, err := c.executions.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get executions: %w", err)
	}
	cash, err := c.cash.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get cash transactions: %w", err)
	}

	// Check 1: at least one execution
	result.add(IntegrityCheck{
		Name:      "Executions stored",
		Threshold: ">= 1",
		Actual:    fmt.Sprintf("%d", len(execs)),
		Pass:      len(execs) > 0,
	}, "journal has no executions")

	match := c.engine.Match(execs)
	var (
		check IntegrityCheck
		errs  []string
	)

	// Check 2: every execution is matchable
	check, errs = checkMalformed(match.Skipped)
	result.add(check, errs...)

	// Check 3: no option lots survive their expiry
	check, errs = checkExpiredOpen(match.Inventory, latestTradeTime(execs))
	result.add(check, errs...)

	// Check 4: one currency
	check, errs = checkCurrencies(execs)
	result.add(check, errs...)

	// Check 5: income only on traded symbols
	check, errs = checkOrphanCashFlows(execs, cash)
	result.add(check, errs...)

	return result, nil
}

// checkMalformed: executions the matcher skipped == 0.
func checkMalformed(skipped []matching.SkippedRow) (IntegrityCheck, []string) {
	errs := make([]string, 0, len(skipped))
	for _, s := range skipped {
		errs = append(errs, fmt.Sprintf("execution %q (row %d): %s", s.ExecutionID, s.Index, s.Reason))
	}
	return IntegrityCheck{
		Name:      "Malformed executions",
		Threshold: "== 0",
		Actual:    fmt.Sprintf("%d", len(skipped)),
		Pass:      len(skipped) == 0,
	}, errs
}

// checkExpiredOpen: option inventories whose expiry is before the day of the
// latest execution == 0.
func checkExpiredOpen(inv *matching.Inventory, latest int64) (IntegrityCheck, []string) {
	var errs []string
	if latest > 0 {
		asOf := time.UnixMilli(latest).UTC().Format("20060102")
		for _, key := range inv.Keys() {
			lots := inv.Lots(key)
			if len(lots) == 0 || !lots[0].AssetClass.IsOption() {
				continue
			}
			net := 0.0
			for _, lot := range lots {
				net += lot.Quantity
			}
			if math.Abs(net) <= matching.PositionEpsilon {
				continue
			}
			expiry := lots[0].Expiry
			// YYYYMMDD compares lexically
			if len(expiry) == 8 && expiry < asOf {
				errs = append(errs, fmt.Sprintf("%s still open after expiry %s", key, expiry))
			}
		}
	}
	return IntegrityCheck{
		Name:      "Expired options still open",
		Threshold: "== 0",
		Actual:    fmt.Sprintf("%d", len(errs)),
		Pass:      len(errs) == 0,
	}, errs
}

// checkCurrencies: distinct non-empty execution currencies <= 1.
func checkCurrencies(execs []*domain.Execution) (IntegrityCheck, []string) {
	seen := make(map[string]struct{})
	for _, e := range execs {
		if cur := strings.ToUpper(strings.TrimSpace(e.Currency)); cur != "" {
			seen[cur] = struct{}{}
		}
	}
	currencies := make([]string, 0, len(seen))
	for cur := range seen {
		currencies = append(currencies, cur)
	}
	sort.Strings(currencies)

	check := IntegrityCheck{
		Name:      "Single currency",
		Threshold: "<= 1",
		Actual:    fmt.Sprintf("%d", len(currencies)),
		Pass:      len(currencies) <= 1,
	}
	if check.Pass {
		return check, nil
	}
	return check, []string{"executions mix currencies: " + strings.Join(currencies, ", ")}
}

// checkOrphanCashFlows: income rows on symbols with no execution == 0.
func checkOrphanCashFlows(execs []*domain.Execution, cash []*domain.CashTransaction) (IntegrityCheck, []string) {
	traded := make(map[string]struct{})
	for _, e := range execs {
		if e == nil {
			continue
		}
		traded[assetkey.Root(e)] = struct{}{}
	}

	var errs []string
	for _, c := range cash {
		if _, ok := c.IncomeReason(); !ok {
			continue
		}
		if _, ok := traded[c.Symbol]; !ok {
			errs = append(errs, fmt.Sprintf("cash transaction %q: %s on untraded symbol %q", c.TransactionID, c.Type, c.Symbol))
		}
	}
	return IntegrityCheck{
		Name:      "Income on traded symbols",
		Threshold: "0 orphans",
		Actual:    fmt.Sprintf("%d orphans", len(errs)),
		Pass:      len(errs) == 0,
	}, errs
}

func latestTradeTime(execs []*domain.Execution) int64 {
	var latest int64
	for _, e := range execs {
		if e != nil && e.TradeTime > latest {
			latest = e.TradeTime
		}
	}
	return latest
}
