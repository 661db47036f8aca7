// Package matching implements FIFO lot matching of broker executions into
// realized closed trades and remaining open positions.
package matching

import (
	"math"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"trade-journal-lab/internal/assetkey"
	"trade-journal-lab/internal/domain"
	"trade-journal-lab/internal/logging"
)

// Skip reasons reported for executions that are never matched.
const (
	SkipNilExecution     = "nil execution"
	SkipMissingSymbol    = "missing symbol"
	SkipMissingTimestamp = "missing trade time"
	SkipZeroQuantity     = "zero quantity"
	SkipInvalidQuantity  = "invalid quantity"
	SkipInvalidPrice     = "invalid price"
)

// SkippedRow records an execution the engine refused to match.
type SkippedRow struct {
	Index       int // position in the caller's input slice
	ExecutionID string
	Reason      string
}

// Result holds the output of one matching run.
type Result struct {
	Closed    []*domain.ClosedTrade  // in processing order: trade time, then lot order
	Open      []*domain.OpenPosition // first-seen key order
	Skipped   []SkippedRow           // in input order
	Inventory *Inventory             // final state, owned by the caller
}

// Engine is a stateless FIFO matcher. Every call works on its own inventory,
// so one Engine may serve concurrent callers.
type Engine struct {
	logger logrus.FieldLogger
}

// NewEngine creates a matching engine. A nil logger discards output.
func NewEngine(logger logrus.FieldLogger) *Engine {
	return &Engine{logger: logging.OrDiscard(logger)}
}

// Match runs executions against a fresh inventory.
//
// Executions are stable-sorted by trade time before matching, so the output
// follows trade-time order regardless of input order; executions sharing a
// timestamp are processed in input order. The input slice is not modified.
// Malformed rows are skipped and reported in Result.Skipped; Match never fails.
func (e *Engine) Match(execs []*domain.Execution) *Result {
	return e.MatchInto(NewInventory(), execs)
}

// MatchInto runs executions against inv, continuing from its current state.
func (e *Engine) MatchInto(inv *Inventory, execs []*domain.Execution) *Result {
	valid, skipped := e.prepare(execs)

	var closed []*domain.ClosedTrade
	for _, n := range valid {
		closed = append(closed, inv.apply(n)...)
	}

	return &Result{
		Closed:    closed,
		Open:      inv.OpenPositions(),
		Skipped:   skipped,
		Inventory: inv,
	}
}

// normalized is a validated execution with derived matching inputs.
type normalized struct {
	index             int
	exec              *domain.Execution
	key               domain.AssetKey
	root              string
	quantity          float64 // signed: positive buys, negative sells
	commissionPerUnit float64
	multiplier        float64
	closeReason       domain.CloseReason
}

func (n *normalized) openLot(qty float64) domain.OpenLot {
	return domain.OpenLot{
		Quantity:          qty,
		EntryPrice:        n.exec.Price,
		EntryTime:         n.exec.TradeTime,
		Multiplier:        n.multiplier,
		CommissionPerUnit: n.commissionPerUnit,
		Symbol:            n.exec.Symbol,
		RootSymbol:        n.root,
		AssetClass:        n.exec.AssetClass,
		Right:             n.exec.Right,
		Strike:            n.exec.Strike,
		Expiry:            n.exec.Expiry,
	}
}

// prepare validates, normalizes and stable-sorts executions by trade time.
func (e *Engine) prepare(execs []*domain.Execution) ([]*normalized, []SkippedRow) {
	valid := make([]*normalized, 0, len(execs))
	var skipped []SkippedRow

	for i, exec := range execs {
		n, reason := normalize(i, exec)
		if reason != "" {
			row := SkippedRow{Index: i, Reason: reason}
			if exec != nil {
				row.ExecutionID = exec.ExecutionID
			}
			skipped = append(skipped, row)
			e.logger.WithFields(logrus.Fields{
				"index":        i,
				"execution_id": row.ExecutionID,
				"reason":       reason,
			}).Warn("skipping execution")
			continue
		}
		valid = append(valid, n)
	}

	sort.SliceStable(valid, func(i, j int) bool {
		return valid[i].exec.TradeTime < valid[j].exec.TradeTime
	})

	return valid, skipped
}

// normalize returns the matching inputs of one execution, or a skip reason.
func normalize(index int, exec *domain.Execution) (*normalized, string) {
	if exec == nil {
		return nil, SkipNilExecution
	}
	if strings.TrimSpace(exec.Symbol) == "" && strings.TrimSpace(exec.Underlying) == "" {
		return nil, SkipMissingSymbol
	}
	if exec.TradeTime <= 0 {
		return nil, SkipMissingTimestamp
	}
	if math.IsNaN(exec.Quantity) || math.IsInf(exec.Quantity, 0) {
		return nil, SkipInvalidQuantity
	}
	if exec.Quantity == 0 {
		return nil, SkipZeroQuantity
	}
	// Spread and combo fills can print below zero.
	if math.IsNaN(exec.Price) || math.IsInf(exec.Price, 0) {
		return nil, SkipInvalidPrice
	}

	qty := exec.Quantity
	switch strings.ToUpper(strings.TrimSpace(exec.Side)) {
	case domain.SideSell, domain.SideSold:
		if qty > 0 {
			qty = -qty
		}
	}

	commission := exec.Commission
	if math.IsNaN(commission) || math.IsInf(commission, 0) {
		commission = 0
	}

	multiplier := exec.Multiplier
	if math.IsNaN(multiplier) || multiplier <= 0 {
		multiplier = 1.0
	}

	return &normalized{
		index:             index,
		exec:              exec,
		key:               assetkey.Resolve(exec),
		root:              assetkey.Root(exec),
		quantity:          qty,
		commissionPerUnit: math.Abs(commission) / math.Abs(qty),
		multiplier:        multiplier,
		closeReason:       ResolveCloseReason(exec.Codes, exec.AssetClass, exec.Price),
	}, ""
}
