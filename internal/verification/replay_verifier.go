package verification

import (
	"context"
	"errors"
	"fmt"

	"trade-journal-lab/internal/domain"
	"trade-journal-lab/internal/matching"
	"trade-journal-lab/internal/storage"
)

// ErrTradeNotFound is returned when trade ID doesn't exist in storage.
var ErrTradeNotFound = errors.New("trade not found")

// ReplayVerifier implements Verifier by re-matching the raw journal.
type ReplayVerifier struct {
	executions storage.ExecutionStore
	cash       storage.CashTransactionStore
	closed     storage.ClosedTradeStore
	engine     *matching.Engine
}

// ReplayVerifierOptions contains configuration for creating a ReplayVerifier.
type ReplayVerifierOptions struct {
	Executions       storage.ExecutionStore
	CashTransactions storage.CashTransactionStore
	ClosedTrades     storage.ClosedTradeStore
}

// NewReplayVerifier creates a new ReplayVerifier.
func NewReplayVerifier(opts ReplayVerifierOptions) *ReplayVerifier {
	return &ReplayVerifier{
		executions: opts.Executions,
		cash:       opts.CashTransactions,
		closed:     opts.ClosedTrades,
		engine:     matching.NewEngine(nil),
	}
}

var _ Verifier = (*ReplayVerifier)(nil)

// VerifyTrade verifies one stored trade against the replay.
func (v *ReplayVerifier) VerifyTrade(ctx context.Context, tradeID string) (*VerificationResult, error) {
	stored, err := v.closed.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load closed trades: %w", err)
	}

	var target *domain.ClosedTrade
	for _, t := range stored {
		if t.TradeID == tradeID {
			target = t
			break
		}
	}
	if target == nil {
		return nil, ErrTradeNotFound
	}

	replayed, err := v.replay(ctx)
	if err != nil {
		return nil, err
	}
	result := verifyOne(target, replayed)
	return &result, nil
}

// VerifyAll verifies every stored trade.
func (v *ReplayVerifier) VerifyAll(ctx context.Context) (*VerificationReport, error) {
	stored, err := v.closed.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load closed trades: %w", err)
	}
	replayed, err := v.replay(ctx)
	if err != nil {
		return nil, err
	}

	report := &VerificationReport{
		TotalTrades: len(stored),
		Results:     make([]VerificationResult, 0, len(stored)),
	}

	seen := make(map[string]struct{}, len(stored))
	for _, t := range stored {
		seen[t.TradeID] = struct{}{}
		result := verifyOne(t, replayed)
		if result.Match {
			report.MatchedTrades++
		} else {
			report.DivergentTrades++
		}
		report.Results = append(report.Results, result)
	}

	for _, id := range replayed.order {
		if _, ok := seen[id]; !ok {
			report.UnstoredTrades = append(report.UnstoredTrades, id)
		}
	}

	return report, nil
}

// replayIndex is the replayed closed trade stream keyed by trade id.
type replayIndex struct {
	byID  map[string]*domain.ClosedTrade
	order []string
}

// replay matches the raw executions and folds cash flows exactly as the
// analyzer does.
func (v *ReplayVerifier) replay(ctx context.Context) (*replayIndex, error) {
	execs, err := v.executions.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load executions: %w", err)
	}
	cash, err := v.cash.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load cash transactions: %w", err)
	}

	closed := matching.FoldCashTransactions(v.engine.Match(execs).Closed, cash)

	idx := &replayIndex{byID: make(map[string]*domain.ClosedTrade, len(closed))}
	for _, t := range closed {
		idx.byID[t.TradeID] = t
		idx.order = append(idx.order, t.TradeID)
	}
	return idx, nil
}

func verifyOne(stored *domain.ClosedTrade, replayed *replayIndex) VerificationResult {
	result := VerificationResult{
		TradeID:      stored.TradeID,
		StoredNetPnL: stored.NetPnL,
	}

	r, ok := replayed.byID[stored.TradeID]
	if !ok {
		result.MissingInReplay = true
		return result
	}

	result.ReplayedNetPnL = r.NetPnL
	result.Divergences = CompareClosedTrades(stored, r)
	result.Match = len(result.Divergences) == 0
	return result
}
