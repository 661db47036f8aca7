package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"trade-journal-lab/internal/domain"
)

// ComputeTradeID computes a deterministic closed-trade id using SHA256.
// Formula: SHA256(asset_key|close_execution_id|close_time|match_seq)
// match_seq is the per-key running count of match events, so ids do not
// depend on how keys are interleaved or partitioned.
// Returns hex-encoded hash (64 characters).
func ComputeTradeID(
	assetKey domain.AssetKey,
	closeExecutionID string,
	closeTime int64,
	matchSeq int,
) string {
	data := fmt.Sprintf("%s|%s|%d|%d",
		assetKey,
		closeExecutionID,
		closeTime,
		matchSeq,
	)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}

// ComputeCashFlowID computes a deterministic id for a cash transaction folded
// into the closed-trade stream.
// Formula: SHA256(cash|transaction_id|symbol|type|date)
func ComputeCashFlowID(transactionID, symbol, txType string, date int64) string {
	data := fmt.Sprintf("cash|%s|%s|%s|%d", transactionID, symbol, txType, date)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}

// ComputeExecutionID derives an id for a statement row the broker left
// without one. occurrence separates identical rows within one statement.
// Formula: SHA256(exec|attr1|attr2|...|occurrence)
func ComputeExecutionID(attrs []string, occurrence int) string {
	data := fmt.Sprintf("exec|%s|%d", strings.Join(attrs, "|"), occurrence)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
