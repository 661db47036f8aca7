package idhash

import (
	"strings"

	"github.com/google/uuid"
)

// Namespaces for name-based group ids. Fixed so ids are stable across runs.
var (
	strategyNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("trade-journal-lab/strategy"))
	campaignNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("trade-journal-lab/campaign"))
)

// ComputeStrategyID derives a strategy cluster id from its member trade ids.
// UUIDv5 over the ids joined in the given order (callers pass cluster order).
func ComputeStrategyID(memberTradeIDs []string) string {
	return uuid.NewSHA1(strategyNamespace, []byte(strings.Join(memberTradeIDs, "|"))).String()
}

// ComputeCampaignID derives a campaign id from its member trade ids.
func ComputeCampaignID(memberTradeIDs []string) string {
	return uuid.NewSHA1(campaignNamespace, []byte(strings.Join(memberTradeIDs, "|"))).String()
}
