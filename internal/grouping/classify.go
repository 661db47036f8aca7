package grouping

import (
	"fmt"
	"strings"

	"trade-journal-lab/internal/domain"
)

// Classify labels a cluster of legs. Checks run in a fixed order and the first
// match wins; anything unrecognized gets a generic "Custom N-Leg" label.
func Classify(legs []*domain.ClosedTrade) string {
	count := len(legs)
	if count == 1 {
		return domain.StrategyTypeSingle
	}

	var hasStock, hasOption bool
	expiries := make(map[string]struct{})
	rights := make(map[string]struct{})

	for _, leg := range legs {
		if strings.TrimSpace(string(leg.AssetClass)) == "" {
			return domain.StrategyTypeUnknownMultiLeg
		}
		switch {
		case leg.AssetClass.IsOption():
			hasOption = true
		case leg.AssetClass.IsStock():
			hasStock = true
		}
		if e := strings.TrimSpace(leg.Expiry); e != "" {
			expiries[e] = struct{}{}
		}
		if r := strings.ToUpper(strings.TrimSpace(leg.Right)); r != "" {
			rights[r] = struct{}{}
		}
	}

	if hasStock && hasOption {
		return domain.StrategyTypeCoveredStock
	}
	if !hasOption {
		return customLabel(count)
	}

	switch count {
	case 2:
		if len(expiries) != 1 {
			return domain.StrategyTypeCalendar
		}
		if len(rights) == 1 {
			return domain.StrategyTypeVerticalSpread
		}
		return domain.StrategyTypeStraddle
	case 3:
		return domain.StrategyTypeButterfly
	case 4:
		if len(expiries) == 1 {
			return domain.StrategyTypeIronCondor
		}
	}
	return customLabel(count)
}

func customLabel(count int) string {
	return fmt.Sprintf("Custom %d-Leg", count)
}
