// Package assetkey derives stable instrument identities from raw execution fields.
package assetkey

import (
	"strconv"
	"strings"

	"trade-journal-lab/internal/domain"
)

// Placeholder renders a missing key component.
const Placeholder = "-"

// Resolve returns the inventory key of an execution.
// Options and future options key on (root, expiry, strike, right); every other
// class keys on its contract symbol. Total and pure: missing fields render as
// Placeholder instead of failing.
func Resolve(e *domain.Execution) domain.AssetKey {
	if e.AssetClass.IsOption() {
		return OptionKey(Root(e), e.Expiry, e.Strike, e.Right)
	}

	symbol := strings.TrimSpace(e.Symbol)
	if symbol == "" {
		symbol = Root(e)
	}
	if symbol == "" {
		symbol = Placeholder
	}
	return domain.AssetKey(symbol)
}

// OptionKey formats an option key as "ROOT EXPIRY STRIKE RIGHT".
func OptionKey(root, expiry string, strike float64, right string) domain.AssetKey {
	parts := []string{
		component(root),
		component(expiry),
		formatStrike(strike),
		component(strings.ToUpper(right)),
	}
	return domain.AssetKey(strings.Join(parts, " "))
}

// Root returns the underlying symbol shared by an equity and its derivatives:
// the underlying when present, else the contract symbol.
func Root(e *domain.Execution) string {
	if u := strings.TrimSpace(e.Underlying); u != "" {
		return u
	}
	return strings.TrimSpace(e.Symbol)
}

func component(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return Placeholder
	}
	return s
}

func formatStrike(strike float64) string {
	if strike <= 0 {
		return Placeholder
	}
	return strconv.FormatFloat(strike, 'f', -1, 64)
}
