package domain

import "strings"

// AssetClass is the broker's asset category for an instrument.
type AssetClass string

const (
	AssetClassStock        AssetClass = "STK"
	AssetClassOption       AssetClass = "OPT"
	AssetClassFutureOption AssetClass = "FOP"
	AssetClassFuture       AssetClass = "FUT"
	AssetClassCash         AssetClass = "CASH"
)

// IsOption reports whether the class is an option or a future option.
func (c AssetClass) IsOption() bool {
	switch AssetClass(strings.ToUpper(strings.TrimSpace(string(c)))) {
	case AssetClassOption, AssetClassFutureOption:
		return true
	default:
		return false
	}
}

// IsStock reports whether the class is a plain equity.
func (c AssetClass) IsStock() bool {
	return AssetClass(strings.ToUpper(strings.TrimSpace(string(c)))) == AssetClassStock
}

// AssetKey identifies one instrument's inventory.
// Lookup and partitioning only; never an ownership handle.
type AssetKey string

// String returns the string representation of AssetKey.
func (k AssetKey) String() string {
	return string(k)
}

// Option rights.
const (
	RightCall = "C"
	RightPut  = "P"
)
