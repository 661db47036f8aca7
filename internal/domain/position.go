package domain

// OpenLot is a quantity of one instrument awaiting a closing match.
// Lives in exactly one AssetKey inventory queue.
type OpenLot struct {
	Quantity          float64 // signed remaining quantity
	EntryPrice        float64
	EntryTime         int64 // Unix ms
	Multiplier        float64
	CommissionPerUnit float64

	// Instrument metadata of the opening execution
	Symbol     string
	RootSymbol string
	AssetClass AssetClass
	Right      string
	Strike     float64
	Expiry     string
}

// OpenPosition is the net exposure left in one inventory after matching.
// Corresponds to open_positions table; rebuilt on every analysis pass.
type OpenPosition struct {
	AssetKey   AssetKey
	RootSymbol string
	Symbol     string
	AssetClass AssetClass
	Quantity   float64 // net signed quantity
	AvgPrice   float64 // quantity-weighted average entry price
	Multiplier float64
	LotCount   int
	OpenedAt   int64 // entry time of the oldest resident lot (ms)
}
