package domain

// MarketSnapshot is a point-in-time market-data readout for one token.
// When the provider is unreachable or reports no trading pairs, all numeric
// fields are zero and Available is false. The zero values are deliberate:
// downstream gating always has a defined value to compare.
type MarketSnapshot struct {
	TokenName      string  // base token name as reported by the provider, may be empty
	MarketCap      float64 // liquidity in USD, interpreted as market cap
	Volume24h      float64
	Price          float64
	PriceChange24h float64 // percent

	// Available distinguishes a real readout from the zero-valued fallback.
	// The capitalization gate ignores it on purpose (source behavior); it is
	// recorded for observability and the snapshot archive.
	Available bool
}
