// Package market enriches extracted candidates with live market data.
package market

import (
	"context"

	"lowcap-signals/internal/domain"
)

// Fetcher produces a market snapshot for one candidate.
//
// Implementations never return an error: when the provider is unreachable or
// has no data for the token, they return a zero-valued snapshot with
// Available=false. The zero snapshot still clears the low-cap gate, so a
// provider outage produces signals with zeroed market fields instead of
// crashing the pipeline or silently dropping messages.
type Fetcher interface {
	FetchSnapshot(ctx context.Context, c *domain.Candidate) domain.MarketSnapshot
}
