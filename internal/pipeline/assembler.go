package pipeline

import (
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"lowcap-signals/internal/domain"
	"lowcap-signals/internal/idhash"
)

// MaxMarketCap is the inclusive upper bound for the low-cap gate.
// Tokens whose reported market cap exceeds this are not signal-worthy.
const MaxMarketCap = 1_000_000

// passesGate reports whether a snapshot clears the low-cap gate.
// A zero market cap passes: when the provider is unreachable the
// snapshot is all zeros and the signal is still emitted.
func passesGate(snap domain.MarketSnapshot) bool {
	return snap.MarketCap <= MaxMarketCap
}

var analysisPrinter = message.NewPrinter(language.English)

// FormatAnalysis renders the human-readable market summary stored on
// each signal, with grouped thousands and two decimal places.
func FormatAnalysis(snap domain.MarketSnapshot) string {
	return analysisPrinter.Sprintf("Market Cap: $%.2f | 24h Volume: $%.2f | Price Change: %.2f%%",
		snap.MarketCap, snap.Volume24h, snap.PriceChange24h)
}

// BuildSignal assembles a Signal from an extracted candidate and its
// market snapshot. The stated price from the message wins; when the
// message carried none, the snapshot price is used instead (zero when
// the provider was unavailable).
func BuildSignal(c *domain.Candidate, snap domain.MarketSnapshot, channel string, now time.Time) *domain.Signal {
	price := snap.Price
	if c.Price != nil {
		price = *c.Price
	}

	name := snap.TokenName
	if name == "" {
		name = c.Symbol
	}

	sigType := c.Intent.SignalType()
	now = now.UTC()

	return &domain.Signal{
		SignalID:    idhash.ComputeSignalID(c.Symbol, sigType, channel, now.UnixMilli()),
		TokenSymbol: c.Symbol,
		TokenName:   name,
		Type:        sigType,
		Price:       &price,
		Source:      domain.SourceTelegram,
		IsPremium:   true,
		Analysis:    FormatAnalysis(snap),
		Channel:     channel,
		CreatedAt:   now,
	}
}
