package domain

// Intent is the semantic category of the pattern that produced a candidate.
type Intent string

const (
	IntentPump         Intent = "PUMP"
	IntentBuy          Intent = "BUY"
	IntentSell         Intent = "SELL"
	IntentVolume       Intent = "VOLUME"
	IntentLaunch       Intent = "LAUNCH"
	IntentAccumulation Intent = "ACCUMULATION"
)

// String returns the string representation of Intent.
func (i Intent) String() string {
	return string(i)
}

// SignalType maps an intent to the action carried by the final signal.
// Accumulation and directional-buy intents produce BUY, directional-sell
// produces SELL, everything else is informational and produces HOLD.
func (i Intent) SignalType() SignalType {
	switch i {
	case IntentBuy, IntentAccumulation:
		return SignalBuy
	case IntentSell:
		return SignalSell
	default:
		return SignalHold
	}
}

// Candidate is an in-flight extraction result produced from message text.
// It lives for exactly one pipeline invocation and is never persisted.
type Candidate struct {
	Symbol       string   // uppercased token symbol, never empty
	Address      string   // optional base58 contract address found in the text
	Price        *float64 // literal price captured from the text, nil if absent
	Intent       Intent
	PatternIndex int // index of the winning pattern, exported as a metric label
}
