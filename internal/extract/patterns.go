package extract

import (
	"regexp"

	"lowcap-signals/internal/domain"
)

// pattern pairs a compiled expression with the semantic intent of the
// message it recognizes. Group 1 captures the token symbol; group 2, where
// present, captures an optional literal price.
type pattern struct {
	re     *regexp.Regexp
	intent domain.Intent
}

// signalPatterns is the ordered pattern list. Patterns are tried in this
// exact order and the first valid match wins; later patterns are never
// consulted even if they would also match. The order is a precedence policy
// between intent categories and is observable behavior; do not reorder.
//
//  0. pump/moon/gem/launch mention
//  1. directional buy
//  2. directional sell
//  3. volume mention
//  4. launch/fair-launch/presale
//  5. whale accumulation
var signalPatterns = []pattern{
	{regexp.MustCompile(`(?i)(?:pump|moon|gem|launch)\s+(\w+)(?:\s+@\s+)?(\d*\.?\d*)`), domain.IntentPump},
	{regexp.MustCompile(`(?i)(?:buy|long)\s+(\w+)(?:\s+@\s+)?(\d*\.?\d*)`), domain.IntentBuy},
	{regexp.MustCompile(`(?i)(?:sell|short)\s+(\w+)(?:\s+@\s+)?(\d*\.?\d*)`), domain.IntentSell},
	{regexp.MustCompile(`(?i)(?:volume|vol)\s+(\w+)(?:\s+@\s+)?(\d*\.?\d*)`), domain.IntentVolume},
	{regexp.MustCompile(`(?i)(?:launch|fair|presale)\s+(\w+)(?:\s+@\s+)?(\d*\.?\d*)`), domain.IntentLaunch},
	{regexp.MustCompile(`(?i)(?:whale|whales)\s+(?:buying|accumulating)\s+(\w+)`), domain.IntentAccumulation},
}

// reservedWords are trigger keywords that can never be a token symbol.
// A pattern whose symbol capture lands on one of these (e.g. "gem BUY PEPE2"
// would capture "BUY" for the pump pattern) is treated as a non-match so the
// next pattern in priority order gets its turn.
var reservedWords = map[string]struct{}{
	"pump": {}, "moon": {}, "gem": {}, "launch": {},
	"buy": {}, "long": {}, "sell": {}, "short": {},
	"volume": {}, "vol": {}, "fair": {}, "presale": {},
	"whale": {}, "whales": {}, "buying": {}, "accumulating": {},
}
