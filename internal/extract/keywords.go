package extract

import "strings"

// lowCapKeywords mark a message as plausibly being about a low market cap
// coin. Matching is a case-insensitive substring check, used as a cheap
// pre-filter before pattern matching and any network call.
var lowCapKeywords = []string{
	"lowcap", "microcap", "smallcap", "gem", "hidden gem",
	"undervalued", "early", "presale", "fair launch", "stealth",
}

// IsLowCap reports whether the message text is plausibly about a low-cap
// coin. Pure function, no failure mode.
func IsLowCap(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range lowCapKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
