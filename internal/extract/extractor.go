// Package extract decides whether a chat message is about a low-cap coin
// and turns it into a pipeline candidate via an ordered pattern list.
package extract

import (
	"strconv"
	"strings"

	"lowcap-signals/internal/domain"
)

// ExtractCandidate runs the ordered pattern list against the text and
// returns the candidate produced by the first valid match. Returns false
// when no pattern matches.
func ExtractCandidate(text string) (*domain.Candidate, bool) {
	for i, p := range signalPatterns {
		m := p.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}

		symbol := m[1]
		if _, reserved := reservedWords[strings.ToLower(symbol)]; reserved {
			continue
		}

		c := &domain.Candidate{
			Symbol:       strings.ToUpper(symbol),
			Intent:       p.intent,
			PatternIndex: i,
		}

		// Group 2 is the optional literal price; the whale pattern has none.
		if len(m) > 2 && m[2] != "" {
			if price, err := strconv.ParseFloat(m[2], 64); err == nil {
				c.Price = &price
			}
		}

		if addr, ok := FindContractAddress(text); ok {
			c.Address = addr
		}

		return c, true
	}
	return nil, false
}
