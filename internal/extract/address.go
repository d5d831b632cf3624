package extract

import (
	"regexp"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

// addressPattern matches base58 runs long enough to be a Solana address.
var addressPattern = regexp.MustCompile(`[1-9A-HJ-NP-Za-km-z]{32,44}`)

// FindContractAddress scans the text for a token contract address. A run is
// accepted only if it base58-decodes to exactly 32 bytes and lies on the
// ed25519 curve: mint accounts are keypair public keys, while pool and vault
// addresses are program-derived and usually off-curve. Returns the first
// accepted address.
func FindContractAddress(text string) (string, bool) {
	for _, m := range addressPattern.FindAllString(text, -1) {
		raw, err := base58.Decode(m)
		if err != nil || len(raw) != 32 {
			continue
		}
		if !isOnCurve(raw) {
			continue
		}
		return m, true
	}
	return "", false
}

func isOnCurve(point []byte) bool {
	if len(point) != 32 {
		return false
	}
	_, err := new(edwards25519.Point).SetBytes(point)
	return err == nil
}
