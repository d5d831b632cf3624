package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"lowcap-signals/internal/domain"
)

// ComputeSignalID computes a deterministic signal_id using SHA256.
// Formula: SHA256(symbol|type|channel|created_at_ms)
// Returns hex-encoded hash (64 characters).
func ComputeSignalID(symbol string, sigType domain.SignalType, channel string, createdAtMs int64) string {
	data := fmt.Sprintf("%s|%s|%s|%d",
		symbol,
		string(sigType),
		channel,
		createdAtMs,
	)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
