package domain

import "time"

// SignalType is the action carried by a signal.
type SignalType string

const (
	SignalBuy  SignalType = "BUY"
	SignalSell SignalType = "SELL"
	SignalHold SignalType = "HOLD"
)

// String returns the string representation of SignalType.
func (t SignalType) String() string {
	return string(t)
}

// IsValid checks if the signal type is a valid value.
func (t SignalType) IsValid() bool {
	return t == SignalBuy || t == SignalSell || t == SignalHold
}

// SourceTelegram tags signals extracted from monitored chat channels.
const SourceTelegram = "TELEGRAM"

// Signal is the final structured record produced for a qualifying message.
// Corresponds to the signals table in PostgreSQL. Immutable after creation;
// ownership transfers to the sink on emission.
type Signal struct {
	SignalID    string     `json:"signalId"` // PRIMARY KEY, deterministic hash
	TokenSymbol string     `json:"tokenSymbol"`
	TokenName   string     `json:"tokenName"` // defaults to the symbol
	Type        SignalType `json:"type"`
	Price       *float64   `json:"price,omitempty"` // literal price if extracted, else snapshot price
	Source      string     `json:"source"`
	IsPremium   bool       `json:"isPremium"`
	Analysis    string     `json:"analysis"`
	Channel     string     `json:"channel"` // originating channel identity
	CreatedAt   time.Time  `json:"createdAt"` // UTC
}
