package idhash

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"lowcap-signals/internal/domain"
)

func TestComputeSignalID_Deterministic(t *testing.T) {
	id1 := ComputeSignalID("PEPE2", domain.SignalBuy, "alpha-calls", 1700000000000)
	id2 := ComputeSignalID("PEPE2", domain.SignalBuy, "alpha-calls", 1700000000000)

	assert.Equal(t, id1, id2)
	assert.Len(t, id1, 64)
}

func TestComputeSignalID_DistinctInputs(t *testing.T) {
	base := ComputeSignalID("PEPE2", domain.SignalBuy, "alpha-calls", 1700000000000)

	assert.NotEqual(t, base, ComputeSignalID("DOGE2", domain.SignalBuy, "alpha-calls", 1700000000000))
	assert.NotEqual(t, base, ComputeSignalID("PEPE2", domain.SignalSell, "alpha-calls", 1700000000000))
	assert.NotEqual(t, base, ComputeSignalID("PEPE2", domain.SignalBuy, "degen-lounge", 1700000000000))
	assert.NotEqual(t, base, ComputeSignalID("PEPE2", domain.SignalBuy, "alpha-calls", 1700000000001))
}
