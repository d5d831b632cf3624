package pipeline

import (
	"context"
	"errors"
	"io"
	"log"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lowcap-signals/internal/domain"
	"lowcap-signals/internal/storage/memory"
)

// stubFetcher returns a fixed snapshot and counts calls.
type stubFetcher struct {
	snap  domain.MarketSnapshot
	calls atomic.Int32
}

func (f *stubFetcher) FetchSnapshot(context.Context, *domain.Candidate) domain.MarketSnapshot {
	f.calls.Add(1)
	return f.snap
}

// panicFetcher panics on every call.
type panicFetcher struct{}

func (panicFetcher) FetchSnapshot(context.Context, *domain.Candidate) domain.MarketSnapshot {
	panic("provider blew up")
}

// failingSink rejects every insert.
type failingSink struct {
	*memory.SignalStore
}

func (failingSink) Insert(context.Context, *domain.Signal) error {
	return errors.New("connection refused")
}

func quietLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func msg(text string) domain.RawMessage {
	return domain.RawMessage{
		Text:      text,
		Channel:   "alpha-calls",
		Timestamp: time.Now().UTC(),
	}
}

func TestProcess_FullRoundTrip(t *testing.T) {
	fetcher := &stubFetcher{snap: domain.MarketSnapshot{
		TokenName:      "Doge Two",
		MarketCap:      50000,
		Volume24h:      1000,
		Price:          0.42,
		PriceChange24h: 5.2,
		Available:      true,
	}}
	sink := memory.NewSignalStore()
	archive := memory.NewSnapshotArchive()

	p := New(Options{Fetcher: fetcher, Sink: sink, Archive: archive, Logger: quietLogger()})

	sig := p.Process(context.Background(), msg("lowcap gem! buy DOGE2 @ 0.5"))
	require.NotNil(t, sig)

	assert.Equal(t, "DOGE2", sig.TokenSymbol)
	assert.Equal(t, "Doge Two", sig.TokenName)
	assert.Equal(t, domain.SignalBuy, sig.Type)
	require.NotNil(t, sig.Price)
	assert.Equal(t, 0.5, *sig.Price)
	assert.Equal(t, "Market Cap: $50,000.00 | 24h Volume: $1,000.00 | Price Change: 5.20%", sig.Analysis)

	// Persisted in the sink
	stored, err := sink.GetByID(context.Background(), sig.SignalID)
	require.NoError(t, err)
	assert.Equal(t, sig.TokenSymbol, stored.TokenSymbol)

	// Snapshot archived
	records, err := archive.GetBySymbol(context.Background(), "DOGE2")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, sig.SignalID, records[0].SignalID)
	assert.Equal(t, 50000.0, records[0].Snapshot.MarketCap)
}

func TestProcess_IrrelevantMessageSkipsFetch(t *testing.T) {
	fetcher := &stubFetcher{}
	p := New(Options{Fetcher: fetcher, Sink: memory.NewSignalStore(), Logger: quietLogger()})

	sig := p.Process(context.Background(), msg("BTC broke 100k today"))
	assert.Nil(t, sig)
	assert.Equal(t, int32(0), fetcher.calls.Load())
}

func TestProcess_RelevantWithoutPatternSkipsFetch(t *testing.T) {
	fetcher := &stubFetcher{}
	p := New(Options{Fetcher: fetcher, Sink: memory.NewSignalStore(), Logger: quietLogger()})

	sig := p.Process(context.Background(), msg("looking for the next hidden opportunity, very undervalued market"))
	assert.Nil(t, sig)
	assert.Equal(t, int32(0), fetcher.calls.Load())
}

func TestProcess_GateRejectsLargeCap(t *testing.T) {
	fetcher := &stubFetcher{snap: domain.MarketSnapshot{MarketCap: 2_000_000, Available: true}}
	sink := memory.NewSignalStore()
	archive := memory.NewSnapshotArchive()

	p := New(Options{Fetcher: fetcher, Sink: sink, Archive: archive, Logger: quietLogger()})

	sig := p.Process(context.Background(), msg("lowcap play: buy BIGTOKEN @ 1.0"))
	assert.Nil(t, sig)

	latest, err := sink.GetLatest(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, latest)

	// The readout is archived even when the gate rejects, with no
	// signal identity: nothing signal-shaped exists for an over-cap
	// candidate, so the archive row cannot dangle against the sink
	records, err := archive.GetBySymbol(context.Background(), "BIGTOKEN")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Empty(t, records[0].SignalID)
}

func TestProcess_GateRejectLeavesNoSignalID(t *testing.T) {
	fetcher := &stubFetcher{snap: domain.MarketSnapshot{MarketCap: MaxMarketCap + 1, Available: true}}
	sink := memory.NewSignalStore()
	archive := memory.NewSnapshotArchive()

	p := New(Options{Fetcher: fetcher, Sink: sink, Archive: archive, Logger: quietLogger()})

	sig := p.Process(context.Background(), msg("lowcap buy BIGTOKEN @ 1.0"))
	require.Nil(t, sig)

	records, err := archive.GetBySymbol(context.Background(), "BIGTOKEN")
	require.NoError(t, err)
	require.Len(t, records, 1)

	// Every archived signal_id must resolve in the sink; rejected
	// candidates carry none at all
	assert.Empty(t, records[0].SignalID)
	latest, err := sink.GetLatest(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, latest)
}

func TestProcess_ProviderDownStillEmits(t *testing.T) {
	// Zero snapshot passes the gate; the signal goes out with zeroed
	// market fields.
	fetcher := &stubFetcher{snap: domain.MarketSnapshot{}}
	sink := memory.NewSignalStore()

	p := New(Options{Fetcher: fetcher, Sink: sink, Logger: quietLogger()})

	sig := p.Process(context.Background(), msg("early gem! pump MOONCAT"))
	require.NotNil(t, sig)

	assert.Equal(t, "MOONCAT", sig.TokenSymbol)
	assert.Equal(t, domain.SignalHold, sig.Type)
	require.NotNil(t, sig.Price)
	assert.Zero(t, *sig.Price)
	assert.Equal(t, "Market Cap: $0.00 | 24h Volume: $0.00 | Price Change: 0.00%", sig.Analysis)
}

func TestProcess_SinkFailureDropsSignal(t *testing.T) {
	fetcher := &stubFetcher{snap: domain.MarketSnapshot{MarketCap: 1000, Available: true}}
	p := New(Options{Fetcher: fetcher, Sink: failingSink{memory.NewSignalStore()}, Logger: quietLogger()})

	sig := p.Process(context.Background(), msg("lowcap buy PEPE2 @ 0.0001"))
	assert.Nil(t, sig)

	// The insert is attempted exactly once per message, never retried
	assert.Equal(t, int32(1), fetcher.calls.Load())
}

func TestProcess_PanicIsolated(t *testing.T) {
	sink := memory.NewSignalStore()
	p := New(Options{Fetcher: panicFetcher{}, Sink: sink, Logger: quietLogger()})

	assert.NotPanics(t, func() {
		sig := p.Process(context.Background(), msg("lowcap buy PEPE2 @ 0.0001"))
		assert.Nil(t, sig)
	})
}

func TestProcess_NextMessageUnaffectedByPanic(t *testing.T) {
	sink := memory.NewSignalStore()
	panicky := New(Options{Fetcher: panicFetcher{}, Sink: sink, Logger: quietLogger()})
	panicky.Process(context.Background(), msg("lowcap buy PEPE2 @ 0.0001"))

	healthy := New(Options{
		Fetcher: &stubFetcher{snap: domain.MarketSnapshot{MarketCap: 1000, Available: true}},
		Sink:    sink,
		Logger:  quietLogger(),
	})
	sig := healthy.Process(context.Background(), msg("lowcap buy DOGE2 @ 0.5"))
	require.NotNil(t, sig)
	assert.Equal(t, "DOGE2", sig.TokenSymbol)
}

func TestProcess_DuplicateSignalRejectedBySink(t *testing.T) {
	fetcher := &stubFetcher{snap: domain.MarketSnapshot{MarketCap: 1000, Available: true}}
	sink := memory.NewSignalStore()

	fixed := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	p := New(Options{
		Fetcher: fetcher,
		Sink:    sink,
		Logger:  quietLogger(),
		Now:     func() time.Time { return fixed },
	})

	first := p.Process(context.Background(), msg("lowcap buy PEPE2 @ 0.0001"))
	require.NotNil(t, first)

	// Same symbol, type, channel, and timestamp produces the same ID;
	// the primary key rejects the second write.
	second := p.Process(context.Background(), msg("lowcap buy PEPE2 @ 0.0001"))
	assert.Nil(t, second)
}

func TestRunner_DrainsChannel(t *testing.T) {
	fetcher := &stubFetcher{snap: domain.MarketSnapshot{MarketCap: 1000, Available: true}}
	sink := memory.NewSignalStore()

	var seq atomic.Int64
	p := New(Options{
		Fetcher: fetcher,
		Sink:    sink,
		Logger:  quietLogger(),
		// Distinct timestamps keep the IDs unique across workers
		Now: func() time.Time {
			return time.UnixMilli(seq.Add(1))
		},
	})

	messages := make(chan domain.RawMessage, 16)
	for i := 0; i < 10; i++ {
		messages <- msg("lowcap buy PEPE2 @ 0.0001")
	}
	close(messages)

	runner := NewRunner(p, 4)
	runner.Run(context.Background(), messages)

	latest, err := sink.GetLatest(context.Background(), 100)
	require.NoError(t, err)
	assert.Len(t, latest, 10)
	assert.Equal(t, int32(10), fetcher.calls.Load())
}

func TestRunner_StopsOnContextCancel(t *testing.T) {
	p := New(Options{
		Fetcher: &stubFetcher{},
		Sink:    memory.NewSignalStore(),
		Logger:  quietLogger(),
	})

	messages := make(chan domain.RawMessage) // never closed

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		NewRunner(p, 2).Run(ctx, messages)
		close(done)
	}()

	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("runner did not stop after context cancellation")
	}
}
