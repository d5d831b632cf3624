// Package pipeline turns raw chat messages into persisted trading signals.
// Flow: relevance filter → pattern extraction → market enrichment →
// low-cap gate → signal assembly → sink
package pipeline

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"

	"lowcap-signals/internal/domain"
	"lowcap-signals/internal/extract"
	"lowcap-signals/internal/market"
	"lowcap-signals/internal/observability"
	"lowcap-signals/internal/storage"
)

// DefaultEnrichTimeout bounds one market data lookup.
const DefaultEnrichTimeout = 10 * time.Second

// Pipeline processes one chat message at a time. Messages are independent:
// no state is shared between invocations and a failure on one message never
// affects the next.
type Pipeline struct {
	fetcher       market.Fetcher
	sink          storage.SignalStore
	archive       storage.SnapshotArchive
	metrics       *observability.Metrics
	logger        *log.Logger
	enrichTimeout time.Duration
	now           func() time.Time
}

// Options for creating Pipeline.
type Options struct {
	// Required
	Fetcher market.Fetcher
	Sink    storage.SignalStore

	// Optional
	Archive       storage.SnapshotArchive // nil disables snapshot archiving
	Metrics       *observability.Metrics  // defaults to the shared instance
	Logger        *log.Logger
	EnrichTimeout time.Duration // defaults to DefaultEnrichTimeout
	Now           func() time.Time
}

// New creates a new Pipeline.
func New(opts Options) *Pipeline {
	p := &Pipeline{
		fetcher:       opts.Fetcher,
		sink:          opts.Sink,
		archive:       opts.Archive,
		metrics:       opts.Metrics,
		logger:        opts.Logger,
		enrichTimeout: opts.EnrichTimeout,
		now:           opts.Now,
	}
	if p.metrics == nil {
		p.metrics = observability.DefaultMetrics
	}
	if p.logger == nil {
		p.logger = log.New(os.Stdout, "[pipeline] ", log.LstdFlags)
	}
	if p.enrichTimeout <= 0 {
		p.enrichTimeout = DefaultEnrichTimeout
	}
	if p.now == nil {
		p.now = time.Now
	}
	return p
}

// Process runs one message through the full pipeline. It never returns an
// error and never panics: failures are logged, counted, and the message is
// dropped. The returned signal is nil when the message produced none.
func (p *Pipeline) Process(ctx context.Context, msg domain.RawMessage) (sig *domain.Signal) {
	defer func() {
		if r := recover(); r != nil {
			p.metrics.PanicsRecovered.Inc()
			p.logger.Printf("recovered panic processing message from %s: %v", msg.Channel, r)
			sig = nil
		}
	}()

	p.metrics.MessagesConsumed.Inc()

	if !extract.IsLowCap(msg.Text) {
		p.metrics.RelevanceRejects.Inc()
		return nil
	}

	candidate, ok := extract.ExtractCandidate(msg.Text)
	if !ok {
		p.metrics.ParseMisses.Inc()
		return nil
	}
	p.metrics.CandidatesExtracted.WithLabelValues(candidate.Intent.String(), strconv.Itoa(candidate.PatternIndex)).Inc()

	snap := p.enrich(ctx, candidate)

	// A Signal is only ever assembled for a candidate that clears the
	// gate. Rejected readouts are still archived, with no signal id to
	// dangle against the signals table.
	if !passesGate(snap) {
		p.archiveSnapshot(ctx, "", candidate.Symbol, snap)
		p.metrics.GateRejects.Inc()
		p.logger.Printf("gate reject %s: market cap %.2f above threshold", candidate.Symbol, snap.MarketCap)
		return nil
	}

	signal := BuildSignal(candidate, snap, msg.Channel, p.now())

	p.archiveSnapshot(ctx, signal.SignalID, candidate.Symbol, snap)

	if err := p.sink.Insert(ctx, signal); err != nil {
		// Best effort: a failed write is logged and the signal is dropped.
		p.metrics.SinkErrors.Inc()
		p.logger.Printf("sink insert %s failed: %v", signal.SignalID, err)
		return nil
	}

	p.metrics.SignalsEmitted.WithLabelValues(signal.Type.String()).Inc()
	p.logger.Printf("signal emitted: %s %s from %s (cap %.2f)",
		signal.Type, signal.TokenSymbol, signal.Channel, snap.MarketCap)
	return signal
}

// enrich fetches a market snapshot under the enrichment deadline and
// records latency and availability.
func (p *Pipeline) enrich(ctx context.Context, c *domain.Candidate) domain.MarketSnapshot {
	ctx, cancel := context.WithTimeout(ctx, p.enrichTimeout)
	defer cancel()

	start := time.Now()
	snap := p.fetcher.FetchSnapshot(ctx, c)
	p.metrics.EnrichmentLatency.Observe(time.Since(start).Seconds())
	if !snap.Available {
		p.metrics.EnrichmentFailures.Inc()
	}
	return snap
}

// archiveSnapshot records the enrichment readout. Archive failures never
// block the signal.
func (p *Pipeline) archiveSnapshot(ctx context.Context, signalID, symbol string, snap domain.MarketSnapshot) {
	if p.archive == nil {
		return
	}
	rec := &storage.SnapshotRecord{
		SignalID:  signalID,
		Symbol:    symbol,
		Snapshot:  snap,
		FetchedAt: p.now().UTC(),
	}
	if err := p.archive.InsertBulk(ctx, []*storage.SnapshotRecord{rec}); err != nil {
		p.metrics.ArchiveErrors.Inc()
		p.logger.Printf("archive snapshot for %s failed: %v", symbol, err)
	}
}
