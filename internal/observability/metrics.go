// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Stream metrics
	MessagesConsumed prometheus.Counter
	RelevanceRejects prometheus.Counter
	ParseMisses      prometheus.Counter

	// Extraction metrics
	CandidatesExtracted *prometheus.CounterVec

	// Enrichment metrics
	EnrichmentFailures prometheus.Counter
	EnrichmentLatency  prometheus.Histogram

	// Gate and emission metrics
	GateRejects    prometheus.Counter
	SignalsEmitted *prometheus.CounterVec
	SinkErrors     prometheus.Counter
	ArchiveErrors  prometheus.Counter

	// Failure containment
	PanicsRecovered prometheus.Counter

	// Chat source metrics
	ChatReconnects      prometheus.Counter
	ChatMessagesDropped prometheus.Counter
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "lowcap_signals"
	}

	return &Metrics{
		// Stream metrics
		MessagesConsumed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "stream",
			Name:      "messages_consumed_total",
			Help:      "Total number of chat messages consumed",
		}),
		RelevanceRejects: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "stream",
			Name:      "relevance_rejects_total",
			Help:      "Total number of messages rejected by the relevance filter",
		}),
		ParseMisses: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "stream",
			Name:      "parse_misses_total",
			Help:      "Total number of relevant messages with no matching pattern",
		}),

		// Extraction metrics
		CandidatesExtracted: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "extract",
			Name:      "candidates_total",
			Help:      "Total number of candidates extracted by intent and winning pattern",
		}, []string{"intent", "pattern"}),

		// Enrichment metrics
		EnrichmentFailures: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "market",
			Name:      "enrichment_failures_total",
			Help:      "Total number of enrichments that fell back to the zero snapshot",
		}),
		EnrichmentLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "market",
			Name:      "enrichment_latency_seconds",
			Help:      "Market data lookup latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}),

		// Gate and emission metrics
		GateRejects: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "gate_rejects_total",
			Help:      "Total number of candidates rejected by the market cap gate",
		}),
		SignalsEmitted: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "signals_emitted_total",
			Help:      "Total number of signals emitted by type",
		}, []string{"type"}),
		SinkErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "sink_errors_total",
			Help:      "Total number of failed sink writes",
		}),
		ArchiveErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "archive_errors_total",
			Help:      "Total number of failed snapshot archive writes",
		}),

		// Failure containment
		PanicsRecovered: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "panics_recovered_total",
			Help:      "Total number of panics recovered at the orchestration boundary",
		}),

		// Chat source metrics
		ChatReconnects: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "chat",
			Name:      "reconnects_total",
			Help:      "Total number of chat gateway reconnect attempts",
		}),
		ChatMessagesDropped: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "chat",
			Name:      "messages_dropped_total",
			Help:      "Total number of messages dropped from unsubscribed channels",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance, shared by components
// that are not handed an explicit one.
var DefaultMetrics = NewMetrics("")
