package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Counters and histograms for the wallet-content path, partitioned by chain
// where the work is per-chain.

var (
	// Aggregator
	ContentRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "walletsvc",
		Subsystem: "aggregator",
		Name:      "content_requests_total",
		Help:      "Wallet content requests by outcome",
	}, []string{"outcome"})

	ContentFetchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "walletsvc",
		Subsystem: "aggregator",
		Name:      "fetch_duration_seconds",
		Help:      "Wall-clock duration of the cache-miss fetch path",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	})

	FanoutChainDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "walletsvc",
		Subsystem: "aggregator",
		Name:      "chain_fanout_duration_seconds",
		Help:      "Per-chain fan-out duration including all slices",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{"chain"})

	FanoutSlicesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "walletsvc",
		Subsystem: "aggregator",
		Name:      "fanout_slices_total",
		Help:      "Contract-address slices dispatched to the provider",
	}, []string{"chain"})

	// Provider client
	ProviderCallsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "walletsvc",
		Subsystem: "provider",
		Name:      "calls_total",
		Help:      "Provider API calls by status classification",
	}, []string{"chain", "status"})

	ProviderCallDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "walletsvc",
		Subsystem: "provider",
		Name:      "call_duration_seconds",
		Help:      "Provider API call duration",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"chain"})

	ProviderRateLimitWaits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "walletsvc",
		Subsystem: "provider",
		Name:      "rate_limit_waits_total",
		Help:      "Provider calls delayed by the client-side rate limiter",
	}, []string{"chain"})

	ProviderCircuitOpen = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "walletsvc",
		Subsystem: "provider",
		Name:      "circuit_open",
		Help:      "1 when the provider circuit breaker for a chain is open",
	}, []string{"chain"})

	// Cache store
	CacheOpsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "walletsvc",
		Subsystem: "cache",
		Name:      "ops_total",
		Help:      "Cache store operations by result",
	}, []string{"op", "status"})

	// Asset registry
	RegistryDurableReadsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "walletsvc",
		Subsystem: "registry",
		Name:      "durable_reads_total",
		Help:      "Asset list reads that fell through to the durable store",
	})

	// Failure recording
	FailuresRecordedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "walletsvc",
		Subsystem: "errsink",
		Name:      "failures_recorded_total",
		Help:      "Failures recorded by the error sink",
	}, []string{"scope"})

	AlertsSentTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "walletsvc",
		Subsystem: "errsink",
		Name:      "alerts_sent_total",
		Help:      "Alerts delivered per channel",
	}, []string{"channel"})

	AlertsCooldownSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "walletsvc",
		Subsystem: "errsink",
		Name:      "alerts_cooldown_skipped_total",
		Help:      "Alerts suppressed by the cooldown window",
	}, []string{"channel"})

	// HTTP surface
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "walletsvc",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by route and status code",
	}, []string{"route", "code"})
)
